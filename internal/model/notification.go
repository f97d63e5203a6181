package model

// NotificationResult is the observed outcome of one delivery attempt.
// StatusCode is 0 when no request was made.
type NotificationResult struct {
	Delivered    bool
	StatusCode   int
	ErrorMessage string
}
