// Package errors defines the error taxonomy shared by the fetch, build and
// delivery stages.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNoPrice            = errors.New("no price available")
	ErrMissingCredentials = errors.New("missing credentials")
	ErrEmptyResponse      = errors.New("empty response")
)

// ProviderError is a network or decode failure from a market-data source.
type ProviderError struct {
	Provider string
	Symbol   string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s (%s): %v", e.Provider, e.Symbol, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// NewProviderError creates a new ProviderError.
func NewProviderError(provider, symbol string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Symbol: symbol, Err: err}
}

// ConfigError reports a required setting that is absent or unusable.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Message)
}

func (e *ConfigError) Unwrap() error {
	return ErrMissingCredentials
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// DeliveryError is a non-success response from the notification endpoint.
type DeliveryError struct {
	StatusCode int
	Body       string
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery failed: status %d, body: %s", e.StatusCode, e.Body)
}

// NewDeliveryError creates a new DeliveryError.
func NewDeliveryError(statusCode int, body string) *DeliveryError {
	return &DeliveryError{StatusCode: statusCode, Body: body}
}

// IsProviderError reports whether err wraps a ProviderError.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}

// IsConfigError reports whether err wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// IsDeliveryError reports whether err wraps a DeliveryError.
func IsDeliveryError(err error) bool {
	var de *DeliveryError
	return errors.As(err, &de)
}
