package httpx

import (
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// New returns an http.Client with the given timeout. When proxyURL is set
// and parses, all requests go through it; otherwise the environment proxy
// settings apply.
func New(timeout time.Duration, proxyURL string) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{Timeout: timeout, Transport: transport}
}

// RedactURL masks secret in the URL carried by a *url.Error and returns err
// with its chain intact, so errors.Is still sees context.Canceled and friends.
func RedactURL(err error, secret string) error {
	if err == nil || secret == "" {
		return err
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		for _, s := range []string{secret, url.QueryEscape(secret), url.PathEscape(secret)} {
			uerr.URL = strings.ReplaceAll(uerr.URL, s, "***")
		}
	}
	return err
}
