package platform

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	twclient "github.com/twilio/twilio-go/client"
)

// Platform error codes the orchestrator interprets.
const (
	CodeNotFound    = 20404
	CodeRateLimited = 20429
)

var (
	// ErrNotFound matches any APIError meaning "no such resource".
	ErrNotFound = errors.New("platform: resource not found")
	// ErrMalformedResource is returned when a payload does not have the expected shape.
	ErrMalformedResource = errors.New("platform: malformed resource")
	// ErrNoRedirect is returned when an authenticated link yields no redirect target.
	ErrNoRedirect = errors.New("platform: no redirect target in response")
)

// APIError is an error response from the platform REST API.
type APIError struct {
	Status   int
	Code     int
	Message  string
	MoreInfo string

	cause *twclient.TwilioRestError
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("platform: %d %s (code %d)", e.Status, e.Message, e.Code)
	}
	return fmt.Sprintf("platform: %d %s", e.Status, e.Message)
}

// Is lets errors.Is(err, ErrNotFound) match not-found responses.
func (e *APIError) Is(target error) bool {
	if target == ErrNotFound {
		return e.Code == CodeNotFound || e.Status == http.StatusNotFound
	}
	return false
}

// Unwrap exposes the SDK error.
func (e *APIError) Unwrap() error {
	if e.cause == nil {
		return nil
	}
	return e.cause
}

// translate turns SDK REST errors into *APIError; other errors pass through.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var rest *twclient.TwilioRestError
	if errors.As(err, &rest) {
		return &APIError{
			Status:   rest.Status,
			Code:     rest.Code,
			Message:  rest.Message,
			MoreInfo: rest.MoreInfo,
			cause:    rest,
		}
	}
	return fmt.Errorf("platform: %w", err)
}

// IsNotFound reports whether err is the platform's "no such resource" condition.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRateLimited reports whether err is a platform rate-limit response.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == CodeRateLimited || apiErr.Status == http.StatusTooManyRequests
}

// HTTPStatus maps a platform failure to the status the API answers with.
func HTTPStatus(err error) int {
	var netErr net.Error
	switch {
	case IsNotFound(err):
		return http.StatusNotFound
	case IsRateLimited(err):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
