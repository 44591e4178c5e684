// Package fetch retrieves raw highscore payloads from the public API.
package fetch

import (
	"fmt"
)

// TransportError reports a network-level failure reaching the API.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError reports a non-200 response from the API.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http_status:%d", e.Code)
}

// DecodeError reports a response body that is not valid JSON.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return "decode: " + e.Reason
}

// Reason classifies a fetch failure for structured logs:
// "transport", "http_status:<code>", "decode", or "error".
func Reason(err error) string {
	switch e := err.(type) { //nolint:errorlint // fetch errors are never wrapped by this package
	case *TransportError:
		return "transport"
	case *StatusError:
		return e.Error()
	case *DecodeError:
		return "decode"
	default:
		return "error"
	}
}
