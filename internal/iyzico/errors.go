package iyzico

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks transport-level failures talking to the gateway:
// connection errors, timeouts and 5xx responses. Read-only operations are
// safe to retry; create and cancel are not without idempotency keys.
var ErrUnavailable = errors.New("gateway unavailable")

// APIError is a business-level rejection from the gateway: the request was
// received and refused (declined card, unknown plan reference, and so on).
// It is not retried automatically.
type APIError struct {
	Op      string
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("iyzico %s: %s (code %s)", e.Op, e.Message, e.Code)
	}
	return fmt.Sprintf("iyzico %s: %s", e.Op, e.Message)
}

// IsUnavailable reports whether err is a transport-level gateway failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// AsAPIError unwraps a business-level gateway rejection, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
