package gateway

import "errors"

// ErrClosed is returned when the backend connection is gone
var ErrClosed = errors.New("backend connection closed")

// BackendError is a failure reported by the backend itself
type BackendError struct {
	Command string
	Message string
}

// Error returns the backend's message verbatim so it can be shown as is
func (e *BackendError) Error() string {
	if e.Message == "" {
		return e.Command + " failed"
	}
	return e.Message
}
