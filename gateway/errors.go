package gateway

import "fmt"

// Kind classifies a failed backend call. Every non-success outcome of the
// gateway maps to exactly one of these.
type Kind string

const (
	KindValidation   Kind = "validation"   // 4xx with field errors or rejected input
	KindUnauthorized Kind = "unauthorized" // 401 / 403
	KindNotFound     Kind = "not_found"    // 404
	KindServer       Kind = "server"       // 5xx
	KindMalformed    Kind = "malformed"    // body that could not be interpreted
	KindNetwork      Kind = "network"      // transport failure, nothing reached the backend
)

// Error is the uniform failure shape returned by every gateway call.
// Message is always human-readable and safe to surface to the user.
type Error struct {
	Kind    Kind
	Status  int // HTTP status, 0 for transport failures
	Message string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// AsError returns the typed gateway error inside err, if any.
func AsError(err error) (*Error, bool) {
	for err != nil {
		if ge, ok := err.(*Error); ok {
			return ge, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}

// KindOf reports the failure kind of err, or an empty Kind when err is not
// a gateway error.
func KindOf(err error) Kind {
	if ge, ok := AsError(err); ok {
		return ge.Kind
	}
	return ""
}

// MessageOf extracts the user-facing message from err, falling back to the
// raw error text for non-gateway errors.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	if ge, ok := AsError(err); ok {
		return ge.Message
	}
	return err.Error()
}
