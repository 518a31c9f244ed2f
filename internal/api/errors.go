package api

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a transport failure.
type Kind int

const (
	// KindNetwork means the backend was unreachable or the request timed out.
	KindNetwork Kind = iota
	// KindValidation is a 4xx response; Detail carries the server's message.
	KindValidation
	// KindServer is a 5xx response.
	KindServer
	// KindDecode means the response body did not match the expected shape.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is the normalized failure returned by every client operation.
//
// For validation errors the Detail field is the server-authored message and
// must be shown to the user unchanged; callers should not substitute their
// own wording for it.
type Error struct {
	Kind   Kind
	Status int    // HTTP status, 0 for network/decode failures
	Op     string // operation name, e.g. "query"
	Detail string // server-supplied detail for 4xx responses
	Err    error  // underlying cause, if any
}

// Error renders the user-facing message. Validation details are returned
// verbatim; server-side failures get a generic message with the detail left
// in the struct for diagnostics.
func (e *Error) Error() string {
	switch {
	case e.Kind == KindValidation && e.Detail != "":
		return e.Detail
	case e.Kind == KindServer:
		return fmt.Sprintf("%s: backend error (status %d)", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: backend returned status %d", e.Op, e.Status)
	default:
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// IsNetwork reports whether err is a transport-level failure the user may
// retry manually.
func IsNetwork(err error) bool { return isKind(err, KindNetwork) }

// IsValidation reports whether err is a 4xx rejection.
func IsValidation(err error) bool { return isKind(err, KindValidation) }

// IsServer reports whether err is a 5xx failure.
func IsServer(err error) bool { return isKind(err, KindServer) }

// IsDecode reports whether err is a malformed-response failure. Displayed
// like a server error but kept distinct for diagnostics.
func IsDecode(err error) bool { return isKind(err, KindDecode) }

// IsModelMismatch reports whether err is the backend's rejection of a query
// or ingest whose embedding model does not match the store's indexing model.
// The backend phrases this two ways: "reset the index" on the default-store
// path and a "dimension ... does not match" message on named stores.
func IsModelMismatch(err error) bool {
	var e *Error
	if !errors.As(err, &e) || e.Kind != KindValidation {
		return false
	}
	detail := strings.ToLower(e.Detail)
	return strings.Contains(detail, "reset the index") ||
		(strings.Contains(detail, "dimension") && strings.Contains(detail, "does not match"))
}

// Detail returns the server-supplied detail message, or "" if err carries none.
func Detail(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return ""
}

func isKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
