package receipt

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput indicates a caller error: missing receipt data or an
	// unsupported platform. No vendor call is made.
	ErrInvalidInput = errors.New("invalid receipt input")

	// ErrConfigMissing indicates the shared verification secret is absent.
	// This is a server configuration failure, not a per-request one.
	ErrConfigMissing = errors.New("verification secret not configured")

	// ErrTransport indicates the vendor could not be reached at all, as
	// opposed to a definitive vendor rejection.
	ErrTransport = errors.New("failed to reach app store")

	// Vendor status-code taxonomy.
	ErrMalformed           = errors.New("app store could not read the receipt")
	ErrUnauthenticated     = errors.New("receipt could not be authenticated")
	ErrConfigMismatch      = errors.New("shared secret mismatch")
	ErrUpstreamUnavailable = errors.New("app store server unavailable")
	ErrWrongEnvironment    = errors.New("production receipt sent to sandbox")
)

// UnknownStatusError preserves an unrecognized vendor status code.
type UnknownStatusError struct {
	Code int
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown app store status: %d", e.Code)
}
