package receipt

import "context"

// VendorClient submits a receipt to one vendor environment and returns the
// parsed verdict. Implementations hold the shared secret and return
// ErrTransport (wrapped) when the vendor cannot be reached; a vendor response
// with a non-zero status is still a successful call.
type VendorClient interface {
	Verify(ctx context.Context, env Environment, receiptData string) (*VendorResponse, error)
}
