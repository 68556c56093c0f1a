package analysis

import (
	"context"

	"github.com/trustlit/trustlit-server/internal/domain/imaging"
)

// VisionClient is the multimodal inference collaborator: one prompt pair plus
// the front/back label photos in, free-form text out. Implementations map
// provider errors onto ErrQuotaExceeded, ErrInvalidCredentials or
// ErrUpstreamUnavailable.
type VisionClient interface {
	Complete(ctx context.Context, attempt Attempt, front, back *imaging.Image) (string, error)
}
