package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	domain "github.com/trustlit/trustlit-server/internal/domain/analysis"
	"github.com/trustlit/trustlit-server/internal/domain/imaging"
	"github.com/trustlit/trustlit-server/internal/metrics"
)

const defaultBackoff = time.Second

// Request is one analysis submission. Both images are required; ProductType
// defaults to food when empty.
type Request struct {
	FrontImage  []byte
	BackImage   []byte
	ProductType string
}

// Service drives the escalation ladder against the vision collaborator.
// Stateless across invocations; safe for concurrent use.
type Service struct {
	client    domain.VisionClient
	ladder    domain.Ladder
	isRefusal func(string) bool
	backoff   time.Duration
}

type Option func(*Service)

// WithRefusalDetector swaps the refusal predicate.
func WithRefusalDetector(f func(string) bool) Option {
	return func(s *Service) { s.isRefusal = f }
}

// WithBackoff overrides the fixed wait between ladder attempts.
func WithBackoff(d time.Duration) Option {
	return func(s *Service) { s.backoff = d }
}

func NewService(client domain.VisionClient, ladder domain.Ladder, opts ...Option) *Service {
	s := &Service{
		client:    client,
		ladder:    ladder,
		isRefusal: IsRefusal,
		backoff:   defaultBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze validates the request, then walks the attempt ladder strictly in
// order: first well-formed result wins, every soft or hard failure moves on
// to the next rung after a fixed backoff. When the ladder is exhausted the
// last failure decides the error class.
func (s *Service) Analyze(ctx context.Context, req Request) (*domain.Result, error) {
	front, err := imaging.New(req.FrontImage)
	if err != nil {
		return nil, fmt.Errorf("%w: front image: %v", domain.ErrInvalidInput, err)
	}
	back, err := imaging.New(req.BackImage)
	if err != nil {
		return nil, fmt.Errorf("%w: back image: %v", domain.ErrInvalidInput, err)
	}
	productType, err := domain.ParseProductType(req.ProductType)
	if err != nil {
		return nil, err
	}

	attempts := s.ladder(productType)
	var lastErr error
	for i, attempt := range attempts {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.backoff):
			}
		}

		metrics.AnalysisAttemptsTotal.Inc()
		raw, err := s.client.Complete(ctx, attempt, front, back)
		if err != nil {
			log.Printf("analysis attempt %d: inference error: %v", attempt.Ordinal, err)
			lastErr = err
			continue
		}

		if s.isRefusal(raw) {
			log.Printf("analysis attempt %d: refusal", attempt.Ordinal)
			metrics.AnalysisRefusalsTotal.Inc()
			lastErr = errRefusal
			continue
		}

		result, err := decodeResult(raw)
		if err != nil {
			log.Printf("analysis attempt %d: %v", attempt.Ordinal, err)
			lastErr = err
			continue
		}

		return result, nil
	}

	// Hard collaborator failures keep their class so the caller can retry;
	// refusals and parse failures collapse into AnalysisFailed.
	switch {
	case errors.Is(lastErr, domain.ErrQuotaExceeded),
		errors.Is(lastErr, domain.ErrInvalidCredentials),
		errors.Is(lastErr, domain.ErrUpstreamUnavailable):
		return nil, lastErr
	default:
		return nil, fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, lastErr)
	}
}

var errRefusal = errors.New("model refused the request")
