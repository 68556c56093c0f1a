package receipt

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/trustlit/trustlit-server/internal/application"
	domain "github.com/trustlit/trustlit-server/internal/domain/receipt"
)

// Service validates receipts against the vendor and computes entitlement.
// Stateless; the vendor is the sole source of truth and nothing is cached.
type Service struct {
	Vendor            domain.VendorClient
	Clock             application.Clock
	LifetimeProductID string
}

func NewService(vendor domain.VendorClient, clock application.Clock, lifetimeProductID string) *Service {
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &Service{Vendor: vendor, Clock: clock, LifetimeProductID: lifetimeProductID}
}

// Verify submits the receipt to the production endpoint, follows the one-shot
// sandbox redirect when the vendor says the receipt belongs there, maps the
// vendor status taxonomy, and computes entitlement for the requested product.
func (s *Service) Verify(ctx context.Context, p domain.Payload) (*domain.Entitlement, error) {
	if p.ReceiptData == "" {
		return nil, fmt.Errorf("%w: missing receipt data", domain.ErrInvalidInput)
	}
	if p.Platform != domain.PlatformIOS {
		return nil, fmt.Errorf("%w: unsupported platform %q", domain.ErrInvalidInput, p.Platform)
	}

	resp, err := s.Vendor.Verify(ctx, domain.EnvProduction, p.ReceiptData)
	if err != nil {
		return nil, err
	}

	// 21007: receipt belongs to the sandbox environment. Resubmit there
	// exactly once and use that response instead.
	if resp.Status == domain.StatusSandboxOnProduction {
		resp, err = s.Vendor.Verify(ctx, domain.EnvSandbox, p.ReceiptData)
		if err != nil {
			return nil, err
		}
	}

	if err := statusError(resp.Status); err != nil {
		return nil, err
	}

	return s.entitlement(resp, p.ProductID), nil
}

// Vendor status → terminal error. 0 proceeds; 21006 (expired) also proceeds
// so entitlement computation can report expired with the transaction detail.
var statusErrors = map[int]error{
	domain.StatusUnreadable:          domain.ErrMalformed,
	domain.StatusMalformedData:       domain.ErrMalformed,
	domain.StatusNotAuthenticated:    domain.ErrUnauthenticated,
	domain.StatusSecretMismatch:      domain.ErrConfigMismatch,
	domain.StatusServerUnavailable:   domain.ErrUpstreamUnavailable,
	domain.StatusProductionOnSandbox: domain.ErrWrongEnvironment,
}

func statusError(code int) error {
	switch code {
	case domain.StatusOK, domain.StatusSubscriptionExpired:
		return nil
	}
	if err, ok := statusErrors[code]; ok {
		return err
	}
	return &domain.UnknownStatusError{Code: code}
}

func (s *Service) entitlement(resp *domain.VendorResponse, productID string) *domain.Entitlement {
	if len(resp.Transactions) == 0 {
		return &domain.Entitlement{Valid: false, ProductID: productID, Status: domain.StatusNoPurchases}
	}

	var candidates []domain.Transaction
	for _, tx := range resp.Transactions {
		if tx.ProductID == productID {
			candidates = append(candidates, tx)
		}
	}
	if len(candidates) == 0 {
		return &domain.Entitlement{Valid: false, ProductID: productID, Status: domain.StatusProductNotFound}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].PurchaseDateMs > candidates[j].PurchaseDateMs
	})
	latest := candidates[0]

	// A lifetime product never expires: any matching transaction grants it.
	if productID != "" && productID == s.LifetimeProductID {
		return &domain.Entitlement{
			Valid:     true,
			ProductID: productID,
			Status:    domain.StatusActive,
		}
	}

	// Subscriptions without an expiry date fail closed as expired.
	if latest.ExpiresDateMs <= 0 {
		return &domain.Entitlement{
			Valid:         false,
			ProductID:     productID,
			Status:        domain.StatusExpired,
			IsTrialPeriod: latest.IsTrialPeriod || latest.IsIntroOfferPeriod,
		}
	}

	expires := time.UnixMilli(latest.ExpiresDateMs).UTC()
	active := !s.Clock.Now().After(expires)
	status := domain.StatusExpired
	if active {
		status = domain.StatusActive
	}
	return &domain.Entitlement{
		Valid:         active,
		ProductID:     productID,
		Status:        status,
		ExpiresDate:   &expires,
		IsTrialPeriod: latest.IsTrialPeriod || latest.IsIntroOfferPeriod,
	}
}
