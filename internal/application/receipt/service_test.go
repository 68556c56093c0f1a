package receipt

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/trustlit/trustlit-server/internal/domain/receipt"
)

const lifetimeID = "com.trustlit.lifetime"

type frozenClock struct{ t time.Time }

func (c frozenClock) Now() time.Time { return c.t }

type vendorCall struct {
	Env         domain.Environment
	ReceiptData string
}

// scriptedVendor serves a canned response per environment and records calls.
type scriptedVendor struct {
	byEnv map[domain.Environment]*domain.VendorResponse
	err   error
	calls []vendorCall
}

func (v *scriptedVendor) Verify(_ context.Context, env domain.Environment, receiptData string) (*domain.VendorResponse, error) {
	v.calls = append(v.calls, vendorCall{Env: env, ReceiptData: receiptData})
	if v.err != nil {
		return nil, v.err
	}
	resp, ok := v.byEnv[env]
	if !ok {
		return nil, errors.New("no scripted response for environment")
	}
	return resp, nil
}

func newService(vendor domain.VendorClient, now time.Time) *Service {
	return NewService(vendor, frozenClock{t: now}, lifetimeID)
}

func payload() domain.Payload {
	return domain.Payload{ReceiptData: "b64-receipt", ProductID: "com.trustlit.monthly", Platform: domain.PlatformIOS}
}

func TestVerify_InvalidInput(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		p    domain.Payload
	}{
		{"missing receipt data", domain.Payload{ProductID: "x", Platform: domain.PlatformIOS}},
		{"unsupported platform", domain.Payload{ReceiptData: "abc", ProductID: "x", Platform: "android"}},
		{"empty platform", domain.Payload{ReceiptData: "abc", ProductID: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vendor := &scriptedVendor{}
			svc := newService(vendor, now)
			_, err := svc.Verify(context.Background(), tt.p)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("Verify() error = %v, want ErrInvalidInput", err)
			}
			if len(vendor.calls) != 0 {
				t.Errorf("vendor calls = %d, want 0", len(vendor.calls))
			}
		})
	}
}

func TestVerify_ActiveSubscription(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	expires := now.Add(24 * time.Hour)
	vendor := &scriptedVendor{byEnv: map[domain.Environment]*domain.VendorResponse{
		domain.EnvProduction: {
			Status:      domain.StatusOK,
			Environment: domain.EnvProduction,
			Transactions: []domain.Transaction{
				{ProductID: "com.trustlit.monthly", PurchaseDateMs: now.Add(-time.Hour).UnixMilli(), ExpiresDateMs: expires.UnixMilli()},
			},
		},
	}}
	svc := newService(vendor, now)

	ent, err := svc.Verify(context.Background(), payload())
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !ent.Valid || ent.Status != domain.StatusActive {
		t.Errorf("entitlement = %+v, want valid/active", ent)
	}
	if ent.ExpiresDate == nil || !ent.ExpiresDate.Equal(expires) {
		t.Errorf("ExpiresDate = %v, want %v", ent.ExpiresDate, expires)
	}
	if len(vendor.calls) != 1 || vendor.calls[0].Env != domain.EnvProduction {
		t.Errorf("vendor calls = %+v, want one production call", vendor.calls)
	}
}

func TestVerify_SandboxRedirect(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	vendor := &scriptedVendor{byEnv: map[domain.Environment]*domain.VendorResponse{
		domain.EnvProduction: {Status: domain.StatusSandboxOnProduction},
		domain.EnvSandbox: {
			Status:      domain.StatusOK,
			Environment: domain.EnvSandbox,
			Transactions: []domain.Transaction{
				{ProductID: "com.trustlit.monthly", PurchaseDateMs: 1, ExpiresDateMs: now.Add(time.Hour).UnixMilli()},
			},
		},
	}}
	svc := newService(vendor, now)

	ent, err := svc.Verify(context.Background(), payload())
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if len(vendor.calls) != 2 {
		t.Fatalf("vendor calls = %d, want 2", len(vendor.calls))
	}
	if vendor.calls[0].Env != domain.EnvProduction || vendor.calls[1].Env != domain.EnvSandbox {
		t.Errorf("call order = %+v", vendor.calls)
	}
	if vendor.calls[0].ReceiptData != vendor.calls[1].ReceiptData {
		t.Error("redirect must resubmit the identical payload")
	}
	if !ent.Valid {
		t.Errorf("entitlement = %+v, want valid (from sandbox response)", ent)
	}
}

func TestVerify_StatusTaxonomy(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		code int
		want error
	}{
		{21000, domain.ErrMalformed},
		{21002, domain.ErrMalformed},
		{21003, domain.ErrUnauthenticated},
		{21004, domain.ErrConfigMismatch},
		{21005, domain.ErrUpstreamUnavailable},
		{21008, domain.ErrWrongEnvironment},
	}
	for _, tt := range tests {
		vendor := &scriptedVendor{byEnv: map[domain.Environment]*domain.VendorResponse{
			domain.EnvProduction: {Status: tt.code},
		}}
		svc := newService(vendor, now)
		_, err := svc.Verify(context.Background(), payload())
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: error = %v, want %v", tt.code, err, tt.want)
		}
	}

	t.Run("unknown status keeps its code", func(t *testing.T) {
		vendor := &scriptedVendor{byEnv: map[domain.Environment]*domain.VendorResponse{
			domain.EnvProduction: {Status: 21199},
		}}
		svc := newService(vendor, now)
		_, err := svc.Verify(context.Background(), payload())
		var unknown *domain.UnknownStatusError
		if !errors.As(err, &unknown) || unknown.Code != 21199 {
			t.Errorf("error = %v, want UnknownStatusError{21199}", err)
		}
	})
}

func TestVerify_ExpiredStatusStillComputesEntitlement(t *testing.T) {
	// 21006 is valid-but-expired: no terminal error, the entitlement reports
	// expired from the transaction itself.
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	vendor := &scriptedVendor{byEnv: map[domain.Environment]*domain.VendorResponse{
		domain.EnvProduction: {
			Status: domain.StatusSubscriptionExpired,
			Transactions: []domain.Transaction{
				{ProductID: "com.trustlit.monthly", PurchaseDateMs: 1, ExpiresDateMs: now.Add(-time.Hour).UnixMilli()},
			},
		},
	}}
	svc := newService(vendor, now)

	ent, err := svc.Verify(context.Background(), payload())
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if ent.Valid || ent.Status != domain.StatusExpired {
		t.Errorf("entitlement = %+v, want invalid/expired", ent)
	}
}

func TestVerify_LatestTransactionWins(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	t1 := now.Add(-48 * time.Hour)
	t2 := now.Add(-1 * time.Hour)
	vendor := &scriptedVendor{byEnv: map[domain.Environment]*domain.VendorResponse{
		domain.EnvProduction: {
			Status: domain.StatusOK,
			Transactions: []domain.Transaction{
				// Older purchase already expired, newer one still active.
				{ProductID: "com.trustlit.monthly", PurchaseDateMs: t1.UnixMilli(), ExpiresDateMs: now.Add(-24 * time.Hour).UnixMilli()},
				{ProductID: "com.trustlit.monthly", PurchaseDateMs: t2.UnixMilli(), ExpiresDateMs: now.Add(24 * time.Hour).UnixMilli()},
				{ProductID: "com.other.product", PurchaseDateMs: now.UnixMilli(), ExpiresDateMs: now.Add(48 * time.Hour).UnixMilli()},
			},
		},
	}}
	svc := newService(vendor, now)

	ent, err := svc.Verify(context.Background(), payload())
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !ent.Valid || ent.Status != domain.StatusActive {
		t.Errorf("entitlement = %+v, want valid/active from the latest transaction", ent)
	}
}

func TestVerify_LifetimeProduct(t *testing.T) {
	// Valid regardless of current time, with no expiry date.
	now := time.Date(2035, 1, 1, 0, 0, 0, 0, time.UTC)
	vendor := &scriptedVendor{byEnv: map[domain.Environment]*domain.VendorResponse{
		domain.EnvProduction: {
			Status: domain.StatusOK,
			Transactions: []domain.Transaction{
				{ProductID: lifetimeID, PurchaseDateMs: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()},
			},
		},
	}}
	svc := newService(vendor, now)

	p := payload()
	p.ProductID = lifetimeID
	ent, err := svc.Verify(context.Background(), p)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if !ent.Valid || ent.Status != domain.StatusActive {
		t.Errorf("entitlement = %+v, want valid/active", ent)
	}
	if ent.ExpiresDate != nil {
		t.Errorf("ExpiresDate = %v, want nil", ent.ExpiresDate)
	}
	if ent.IsTrialPeriod {
		t.Error("lifetime purchase must not report a trial period")
	}
}

func TestVerify_ExpiredSubscription(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	vendor := &scriptedVendor{byEnv: map[domain.Environment]*domain.VendorResponse{
		domain.EnvProduction: {
			Status: domain.StatusOK,
			Transactions: []domain.Transaction{
				{ProductID: "com.trustlit.monthly", PurchaseDateMs: 1, ExpiresDateMs: now.Add(-time.Minute).UnixMilli()},
			},
		},
	}}
	svc := newService(vendor, now)

	ent, err := svc.Verify(context.Background(), payload())
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if ent.Valid || ent.Status != domain.StatusExpired {
		t.Errorf("entitlement = %+v, want invalid/expired", ent)
	}
}

func TestVerify_MissingExpiryFailsClosed(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	vendor := &scriptedVendor{byEnv: map[domain.Environment]*domain.VendorResponse{
		domain.EnvProduction: {
			Status: domain.StatusOK,
			Transactions: []domain.Transaction{
				{ProductID: "com.trustlit.monthly", PurchaseDateMs: 1},
			},
		},
	}}
	svc := newService(vendor, now)

	ent, err := svc.Verify(context.Background(), payload())
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if ent.Valid || ent.Status != domain.StatusExpired {
		t.Errorf("entitlement = %+v, want invalid/expired", ent)
	}
}

func TestVerify_NoPurchases(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("empty transaction list", func(t *testing.T) {
		vendor := &scriptedVendor{byEnv: map[domain.Environment]*domain.VendorResponse{
			domain.EnvProduction: {Status: domain.StatusOK},
		}}
		svc := newService(vendor, now)
		ent, err := svc.Verify(context.Background(), payload())
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if ent.Valid || ent.Status != domain.StatusNoPurchases {
			t.Errorf("entitlement = %+v, want no_purchases", ent)
		}
	})

	t.Run("no transaction for the requested product", func(t *testing.T) {
		vendor := &scriptedVendor{byEnv: map[domain.Environment]*domain.VendorResponse{
			domain.EnvProduction: {
				Status: domain.StatusOK,
				Transactions: []domain.Transaction{
					{ProductID: "com.other.product", PurchaseDateMs: 1, ExpiresDateMs: now.Add(time.Hour).UnixMilli()},
				},
			},
		}}
		svc := newService(vendor, now)
		ent, err := svc.Verify(context.Background(), payload())
		if err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
		if ent.Valid || ent.Status != domain.StatusProductNotFound {
			t.Errorf("entitlement = %+v, want product_not_found", ent)
		}
	})
}

func TestVerify_TrialFlags(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		trial bool
		intro bool
		want  bool
	}{
		{"trial period", true, false, true},
		{"intro offer counts as trial", false, true, true},
		{"neither", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vendor := &scriptedVendor{byEnv: map[domain.Environment]*domain.VendorResponse{
				domain.EnvProduction: {
					Status: domain.StatusOK,
					Transactions: []domain.Transaction{
						{
							ProductID:          "com.trustlit.monthly",
							PurchaseDateMs:     1,
							ExpiresDateMs:      now.Add(time.Hour).UnixMilli(),
							IsTrialPeriod:      tt.trial,
							IsIntroOfferPeriod: tt.intro,
						},
					},
				},
			}}
			svc := newService(vendor, now)
			ent, err := svc.Verify(context.Background(), payload())
			if err != nil {
				t.Fatalf("Verify() error = %v", err)
			}
			if ent.IsTrialPeriod != tt.want {
				t.Errorf("IsTrialPeriod = %v, want %v", ent.IsTrialPeriod, tt.want)
			}
		})
	}
}

func TestVerify_TransportFailure(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	vendor := &scriptedVendor{err: domain.ErrTransport}
	svc := newService(vendor, now)

	_, err := svc.Verify(context.Background(), payload())
	if !errors.Is(err, domain.ErrTransport) {
		t.Errorf("Verify() error = %v, want ErrTransport", err)
	}
}
