package receipt

import "time"

// Platform enum. Only iOS today; the field exists so Android can be added
// without changing the wire contract.
type Platform string

const PlatformIOS Platform = "ios"

// Environment enum for the vendor's two verification endpoints.
type Environment string

const (
	EnvProduction Environment = "production"
	EnvSandbox    Environment = "sandbox"
)

// App Store verifyReceipt status codes.
// https://developer.apple.com/documentation/appstorereceipts/status
const (
	StatusOK                  = 0
	StatusUnreadable          = 21000
	StatusMalformedData       = 21002
	StatusNotAuthenticated    = 21003
	StatusSecretMismatch      = 21004
	StatusServerUnavailable   = 21005
	StatusSubscriptionExpired = 21006
	StatusSandboxOnProduction = 21007
	StatusProductionOnSandbox = 21008
)

// Payload is the client-submitted receipt. Opaque except for presence checks.
type Payload struct {
	ReceiptData string
	ProductID   string
	Platform    Platform
}

// Transaction is one purchase row from the vendor response, already parsed
// out of the vendor's string-typed wire fields.
type Transaction struct {
	ProductID          string
	PurchaseDateMs     int64
	ExpiresDateMs      int64 // 0 when the vendor omitted it
	IsTrialPeriod      bool
	IsIntroOfferPeriod bool
}

// VendorResponse is the vendor verdict for one verification call.
type VendorResponse struct {
	Status       int
	Environment  Environment
	Transactions []Transaction
}

// SubscriptionStatus enum
type SubscriptionStatus string

const (
	StatusActive          SubscriptionStatus = "active"
	StatusExpired         SubscriptionStatus = "expired"
	StatusNoPurchases     SubscriptionStatus = "no_purchases"
	StatusProductNotFound SubscriptionStatus = "product_not_found"
)

// Entitlement is the computed access right for one product. Valid is true
// iff Status is active. Recomputed on every call, never cached.
type Entitlement struct {
	Valid         bool               `json:"valid"`
	ProductID     string             `json:"productId"`
	Status        SubscriptionStatus `json:"subscriptionStatus"`
	ExpiresDate   *time.Time         `json:"expiresDate"`
	IsTrialPeriod bool               `json:"isTrialPeriod"`
}
