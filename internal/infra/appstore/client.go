package appstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	domain "github.com/trustlit/trustlit-server/internal/domain/receipt"
)

// Apple verifyReceipt endpoints.
const (
	ProductionURL = "https://buy.itunes.apple.com/verifyReceipt"
	SandboxURL    = "https://sandbox.itunes.apple.com/verifyReceipt"
)

const requestTimeout = 10 * time.Second

// Client posts receipts to Apple's verification service. The shared secret
// never leaves this package except inside the request body.
type Client struct {
	httpClient    *http.Client
	sharedSecret  string
	productionURL string
	sandboxURL    string
}

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithEndpoints overrides both vendor URLs.
func WithEndpoints(production, sandbox string) Option {
	return func(c *Client) {
		if production != "" {
			c.productionURL = production
		}
		if sandbox != "" {
			c.sandboxURL = sandbox
		}
	}
}

func NewClient(sharedSecret string, opts ...Option) (*Client, error) {
	if sharedSecret == "" {
		return nil, domain.ErrConfigMissing
	}
	c := &Client{
		httpClient:    &http.Client{Timeout: requestTimeout},
		sharedSecret:  sharedSecret,
		productionURL: ProductionURL,
		sandboxURL:    SandboxURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type verifyRequest struct {
	ReceiptData            string `json:"receipt-data"`
	Password               string `json:"password"`
	ExcludeOldTransactions bool   `json:"exclude-old-transactions"`
}

// Apple's numeric transaction fields arrive as strings on the wire.
type wireTransaction struct {
	ProductID            string `json:"product_id"`
	PurchaseDateMs       string `json:"purchase_date_ms"`
	ExpiresDateMs        string `json:"expires_date_ms"`
	IsTrialPeriod        string `json:"is_trial_period"`
	IsInIntroOfferPeriod string `json:"is_in_intro_offer_period"`
}

type verifyResponse struct {
	Status            int               `json:"status"`
	Environment       string            `json:"environment"`
	LatestReceiptInfo []wireTransaction `json:"latest_receipt_info"`
	Receipt           *struct {
		InApp []wireTransaction `json:"in_app"`
	} `json:"receipt"`
}

// Verify submits the receipt to one environment and parses the verdict.
func (c *Client) Verify(ctx context.Context, env domain.Environment, receiptData string) (*domain.VendorResponse, error) {
	url := c.productionURL
	if env == domain.EnvSandbox {
		url = c.sandboxURL
	}

	body, err := json.Marshal(verifyRequest{
		ReceiptData:            receiptData,
		Password:               c.sharedSecret,
		ExcludeOldTransactions: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", domain.ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected http status %d", domain.ErrTransport, resp.StatusCode)
	}

	var wire verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrTransport, err)
	}

	return &domain.VendorResponse{
		Status:       wire.Status,
		Environment:  parseEnvironment(wire.Environment, env),
		Transactions: parseTransactions(wire),
	}, nil
}

func parseTransactions(wire verifyResponse) []domain.Transaction {
	rows := wire.LatestReceiptInfo
	if len(rows) == 0 && wire.Receipt != nil {
		rows = wire.Receipt.InApp
	}
	txs := make([]domain.Transaction, 0, len(rows))
	for _, row := range rows {
		txs = append(txs, domain.Transaction{
			ProductID:          row.ProductID,
			PurchaseDateMs:     parseMs(row.PurchaseDateMs),
			ExpiresDateMs:      parseMs(row.ExpiresDateMs),
			IsTrialPeriod:      row.IsTrialPeriod == "true",
			IsIntroOfferPeriod: row.IsInIntroOfferPeriod == "true",
		})
	}
	return txs
}

func parseMs(s string) int64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseEnvironment(s string, fallback domain.Environment) domain.Environment {
	switch strings.ToLower(s) {
	case "production":
		return domain.EnvProduction
	case "sandbox":
		return domain.EnvSandbox
	default:
		return fallback
	}
}
