package analysis

import "errors"

// ErrInvalidInput indicates a caller error (missing or malformed images,
// unknown product type). Never retried.
var ErrInvalidInput = errors.New("invalid analysis input")

// ErrQuotaExceeded indicates the AI provider returned a quota/limit error
// (HTTP 429 or similar).
var ErrQuotaExceeded = errors.New("ai quota exceeded")

// ErrInvalidCredentials indicates the AI provider rejected the configured key.
var ErrInvalidCredentials = errors.New("invalid ai credentials")

// ErrUpstreamUnavailable indicates the AI provider could not be reached or
// returned a transport-level failure.
var ErrUpstreamUnavailable = errors.New("inference service unavailable")

// ErrAnalysisFailed indicates every ladder attempt was exhausted on refusals
// or unparseable output.
var ErrAnalysisFailed = errors.New("analysis failed")
