package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appanalysis "github.com/trustlit/trustlit-server/internal/application/analysis"
	appchat "github.com/trustlit/trustlit-server/internal/application/chat"
	appreceipt "github.com/trustlit/trustlit-server/internal/application/receipt"
	domanalysis "github.com/trustlit/trustlit-server/internal/domain/analysis"
	"github.com/trustlit/trustlit-server/internal/domain/imaging"
	domreceipt "github.com/trustlit/trustlit-server/internal/domain/receipt"
	"github.com/trustlit/trustlit-server/internal/metrics"
)

const maxUploadSize = 10 << 20 // per image file

type Router struct {
	analysis     *appanalysis.Service
	receipts     *appreceipt.Service
	assistant    *appchat.Service
	start        time.Time
	hasOpenAIKey bool
}

// Options carries the bits of config the informational endpoints report.
type Options struct {
	HasOpenAIKey bool
}

func New(analysisSvc *appanalysis.Service, receiptSvc *appreceipt.Service, assistantSvc *appchat.Service, opts Options) http.Handler {
	rt := &Router{
		analysis:     analysisSvc,
		receipts:     receiptSvc,
		assistant:    assistantSvc,
		start:        time.Now(),
		hasOpenAIKey: opts.HasOpenAIKey,
	}

	mux := chi.NewRouter()

	mux.Get("/", rt.handleRoot)
	mux.Get("/api/health", rt.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	mux.Post("/api/analyze", rt.wrap(rt.handleAnalyze))
	mux.Get("/api/analyze/test", rt.handleAnalyzeTest)
	mux.Post("/api/ai-chat", rt.wrap(rt.handleChat))
	mux.Post("/api/verify-receipt", rt.wrap(rt.handleVerifyReceipt))

	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody("Endpoint not found"))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (rt *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			status, msg := classify(err)
			writeJSON(w, status, errorBody(msg))
		}
	}
}

// classify maps the domain error taxonomy to a status code and a message
// that is safe to show. Unexpected failures never leak internals.
func classify(err error) (int, string) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, domanalysis.ErrInvalidInput),
		errors.Is(err, imaging.ErrInvalidImage),
		errors.Is(err, domreceipt.ErrInvalidInput),
		errors.Is(err, appchat.ErrEmptyMessage),
		errors.As(err, &maxBytes):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domanalysis.ErrQuotaExceeded):
		return http.StatusTooManyRequests, "API quota exceeded. Please try again later."
	case errors.Is(err, domanalysis.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid API key configuration."
	case errors.Is(err, domanalysis.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, "Analysis service temporarily unavailable. Please try again later."
	case errors.Is(err, domanalysis.ErrAnalysisFailed):
		return http.StatusBadGateway, "Failed to analyze product. Please retake the photos and try again."
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

var errBadRequest = errors.New("bad request")

type analyzeJSONBody struct {
	FrontImageBase64 string `json:"frontImageBase64"`
	BackImageBase64  string `json:"backImageBase64"`
	ProductType      string `json:"productType"`
}

// POST /api/analyze
// Accepts multipart/form-data (frontImage, backImage files) or JSON with
// base64 fields, mirroring what the mobile client already sends.
func (rt *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	metrics.AnalysisRequestsTotal.Inc()
	timer := time.Now()

	request, err := decodeAnalyzeRequest(req)
	if err != nil {
		return err
	}

	result, err := rt.analysis.Analyze(req.Context(), request)
	metrics.AnalysisDuration.Observe(time.Since(timer).Seconds())
	if err != nil {
		metrics.AnalysisFailuresTotal.Inc()
		return err
	}

	productType := request.ProductType
	if productType == "" {
		productType = string(domanalysis.ProductFood)
	}
	return writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"analysisId":  newAnalysisID(),
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
		"productType": productType,
		"data":        result,
	})
}

func decodeAnalyzeRequest(req *http.Request) (appanalysis.Request, error) {
	contentType := req.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		return decodeMultipart(req)
	}

	var body analyzeJSONBody
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return appanalysis.Request{}, fmt.Errorf("%w: invalid JSON body", errBadRequest)
	}
	if body.FrontImageBase64 == "" || body.BackImageBase64 == "" {
		return appanalysis.Request{}, fmt.Errorf("%w: both front and back product images are required", errBadRequest)
	}

	front, err := imaging.FromBase64(body.FrontImageBase64)
	if err != nil {
		return appanalysis.Request{}, fmt.Errorf("front image: %w", err)
	}
	back, err := imaging.FromBase64(body.BackImageBase64)
	if err != nil {
		return appanalysis.Request{}, fmt.Errorf("back image: %w", err)
	}

	return appanalysis.Request{
		FrontImage:  front.Data(),
		BackImage:   back.Data(),
		ProductType: body.ProductType,
	}, nil
}

func decodeMultipart(req *http.Request) (appanalysis.Request, error) {
	if err := req.ParseMultipartForm(maxUploadSize); err != nil {
		return appanalysis.Request{}, fmt.Errorf("%w: invalid multipart form", errBadRequest)
	}

	front, err := readFormFile(req, "frontImage")
	if err != nil {
		return appanalysis.Request{}, err
	}
	back, err := readFormFile(req, "backImage")
	if err != nil {
		return appanalysis.Request{}, err
	}

	return appanalysis.Request{
		FrontImage:  front,
		BackImage:   back,
		ProductType: req.FormValue("productType"),
	}, nil
}

func readFormFile(req *http.Request, field string) ([]byte, error) {
	file, header, err := req.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%w: both front and back product images are required", errBadRequest)
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		return nil, fmt.Errorf("%w: %s exceeds the 10MB limit", errBadRequest, field)
	}

	buf, err := io.ReadAll(io.LimitReader(file, maxUploadSize))
	if err != nil {
		return nil, fmt.Errorf("%w: could not read %s", errBadRequest, field)
	}
	return buf, nil
}

func newAnalysisID() string {
	return fmt.Sprintf("analysis_%d_%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// GET /api/analyze/test
func (rt *Router) handleAnalyzeTest(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Analyze endpoint is working",
		"hasApiKey": rt.hasOpenAIKey,
	})
}

type chatBody struct {
	Message string `json:"message"`
}

// POST /api/ai-chat
func (rt *Router) handleChat(w http.ResponseWriter, req *http.Request) error {
	metrics.ChatRequestsTotal.Inc()

	var body chatBody
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return fmt.Errorf("%w: invalid JSON body", errBadRequest)
	}

	reply, err := rt.assistant.Ask(req.Context(), body.Message)
	if err != nil {
		return err
	}

	return writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"response": reply,
	})
}

type verifyReceiptBody struct {
	ReceiptData string `json:"receiptData"`
	ProductID   string `json:"productId"`
	Platform    string `json:"platform"`
}

// POST /api/verify-receipt
// The response contract predates the wrap() envelope: vendor rejections are
// 200s with valid=false so the client can distinguish "Apple said no" from
// "the backend broke".
func (rt *Router) handleVerifyReceipt(w http.ResponseWriter, req *http.Request) error {
	metrics.ReceiptVerificationsTotal.Inc()

	var body verifyReceiptBody
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return writeJSON(w, http.StatusBadRequest, map[string]any{
			"valid": false,
			"error": "invalid JSON body",
		})
	}

	entitlement, err := rt.receipts.Verify(req.Context(), domreceipt.Payload{
		ReceiptData: body.ReceiptData,
		ProductID:   body.ProductID,
		Platform:    domreceipt.Platform(body.Platform),
	})
	if err != nil {
		metrics.ReceiptInvalidTotal.Inc()
		return rt.writeReceiptError(w, err)
	}

	if !entitlement.Valid {
		metrics.ReceiptInvalidTotal.Inc()
	}
	return writeJSON(w, http.StatusOK, entitlement)
}

func (rt *Router) writeReceiptError(w http.ResponseWriter, err error) error {
	var unknown *domreceipt.UnknownStatusError
	status := http.StatusOK
	msg := err.Error()

	switch {
	case errors.Is(err, domreceipt.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domreceipt.ErrConfigMissing):
		status = http.StatusInternalServerError
		msg = "Server configuration error"
	case errors.Is(err, domreceipt.ErrTransport),
		errors.Is(err, domreceipt.ErrUpstreamUnavailable):
		status = http.StatusBadGateway
		msg = "Failed to verify with the App Store"
	case errors.As(err, &unknown),
		errors.Is(err, domreceipt.ErrMalformed),
		errors.Is(err, domreceipt.ErrUnauthenticated),
		errors.Is(err, domreceipt.ErrConfigMismatch),
		errors.Is(err, domreceipt.ErrWrongEnvironment):
		// definitive vendor rejection: 200 with valid=false
	default:
		status = http.StatusInternalServerError
		msg = "Internal server error"
	}

	return writeJSON(w, status, map[string]any{
		"valid": false,
		"error": msg,
	})
}

// GET /api/health
func (rt *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(rt.start).Seconds(),
		"config": map[string]any{
			"aiProvider":   "openai",
			"hasOpenAIKey": rt.hasOpenAIKey,
		},
	})
}

// GET /
func (rt *Router) handleRoot(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "TrustLit API",
		"version": "1.0.0",
		"status":  "running",
		"endpoints": map[string]string{
			"health":        "/api/health",
			"analyze":       "/api/analyze (POST)",
			"aiChat":        "/api/ai-chat (POST)",
			"verifyReceipt": "/api/verify-receipt (POST)",
		},
	})
}

func errorBody(msg string) map[string]any {
	return map[string]any{"success": false, "error": msg}
}

func writeJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}
