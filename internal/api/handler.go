package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/eugenenazirov/deployconf/internal/record"
	"github.com/eugenenazirov/deployconf/internal/resolver"
	"github.com/eugenenazirov/deployconf/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

const maxRequestBodyBytes = 1 << 16

// Handler serves the resolved configuration record and ad-hoc resolutions.
type Handler struct {
	storage  storage.Storage
	defaults resolver.Resolver

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithResolverDefaults sets the policy and parameters used when a resolve
// request leaves them out.
func WithResolverDefaults(r resolver.Resolver) HandlerOption {
	return func(h *Handler) {
		h.defaults = r
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		storage:  store,
		defaults: resolver.New(resolver.PolicyEnvironmentConditional),
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	format, err := record.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid format", err.Error(), "Use one of: "+formatNames())
		return
	}

	rec, err := h.storage.GetRecord()
	if err != nil {
		if errors.Is(err, storage.ErrNotResolved) {
			writeError(w, http.StatusServiceUnavailable, "Not ready", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	if format == record.FormatJSON {
		writeJSON(w, http.StatusOK, configResponse{
			Record:     rec,
			ResolvedAt: h.storage.ResolvedAt(),
		})
		return
	}

	var buf bytes.Buffer
	if err := record.Encode(&buf, rec, format); err != nil {
		writeInternalError(w, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, policiesResponse{
		Policies: policyNameList(),
		Default:  h.defaults.Policy.String(),
	})
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	res := h.defaults
	if strings.TrimSpace(req.Policy) != "" {
		policy, err := resolver.ParsePolicy(req.Policy)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid policy", err.Error(), "Use one of: "+policyNames())
			return
		}
		res.Policy = policy
	}
	if req.FixedPath != "" {
		res.FixedPath = req.FixedPath
	}
	if req.ProductionTag != "" {
		res.ProductionTag = req.ProductionTag
	}

	var in resolver.Inputs
	if req.Override != nil {
		in.Override = *req.Override
	}
	if req.Environment != nil {
		in.Mode = *req.Environment
		in.ModeSet = true
	}

	writeJSON(w, http.StatusOK, resolveResponse{
		Policy:  res.Policy.String(),
		BaseURL: res.Resolve(in),
	})
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

func policyNameList() []string {
	policies := resolver.Policies()
	names := make([]string, 0, len(policies))
	for _, p := range policies {
		names = append(names, p.String())
	}
	return names
}

func policyNames() string {
	return strings.Join(policyNameList(), ", ")
}

func formatNames() string {
	formats := record.Formats()
	names := make([]string, 0, len(formats))
	for _, f := range formats {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

type resolveRequest struct {
	Policy        string  `json:"policy"`
	Override      *string `json:"override"`
	Environment   *string `json:"environment"`
	FixedPath     string  `json:"fixedPath"`
	ProductionTag string  `json:"productionTag"`
}

type resolveResponse struct {
	Policy  string `json:"policy"`
	BaseURL string `json:"baseURL"`
}

type configResponse struct {
	Record     record.Record `json:"record"`
	ResolvedAt time.Time     `json:"resolvedAt"`
}

type policiesResponse struct {
	Policies []string `json:"policies"`
	Default  string   `json:"default"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
