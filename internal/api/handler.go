package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/digirakshak/kavach/internal/domain"
	"github.com/digirakshak/kavach/internal/engine"
	"github.com/digirakshak/kavach/internal/policy"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	// scanCacheTTL bounds how long a cached verdict is served for an
	// identical (sender, content) pair.
	scanCacheTTL = 5 * time.Minute

	// defaultPolicyWindow is the sender-frequency lookback for alert
	// policies, in seconds.
	defaultPolicyWindow = 3600

	// maxBatchSize caps a single batch request.
	maxBatchSize = 100

	// defaultStatsWindow is the lookback for history and stats queries.
	defaultStatsWindow = 24 * time.Hour
)

// GlobalTenantID is used for alert policies that apply to all tenants.
const GlobalTenantID = "*"

// Handler holds dependencies for API handlers.
type Handler struct {
	repo         domain.Repository
	cache        domain.Cache
	bus          domain.EventBus
	engine       *engine.Engine
	policyEngine *policy.Engine
	version      string
}

// NewHandler creates a new API handler.
func NewHandler(repo domain.Repository, cache domain.Cache, bus domain.EventBus, eng *engine.Engine, policyEngine *policy.Engine, version string) *Handler {
	return &Handler{
		repo:         repo,
		cache:        cache,
		bus:          bus,
		engine:       eng,
		policyEngine: policyEngine,
		version:      version,
	}
}

// ScanResponse is the response for POST /scan.
type ScanResponse struct {
	ScanID        string           `json:"scanId"`
	Score         int              `json:"score"`
	IsScam        bool             `json:"isScam"`
	RiskLevel     domain.RiskLevel `json:"riskLevel"`
	Reasons       []string         `json:"reasons"`
	TrustedSender bool             `json:"trustedSender"`
	Matches       int              `json:"matches"`
	Metadata      struct {
		TraceID   string `json:"traceId"`
		Cached    bool   `json:"cached"`
		TotalMs   int64  `json:"totalMs"`
		Version   string `json:"version"`
		Catalogue string `json:"catalogueVersion"`
	} `json:"metadata"`
}

// Scan handles POST /scan requests.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	tenantID := GetTenantID(ctx)
	traceID := GetTraceID(ctx)

	// Parse request
	var req domain.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "content is required",
		})
		return
	}

	result, cached := h.evaluate(ctx, tenantID, req)

	resp := h.scanResponse(result, traceID, cached, time.Since(start).Milliseconds())
	writeJSON(w, http.StatusOK, resp)
}

// BatchScanRequest is the request body for POST /scan/batch.
type BatchScanRequest struct {
	Messages []domain.ScanRequest `json:"messages"`
}

// BatchScanResponse is the response for POST /scan/batch.
type BatchScanResponse struct {
	Results []ScanResponse `json:"results"`
	Count   int            `json:"count"`
}

// ScanBatch handles POST /scan/batch requests. Used to score a backlog
// of messages, e.g. an inbox import after install.
func (h *Handler) ScanBatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	tenantID := GetTenantID(ctx)
	traceID := GetTraceID(ctx)

	var req BatchScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if len(req.Messages) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "messages is required",
		})
		return
	}
	if len(req.Messages) > maxBatchSize {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "batch size exceeds limit of " + strconv.Itoa(maxBatchSize),
		})
		return
	}

	results := make([]ScanResponse, 0, len(req.Messages))
	for _, msg := range req.Messages {
		result, cached := h.evaluate(ctx, tenantID, msg)
		results = append(results, h.scanResponse(result, traceID, cached, time.Since(start).Milliseconds()))
	}

	writeJSON(w, http.StatusOK, BatchScanResponse{
		Results: results,
		Count:   len(results),
	})
}

// evaluate runs the full scan pipeline for one message: cache lookup,
// scoring, persistence, cache population and event dispatch.
func (h *Handler) evaluate(ctx context.Context, tenantID string, req domain.ScanRequest) (*domain.ScanResult, bool) {
	hash := contentHash(req.Sender, req.Content)

	if h.cache != nil {
		if hit, err := h.cache.GetScan(ctx, tenantID, hash); err == nil && hit != nil {
			return hit, true
		}
	}

	result := h.engine.Evaluate(req.Sender, req.Content)
	result.ID = uuid.New().String()
	result.TenantID = tenantID

	if h.repo != nil {
		if err := h.repo.SaveScan(ctx, tenantID, &result); err != nil {
			slog.Error("failed to save scan", "scan_id", result.ID, "error", err)
		}
	}

	if h.cache != nil {
		if err := h.cache.SetScan(ctx, tenantID, hash, &result, scanCacheTTL); err != nil {
			slog.Error("failed to cache scan", "scan_id", result.ID, "error", err)
		}
	}

	h.dispatch(ctx, tenantID, &result)

	return &result, false
}

// dispatch publishes the finished scan and escalates to the alert topic
// when a loaded policy matches.
func (h *Handler) dispatch(ctx context.Context, tenantID string, result *domain.ScanResult) {
	if h.bus == nil {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		slog.Error("failed to marshal scan result", "scan_id", result.ID, "error", err)
		return
	}

	if err := h.bus.Publish(ctx, tenantID, domain.TopicScanCompleted, payload); err != nil {
		slog.Error("failed to publish scan result", "scan_id", result.ID, "error", err)
	}

	if h.policyEngine == nil || h.policyEngine.PoliciesCount() == 0 {
		return
	}

	decisions, err := h.policyEngine.EvaluateAll(ctx, &policy.EvaluateInput{
		TenantID:         tenantID,
		Result:           result,
		SenderScanWindow: defaultPolicyWindow,
	})
	if err != nil {
		slog.Error("policy evaluation failed", "scan_id", result.ID, "error", err)
		return
	}

	if policy.ShouldAlert(decisions) {
		if err := h.bus.Publish(ctx, tenantID, domain.TopicScanAlert, payload); err != nil {
			slog.Error("failed to publish alert", "scan_id", result.ID, "error", err)
		}
	}
}

func (h *Handler) scanResponse(result *domain.ScanResult, traceID string, cached bool, totalMs int64) ScanResponse {
	resp := ScanResponse{
		ScanID:        result.ID,
		Score:         result.Score,
		IsScam:        result.IsScam,
		RiskLevel:     result.RiskLevel,
		Reasons:       result.Reasons,
		TrustedSender: result.TrustedSender,
		Matches:       result.Matches,
	}
	resp.Metadata.TraceID = traceID
	resp.Metadata.Cached = cached
	resp.Metadata.TotalMs = totalMs
	resp.Metadata.Version = h.version
	resp.Metadata.Catalogue = h.engine.Store().Version()
	return resp
}

// contentHash derives the cache key for a (sender, content) pair.
// The raw message never leaves the process through the cache key.
func contentHash(sender, content string) string {
	sum := sha256.Sum256([]byte(sender + "\x00" + content))
	return hex.EncodeToString(sum[:])
}

// Health returns server health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	// Check repository health
	if h.repo != nil {
		if err := h.repo.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	// Check cache health
	if h.cache != nil {
		if err := h.cache.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	// Check event bus health
	if h.bus != nil {
		if err := h.bus.Ping(r.Context()); err != nil {
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": h.version,
	})
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

// GetScan retrieves a past scan result by ID.
func (h *Handler) GetScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)
	scanID := chi.URLParam(r, "id")

	if scanID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "scan id is required",
		})
		return
	}

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	result, err := h.repo.GetScan(ctx, tenantID, scanID)
	if err != nil {
		slog.Error("failed to get scan", "id", scanID, "error", err)
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "scan not found",
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ListScans returns recent scan history, optionally filtered by sender.
func (h *Handler) ListScans(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "limit must be a positive integer",
			})
			return
		}
		limit = n
	}

	var scans []*domain.ScanResult
	var err error

	if sender := r.URL.Query().Get("sender"); sender != "" {
		since := time.Now().Add(-parseWindow(r, defaultStatsWindow))
		scans, err = h.repo.ListScansBySender(ctx, tenantID, sender, since)
		if err == nil && len(scans) > limit {
			scans = scans[:limit]
		}
	} else {
		scans, err = h.repo.ListRecentScans(ctx, tenantID, limit)
	}

	if err != nil {
		slog.Error("failed to list scans", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to list scans",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"scans": scans,
		"count": len(scans),
	})
}

// Stats returns aggregate scan counters for a time window.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	window := parseWindow(r, defaultStatsWindow)
	stats, err := h.repo.CountScans(ctx, tenantID, time.Now().Add(-window))
	if err != nil {
		slog.Error("failed to count scans", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to compute stats",
		})
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// parseWindow reads the optional "window" query parameter as a Go
// duration string, e.g. "1h" or "30m".
func parseWindow(r *http.Request, fallback time.Duration) time.Duration {
	v := r.URL.Query().Get("window")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Rules returns a read-only summary of the compiled rule catalogue.
// The catalogue is compiled in, so there is no per-rule CRUD.
func (h *Handler) Rules(w http.ResponseWriter, r *http.Request) {
	store := h.engine.Store()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version":     store.Version(),
		"count":       store.RuleCount(),
		"categories":  store.CategoryCounts(),
		"senderRules": len(store.SenderRules()),
	})
}

// ============================================================================
// ALERT POLICY HANDLERS
// ============================================================================

// CreatePolicyRequest is the request body for creating an alert policy.
type CreatePolicyRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Expression  string `json:"expression"`
	Enabled     bool   `json:"enabled"`
}

// ListPolicies returns all loaded alert policies.
func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	if h.policyEngine == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "policy engine not available",
		})
		return
	}

	policies := h.policyEngine.GetLoadedPolicies()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"policies": policies,
		"count":    len(policies),
		"source":   "database",
	})
}

// GetPolicy retrieves a loaded alert policy by ID.
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	policyID := chi.URLParam(r, "id")

	if policyID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "policy id is required",
		})
		return
	}

	if h.policyEngine == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "policy engine not available",
		})
		return
	}

	for _, p := range h.policyEngine.GetLoadedPolicies() {
		if p.ID == policyID {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}

	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "policy not found",
	})
}

// CreatePolicy creates a new alert policy and saves it to the database.
// Policies are saved globally (tenant_id = "*") so they apply to all
// tenants. After saving, call POST /policies/reload to hot-reload.
func (h *Handler) CreatePolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return
	}

	if req.ID == "" || req.Name == "" || req.Expression == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "id, name, and expression are required",
		})
		return
	}

	p := &domain.AlertPolicy{
		ID:          req.ID,
		TenantID:    GlobalTenantID,
		Name:        req.Name,
		Description: req.Description,
		Expression:  req.Expression,
		Enabled:     req.Enabled,
	}

	// Validate CEL expression before persisting
	if h.policyEngine != nil {
		if err := h.policyEngine.ValidatePolicy(p); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "invalid CEL expression: " + err.Error(),
			})
			return
		}
	}

	if h.repo != nil {
		if err := h.repo.SavePolicy(ctx, GlobalTenantID, p); err != nil {
			slog.Error("failed to save policy", "id", p.ID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "failed to save policy",
			})
			return
		}
	}

	slog.Info("policy created", "id", p.ID, "name", p.Name)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"policy":  p,
		"message": "Policy created. Call POST /policies/reload to apply changes.",
	})
}

// DeletePolicy disables a policy and auto-reloads the engine.
func (h *Handler) DeletePolicy(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	policyID := chi.URLParam(r, "id")

	if policyID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "policy id is required",
		})
		return
	}

	if h.repo != nil {
		if err := h.repo.DeletePolicy(ctx, GlobalTenantID, policyID); err != nil {
			slog.Error("failed to delete policy", "id", policyID, "error", err)
			writeJSON(w, http.StatusNotFound, map[string]string{
				"error": "policy not found",
			})
			return
		}

		// Auto-reload policy engine after delete
		if h.policyEngine != nil {
			dbPolicies, err := h.repo.ListPolicies(ctx, GlobalTenantID)
			if err != nil {
				slog.Error("failed to reload policies after delete", "error", err)
			} else if err := h.policyEngine.ReloadPolicies(dbPolicies); err != nil {
				slog.Error("failed to reload policies into engine", "error", err)
			} else {
				slog.Info("policies auto-reloaded after delete", "count", len(dbPolicies))
			}
		}
	}

	slog.Info("policy deleted", "id", policyID)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Policy deleted and engine reloaded.",
	})
}

// ReloadPolicies reloads all alert policies from the database into the
// engine. This enables hot-reloading without server restart.
func (h *Handler) ReloadPolicies(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "repository not available",
		})
		return
	}

	if h.policyEngine == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "policy engine not available",
		})
		return
	}

	dbPolicies, err := h.repo.ListPolicies(ctx, GlobalTenantID)
	if err != nil {
		slog.Error("failed to list policies from database", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to load policies from database",
		})
		return
	}

	if err := h.policyEngine.ReloadPolicies(dbPolicies); err != nil {
		slog.Error("failed to reload policies into engine", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to reload policies: " + err.Error(),
		})
		return
	}

	slog.Info("policies reloaded from database", "count", len(dbPolicies))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "policies reloaded successfully",
		"count":   len(dbPolicies),
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
