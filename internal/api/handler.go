package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"vnsignal/config"
	"vnsignal/internal/app"
	"vnsignal/models"
	"vnsignal/series"
	"vnsignal/services"

	"github.com/go-chi/chi/v5"
)

// Handler handles HTTP API requests
type Handler struct {
	app *app.App
	cfg *config.Config
}

// NewHandler creates a new Handler
func NewHandler(application *app.App, cfg *config.Config) *Handler {
	return &Handler{app: application, cfg: cfg}
}

// HandleHealth returns the health status of the application
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "ok",
		"services": map[string]string{
			"database": "unknown",
		},
	}

	if h.app.Repo() != nil {
		ctx := r.Context()
		if err := h.app.Repo().Health(ctx); err == nil {
			status["services"].(map[string]string)["database"] = "connected"
		} else {
			status["services"].(map[string]string)["database"] = "disconnected"
			status["status"] = "degraded"
		}
	} else {
		status["services"].(map[string]string)["database"] = "not_configured"
	}

	// Add circuit breaker status
	cbStatus := services.GetGlobalRegistry().Status()
	status["circuit_breakers"] = cbStatus

	// Check if any breakers are open (degraded state)
	for _, cb := range cbStatus {
		if cb.State == "open" {
			status["status"] = "degraded"
			break
		}
	}

	h.jsonResponse(w, status)
}

// HandleEvaluate evaluates a symbol and returns the fresh result
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "symbol")))
	if err := h.ValidateSymbol(symbol); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	horizons, err := parseHorizonParam(r.URL.Query().Get("horizon"))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.app.EvaluateSymbol(r.Context(), symbol, horizons...)
	if err != nil {
		if strings.Contains(err.Error(), "queue full") {
			h.jsonError(w, err.Error(), http.StatusTooManyRequests)
			return
		}
		h.jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	h.jsonResponse(w, result)
}

// HandleGetEvaluations returns stored evaluation history
func (h *Handler) HandleGetEvaluations(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
	if symbol != "" {
		if err := h.ValidateSymbol(symbol); err != nil {
			h.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	limit := h.ParseLimitParam(r, 50)

	evals, err := h.app.GetEvaluations(r.Context(), symbol, limit)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	h.jsonResponse(w, map[string]interface{}{
		"evaluations": evals,
		"count":       len(evals),
	})
}

// HandleGetLatestEvaluation returns the most recent stored evaluation for a
// symbol and horizon
func (h *Handler) HandleGetLatestEvaluation(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "symbol")))
	if err := h.ValidateSymbol(symbol); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	horizon := models.Horizon(r.URL.Query().Get("horizon"))
	if horizon == "" {
		horizon = models.HorizonShortTerm
	}
	if horizon != models.HorizonShortTerm && horizon != models.HorizonLongTerm {
		h.jsonError(w, fmt.Sprintf("unknown horizon %q", horizon), http.StatusBadRequest)
		return
	}

	eval, err := h.app.GetLatestEvaluation(r.Context(), symbol, horizon)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if eval == nil {
		h.jsonError(w, "no evaluation found", http.StatusNotFound)
		return
	}

	h.jsonResponse(w, eval)
}

// HandleChart returns the bar series with a Bollinger overlay
func (h *Handler) HandleChart(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "symbol")))
	if err := h.ValidateSymbol(symbol); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	cfg := series.BollingerConfig{
		Period:     h.cfg.Evaluator.BollingerPeriod,
		StdDevMult: h.cfg.Evaluator.BollingerStdDev,
	}
	if p := r.URL.Query().Get("period"); p != "" {
		parsed, err := strconv.Atoi(p)
		if err != nil || parsed < 2 {
			h.jsonError(w, "period must be an integer >= 2", http.StatusBadRequest)
			return
		}
		cfg.Period = parsed
	}
	if s := r.URL.Query().Get("stddev"); s != "" {
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil || parsed <= 0 {
			h.jsonError(w, "stddev must be a positive number", http.StatusBadRequest)
			return
		}
		cfg.StdDevMult = parsed
	}

	chart, err := h.app.GetChart(r.Context(), symbol, cfg)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	h.jsonResponse(w, chart)
}

// Helper functions

// parseHorizonParam resolves the horizon query parameter: empty means both.
func parseHorizonParam(raw string) ([]models.Horizon, error) {
	switch raw {
	case "":
		return nil, nil
	case string(models.HorizonShortTerm):
		return []models.Horizon{models.HorizonShortTerm}, nil
	case string(models.HorizonLongTerm):
		return []models.Horizon{models.HorizonLongTerm}, nil
	default:
		return nil, fmt.Errorf("unknown horizon %q (want short_term or long_term)", raw)
	}
}

// ValidateSymbol validates a stock symbol
func (h *Handler) ValidateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol is required")
	}

	if len(symbol) > 10 {
		return fmt.Errorf("symbol too long (max 10 characters)")
	}

	matched, _ := regexp.MatchString("^[A-Z0-9]+$", symbol)
	if !matched {
		return fmt.Errorf("invalid symbol format (alphanumeric only)")
	}

	return nil
}

// ParseLimitParam parses the limit query parameter
func (h *Handler) ParseLimitParam(r *http.Request, defaultLimit int) int {
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			return l
		}
	}
	return defaultLimit
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
