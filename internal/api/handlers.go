package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/lender-qualify/internal/model"
	"github.com/sells-group/lender-qualify/internal/qualify"
	"github.com/sells-group/lender-qualify/internal/store"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// QualifyResponse is returned by POST /api/v1/qualify.
type QualifyResponse struct {
	ID               string                      `json:"id"`
	Results          []model.QualificationResult `json:"results"`
	QualifiedCount   int                         `json:"qualified_count"`
	FundingPotential model.FundingPotential      `json:"funding_potential"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("api: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string, details ...string) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}

// writeProfileError maps a decodeProfile error to a response.
func writeProfileError(w http.ResponseWriter, err error) {
	var verr *validationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Error(), verr.Problems...)
		return
	}
	writeError(w, http.StatusBadRequest, "invalid request body")
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return nil, false
	}
	return body, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   s.opts.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleListLenders(w http.ResponseWriter, r *http.Request) {
	lenders, err := s.catalog.Load(r.Context())
	if err != nil {
		zap.L().Error("api: load catalog", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "lender catalog unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(lenders),
		"lenders": lenders,
	})
}

// evaluate runs the profile against the current catalog.
func (s *Server) evaluate(w http.ResponseWriter, r *http.Request, p *model.ClientProfile) ([]model.QualificationResult, bool) {
	lenders, err := s.catalog.Load(r.Context())
	if err != nil {
		zap.L().Error("api: load catalog", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "lender catalog unavailable")
		return nil, false
	}
	results, err := qualify.EvaluateAllConcurrent(r.Context(), p, lenders, s.opts.Workers)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "evaluation cancelled")
		return nil, false
	}
	return results, true
}

func (s *Server) handleQualify(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	p, err := decodeProfile(body, s.opts.Now())
	if err != nil {
		writeProfileError(w, err)
		return
	}

	results, ok := s.evaluate(w, r, p)
	if !ok {
		return
	}
	potential := qualify.FundingPotential(p, results, s.opts.Policy)
	qualifiedCount := len(qualify.Qualified(results))

	evaluationsTotal.WithLabelValues("qualify").Inc()
	qualifiedLenders.Observe(float64(qualifiedCount))

	if r.URL.Query().Get("qualified_only") == "true" {
		results = qualify.Qualified(results)
	}

	eval := &model.Evaluation{
		ID:             uuid.New().String(),
		Profile:        *p,
		Results:        results,
		Potential:      potential,
		QualifiedCount: qualifiedCount,
		CreatedAt:      s.opts.Now().UTC(),
	}
	if s.store != nil {
		if err := s.store.SaveEvaluation(r.Context(), eval); err != nil {
			zap.L().Error("api: save evaluation", zap.String("company", p.Company), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to save evaluation")
			return
		}
	}

	zap.L().Info("api: profile evaluated",
		zap.String("evaluation_id", eval.ID),
		zap.String("company", p.Company),
		zap.Int("lenders", len(results)),
		zap.Int("qualified", qualifiedCount),
		zap.Float64("funding_estimate", potential.Estimate),
	)

	writeJSON(w, http.StatusOK, QualifyResponse{
		ID:               eval.ID,
		Results:          results,
		QualifiedCount:   qualifiedCount,
		FundingPotential: potential,
	})
}

func (s *Server) handleFundingPotential(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	var req struct {
		Profile json.RawMessage `json:"profile"`
	}
	if err := json.Unmarshal(body, &req); err != nil || len(req.Profile) == 0 {
		writeError(w, http.StatusBadRequest, "body must be {\"profile\": {...}}")
		return
	}
	p, err := decodeProfile(req.Profile, s.opts.Now())
	if err != nil {
		writeProfileError(w, err)
		return
	}

	results, ok := s.evaluate(w, r, p)
	if !ok {
		return
	}
	evaluationsTotal.WithLabelValues("funding_potential").Inc()
	writeJSON(w, http.StatusOK, qualify.FundingPotential(p, results, s.opts.Policy))
}

func (s *Server) handleRefreshCatalog(w http.ResponseWriter, r *http.Request) {
	lenders, err := s.catalog.Refresh(r.Context())
	if err != nil {
		catalogRefreshes.WithLabelValues("error").Inc()
		zap.L().Error("api: refresh catalog", zap.Error(err))
		writeError(w, http.StatusBadGateway, "catalog refresh failed")
		return
	}
	catalogRefreshes.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, map[string]any{
		"count":        len(lenders),
		"refreshed_at": s.opts.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "evaluation history is not configured")
		return
	}

	q := r.URL.Query()
	filter := store.EvaluationFilter{Company: q.Get("company")}
	var err error
	if v := q.Get("limit"); v != "" {
		if filter.Limit, err = strconv.Atoi(v); err != nil || filter.Limit < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
	}
	if v := q.Get("offset"); v != "" {
		if filter.Offset, err = strconv.Atoi(v); err != nil || filter.Offset < 0 {
			writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return
		}
	}

	evals, err := s.store.ListEvaluations(r.Context(), filter)
	if err != nil {
		zap.L().Error("api: list evaluations", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list evaluations")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":       len(evals),
		"evaluations": evals,
	})
}

func (s *Server) handleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "evaluation history is not configured")
		return
	}

	id := chi.URLParam(r, "id")
	eval, err := s.store.GetEvaluation(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "evaluation not found")
		return
	}
	if err != nil {
		zap.L().Error("api: get evaluation", zap.String("id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load evaluation")
		return
	}
	writeJSON(w, http.StatusOK, eval)
}
