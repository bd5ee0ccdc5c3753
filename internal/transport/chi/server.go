package chi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lumenpick/internal/domain"
	"github.com/kailas-cloud/lumenpick/internal/domain/preference"
	logpkg "github.com/kailas-cloud/lumenpick/internal/logger"
	healthuc "github.com/kailas-cloud/lumenpick/internal/usecase/health"
	rankingsuc "github.com/kailas-cloud/lumenpick/internal/usecase/rankings"
	runuc "github.com/kailas-cloud/lumenpick/internal/usecase/run"
)

const maxBodyBytes = 64 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements ServerInterface.
type Server struct {
	runs          *runuc.Service
	rankings      *rankingsuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(
	runs *runuc.Service,
	rankings *rankingsuc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		runs:     runs,
		rankings: rankings,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound),
		storageHandler,
		sentinelHandler(domain.ErrUpstreamUnavailable, http.StatusBadGateway, CodeUpstreamUnavailable),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, CodeBadRequest),
	}
	return s
}

// CreateRun handles POST /intelligence/runs.
func (s *Server) CreateRun(w http.ResponseWriter, r *http.Request) {
	raw, limit, err := decodeRunRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	q, defaulted := preference.NormalizeWithReport(raw)
	if len(defaulted) > 0 {
		logpkg.FromContext(r.Context()).Debug("Preference fields defaulted",
			zap.Strings("fields", defaulted),
			zap.String("query", q.Key()),
		)
	}

	run, err := s.runs.Create(r.Context(), q, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/intelligence/runs/"+strconv.FormatInt(run.ID(), 10))
	writeJSON(w, http.StatusCreated, runToResponse(run))
}

// GetRun handles GET /intelligence/runs/{run_id}.
func (s *Server) GetRun(w http.ResponseWriter, r *http.Request, runID RunID) {
	run, err := s.runs.Get(r.Context(), runID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, runToResponse(run))
}

// GetRankings handles GET /rankings.
func (s *Server) GetRankings(w http.ResponseWriter, r *http.Request, params GetRankingsParams) {
	page, err := s.rankings.Rankings(r.Context(),
		derefString(params.UseCase), derefInt(params.Page), derefInt(params.PageSize))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pageToResponse(page))
}

// Compare handles GET /compare.
func (s *Server) Compare(w http.ResponseWriter, r *http.Request, params CompareParams) {
	cs, err := s.rankings.Compare(r.Context(), params.Ids)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comparisonsToResponse(cs))
}

// Finder handles GET /finder.
func (s *Server) Finder(w http.ResponseWriter, r *http.Request, params FinderParams) {
	filters := rankingsuc.FinderFilters{Budget: params.Budget, USBC: params.UsbC, MinThrow: params.MinThrow}
	limit := 0
	if params.Limit != nil {
		limit = *params.Limit
	}

	entries, err := s.rankings.Finder(r.Context(), filters, limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, finderToResponse(filters, entries))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthToResponse(report))
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// decodeRunRequest reads preference fields from a JSON or form body.
// An empty body yields an empty Raw, which normalizes to the defaults.
func decodeRunRequest(r *http.Request) (preference.Raw, int, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" || mediaType == "multipart/form-data" {
		return decodeRunForm(r)
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return preference.Raw{}, 0, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return preference.Raw{}, 0, fmt.Errorf("body exceeds %d bytes", maxBodyBytes)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return preference.Raw{}, 0, nil
	}

	var fields map[string]any
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return preference.Raw{}, 0, err
	}

	limit, err := parseLimit(fields["limit"])
	if err != nil {
		return preference.Raw{}, 0, err
	}
	return preference.Raw{
		IntendedUse:       fields[preference.FieldIntendedUse],
		BudgetUSD:         fields[preference.FieldBudgetUSD],
		BatteryPreference: fields[preference.FieldBatteryPreference],
		SizeConstraint:    fields[preference.FieldSizeConstraint],
	}, limit, nil
}

func decodeRunForm(r *http.Request) (preference.Raw, int, error) {
	r.Body = io.NopCloser(io.LimitReader(r.Body, maxBodyBytes))
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return preference.Raw{}, 0, fmt.Errorf("parse form: %w", err)
	}

	field := func(name string) any {
		if vs, ok := r.PostForm[name]; ok && len(vs) > 0 {
			return vs[0]
		}
		return nil
	}
	limit, err := parseLimit(field("limit"))
	if err != nil {
		return preference.Raw{}, 0, err
	}
	return preference.Raw{
		IntendedUse:       field(preference.FieldIntendedUse),
		BudgetUSD:         field(preference.FieldBudgetUSD),
		BatteryPreference: field(preference.FieldBatteryPreference),
		SizeConstraint:    field(preference.FieldSizeConstraint),
	}, limit, nil
}

// parseLimit accepts an absent value, an integer number or a numeric string.
// Range clamping is left to the run service.
func parseLimit(v any) (int, error) {
	var s string
	switch t := v.(type) {
	case nil:
		return 0, nil
	case json.Number:
		s = t.String()
	case string:
		s = t
	default:
		return 0, fmt.Errorf("limit must be an integer")
	}
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("limit must be an integer")
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
// Invalid request errors carry their full message since it only describes client input.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidRequest) {
		return err.Error()
	}
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrStorage,
		domain.ErrUpstreamUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// storageHandler marks storage failures as retryable.
func storageHandler(w http.ResponseWriter, err error, msg string) bool {
	if !errors.Is(err, domain.ErrStorage) {
		return false
	}
	w.Header().Set("Retry-After", "1")
	writeError(w, http.StatusServiceUnavailable, CodeStorageUnavailable, msg)
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
