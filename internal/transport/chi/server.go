// Package chi exposes the connector over HTTP: schema and data endpoints,
// health, and Prometheus metrics.
package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gridwell/jsongrid/internal/domain"
	"github.com/gridwell/jsongrid/internal/metrics"
	connectoruc "github.com/gridwell/jsongrid/internal/usecase/connector"
	healthuc "github.com/gridwell/jsongrid/internal/usecase/health"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires the HTTP handlers to the use case services.
type Server struct {
	connector     *connectoruc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(connector *connectoruc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		connector: connector,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidURL, http.StatusBadRequest, CodeInvalidURL),
		sentinelHandler(domain.ErrInvalidSchema, http.StatusBadRequest, CodeInvalidSchema),
		sentinelHandler(domain.ErrFieldIdentification, http.StatusBadRequest, CodeFieldNotFound),
		sentinelHandler(domain.ErrEmptyContent, http.StatusUnprocessableEntity, CodeEmptyContent),
		sentinelHandler(domain.ErrCacheCapacity, http.StatusRequestEntityTooLarge, CodeCacheCapacity),
		sentinelHandler(domain.ErrInvalidJSON, http.StatusBadGateway, CodeUpstreamInvalidJSON),
		sentinelHandler(domain.ErrTransport, http.StatusBadGateway, CodeUpstreamFailed),
	}
	return s
}

// Routes registers all endpoints on the given router.
func (s *Server) Routes(r chirouter.Router) {
	r.Post("/api/v1/schema", s.GetSchema)
	r.Post("/api/v1/data", s.GetData)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// GetSchema handles POST /api/v1/schema.
func (s *Server) GetSchema(w http.ResponseWriter, r *http.Request) {
	var req SchemaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	fields, err := s.connector.GetSchema(r.Context(), domain.Request{
		Config: configFromDTO(req.ConfigParams),
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	metrics.SchemaFieldsDiscovered.Observe(float64(len(fields)))
	writeJSON(w, http.StatusOK, SchemaResponse{Schema: fieldsToDTO(fields)})
}

// GetData handles POST /api/v1/data.
func (s *Server) GetData(w http.ResponseWriter, r *http.Request) {
	var req DataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if len(req.Fields) == 0 {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "At least one field is required")
		return
	}

	names := make([]string, len(req.Fields))
	for i, f := range req.Fields {
		names[i] = f.Name
	}

	fields, rows, err := s.connector.GetData(r.Context(), domain.Request{
		Config:     configFromDTO(req.ConfigParams),
		FieldNames: names,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DataResponse{
		Schema: fieldsToDTO(fields),
		Rows:   rows,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
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
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidURL,
		domain.ErrInvalidSchema,
		domain.ErrFieldIdentification,
		domain.ErrEmptyContent,
		domain.ErrCacheCapacity,
		domain.ErrInvalidJSON,
		domain.ErrTransport,
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
