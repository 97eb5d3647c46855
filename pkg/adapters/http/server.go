package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/bargain"
	"github.com/aretw0/bargain/internal/logging"
	"github.com/aretw0/bargain/pkg/domain"
	"github.com/aretw0/bargain/pkg/profile"
	"github.com/aretw0/bargain/pkg/runner"
	"github.com/aretw0/bargain/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server implements ServerInterface on top of a session manager.
type Server struct {
	Sessions *session.Manager

	// Base is the profile that request overrides are applied to.
	Base domain.Config

	Logger *slog.Logger
}

// Ensure Server implements ServerInterface
var _ ServerInterface = (*Server)(nil)

type handlerConfig struct {
	base     domain.Config
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// Option configures the HTTP handler.
type Option func(*handlerConfig)

// WithBaseConfig sets the profile new negotiations start from.
func WithBaseConfig(cfg domain.Config) Option {
	return func(c *handlerConfig) {
		c.base = cfg.Clone()
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *handlerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics exposes the gatherer on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(c *handlerConfig) {
		c.gatherer = g
	}
}

// NewHandler creates the HTTP handler for a session manager.
func NewHandler(sessions *session.Manager, opts ...Option) (http.Handler, error) {
	cfg := handlerConfig{
		base:   domain.DefaultConfig(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	validator, err := requestValidator(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to build request validator: %w", err)
	}

	server := &Server{
		Sessions: sessions,
		Base:     cfg.base,
		Logger:   cfg.logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(cfg.logger))

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	if cfg.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(api chi.Router) {
		api.Use(validator)
		HandlerFromMux(server, api)
	})

	return enableCORS(r), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-Id")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

type idList struct {
	IDs []string `json:"ids"`
}

type createRequest struct {
	SessionID string         `json:"session_id"`
	Config    map[string]any `json:"config"`
}

type turnRequest struct {
	Intent string `json:"intent"`
	Price  *int   `json:"customer_price"`
	Notes  string `json:"notes"`
	Text   string `json:"text"`
}

type turnResponse struct {
	ID    string            `json:"id"`
	Turn  domain.TurnResult `json:"turn"`
	Reply string            `json:"reply"`
}

type guardRequest struct {
	Draft string `json:"draft"`
}

type guardResponse struct {
	Reply string `json:"reply"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidOffer),
		errors.Is(err, domain.ErrInvalidConfig),
		errors.Is(err, domain.ErrUnhandledSignal),
		errors.Is(err, runner.ErrInputTooLarge),
		errors.Is(err, runner.ErrInvalidUTF8):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrTranscriptNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, session.ErrSessionExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}
	for _, fieldErr := range domain.ValidationErrors(err) {
		resp.Details = append(resp.Details, fieldErr.Error())
	}

	if status == http.StatusInternalServerError {
		s.Logger.Error(op+" failed", "err", err, "request_id", middleware.GetReqID(r.Context()))
	} else {
		s.Logger.Warn(op+" rejected", "err", err, "status", status, "request_id", middleware.GetReqID(r.Context()))
	}
	writeJSON(w, status, resp)
}

// decodeBody reads an optional JSON body into v.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if doc, err := GetSwagger(); err == nil && doc.Info != nil {
		apiVersion = doc.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "bargain-http",
		"version":     strings.TrimSpace(bargain.Version),
		"api_version": apiVersion,
	})
}

// ListNegotiations handles the GET /negotiations request.
func (s *Server) ListNegotiations(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.writeError(w, r, "ListNegotiations", err)
		return
	}
	writeJSON(w, http.StatusOK, idList{IDs: ids})
}

// CreateNegotiation handles the POST /negotiations request.
func (s *Server) CreateNegotiation(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	cfg, err := profile.Decode(s.Base, body.Config)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidConfig) {
			err = fmt.Errorf("%w: %v", domain.ErrInvalidConfig, err)
		}
		s.writeError(w, r, "CreateNegotiation", err)
		return
	}

	var opts []bargain.Option
	if body.SessionID != "" {
		opts = append(opts, bargain.WithSessionID(body.SessionID))
	}
	id, err := s.Sessions.Create(r.Context(), cfg, opts...)
	if err != nil {
		s.writeError(w, r, "CreateNegotiation", err)
		return
	}

	view, err := s.Sessions.View(r.Context(), id)
	if err != nil {
		s.writeError(w, r, "CreateNegotiation", err)
		return
	}
	w.Header().Set("Location", "/negotiations/"+id)
	writeJSON(w, http.StatusCreated, view)
}

// GetNegotiation handles the GET /negotiations/{id} request.
func (s *Server) GetNegotiation(w http.ResponseWriter, r *http.Request, id string) {
	view, err := s.Sessions.View(r.Context(), id)
	if err != nil {
		s.writeError(w, r, "GetNegotiation", err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// DeleteNegotiation handles the DELETE /negotiations/{id} request.
func (s *Server) DeleteNegotiation(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.Sessions.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, "DeleteNegotiation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHistory handles the GET /negotiations/{id}/history request.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request, id string) {
	history, err := s.Sessions.History(r.Context(), id)
	if err != nil {
		s.writeError(w, r, "GetHistory", err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

// SubmitTurn handles the POST /negotiations/{id}/turns request.
func (s *Server) SubmitTurn(w http.ResponseWriter, r *http.Request, id string) {
	var body turnRequest
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	summary := domain.Summary{
		Intent: domain.ParseIntent(body.Intent),
		Price:  body.Price,
		Notes:  body.Notes,
	}
	if body.Text != "" {
		clean, err := runner.SanitizeInput(body.Text)
		if err != nil {
			s.writeError(w, r, "SubmitTurn", err)
			return
		}
		summary = runner.ParseSummary(clean)
	}

	s.respondTurn(w, r, "SubmitTurn", id, func(ctx context.Context, n *bargain.Negotiation) (domain.TurnResult, error) {
		return n.Turn(ctx, summary)
	})
}

// SendSignal handles the POST /negotiations/{id}/signals/{signal} request.
func (s *Server) SendSignal(w http.ResponseWriter, r *http.Request, id string, signal string) {
	s.respondTurn(w, r, "SendSignal", id, func(ctx context.Context, n *bargain.Negotiation) (domain.TurnResult, error) {
		if _, err := n.Signal(ctx, signal); err != nil {
			return domain.TurnResult{}, err
		}
		return n.View(domain.Summary{Intent: domain.IntentOther}), nil
	})
}

func (s *Server) respondTurn(
	w http.ResponseWriter,
	r *http.Request,
	op string,
	id string,
	fn func(context.Context, *bargain.Negotiation) (domain.TurnResult, error),
) {
	var res domain.TurnResult
	err := s.Sessions.Do(r.Context(), id, func(ctx context.Context, n *bargain.Negotiation) error {
		var err error
		res, err = fn(ctx, n)
		return err
	})
	if err != nil {
		s.writeError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, turnResponse{
		ID:    id,
		Turn:  res,
		Reply: runner.ComposeReply(res),
	})
}

// GuardReply handles the POST /negotiations/{id}/guard request.
func (s *Server) GuardReply(w http.ResponseWriter, r *http.Request, id string) {
	var body guardRequest
	if err := decodeBody(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	view, err := s.Sessions.View(r.Context(), id)
	if err != nil {
		s.writeError(w, r, "GuardReply", err)
		return
	}
	writeJSON(w, http.StatusOK, guardResponse{Reply: runner.GuardReply(body.Draft, view.Contract)})
}

// ListTranscripts handles the GET /transcripts request.
func (s *Server) ListTranscripts(w http.ResponseWriter, r *http.Request, params ListTranscriptsParams) {
	ids := []string{}
	if archive := s.Sessions.Archive(); archive != nil {
		listed, err := archive.List(r.Context())
		if err != nil {
			s.writeError(w, r, "ListTranscripts", err)
			return
		}
		ids = append(ids, listed...)
	}
	if params.Limit != nil && *params.Limit < len(ids) {
		ids = ids[:*params.Limit]
	}
	writeJSON(w, http.StatusOK, idList{IDs: ids})
}

// GetTranscript handles the GET /transcripts/{id} request.
func (s *Server) GetTranscript(w http.ResponseWriter, r *http.Request, id string) {
	t, err := s.Sessions.Transcript(r.Context(), id)
	if err != nil {
		s.writeError(w, r, "GetTranscript", err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}
