package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"oceaneye/internal/config"
	"oceaneye/internal/digest"
	"oceaneye/internal/identification"
	"oceaneye/internal/logging"
	"oceaneye/internal/services"
)

// Identifier is the identification surface the server needs.
type Identifier interface {
	Identify(ctx context.Context, image []byte) identification.Report
	IdentifyDigest(ctx context.Context, d digest.Digest) identification.Report
	Reject(ctx context.Context, err error) identification.Report
	Algorithm() digest.Algorithm
	InFlight() bool
}

// Server serves the local identification API.
type Server struct {
	bind          string
	catalogURL    string
	reencode      bool
	history       bool
	maxImageBytes int64
	identifier    Identifier
	logger        *slog.Logger
	router        chi.Router
	server        *http.Server

	mu       sync.Mutex
	listener net.Listener
}

// NewServer builds the router for identifier using cfg.
func NewServer(cfg *config.Config, identifier Identifier, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("api: config required")
	}
	if identifier == nil {
		return nil, errors.New("api: identifier required")
	}
	bind := strings.TrimSpace(cfg.API.Bind)
	if bind == "" {
		return nil, errors.New("api: bind address required")
	}

	srv := &Server{
		bind:          bind,
		catalogURL:    cfg.Catalog.URL,
		reencode:      cfg.Digest.Reencode,
		history:       cfg.History.Enabled,
		maxImageBytes: cfg.API.MaxImageBytes,
		identifier:    identifier,
		logger:        logging.NewComponentLogger(logger, "api-server"),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(srv.stampRequest)
	r.Get("/healthz", srv.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", srv.handleStatus)
		r.Post("/identify", srv.handleIdentify)
		r.Get("/records/{digest}", srv.handleRecord)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		srv.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		srv.writeError(w, http.StatusNotFound, "not found")
	})
	srv.router = r

	srv.server = &http.Server{
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorWithContext(s.logger, "api server error", "api_serve", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.logger.Info("api server listening",
		logging.String(logging.FieldEventType, "api_listen"),
		logging.String("bind", listener.Addr().String()),
	)
	return nil
}

// Addr returns the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(shutdownCtx)
}

func (s *Server) stampRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := services.WithRequestID(r.Context(), requestID)
		ctx = services.WithSource(ctx, "api")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, StatusResponse{
		CatalogURL:     s.catalogURL,
		Algorithm:      string(s.identifier.Algorithm()),
		Reencode:       s.reencode,
		InFlight:       s.identifier.InFlight(),
		HistoryEnabled: s.history,
		MaxImageBytes:  s.maxImageBytes,
	})
}

func (s *Server) handleIdentify(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, s.maxImageBytes)
	image, err := io.ReadAll(body)
	if err != nil {
		s.writeReport(w, s.rejectUpload(r.Context(), err))
		return
	}
	s.writeReport(w, s.identifier.Identify(r.Context(), image))
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	d, err := digest.Parse(chi.URLParam(r, "digest"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeReport(w, s.identifier.IdentifyDigest(r.Context(), d))
}

// rejectUpload settles an upload that could not be read so it is recorded
// like any other identification.
func (s *Server) rejectUpload(ctx context.Context, err error) identification.Report {
	reason := "read request body"
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		reason = fmt.Sprintf("image exceeds %d bytes", maxErr.Limit)
	}
	logging.WarnWithContext(logging.WithContext(ctx, s.logger), "upload rejected", "api_upload",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "send a smaller photo or raise api.max_image_bytes"),
		logging.String(logging.FieldImpact, "photo was not identified"),
	)
	return s.identifier.Reject(ctx, &digest.EncodingError{Reason: reason, Err: err})
}

func (s *Server) writeReport(w http.ResponseWriter, report identification.Report) {
	s.writeJSON(w, HTTPStatus(report), IdentifyResponse{Report: report.View()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}
