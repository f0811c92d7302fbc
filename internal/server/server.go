// Package server exposes the analysis operations over HTTP/JSON.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ppiankov/newslens/internal/factcheck"
	"github.com/ppiankov/newslens/internal/model"
	"github.com/ppiankov/newslens/internal/pipeline"
	"github.com/ppiankov/newslens/internal/summarize"
)

const shutdownTimeout = 30 * time.Second

// Analyzer is the set of operations served over HTTP
type Analyzer interface {
	Summarize(ctx context.Context, text string) (*summarize.Result, error)
	SummarizeVideo(ctx context.Context, videoURL string) (*pipeline.VideoSummary, error)
	Answer(ctx context.Context, summary, question string) (string, error)
	DetectFakeNews(ctx context.Context, text string) (*model.FakeNewsVerdict, error)
	EnsembleCheck(ctx context.Context, text string) (*factcheck.EnsembleResult, error)
}

// Server is the HTTP server
type Server struct {
	analyzer     Analyzer
	logger       zerolog.Logger
	maxBodyBytes int64
	mux          *http.ServeMux
}

// New creates a Server
func New(analyzer Analyzer, cfg model.ServerConfig, logger zerolog.Logger) *Server {
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 2 << 20
	}
	s := &Server{
		analyzer:     analyzer,
		logger:       logger,
		maxBodyBytes: maxBody,
		mux:          http.NewServeMux(),
	}
	s.routes()
	return s
}

// Handler returns the HTTP handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.withRequestContext(s.withRecover(s.mux))
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /summarize", s.handleSummarize)
	s.mux.HandleFunc("POST /summarize-video", s.handleSummarizeVideo)
	s.mux.HandleFunc("POST /answer-question", s.handleAnswer)
	s.mux.HandleFunc("POST /detect-fake-news", s.handleDetectFakeNews)
	s.mux.HandleFunc("POST /ensemble-check", s.handleEnsembleCheck)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.serve(ctx, ln)
}

// serve stops accepting when ctx is done and lets in-flight requests
// finish. Request contexts do not derive from ctx.
func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info().Msg("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg, "status": "error"})
}
