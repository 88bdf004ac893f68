// Package server exposes the sentiment pipeline over HTTP, plus health and
// metrics endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	apperrors "github.com/marketpulse/sentiment/internal/core/errors"
	"github.com/marketpulse/sentiment/internal/pipeline"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
	requestTimeout    = 2 * time.Minute

	paramTicker            = "ticker"
	paramLookbackDays      = "lookback_days"
	paramLimit             = "limit"
	paramIncludeRationales = "include_rationales"

	logFieldRequestID = "request_id"
	logFieldTicker    = "ticker"
)

var tickerPattern = regexp.MustCompile(`^[A-Za-z0-9.\-]{1,10}$`)

// Analyzer collects and analyzes items for a ticker. Implemented by app.Service.
type Analyzer interface {
	Analyze(ctx context.Context, ticker string, lookbackDays int, includeRationales bool, limit int) pipeline.Result
}

// Limits are the request bounds applied to query parameters.
type Limits struct {
	LookbackDefault int
	LookbackMax     int
	MaxItems        int
}

type Server struct {
	analyzer Analyzer
	limits   Limits
	port     int
	logger   *zerolog.Logger
}

func New(analyzer Analyzer, limits Limits, port int, logger *zerolog.Logger) *Server {
	return &Server{
		analyzer: analyzer,
		limits:   limits,
		port:     port,
		logger:   logger,
	}
}

// Start runs the HTTP server until the context is canceled.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprint(w, "OK")
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/sentiment", s.handleSentiment)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)

		defer cancel()

		//nolint:errcheck,contextcheck // shutdown in signal handler is best-effort, non-inherited context intentional
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info().Int("port", s.port).Msg("HTTP server starting")

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()

	ticker, err := parseTicker(r.URL.Query().Get(paramTicker))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	lookbackDays := clampInt(
		parseIntOr(r.URL.Query().Get(paramLookbackDays), s.limits.LookbackDefault),
		1, s.limits.LookbackMax)

	limit := clampInt(
		parseIntOr(r.URL.Query().Get(paramLimit), s.limits.MaxItems),
		1, s.limits.MaxItems)

	includeRationales := parseBoolOr(r.URL.Query().Get(paramIncludeRationales), true)

	logger := s.logger.With().
		Str(logFieldRequestID, requestID).
		Str(logFieldTicker, ticker).
		Logger()

	logger.Info().Int(paramLookbackDays, lookbackDays).Int(paramLimit, limit).Msg("sentiment request")

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	result := s.analyzer.Analyze(ctx, ticker, lookbackDays, includeRationales, limit)

	logger.Info().
		Int("n_items", result.NItems).
		Float64("overall_score", result.OverallScore).
		Msg("sentiment response")

	writeJSON(w, http.StatusOK, result)
}

func parseTicker(raw string) (string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(raw))
	if !tickerPattern.MatchString(ticker) {
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidTicker, raw)
	}

	return ticker, nil
}

func parseIntOr(raw string, def int) int {
	if raw == "" {
		return def
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}

	return n
}

func parseBoolOr(raw string, def bool) bool {
	if raw == "" {
		return def
	}

	b, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}

	return b
}

func clampInt(n, low, high int) int {
	if n < low {
		return low
	}

	if n > high {
		return high
	}

	return n
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
