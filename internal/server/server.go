// Package server exposes the aggregations over HTTP as JSON.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rustyeddy/portfolio/aggregate"
	"github.com/rustyeddy/portfolio/broker"
	"github.com/rustyeddy/portfolio/market"
	"github.com/rustyeddy/portfolio/pkg/id"
)

// RequestIDHeader carries the request ID on responses.
const RequestIDHeader = "X-Request-ID"

// Settings is the read-only registry the server answers from.
type Settings struct {
	Accounts []broker.Credentials

	// BenchmarkSymbol enables /api/benchmark and beta on histories.
	BenchmarkSymbol string
	// BenchmarkCredentials, when set, replace the first account for
	// benchmark fetches.
	BenchmarkCredentials *broker.Credentials

	MarketIndex *aggregate.MarketIndex
}

// BenchmarkAccounts returns the credentials used for benchmark fetches.
func (s Settings) BenchmarkAccounts() []broker.Credentials {
	if s.BenchmarkCredentials != nil {
		return []broker.Credentials{*s.BenchmarkCredentials}
	}
	return s.Accounts
}

// Server routes API requests to an Aggregator.
type Server struct {
	agg      *aggregate.Aggregator
	settings Settings
	logger   zerolog.Logger
	mux      *http.ServeMux
	handler  http.Handler
}

// New returns a Server. Requests are logged to logger.
func New(agg *aggregate.Aggregator, settings Settings, logger zerolog.Logger) *Server {
	s := &Server{agg: agg, settings: settings, logger: logger, mux: http.NewServeMux()}
	s.routes()
	s.handler = s.wrap(s.mux)
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/accounts", s.handleAccounts)
	s.mux.HandleFunc("GET /api/portfolio-history/{period}", s.requireAccounts(s.handleHistory))
	s.mux.HandleFunc("GET /api/benchmark/{period}", s.requireAccounts(s.handleBenchmark))
	s.mux.HandleFunc("GET /api/account-summary", s.requireAccounts(s.handleSummary))
	s.mux.HandleFunc("GET /api/risk", s.requireAccounts(s.handleRisk))
}

// wrap adds request IDs and access logging.
func (s *Server) wrap(h http.Handler) http.Handler {
	h = hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	})(h)
	h = requestID(h)
	h = hlog.NewHandler(s.logger)(h)
	return h
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// requestID tags the request logger and the response with a fresh ULID.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := id.New()
		w.Header().Set(RequestIDHeader, rid)
		l := zerolog.Ctx(r.Context()).With().Str("request_id", rid).Logger()
		next.ServeHTTP(w, r.WithContext(l.WithContext(r.Context())))
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then drains open
// requests for up to drain.
func (s *Server) ListenAndServe(ctx context.Context, addr string, drain time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Int("accounts", len(s.settings.Accounts)).Msg("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), drain)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requireAccounts(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(s.settings.Accounts) == 0 {
			httpError(w, http.StatusNotFound, "No accounts configured")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type accountName struct {
	Name string `json:"name"`
}

// GET /api/accounts
func (s *Server) handleAccounts(w http.ResponseWriter, _ *http.Request) {
	out := make([]accountName, len(s.settings.Accounts))
	for i, a := range s.settings.Accounts {
		out[i] = accountName{Name: a.Name}
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /api/portfolio-history/{period}
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	histories := s.agg.BuildAccountHistories(ctx, s.settings.Accounts, period)
	if s.settings.BenchmarkSymbol != "" {
		tf := period.Timeframe()
		if bench, ok := s.agg.BuildBenchmark(ctx, s.settings.BenchmarkAccounts(), s.settings.BenchmarkSymbol, period, tf); ok {
			s.agg.AttachBeta(histories, bench, tf)
		}
	}
	writeJSON(w, http.StatusOK, histories)
}

// GET /api/benchmark/{period}
//
// An unavailable benchmark is answered with null.
func (s *Server) handleBenchmark(w http.ResponseWriter, r *http.Request) {
	period, ok := parsePeriod(w, r)
	if !ok {
		return
	}
	if s.settings.BenchmarkSymbol == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}

	bench, ok := s.agg.BuildBenchmark(r.Context(), s.settings.BenchmarkAccounts(), s.settings.BenchmarkSymbol, period, period.Timeframe())
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, bench)
}

// GET /api/account-summary
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.agg.BuildAccountSummaries(r.Context(), s.settings.Accounts, s.settings.MarketIndex))
}

// GET /api/risk
func (s *Server) handleRisk(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.agg.BuildRiskRollup(r.Context(), s.settings.Accounts))
}

func parsePeriod(w http.ResponseWriter, r *http.Request) (market.Period, bool) {
	p, err := market.ParsePeriod(r.PathValue("period"))
	if err != nil {
		httpError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return p, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
