// Package gateway is the resilient HTTP façade in front of the analysis
// service. Every operation with a remote analogue is attempted against
// the service first; when the service is unreachable or errors, the
// handler serves an equivalent answer from local state, shaped like the
// remote success response, so the browser never sees a hard failure.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/piyawatSritavong/cybersentinel/internal/config"
	"github.com/piyawatSritavong/cybersentinel/internal/metrics"
	"github.com/piyawatSritavong/cybersentinel/internal/notify"
	"github.com/piyawatSritavong/cybersentinel/internal/onboarding"
	"github.com/piyawatSritavong/cybersentinel/internal/sentinel"
	"github.com/piyawatSritavong/cybersentinel/internal/store"
)

// Server is the assembled gateway.
type Server struct {
	cfg      config.Config
	log      *zap.Logger
	store    *store.Store
	client   *sentinel.Client
	creds    *sentinel.Credentials
	settings *onboarding.Store
	channels map[string]notify.Channel
}

// New assembles a Server from its subsystems.
func New(cfg config.Config, log *zap.Logger, st *store.Store, client *sentinel.Client, creds *sentinel.Credentials, settings *onboarding.Store, channels map[string]notify.Channel) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if channels == nil {
		channels = map[string]notify.Channel{}
	}
	return &Server{
		cfg:      cfg,
		log:      log,
		store:    st,
		client:   client,
		creds:    creds,
		settings: settings,
		channels: channels,
	}
}

// Handler returns the complete HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("gateway listening", zap.String("addr", s.cfg.ListenAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("gateway stopped")
	return nil
}

func routePattern(r *http.Request) string {
	if r.Pattern != "" {
		return r.Pattern
	}
	return r.URL.Path
}

// timed observes handler latency under the bound route pattern, so the
// duration histogram joins the request counter on the route label and
// per-id URLs cannot inflate label cardinality.
func (s *Server) timed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next(w, r)
		metrics.RequestDuration.WithLabelValues(routePattern(r)).Observe(time.Since(start).Seconds())
	}
}

// respondRemote writes a successful remote response verbatim.
func (s *Server) respondRemote(w http.ResponseWriter, r *http.Request, v any) {
	metrics.RequestsTotal.WithLabelValues(routePattern(r), "remote").Inc()
	writeJSON(w, http.StatusOK, v)
}

// respondLocal writes a response served purely from local state.
func (s *Server) respondLocal(w http.ResponseWriter, r *http.Request, v any) {
	metrics.RequestsTotal.WithLabelValues(routePattern(r), "local").Inc()
	writeJSON(w, http.StatusOK, v)
}

// respondFallback records the remote failure and writes the fallback body.
func (s *Server) respondFallback(w http.ResponseWriter, r *http.Request, err error, status int, v any) {
	s.recordRemoteFailure(err)
	metrics.RequestsTotal.WithLabelValues(routePattern(r), "fallback").Inc()
	s.log.Debug("serving fallback",
		zap.String("route", routePattern(r)),
		zap.Error(err),
	)
	writeJSON(w, status, v)
}

func (s *Server) recordRemoteFailure(err error) {
	var re *sentinel.RemoteError
	switch {
	case errors.Is(err, sentinel.ErrRemoteUnavailable):
		metrics.RemoteFailuresTotal.WithLabelValues("unavailable").Inc()
	case errors.As(err, &re):
		metrics.RemoteFailuresTotal.WithLabelValues("error").Inc()
	}
}

// decodeBody reads a JSON request body into a generic map. Bodies are
// forwarded without validation; malformed input is the remote service's
// or the store's problem to reject. An empty or unreadable body decodes
// to an empty map.
func decodeBody(r *http.Request) map[string]any {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body == nil {
		body = map[string]any{}
	}
	return body
}

func stringField(body map[string]any, key string) string {
	v, _ := body[key].(string)
	return v
}
