// Package api exposes the read path HTTP surface described in §4.6/§6.2:
// the filtered, paginated packet query endpoint, a component-level health
// check, Prometheus metrics, and the real-time subscription hub, routed
// with gorilla/mux the way the teacher's restserver controller does.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/chrissnell/aprsingest/internal/fanout"
	"github.com/chrissnell/aprsingest/internal/log"
	"github.com/chrissnell/aprsingest/internal/packet"
	"github.com/chrissnell/aprsingest/internal/store"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Searcher is the read-path collaborator backing GET /api/v1/packets.
// Implemented by internal/store's backends.
type Searcher interface {
	Search(ctx context.Context, f store.Filter) ([]packet.Packet, int64, error)
}

// Pinger reports liveness for a single dependency, used by /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StreamState reports the APRS-IS stream client's connection state, used
// by /health.
type StreamState interface {
	Connected() bool
}

// Server is the HTTP surface for the gateway's read path and fan-out hub.
type Server struct {
	router   *mux.Router
	httpSrv  *http.Server
	logger   *zap.SugaredLogger
	store    Searcher
	db       Pinger
	cache    Pinger
	stream   StreamState
	registry *fanout.Registry
}

// New wires every route described in §6.2/§6.3 behind listenAddr.
func New(listenAddr string, store Searcher, db, cache Pinger, stream StreamState, registry *fanout.Registry, logger *zap.SugaredLogger) *Server {
	s := &Server{
		logger:   logger,
		store:    store,
		db:       db,
		cache:    cache,
		stream:   stream,
		registry: registry,
	}

	router := mux.NewRouter()
	router.Use(s.loggingMiddleware)
	router.HandleFunc("/api/v1/packets", s.handleGetPackets).Methods(http.MethodGet)
	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/hubs/packets", s.handleHub)
	router.HandleFunc("/debug/logs", s.handleDebugLogs).Methods(http.MethodGet)

	s.router = router
	s.httpSrv = &http.Server{
		Addr:    listenAddr,
		Handler: router,
	}

	return s
}

// Run starts the HTTP server and blocks until ctx is cancelled, at which
// point it shuts the server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("read API listening on %s", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHub(w http.ResponseWriter, r *http.Request) {
	if err := fanout.Serve(w, r, s.registry, s.logger); err != nil {
		s.logger.Debugf("subscription hub connection ended: %v", err)
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.LogHTTPRequest(r.Method, r.URL.Path, rec.status, time.Since(start), rec.size, r.RemoteAddr, r.UserAgent(), "", nil)
	})
}

// statusRecorder captures the status code and response size so they can
// be attached to the HTTP access log entry.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}
