package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	appmatch "padel-score-service/internal/app/match"
	"padel-score-service/internal/config"
	httpapi "padel-score-service/internal/http"
	"padel-score-service/internal/http/handlers"
	"padel-score-service/internal/kv"
	"padel-score-service/internal/live"
	"padel-score-service/internal/logging"
	"padel-score-service/internal/matchlog"
	"padel-score-service/internal/metrics"
	"padel-score-service/internal/persist"
	"padel-score-service/internal/scheduler"
)

var metricsSetup = metrics.Setup

/// Server owns the full component graph: durable store, persistence
// synchronizer, match service, live hub, and the two HTTP listeners.
type Server struct {
	cfg     config.Config
	logger  *slog.Logger
	metrics *metrics.Recorder

	store  kv.Store
	syncer *persist.Synchronizer
	app    *appmatch.Service
	hub    *live.Hub

	httpServer    httpServer
	metricsServer httpServer
	metricsStop   func(context.Context) error
}

// New constructs a fully wired server. The durable store opens here; the
// saved match is not restored until Run.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger)

	store, err := kv.Open(cfg.Persist.Driver, cfg.Persist.StorePath)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Persist.Driver, err)
	}

	syncer := persist.New(store, kv.NewMemory(), scheduler.NewTimer(), logger, recorder, cfg.Persist.Window)
	log := matchlog.New(store, cfg.Persist.LogLimit, logger)
	app := appmatch.NewService(syncer, log, logger, recorder, appmatch.Defaults{
		LabelA:          cfg.Match.LabelA,
		LabelB:          cfg.Match.LabelB,
		SetsNeededToWin: cfg.Match.SetsNeededToWin,
	})

	hub := live.NewHub(logger, recorder, cfg.CORSOrigins)
	app.Subscribe(hub.BroadcastState)

	srv := &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		store:         store,
		syncer:        syncer,
		app:           app,
		hub:           hub,
		metricsServer: metricsSrv,
		metricsStop:   metricsShutdown,
	}
	srv.httpServer = buildHTTPServer(cfg, app, syncer, hub, logger, recorder)
	return srv, nil
}

// newServerWithDeps is used for testing to inject custom components.
func newServerWithDeps(cfg config.Config, logger *slog.Logger, app *appmatch.Service, syncer *persist.Synchronizer, store kv.Store, hub *live.Hub, httpSrv httpServer) *Server {
	return &Server{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		syncer:     syncer,
		app:        app,
		hub:        hub,
		httpServer: httpSrv,
	}
}

func buildHTTPServer(cfg config.Config, app *appmatch.Service, syncer *persist.Synchronizer, hub *live.Hub, logger *slog.Logger, recorder *metrics.Recorder) httpServer {
	handler := handlers.NewHandler(app, logger, syncer.Status)
	var admin *handlers.AdminHandler
	if cfg.AdminToken != "" {
		admin = handlers.NewAdminHandler(app, cfg.AdminToken, logger)
	}
	router := httpapi.NewRouter(handler, admin, hub, logger, recorder, cfg.CORSOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	if logger != nil {
		srv.ErrorLog = slog.NewLogLogger(logger.Handler(), slog.LevelError)
	}
	return netHTTPServer{srv: srv}
}

func buildMetrics(cfg config.Config, logger *slog.Logger) (*metrics.Recorder, httpServer, func(context.Context) error) {
	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "error", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{srv: &http.Server{
			Addr:    ":" + recCfg.Port,
			Handler: handler,
		}}
	}
	return rec, metricsSrv, shutdown
}

// Run resumes the saved match, starts the listeners, and blocks until ctx is
// canceled or a listener fails. Shutdown happens in dependency order before
// Run returns.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.app.Resume()
	if s.hub != nil {
		go s.hub.Run()
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logging.Info(s.logger, "http server starting", "addr", s.httpServer.Addr())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	if s.metricsServer != nil {
		group.Go(func() error {
			logging.Info(s.logger, "metrics server starting", "addr", s.metricsServer.Addr())
			if err := s.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	<-gctx.Done()
	if stop != nil {
		stop()
	}
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()

	if err := group.Wait(); err != nil {
		logging.Error(s.logger, "listener failed", err)
	}
	logging.Info(s.logger, "shutdown complete")
}

// gracefulShutdown drains in dependency order: stop accepting requests, drop
// live clients, land outstanding writes, then release the store.
func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Warn(s.logger, "http server shutdown failed", "error", err)
	}
	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "error", err)
		}
	}
	if s.hub != nil {
		s.hub.Stop()
	}

	if s.app != nil {
		s.app.Flush()
		if err := s.app.Close(); err != nil {
			logging.Warn(s.logger, "persistence close failed", "error", err)
		}
	}
	if s.syncer != nil {
		// Last resort: if the final drain could not reach the durable store,
		// reissue the mirrored state so the retry happens before the process
		// exits.
		s.syncer.RecoverPending()
	}

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			logging.Warn(s.logger, "store close failed", "error", err)
		}
	}
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
