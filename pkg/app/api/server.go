// Package api implements app.Runner for the connector API server process.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apphttp "github.com/tensor-horizon/evidence-exchange/pkg/app/http"
	"github.com/tensor-horizon/evidence-exchange/pkg/auth"
	"github.com/tensor-horizon/evidence-exchange/pkg/bundle"
	"github.com/tensor-horizon/evidence-exchange/pkg/cms"
	"github.com/tensor-horizon/evidence-exchange/pkg/config"
	"github.com/tensor-horizon/evidence-exchange/pkg/encryptor"
	"github.com/tensor-horizon/evidence-exchange/pkg/exchange"
	"github.com/tensor-horizon/evidence-exchange/pkg/exchangestore"
	"github.com/tensor-horizon/evidence-exchange/pkg/indexer"
	"github.com/tensor-horizon/evidence-exchange/pkg/participant"
	"github.com/tensor-horizon/evidence-exchange/pkg/pgutil"
	"github.com/tensor-horizon/evidence-exchange/pkg/platform"
	"github.com/tensor-horizon/evidence-exchange/pkg/solid"
)

const defaultRequestTimeout = 60

// Server holds cfg to init the connector server.
type Server struct {
	cfg *config.Config
}

// NewServer initializes a new connector server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("connector config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting evidence exchange connector",
		zap.String("self", cfg.Directory.SelfID),
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	directory, err := participant.LoadFile(cfg.Directory.ParticipantsFile)
	if err != nil {
		return fmt.Errorf("load participant registry: %w", err)
	}
	logger.Info("Loaded participant registry",
		zap.String("file", cfg.Directory.ParticipantsFile),
		zap.Int("participants", len(directory.All())),
	)

	service, closeStore, err := s.buildService(directory, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	stopMetrics := s.startMetricsServer(logger)
	defer stopMetrics()

	router := s.setupRouter(service, logger)

	return apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)
}

// buildService wires the external-service clients into the exchange
// orchestrator. The returned closer releases the state store connection,
// if one is configured.
func (s *Server) buildService(directory *participant.Directory, logger *zap.Logger) (exchange.Service, func(), error) {
	cfg := s.cfg

	enc, err := encryptor.New(&encryptor.Config{
		BaseURL:     cfg.Encryptor.BaseURL,
		Mode:        cfg.Encryptor.Mode,
		ResourceDir: cfg.Directory.ResourceDir,
		RSAKeyDir:   cfg.Encryptor.RSAKeyDir,
		Timeout:     cfg.Encryptor.Timeout,
	}, directory, encryptor.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("create encryptor client: %w", err)
	}

	indexClient, err := indexer.New(indexer.Config{
		BaseURL: cfg.Indexer.BaseURL,
		Timeout: cfg.Indexer.Timeout,
	}, indexer.WithLogger(logger))
	if err != nil {
		return nil, nil, fmt.Errorf("create indexer client: %w", err)
	}
	throttle := indexer.NewThrottle(
		int64(cfg.Indexer.MaxInFlight),
		cfg.Indexer.PreCallDelay,
		cfg.Indexer.PostCallDelay,
		indexer.WithLogger(logger),
	)

	deps := exchange.Deps{
		PlatformBaseURL: cfg.Platform.BaseURL,
		Directory:       directory,
		Codec:           bundle.NewCodec(bundle.WithLogger(logger)),
		Encryptor:       enc,
		Storage:         solid.New(solid.WithLogger(logger)),
		Platform:        platform.New(platform.WithLogger(logger)),
		Notifier:        cms.New(cfg.Exchange.CMSToken, cms.WithLogger(logger)),
		Indexer:         indexClient,
		Throttle:        throttle,
	}

	closeStore := func() {}
	if cfg.Database.Enabled() {
		db, err := pgutil.ConnectDB(&cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect db: %w", err)
		}
		logger.Info("Connected to exchange state store",
			zap.String("host", cfg.Database.Host),
			zap.String("database", cfg.Database.Database),
		)
		deps.Store = exchangestore.NewStore(db)
		closeStore = func() { _ = db.Close() }
	} else {
		logger.Info("Exchange state store disabled, running stateless")
	}

	service, err := exchange.New(deps, cfg.Directory.SelfID, cfg.Exchange.GrantDuration, logger)
	if err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("create exchange service: %w", err)
	}

	return exchange.NewLog(service, logger), closeStore, nil
}

func (s *Server) setupRouter(service exchange.Service, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Second * defaultRequestTimeout))

	validator := auth.NewJWTValidator(s.cfg.JWKS.URL, s.cfg.JWKS.Issuer)
	if validator.IsConfigured() {
		logger.Info("JWT validation enabled", zap.String("jwks_url", s.cfg.JWKS.URL))
	}
	r.Use(auth.Middleware(validator, logger))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	exchange.RegisterRoutes(r, service, logger)

	return r
}

// startMetricsServer exposes /metrics on its own port when monitoring is
// enabled. The returned stopper shuts the listener down.
func (s *Server) startMetricsServer(logger *zap.Logger) func() {
	if !s.cfg.Monitoring.Enabled {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Monitoring.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Metrics server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Metrics server error", zap.Error(err))
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}
