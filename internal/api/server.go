package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/nerrad567/emotionalsongs-core/internal/auth"
	"github.com/nerrad567/emotionalsongs-core/internal/catalog"
	"github.com/nerrad567/emotionalsongs-core/internal/infrastructure/config"
	"github.com/nerrad567/emotionalsongs-core/internal/infrastructure/database"
	"github.com/nerrad567/emotionalsongs-core/internal/infrastructure/logging"
)

const shutdownGrace = 10 * time.Second

// ConnectionChecker reports whether an optional backing service is connected.
// *mqtt.Client satisfies it.
type ConnectionChecker interface {
	IsConnected() bool
}

// Deps are the collaborators handed to New. Optional fields may be nil.
type Deps struct {
	Config  config.APIConfig
	Catalog config.CatalogConfig
	Logger  *logging.Logger
	Store   *catalog.Store
	DB      *database.DB
	Tokens  *auth.TokenIssuer
	MQTT    ConnectionChecker // optional
	Metrics StatsSource       // optional
	Version string
}

// Server serves the catalog over HTTP.
type Server struct {
	cfg        config.APIConfig
	catalogCfg config.CatalogConfig
	logger     *logging.Logger
	store      *catalog.Store
	db         *database.DB
	tokens     *auth.TokenIssuer
	mqtt       ConnectionChecker
	sink       StatsSource
	version    string
	startTime  time.Time
	server     *http.Server
}

// New validates deps. Nothing listens until Start.
func New(deps Deps) (*Server, error) {
	switch {
	case deps.Logger == nil:
		return nil, errors.New("api: logger is required")
	case deps.Store == nil:
		return nil, errors.New("api: catalog store is required")
	case deps.DB == nil:
		return nil, errors.New("api: database is required")
	case deps.Tokens == nil:
		return nil, errors.New("api: token issuer is required")
	}

	return &Server{
		cfg:        deps.Config,
		catalogCfg: deps.Catalog,
		logger:     deps.Logger.With("component", "api"),
		store:      deps.Store,
		db:         deps.DB,
		tokens:     deps.Tokens,
		mqtt:       deps.MQTT,
		sink:       deps.Metrics,
		version:    deps.Version,
		startTime:  time.Now(),
	}, nil
}

// Start binds the listen address and serves in a background goroutine.
// Bind failures are returned; later serve errors are logged.
func (s *Server) Start(_ context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	s.server = &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           s.buildRouter(),
		ReadHeaderTimeout: s.cfg.Timeouts.ReadDuration(),
		ReadTimeout:       s.cfg.Timeouts.ReadDuration(),
		WriteTimeout:      s.cfg.Timeouts.WriteDuration(),
		IdleTimeout:       s.cfg.Timeouts.IdleDuration(),
	}

	tls := s.cfg.TLS
	s.logger.Info("API server listening", "address", s.server.Addr, "tls", tls.Enabled)
	go func() {
		var serveErr error
		if tls.Enabled {
			serveErr = s.server.ServeTLS(ln, tls.CertFile, tls.KeyFile)
		} else {
			serveErr = s.server.Serve(ln)
		}
		if !errors.Is(serveErr, http.ErrServerClosed) {
			s.logger.Error("API server stopped", "error", serveErr)
		}
	}()
	return nil
}

// Close drains in-flight requests for up to shutdownGrace.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	s.logger.Info("API server draining", "grace", shutdownGrace)
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("api shutdown: %w", err)
	}
	return nil
}

// HealthCheck fails until Start has succeeded.
func (s *Server) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.server == nil {
		return errors.New("api: not started")
	}
	return nil
}
