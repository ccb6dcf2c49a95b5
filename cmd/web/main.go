// cmd/web/main.go
//
// Players admin panel – HTTP entry point.
//
// Start-up sequence
// -----------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Connect to Vault when VAULT_ADDR is set, then load configuration;
//     `vault:` values are resolved during the load.
//
//  3. Start the daily rotating logger (tees to console when running in a
//     TTY or when logging.tee is set).
//
//  4. Open the session state store named by state.driver (memory, mysql, or
//     redis) and build the session manager, which lazy-loads one panel per
//     browser session.
//
//  5. Build the players component on top of the REST client.
//
//  6. Assemble the router:
//
//     • chi RequestID and Recoverer
//     • requestinfo (UA, GeoIP, request logger, access log)
//     • security headers and ForceHTTPS
//     • /metrics, /healthz, and the panel mounted at “/”
//
//  7. Serve until SIGINT or SIGTERM, then shut down gracefully.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/playeradmin/components/players"
	"github.com/yanizio/playeradmin/internal/component"
	"github.com/yanizio/playeradmin/internal/config"
	"github.com/yanizio/playeradmin/internal/database"
	"github.com/yanizio/playeradmin/internal/form"
	"github.com/yanizio/playeradmin/internal/logger"
	"github.com/yanizio/playeradmin/internal/middleware"
	"github.com/yanizio/playeradmin/internal/panel"
	"github.com/yanizio/playeradmin/internal/requestinfo"
	"github.com/yanizio/playeradmin/internal/restclient"
	"github.com/yanizio/playeradmin/internal/server"
	"github.com/yanizio/playeradmin/internal/session"
	"github.com/yanizio/playeradmin/internal/vault"
)

const (
	serverEnvPath   = "/usr/local/etc/playeradmin/panel.env"
	shutdownTimeout = 15 * time.Second
	healthTimeout   = 2 * time.Second
)

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	if err := run(); err != nil {
		zap.S().Errorw("playeradmin stopped", "err", err)
		_ = zap.L().Sync()
		fmt.Fprintln(os.Stderr, "playeradmin:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Vault and configuration ─────────────────────────────────────
	//
	var secrets config.SecretSource
	if os.Getenv("VAULT_ADDR") != "" {
		vc, err := vault.New(ctx)
		if err != nil {
			return fmt.Errorf("vault: %w", err)
		}
		secrets = vc
	}
	cfg, err := config.Load(ctx, secrets)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	//
	// ── 2.  Logger ──────────────────────────────────────────────────────
	//
	log, err := logger.New(logger.Options{
		Dir:   cfg.Abs(cfg.Logging.Dir),
		Level: cfg.Logging.Level,
		Tee:   cfg.Logging.Tee || runningInTTY(),
	})
	if err != nil {
		return fmt.Errorf("start logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	//
	// ── 3.  Session state and panels ────────────────────────────────────
	//
	store, err := openStore(ctx, cfg.State)
	if err != nil {
		return err
	}
	log.Infow("session store online", "driver", cfg.State.Driver)

	backend, err := restclient.New(cfg.Backend.BaseURL, restclient.WithTimeout(cfg.Backend.Timeout))
	if err != nil {
		return fmt.Errorf("backend client: %w", err)
	}

	opts := session.Options{
		IdleTTL:       cfg.State.IdleTTL,
		MaxEntries:    cfg.State.MaxEntries,
		EvictInterval: cfg.State.EvictInterval,
	}
	if cfg.State.Driver == "mysql" {
		opts.PurgeAfter = cfg.State.TTL
	}
	sessions := session.NewManager(store, func(st panel.PaginationState) *panel.Panel {
		return panel.New(backend, st, panel.Options{DateLayout: cfg.Panel.DateLayout})
	}, panel.NewPaginationState(cfg.Panel.DefaultPageSize), opts)
	defer func() { _ = sessions.Close() }()

	//
	// ── 4.  Players component ───────────────────────────────────────────
	//
	var overrides fs.FS
	if dir := cfg.Abs(cfg.Panel.TemplateDir); dir != "" {
		overrides = os.DirFS(dir)
	}
	comp, err := players.New(players.Deps{
		Sessions:  sessions,
		CSRF:      form.NewCSRF(cfg.Panel.CSRFKey),
		Templates: overrides,
		NoCache:   cfg.Panel.NoCache,
	})
	if err != nil {
		return fmt.Errorf("players component: %w", err)
	}
	components := component.NewRegistry()
	if err := components.Register(comp); err != nil {
		return err
	}

	resolver, err := requestinfo.NewResolver(cfg.Abs(cfg.GeoIP.DBPath))
	if err != nil {
		return fmt.Errorf("geoip: %w", err)
	}
	defer func() { _ = resolver.Close() }()

	//
	// ── 5.  Serve until signalled ───────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, newRouter(components, resolver, backend, cfg.HTTP.ForceHTTPS), server.Timeouts{
		Read:  cfg.HTTP.ReadTimeout,
		Write: cfg.HTTP.WriteTimeout,
		Idle:  cfg.HTTP.IdleTimeout,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("listening", "addr", cfg.HTTP.ListenAddr, "backend", cfg.Backend.BaseURL)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Infow("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

// newRouter wires middleware, operational endpoints, and the components.
func newRouter(components *component.Registry, rs *requestinfo.Resolver, backend panel.Backend, forceHTTPS bool) http.Handler {
	r := chi.NewRouter()
	r.Use(
		chimw.RequestID,
		chimw.Recoverer,
		rs.Middleware,
		middleware.Security,
		middleware.ForceHTTPS(forceHTTPS),
	)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", healthz(backend))
	components.Mount(r)
	return r
}

// healthz answers 200 when the players backend answers a count request.
func healthz(backend panel.Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if _, err := backend.Count(ctx); err != nil {
			logger.FromContext(r.Context()).Warnw("health check failed", "err", err)
			http.Error(w, "backend unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	}
}

// openStore builds the Store selected by state.driver.
func openStore(ctx context.Context, st config.State) (session.Store, error) {
	switch st.Driver {
	case "mysql":
		db, err := database.Open(ctx, st.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		s := session.NewMySQLStore(db)
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("session store migrate: %w", err)
		}
		return s, nil

	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     st.RedisAddr,
			Password: st.RedisPassword,
			DB:       st.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("session store: redis ping: %w", err)
		}
		return session.NewRedisStore(rdb, st.TTL), nil

	default:
		return session.NewMemoryStore(), nil
	}
}
