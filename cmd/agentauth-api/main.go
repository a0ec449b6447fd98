package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/edvin/agentauth/internal/api"
	mw "github.com/edvin/agentauth/internal/api/middleware"
	"github.com/edvin/agentauth/internal/config"
	"github.com/edvin/agentauth/internal/core"
	"github.com/edvin/agentauth/internal/db"
	"github.com/edvin/agentauth/internal/logging"
	"github.com/edvin/agentauth/internal/metrics"
	"github.com/edvin/agentauth/internal/store"
)

func main() {
	if len(os.Args) >= 2 && os.Args[1] == "issue-key" {
		issueKey(os.Args[2:])
		return
	}

	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	migrateDirFlag := flag.String("migrate-dir", "migrations/core", "Migration files directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx)

	if *migrateFlag {
		logger.Info().Str("dir", *migrateDirFlag).Msg("running database migrations")
		version, err := db.RunMigrations(ctx, cfg.DatabaseURL, *migrateDirFlag)
		if err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
		logger.Info().Int64("version", version).Msg("database schema up to date")
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	if err := metrics.RegisterPgxPoolMetrics(prometheus.DefaultRegisterer, pool); err != nil {
		logger.Fatal().Err(err).Msg("failed to register pool metrics")
	}

	checks := map[string]api.ReadinessCheck{"postgres": pool.Ping}

	presence, closePresence, err := newPresenceStore(ctx, cfg, pool, checks)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up presence store")
	}
	defer closePresence()
	logger.Info().Str("backend", cfg.PresenceBackend).Msg("presence store ready")

	services := core.NewServices(store.NewDirectory(pool), store.NewKeyStore(pool), presence)
	auditLogger := mw.NewAuditLogger(store.NewAuditLog(pool), logger)
	defer auditLogger.Close()

	srv := api.NewServer(logger, services, auditLogger, cfg, checks)

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(_ net.Listener) context.Context { return ctx },
	}

	servers := []*http.Server{httpServer}
	if cfg.MetricsListenAddr != "" {
		servers = append(servers, metrics.NewServer(cfg.MetricsListenAddr, prometheus.DefaultGatherer))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range servers {
		g.Go(func() error {
			logger.Info().Str("addr", s.Addr).Msg("starting HTTP server")
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", s.Addr, err)
			}
			return nil
		})
	}

	if cfg.PresenceSweepInterval > 0 {
		g.Go(func() error {
			return services.Presence.RunSweeper(gctx, cfg.PresenceSweepInterval, cfg.PresenceRetention)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		var errs []error
		for _, s := range servers {
			errs = append(errs, s.Shutdown(shutdownCtx))
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

// newPresenceStore builds the configured presence backend and registers its
// readiness check.
func newPresenceStore(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, checks map[string]api.ReadinessCheck) (core.PresenceStore, func(), error) {
	if cfg.PresenceBackend != config.PresenceBackendRedis {
		return store.NewPresenceStore(pool), func() {}, nil
	}

	client, err := db.NewRedis(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	if client.Options().TLSConfig != nil {
		zerolog.Ctx(ctx).Info().Msg("redis TLS enabled")
	}
	return store.NewRedisPresenceStore(client), closeRedis(client), nil
}

func closeRedis(client *redis.Client) func() {
	return func() { _ = client.Close() }
}

func issueKey(args []string) {
	fs := flag.NewFlagSet("issue-key", flag.ExitOnError)
	tenant := fs.String("tenant", "", "Tenant ID (required)")
	agent := fs.String("agent", "", "Agent ID (required)")
	name := fs.String("name", "", "Name for the API key (required)")
	perms := fs.String("permissions", "", "Comma-separated permissions")
	expiresIn := fs.Duration("expires-in", 0, "Key lifetime; zero never expires")
	fs.Parse(args)

	if *tenant == "" || *agent == "" || *name == "" {
		fmt.Fprintln(os.Stderr, "error: --tenant, --agent and --name are required")
		fmt.Fprintln(os.Stderr, "usage: agentauth-api issue-key --tenant <id> --agent <id> --name <name> [--permissions a,b] [--expires-in 720h]")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	params := core.IssueParams{
		TenantID: *tenant,
		AgentID:  *agent,
		Name:     *name,
	}
	if *perms != "" {
		params.Permissions = strings.Split(*perms, ",")
	}
	if *expiresIn > 0 {
		t := time.Now().UTC().Add(*expiresIn)
		params.ExpiresAt = &t
	}

	svc := core.NewAPIKeyService(store.NewDirectory(pool), store.NewKeyStore(pool))
	key, err := svc.Issue(ctx, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to issue API key: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("API key issued successfully.\n\n")
	fmt.Printf("  Name:   %s\n", key.Name)
	fmt.Printf("  ID:     %s\n", key.ID)
	fmt.Printf("  Tenant: %s\n", key.TenantID)
	fmt.Printf("  Agent:  %s\n", key.AgentID)
	fmt.Printf("  Key:    %s\n\n", key.Value)
	fmt.Printf("Store this key securely.\n")
}
