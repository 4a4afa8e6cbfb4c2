package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"github.com/mostafamaarof/AI-Survey/cliparse"
	"github.com/mostafamaarof/AI-Survey/db"
	"github.com/mostafamaarof/AI-Survey/metrics"
	"github.com/mostafamaarof/AI-Survey/middleware"
	"github.com/mostafamaarof/AI-Survey/router"
	"github.com/mostafamaarof/AI-Survey/sessions"
)

// driverName maps the configured database type to its database/sql driver.
func driverName(dbType string) string {
	if dbType == "postgres" {
		return "postgres"
	}
	return "sqlite"
}

func main() {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// Connect to the database
	dbConn, err := sql.Open(driverName(cfg.DatabaseType), cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	if cfg.DatabaseType == "sqlite" {
		// SQLite allows one writer; a single connection also keeps :memory: alive
		dbConn.SetMaxOpenConns(1)
	}

	// Verify connection
	if err := dbConn.PingContext(ctx); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	if cfg.SeedFile != "" {
		surveyID, created, err := db.SeedFile(ctx, dbConn, cfg.SeedFile)
		if err != nil {
			slog.Error("seeding failed", "file", cfg.SeedFile, "error", err)
			os.Exit(1)
		}
		slog.Info("Survey seed applied", "survey_id", surveyID, "created", created)
	}

	// Wizard session store
	var store sessions.Store
	if cfg.RedisURL != "" {
		client, err := sessions.DialRedis(ctx, cfg.RedisURL)
		if err != nil {
			slog.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		redisStore := sessions.NewRedisStore(client, sessions.RedisConfig{TTL: cfg.SessionTTL})
		defer redisStore.Close()
		store = redisStore
		slog.Info("Sessions stored in redis")
	} else {
		store = sessions.NewMemoryStore(cfg.SessionTTL)
		slog.Info("Sessions stored in memory")
	}

	collector := metrics.New()
	limiter := middleware.NewRateLimiter(cfg.SubmitRateLimit)
	defer limiter.Stop()

	// Create router
	mux := router.NewRouter(dbConn, cfg, store, collector, limiter)

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(middleware.WithMetrics(collector, mux)),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		slog.Info("Listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		// Wait for Ctrl-C or a failed listener, then let in-flight submissions finish
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server closed", "error", err)
		return
	}
	slog.Info("Server closed")
}
