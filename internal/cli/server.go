package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"course-quiz-service/internal/app"
	"course-quiz-service/internal/config"
	"course-quiz-service/internal/infra/memory"
	"course-quiz-service/internal/infra/postgres"
	redisstore "course-quiz-service/internal/infra/redis"
	transport "course-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
	}

	deps := buildDependencies(cfg, pool, redisClient)
	service := app.NewAttemptService(deps)

	handler := transport.NewRouter(service, transport.RouterOptions{
		CORSOrigins:    cfg.Server.CORSOrigins,
		RequestTimeout: config.TTLDuration(cfg.Server.RequestTimeout, 30*time.Second),
	})

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting course quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildDependencies picks stores by configuration. Postgres is the system of
// record when configured; Redis fronts test reads, holds attempts when there is
// no Postgres, and receives the activity stream. Without either, the demo
// course is served from memory.
func buildDependencies(cfg config.Config, pool *pgxpool.Pool, redisClient *redis.Client) app.Dependencies {
	var (
		deps   app.Dependencies
		loader memory.TestLoader
		logs   app.ActivityLogs
	)

	if pool != nil {
		deps.Courses = postgres.NewCatalog(pool)
		deps.Progress = postgres.NewProgressStore(pool)
		deps.Users = postgres.NewUserDirectory(pool)
		deps.Attempts = postgres.NewAttemptStore(pool)
		loader = postgres.NewTestLoader(pool)
		logs = append(logs, postgres.NewActivityLog(pool))
	} else {
		demo := newDemoData()
		deps.Courses = demo.catalog
		deps.Progress = demo.progress
		deps.Users = memory.NewUserDirectory()
		deps.Attempts = memory.NewAttemptStore()
		loader = demo.tests
		log.Printf("postgres not configured; serving demo course %q from memory", demoCourseSlug)
	}

	testTTL := config.TTLDuration(cfg.Tests.TTL, 10*time.Minute)
	if redisClient != nil {
		redisTTL := config.TTLDuration(cfg.Redis.TTL, testTTL)
		deps.Tests = redisstore.NewTestRepository(redisClient, loader, redisTTL)
		if pool == nil {
			deps.Attempts = redisstore.NewAttemptStore(redisClient)
		}
		logs = append(logs, redisstore.NewActivityStream(redisClient, cfg.Activity.Stream, cfg.Activity.StreamMaxLen))
	} else {
		deps.Tests = memory.NewTestRepository(loader, testTTL)
	}

	if len(logs) == 0 {
		logs = append(logs, memory.NewActivityLog())
	}
	deps.Activity = app.NewActivityRecorder(logs, config.TTLDuration(cfg.Activity.Timeout, 2*time.Second))
	return deps
}
