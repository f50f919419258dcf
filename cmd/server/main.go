// @title        Task Tracker
// @version      1.0
// @description  Multi-user to-do tracker served as HTML pages.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/todoboard/task-tracker/internal/api"
	"github.com/todoboard/task-tracker/internal/api/handler"
	"github.com/todoboard/task-tracker/internal/core/ports"
	"github.com/todoboard/task-tracker/internal/core/service"
	"github.com/todoboard/task-tracker/internal/infrastructure/db/mongo"
	"github.com/todoboard/task-tracker/internal/infrastructure/db/postgres"
	"github.com/todoboard/task-tracker/internal/infrastructure/db/redis"
	"github.com/todoboard/task-tracker/internal/pkg/config"
	"github.com/todoboard/task-tracker/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// stores is the persistence backend picked by STORE_DRIVER.
type stores struct {
	users  ports.UserRepository
	tasks  ports.TaskRepository
	pinger handler.Pinger
	close  func(context.Context)
}

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "task-tracker",
	})

	ctx := context.Background()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open store")
	}
	defer st.close(context.Background())

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
		Timeout:  cfg.Redis.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	authService := service.NewAuthService(st.users, log)
	sessionService := service.NewSessionService(redis.NewSessionStore(rdb), st.users, cfg.Session.Secret, cfg.Session.TTL, log)
	taskService := service.NewTaskService(st.tasks, st.users, log)

	e := api.NewRouter(api.Dependencies{
		Auth:         authService,
		Tasks:        taskService,
		Sessions:     sessionService,
		CookieSecure: cfg.Session.CookieSecure,
		Pingers:      []handler.Pinger{st.pinger, redis.Pinger{Client: rdb}},
		Logger:       log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("driver", cfg.Store.Driver).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		users := mongo.NewUserRepository(db)
		tasks := mongo.NewTaskRepository(db, users)
		if err := users.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		if err := tasks.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")
		return &stores{
			users:  users,
			tasks:  tasks,
			pinger: mongo.Pinger{Client: client},
			close: func(ctx context.Context) {
				if err := client.Disconnect(ctx); err != nil {
					log.Warn().Err(err).Msg("mongo disconnect")
				}
			},
		}, nil

	default:
		pool, err := postgres.Connect(ctx, postgres.Config{URL: cfg.Postgres.URL})
		if err != nil {
			return nil, err
		}
		log.Info().Msg("connected to postgres")
		return &stores{
			users:  postgres.NewUserRepository(pool),
			tasks:  postgres.NewTaskRepository(pool),
			pinger: postgres.Pinger{Pool: pool},
			close:  func(context.Context) { pool.Close() },
		}, nil
	}
}
