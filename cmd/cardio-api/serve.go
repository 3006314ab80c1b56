package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/cardioassist/cardio-api/docs"
	"github.com/cardioassist/cardio-api/internal/api"
	"github.com/cardioassist/cardio-api/internal/api/handler"
	"github.com/cardioassist/cardio-api/internal/core/service"
	"github.com/cardioassist/cardio-api/internal/infrastructure/db/mongo"
	"github.com/cardioassist/cardio-api/internal/infrastructure/db/redis"
	"github.com/cardioassist/cardio-api/internal/infrastructure/llm/openai"
	"github.com/cardioassist/cardio-api/internal/pkg/config"
	"github.com/cardioassist/cardio-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
}

// app holds the wired services plus the connections that must be closed on exit.
type app struct {
	mongo *mongodriver.Client
	redis *goredis.Client
	users *service.UserService
	svc   api.Services
}

func (a *app) close(ctx context.Context) {
	if a.mongo != nil {
		_ = a.mongo.Disconnect(ctx)
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

func initLogger(cfg *config.Config) {
	logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "cardio-api",
	})
}

// wire connects to MongoDB and Redis and builds every service.
func wire(ctx context.Context, cfg *config.Config) (*app, error) {
	client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database, AppName: "cardio-api"})
	if err != nil {
		return nil, err
	}
	if err := mongo.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	userRepo := mongo.NewUserRepository(db)
	convRepo := mongo.NewConversationRepository(db)
	intakeRepo := mongo.NewIntakeRepository(db)

	auth := service.NewAuthService(userRepo, redis.NewRevocationStore(rdb), cfg.Auth.JWTSecret, cfg.Auth.SessionTTL, cfg.Auth.BcryptCost, logger.Component("auth"))
	users := service.NewUserService(userRepo, convRepo, intakeRepo, auth, cfg.Auth.BcryptCost, logger.Component("users"))

	provider := openai.NewProvider(openai.Config{
		APIKey:  cfg.OpenAI.APIKey,
		Model:   cfg.OpenAI.Model,
		BaseURL: cfg.OpenAI.BaseURL,
	})

	return &app{
		mongo: client,
		redis: rdb,
		users: users,
		svc: api.Services{
			Auth:          auth,
			Users:         users,
			Conversations: service.NewConversationService(convRepo, logger.Component("conversations")),
			Chat:          service.NewChatService(provider, convRepo, "", cfg.OpenAI.Timeout, logger.Component("chat")),
			Intake:        service.NewIntakeService(intakeRepo, logger.Component("intake")),
			Health: []handler.DependencyCheck{
				handler.MongoCheck(db),
				handler.RedisCheck(rdb),
			},
		},
	}, nil
}

func runServer(ctx context.Context) error {
	cfg := config.Load()
	initLogger(cfg)
	log := logger.Get()

	if cfg.OpenAI.APIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is empty; completions will fail")
	}

	a, err := wire(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialise dependencies")
		return err
	}
	defer a.close(context.Background())

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := api.NewRouter(a.svc, logger.Component("http"))

	addr := fmt.Sprintf(":%s", cfg.Port)
	go func() {
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
