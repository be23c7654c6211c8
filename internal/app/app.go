package app

import (
	"context"
	"fmt"
	"time"

	"community/internal/config"
	"community/internal/db"
	"community/internal/handlers"
	"community/internal/logger"
	"community/internal/middleware"
	"community/internal/repository"
	"community/internal/routes"
	"community/internal/services"
	"community/internal/utils"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// App держит роутер и то, что нужно закрыть при остановке.
type App struct {
	Router  *mux.Router
	closers []func()
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func InitApp(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{}

	store, err := newStore(ctx, cfg, app)
	if err != nil {
		return nil, err
	}

	// Сервисы
	hasher := utils.NewBcryptHasher(cfg.BcryptCost)
	tokens := utils.NewJWTProvider(cfg.JWTSecret, cfg.TokenTTL())
	creds := services.NewCredentialService(store, hasher, tokens)
	accounts := services.NewAccountService(creds, store)
	articles := services.NewArticleService(store, creds)

	// Хендлеры
	authHandler := handlers.NewAuthHandler(accounts, creds)
	articleH := handlers.NewArticleHandler(articles)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiter.StartCleanup(5 * time.Minute)

	// Маршруты
	app.Router = mux.NewRouter()
	routes.InitRoutes(app.Router, authHandler, articleH, creds, limiter)

	return app, nil
}

func newStore(ctx context.Context, cfg *config.Config, app *App) (repository.Store, error) {
	switch cfg.Storage {
	case "memory":
		logger.Log.Warn("Используется in-memory хранилище: данные не переживут рестарт")
		return repository.NewMemoryStore(), nil
	case "postgres", "":
		if cfg.MigrateOnStart {
			if err := db.Migrate(cfg); err != nil {
				return nil, err
			}
		}
		pool, err := db.NewPostgresConnection(ctx, cfg)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, pool.Close)
		logger.Log.Info("Хранилище PostgreSQL готово", zap.String("dsn", cfg.GetDSNSafe()))
		return repository.NewPostgresStore(pool), nil
	default:
		return nil, fmt.Errorf("неизвестный STORAGE: %q", cfg.Storage)
	}
}
