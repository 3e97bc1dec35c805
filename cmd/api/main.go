package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/taskflow/taskflow-go/internal/config"
	"github.com/taskflow/taskflow-go/internal/crypto"
	"github.com/taskflow/taskflow-go/internal/handler"
	"github.com/taskflow/taskflow-go/internal/repository"
	"github.com/taskflow/taskflow-go/internal/service"
)

type stores struct {
	users      service.UserStore
	tasks      service.TaskStore
	categories service.CategoryStore
	close      func()
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading configuration", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		slog.Error("opening database", "error", err)
		os.Exit(1)
	}
	defer st.close()

	tokens := crypto.NewTokenService(cfg.Token.AccessSecret, cfg.Token.RefreshSecret, cfg.Token.AccessExpiry, cfg.Token.RefreshExpiry)
	hasher := crypto.NewPasswordHasher(cfg.BcryptCost)

	authService := service.NewAuthService(st.users, tokens, hasher)
	taskService := service.NewTaskService(st.tasks)
	categoryService := service.NewCategoryService(st.categories)

	router := handler.NewRouter(ctx, handler.RouterConfig{
		Auth: handler.NewAuthHandler(authService, handler.CookiePolicy{
			Secure: cfg.IsProduction(),
			MaxAge: cfg.Token.RefreshExpiry,
		}),
		Tasks:          handler.NewTaskHandler(taskService),
		Categories:     handler.NewCategoryHandler(categoryService),
		Tokens:         tokens,
		AllowedOrigins: cfg.AllowedOrigins,
		AuthRateLimit:  5,
		AuthBurst:      10,
		TrustProxy:     cfg.TrustProxy,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// openStores connects to MySQL and applies migrations. Without a DSN the
// server runs on an in-memory store that is lost on exit.
func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	if cfg.DatabaseDSN == "" {
		slog.Warn("DATABASE_DSN not set, using in-memory store; data will not persist")
		mem := repository.NewMemoryStore()
		return stores{
			users:      repository.NewMemoryUserRepository(mem),
			tasks:      repository.NewMemoryTaskRepository(mem),
			categories: repository.NewMemoryCategoryRepository(mem),
			close:      func() {},
		}, nil
	}

	db, err := repository.NewDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return stores{}, err
	}
	if err := repository.Migrate(db); err != nil {
		db.Close()
		return stores{}, err
	}

	return stores{
		users:      repository.NewUserRepository(db),
		tasks:      repository.NewTaskRepository(db),
		categories: repository.NewCategoryRepository(db),
		close: func() {
			if err := db.Close(); err != nil {
				slog.Error("closing database", "error", err)
			}
		},
	}, nil
}
