package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/portfolio/backend/internal/config"
	"github.com/portfolio/backend/internal/handler"
	"github.com/portfolio/backend/internal/logging"
	"github.com/portfolio/backend/internal/metrics"
	"github.com/portfolio/backend/internal/notify"
	"github.com/portfolio/backend/internal/repository"
	"github.com/portfolio/backend/internal/service"
	"github.com/portfolio/backend/pkg/auth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("invalid configuration", "error", err)
	}
	logging.Setup(cfg.LogLevel)

	ctx := context.Background()

	repo, closeStore, err := repository.OpenStore(ctx, repository.StoreOptions{
		Driver:      cfg.Store.Driver,
		DatabaseURL: cfg.Store.DatabaseURL,
		SQLitePath:  cfg.Store.SQLitePath,
	})
	if err != nil {
		logging.Fatal("failed to open submission store", "driver", cfg.Store.Driver, "error", err)
	}
	defer closeStore()

	// メール未設定の場合は通知を無効化して保存のみ行う
	notifier, provider, err := notify.New(ctx, notify.Config{
		Provider:     cfg.Email.Provider,
		ResendAPIKey: cfg.Email.ResendAPIKey,
		SESAccessKey: cfg.Email.SESAccessKey,
		SESSecretKey: cfg.Email.SESSecretKey,
		SESRegion:    cfg.Email.SESRegion,
	})
	if err != nil {
		logging.Fatal("failed to configure email provider", "provider", cfg.Email.Provider, "error", err)
	}
	if provider == notify.ProviderNone {
		slog.Warn("email notifications disabled, submissions are stored only")
	}
	composer, err := notify.NewComposer(cfg.Email.From, cfg.Email.To)
	if err != nil {
		logging.Fatal("failed to build notification composer", "error", err)
	}
	policy, err := service.ParseNotifyFailurePolicy(cfg.Email.FailurePolicy)
	if err != nil {
		logging.Fatal("invalid notify failure policy", "error", err)
	}
	contactService := service.NewContactService(repo, notifier, composer, service.ContactConfig{
		StoreTimeout:  cfg.Store.Timeout,
		NotifyTimeout: cfg.Email.Timeout,
		Policy:        policy,
		FallbackEmail: cfg.Email.FallbackAddress,
		Provider:      provider,
	})

	passwords, err := auth.NewPasswordChecker(cfg.Admin.Password, cfg.Admin.PasswordHash)
	if err != nil {
		logging.Fatal("invalid ADMIN_PASSWORD_HASH", "error", err)
	}
	if !passwords.Configured() {
		slog.Warn("no admin password configured, admin login is disabled")
	}
	revocations, closeRevocations := newRevocationList(cfg.Admin.RedisURL)
	defer closeRevocations()
	sessions := service.NewSessionService(passwords, auth.SessionSecretBytes(cfg.Admin.SessionSecret), cfg.Admin.SessionTTL, revocations)

	reg := prometheus.NewRegistry()
	metrics.RegisterCollectors(reg)
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	contactLimiter := handler.NewRateLimiter("contact", cfg.RateLimit.ContactPerMinute)
	defer contactLimiter.Close()

	router := handler.NewRouter(handler.RouterConfig{
		Health:         handler.New(repo, cfg.Server.FrontendURL),
		Contact:        handler.NewContactHandler(contactService),
		Admin:          handler.NewAdminHandler(contactService, sessions, cfg.IsProduction()),
		Sessions:       sessions.Validate,
		ContactLimiter: contactLimiter,
		Metrics:        promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		StaticDir:      cfg.Server.StaticDir,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr, "store", cfg.Store.Driver, "email", provider)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped")
}

// newRevocationList uses Redis when REDIS_URL is set so logouts hold across
// instances, and an in-process list otherwise.
func newRevocationList(redisURL string) (auth.RevocationList, func()) {
	if redisURL == "" {
		return auth.NewMemoryRevocationList(), func() {}
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		logging.Fatal("invalid REDIS_URL", "error", err)
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis not reachable at startup, admin sessions will be rejected until it is", "error", err)
	}
	return auth.NewRedisRevocationList(client), func() { _ = client.Close() }
}
