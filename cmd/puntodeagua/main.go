// Package main запускает HTTP-сервер сервиса доставки воды.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/puntodeagua/internal/config"
	"github.com/mmeshcher/puntodeagua/internal/handler"
	"github.com/mmeshcher/puntodeagua/internal/middleware"
	"github.com/mmeshcher/puntodeagua/internal/notify"
	"github.com/mmeshcher/puntodeagua/internal/repository"
	"github.com/mmeshcher/puntodeagua/internal/service"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseURI, repository.PoolOptions{
		MaxConns:        cfg.DBMaxConns,
		ConnectTimeout:  cfg.DBConnectTimeout,
		MaxConnIdleTime: cfg.DBMaxConnIdleTime,
	})
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}

	var (
		notifier   service.Notifier
		dispatcher *notify.Dispatcher
	)
	if cfg.TelegramEnabled() {
		telegram := notify.NewTelegramClient(cfg.TelegramAPIURL, cfg.TelegramBotToken, cfg.TelegramChatID)
		dispatcher = notify.NewDispatcher(telegram, logger.Named("notify"), notify.Options{
			QueueSize:   cfg.NotifyQueueSize,
			SendTimeout: cfg.NotifyTimeout,
			Location:    cfg.Location,
		})
		notifier = dispatcher
	} else {
		sugar.Warn("telegram is not configured, order notifications are disabled")
	}

	svc := service.NewService(repo, notifier, service.Options{
		TransitionMode: cfg.TransitionMode,
		Location:       cfg.Location,
	})
	defer svc.Close()

	if cfg.AuthSecret == "" {
		sugar.Warn("AUTH_SECRET is not set, sessions will not survive a restart")
	}
	authMiddleware := middleware.NewAuthMiddleware(cfg.AuthSecret, cfg.AuthTokenTTL, svc)
	h := handler.NewHandler(svc, logger, authMiddleware)

	r := h.SetupRouter()

	server := &http.Server{
		Addr:              cfg.RunAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	// Отправка уведомлений о новых заказах
	if dispatcher != nil {
		g.Go(func() error {
			dispatcher.Run(ctx)
			return nil
		})
	}

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting puntodeagua server",
			"addr", cfg.RunAddress,
			"transitions", cfg.TransitionMode,
			"timezone", cfg.Location.String(),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
