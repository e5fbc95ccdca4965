package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/xiaoying/sales-assistant/internal/api"
	"github.com/xiaoying/sales-assistant/internal/core/ports"
	"github.com/xiaoying/sales-assistant/internal/core/service"
	"github.com/xiaoying/sales-assistant/internal/infrastructure/db/jsonfile"
	"github.com/xiaoying/sales-assistant/internal/infrastructure/db/memory"
	"github.com/xiaoying/sales-assistant/internal/infrastructure/db/redis"
	"github.com/xiaoying/sales-assistant/internal/infrastructure/http/handlers"
	"github.com/xiaoying/sales-assistant/internal/infrastructure/llm/keyword"
	"github.com/xiaoying/sales-assistant/internal/infrastructure/llm/openai"
	"github.com/xiaoying/sales-assistant/internal/infrastructure/queue"
	"github.com/xiaoying/sales-assistant/internal/pkg/config"
	"github.com/xiaoying/sales-assistant/pkg/logger"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:          "salesassistant",
	Short:        "Sales assistant API server",
	Version:      Version,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.AddCommand(seedCmd, tokenCmd)
}

func run(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log, closeLog, err := initLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	a, err := buildApp(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("startup failed")
		return err
	}
	defer a.close()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Chat calls may take up to CHAT_TIMEOUT.
		WriteTimeout: cfg.Chat.Timeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", Version).Msg("server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("serve %s: %w", srv.Addr, err)
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown initiated")
	case runErr = <-serveErr:
		log.Error().Err(runErr).Msg("server error")
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	a.dispatcher.Wait()

	log.Info().Msg("shutdown complete")
	return runErr
}

func initLogger(cfg *config.Config) (zerolog.Logger, func(), error) {
	opts := logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.IsDevelopment(),
		Output: os.Stdout,
	}
	closeFn := func() {}
	if cfg.Chat.ErrorLog != "" {
		f, err := os.OpenFile(cfg.Chat.ErrorLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Logger{}, nil, fmt.Errorf("open chat error log: %w", err)
		}
		opts.ErrorOutput = f
		closeFn = func() { _ = f.Close() }
	}
	return logger.Init(opts), closeFn, nil
}

type app struct {
	router     http.Handler
	dispatcher *queue.Dispatcher
	closers    []io.Closer
}

func (a *app) close() {
	for _, c := range a.closers {
		_ = c.Close()
	}
}

// buildApp wires every dependency. Workers are bound to ctx.
func buildApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	a := &app{}

	if cfg.UsingDevSecret {
		log.Warn().Msg("JWT_SECRET not set, using the development secret")
	}

	store, err := jsonfile.Open(cfg.Store.DataFile, jsonfile.Options{Seed: cfg.Store.SeedSample}, log)
	if err != nil {
		return nil, err
	}
	checks := map[string]handlers.Check{"customer_store": store.Check}

	revoker, err := buildRevoker(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if rr, ok := revoker.(*redis.TokenRevoker); ok {
		checks["redis"] = rr.Ping
		a.closers = append(a.closers, rr)
	}

	authService, err := service.NewAuthService(
		cfg.Auth.Username, cfg.Auth.Password, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, revoker, log)
	if err != nil {
		return nil, err
	}

	a.dispatcher = queue.NewDispatcher(buildChatProvider(cfg, log), cfg.Chat.Workers, cfg.Chat.QueueSize, log)
	a.dispatcher.Start(ctx)

	chatService := service.NewChatService(a.dispatcher, service.ChatOptions{
		Model:        cfg.Chat.Model,
		SystemPrompt: cfg.Chat.SystemPrompt,
		Timeout:      cfg.Chat.Timeout,
	}, log)

	a.router = api.NewRouter(api.Dependencies{
		Customers: service.NewCustomerService(store, log),
		Auth:      authService,
		Chat:      chatService,
		Checks:    checks,
		Logger:    log,
	})
	return a, nil
}

func buildRevoker(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.TokenRevoker, error) {
	if cfg.Redis.Addr == "" {
		log.Info().Msg("token revocation kept in memory")
		return memory.NewTokenRevoker(), nil
	}
	revoker, err := redis.Open(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	log.Info().Str("addr", cfg.Redis.Addr).Int("db", cfg.Redis.DB).Msg("token revocation backed by redis")
	return revoker, nil
}

// buildChatProvider falls back to keyword replies when no API key is set.
func buildChatProvider(cfg *config.Config, log zerolog.Logger) ports.ChatProvider {
	if cfg.Chat.Mode == config.ChatModeOpenAI {
		if cfg.Chat.APIKey != "" {
			log.Info().Str("model", cfg.Chat.Model).Msg("chat provider: openai")
			return openai.NewProvider(openai.Config{APIKey: cfg.Chat.APIKey, BaseURL: cfg.Chat.BaseURL})
		}
		log.Warn().Msg("OPENAI_API_KEY not set, chatbot falls back to keyword replies")
	}
	log.Info().Msg("chat provider: keyword")
	return keyword.NewProvider(nil)
}
