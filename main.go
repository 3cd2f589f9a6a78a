package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/varsilias/chat-relay/internal/api"
	"github.com/varsilias/chat-relay/internal/buildinfo"
	"github.com/varsilias/chat-relay/internal/chat"
	"github.com/varsilias/chat-relay/internal/completion"
	"github.com/varsilias/chat-relay/internal/config"
	"github.com/varsilias/chat-relay/internal/logging"
	"github.com/varsilias/chat-relay/internal/middleware"
	"github.com/varsilias/chat-relay/internal/session"
	"github.com/varsilias/chat-relay/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "chat-relay: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		return errors.Wrap(err, "init logger")
	}
	defer func() { _ = logger.Sync() }()

	logger.Infow("build", "version", buildinfo.Version, "commit", buildinfo.Commit, "built_at", buildinfo.BuiltAt)

	client := completion.NewClient(cfg.Completion(), logger.Named("completion"))
	store := session.NewStore(
		session.WithSystemPrompt(cfg.SystemPrompt),
		session.WithMaxLen(cfg.MaxHistory),
	)
	chatCtrl := chat.NewController(logger.Named("chat"), client, store)

	uih, err := ui.New(logger.Named("ui"), store)
	if err != nil {
		return errors.Wrap(err, "ui init")
	}
	h := api.NewHandlers(logger.Named("api"), chatCtrl, store)

	mux := chi.NewRouter()
	ui.RegisterRoutes(mux, uih)
	api.RegisterRoutes(mux, h)

	var handler http.Handler = mux
	handler = middleware.Recoverer(logger)(handler)
	handler = middleware.AccessLog(logger)(handler)
	handler = middleware.RequestID()(handler)
	handler = middleware.VersionHeader()(handler)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		// a chat request waits for the model
		WriteTimeout: cfg.Azure.Timeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return serve(server, cfg.ShutdownTimeout, logger, cfg.Azure.Deployment)
}

func serve(server *http.Server, shutdownTimeout time.Duration, logger *zap.SugaredLogger, deployment string) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Infow("chat relay listening", "addr", server.Addr, "deployment", deployment)
		errChan <- server.ListenAndServe()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errChan:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("server error", "err", err)
			return err
		}
		return nil
	case sig := <-sigChan:
		logger.Infow("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorw("graceful shutdown failed", "err", err)
		return err
	}
	logger.Infow("server stopped")
	return nil
}
