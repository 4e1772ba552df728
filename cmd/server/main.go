// Package main initializes and starts the DayKeeper HTTP server,
// setting up configuration, logging, storage, repositories,
// services, sessions and handlers.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/DayKeeper/internal/config"
	"github.com/atinyakov/DayKeeper/internal/kv"
	"github.com/atinyakov/DayKeeper/internal/logger"
	"github.com/atinyakov/DayKeeper/internal/repository"
	"github.com/atinyakov/DayKeeper/internal/server/handler/http"
	"github.com/atinyakov/DayKeeper/internal/service"
	"github.com/atinyakov/DayKeeper/internal/session"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const (
	sweepInterval   = time.Minute
	shutdownTimeout = 10 * time.Second
)

func main() {
	// Parse command-line, config file and environment configuration.
	options, err := config.Parse(os.Args[0], os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))
	if options.ShowVersion {
		return
	}

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	// Open the durable store.
	store, closer, err := kv.Open(options.StorageBackend, options.StoragePath, options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot open storage", zap.String("backend", options.StorageBackend), zap.Error(err))
	}
	defer func() { _ = closer.Close() }()

	verifier, err := service.NewVerifier(options.PasswordHashing)
	if err != nil {
		zapLogger.Fatal("invalid password hashing", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Evict idle browser sessions.
	sessions := session.NewManager(options.SessionTTL)
	session.StartSweeper(ctx, sessions, sweepInterval, zapLogger)

	// Initialize repositories and business-logic services.
	authService := service.NewAuthService(repository.NewCredentialRepository(store), verifier, zapLogger)
	eventService := service.NewEventService(repository.NewEventRepository(store), time.Local, zapLogger)

	// Build the router with middleware and routes.
	router := http.NewRouter(http.RouterConfig{
		Auth:         &http.AuthHandler{AuthService: authService, Sessions: sessions, SecureCookie: options.SecureCookie},
		Events:       &http.EventHandler{EventService: eventService, Log: zapLogger},
		Calendar:     &http.CalendarHandler{EventService: eventService},
		Sessions:     sessions,
		SecureCookie: options.SecureCookie,
		Logger:       zapLogger,
	})

	server := &nethttp.Server{
		Addr:              options.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	zapLogger.Info("starting HTTP server",
		zap.String("addr", options.Addr),
		zap.String("storage", options.StorageBackend),
		zap.Bool("tls", options.TLSCert != "" && options.TLSKey != ""),
	)
	if options.TLSCert != "" && options.TLSKey != "" {
		err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
	} else {
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}
