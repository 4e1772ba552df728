// Package main runs the DayKeeper terminal calendar on an on-device store.
package main

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/atinyakov/DayKeeper/internal/client"
	"github.com/atinyakov/DayKeeper/internal/config"
	"github.com/atinyakov/DayKeeper/internal/kv"
	"github.com/atinyakov/DayKeeper/internal/logger"
	"github.com/atinyakov/DayKeeper/internal/repository"
	"github.com/atinyakov/DayKeeper/internal/service"
)

var (
	version   string
	buildDate string
)

func main() {
	options, err := config.Parse(os.Args[0], os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if options.ShowVersion {
		fmt.Printf("DayKeeper Client\nVersion: %s\nBuild Date: %s\n", cmp.Or(version, "N/A"), cmp.Or(buildDate, "N/A"))
		return
	}

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	store, closer, err := kv.Open(options.StorageBackend, options.StoragePath, options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot open storage", zap.String("backend", options.StorageBackend), zap.Error(err))
	}
	defer func() { _ = closer.Close() }()

	verifier, err := service.NewVerifier(options.PasswordHashing)
	if err != nil {
		zapLogger.Fatal("invalid password hashing", zap.Error(err))
	}

	// The session lasts as long as the process.
	sessionStore := kv.NewMemoryStore()

	ctrl := client.NewController(
		service.NewAuthService(repository.NewCredentialRepository(store), verifier, zapLogger),
		service.NewEventService(repository.NewEventRepository(store), nil, zapLogger),
		repository.NewSessionRepository(sessionStore),
		nil,
		zapLogger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := ctrl.Start(ctx); err != nil {
		zapLogger.Warn("failed to restore session", zap.Error(err))
	}

	prompt := client.NewPrompter(os.Stdin, os.Stdout, int(os.Stdin.Fd()))
	client.NewShell(ctrl, prompt, os.Stdout).Run(ctx)
}
