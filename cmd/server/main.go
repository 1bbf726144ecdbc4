// Package main initializes and starts the todo sync server, wiring
// configuration, logging, storage, repositories, services, the SSE
// broadcaster, and the HTTP router.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/TodoSync/internal/auth"
	"github.com/atinyakov/TodoSync/internal/broadcast"
	"github.com/atinyakov/TodoSync/internal/config"
	"github.com/atinyakov/TodoSync/internal/logger"
	"github.com/atinyakov/TodoSync/internal/metrics"
	"github.com/atinyakov/TodoSync/internal/models"
	"github.com/atinyakov/TodoSync/internal/repository"
	"github.com/atinyakov/TodoSync/internal/server/handler/http"
	"github.com/atinyakov/TodoSync/internal/service"
	"github.com/atinyakov/TodoSync/internal/storage"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	orNA := func(s string) string {
		if s != "" {
			return s
		}
		return "N/A"
	}
	fmt.Printf("Build version: %s\n", orNA(version))
	fmt.Printf("Build date: %s\n", orNA(buildDate))

	// Initialize structured logging.
	log, err := logger.New(options.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// Initialize the document store and the typed repositories over it.
	store := storage.New(options.DataDir, log)
	users := repository.New(store,
		func(d *models.Document) *[]models.User { return &d.Users },
		func(u models.User) string { return u.ID })
	lists := repository.New(store,
		func(d *models.Document) *[]models.TodoList { return &d.Lists },
		func(l models.TodoList) string { return l.ID })
	todos := repository.New(store,
		func(d *models.Document) *[]models.TodoItem { return &d.Todos },
		func(t models.TodoItem) string { return t.ID })

	// Realtime fan-out and its instrumentation.
	m := metrics.New()
	broadcaster := broadcast.New(log, m)
	defer broadcaster.Close()

	// Token issuing/validation shared by the auth service and the middleware.
	tokens := auth.NewJWTManager(options.JWTSecret, auth.DefaultTokenDuration)

	// Business-logic services.
	authService := service.NewAuthService(store, users, tokens, log)
	listService := service.NewListService(store, lists, broadcaster, log)
	todoService := service.NewTodoService(store, todos, lists, broadcaster, log)

	// HTTP handlers and router.
	authHandler := &http.AuthHandler{AuthService: authService}
	listHandler := &http.ListHandler{ListService: listService, Streamer: broadcaster, Log: log}
	todoHandler := &http.TodoHandler{TodoService: todoService}
	router := http.NewRouter(authHandler, listHandler, todoHandler, m.Handler(), tokens, log)

	server := &nethttp.Server{
		Addr:    options.Addr,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		broadcaster.Close()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown", zap.Error(err))
		}
	}()

	log.Info("starting server", zap.String("addr", options.Addr), zap.String("dataDir", options.DataDir))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
