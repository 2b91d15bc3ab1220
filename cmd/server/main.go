package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"roomchat/auth"
	"roomchat/broadcast"
	"roomchat/contract"
	"roomchat/internal"
	"roomchat/linkpreview"
	"roomchat/listener"
	"roomchat/observability"
	"roomchat/repositories"
	"roomchat/runtime"
	"roomchat/runtime/workers"
	"roomchat/services"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	logger := logs.GetLoggerFromString(config.LogLevel)
	ctx := context.Background()

	// 2. Storage (SQLite for the transactional core, BadgerDB for notifications)
	store, err := repositories.Open(config.SqliteFilepath)
	if err != nil {
		return exitRuntime, fmt.Errorf("sqlite opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing SQLite...")
		_ = store.Close()
	}()

	badgerDB, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("badger opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = badgerDB.Close()
	}()

	files, err := internal.NewDiskFileStore(config.UploadDirectory)
	if err != nil {
		return exitRuntime, err
	}

	// 3. Repositories
	rooms := repositories.NewRoomRepository(store, logger)
	roomUsers := repositories.NewRoomUserRepository(store, logger)
	users := repositories.NewUserRepository(store, logger)
	messages := repositories.NewMessageRepository(store, logger)
	friendships := repositories.NewFriendshipRepository(store, logger)
	notificationRepo, err := repositories.NewNotificationRepository(badgerDB, logger)
	if err != nil {
		return exitRuntime, err
	}
	defer func() { _ = notificationRepo.Release() }()

	// 4. Runtime plumbing: registry, presence, metrics, bus, gateway
	registry := runtime.NewRegistry(logger)
	tracker := runtime.NewPresenceTracker(logger)
	metrics := observability.NewMetrics(logger)
	bus := runtime.NewBus(logger, config.BufferSize, metrics)
	hub := broadcast.NewHub(logger)

	// With Redis configured the hub becomes a relay target and publishes
	// go through Redis so several processes share one broadcast plane.
	var gateway contract.Gateway = hub
	var relay *broadcast.Relay
	if config.RedisAddr != nil {
		client := redis.NewClient(&redis.Options{Addr: *config.RedisAddr})
		gateway = broadcast.NewRedisGateway(client)
		relay = broadcast.NewRelay(client, hub)
		logger.Info("Redis broadcast plane enabled", "addr", *config.RedisAddr)
	}

	if logger.Enabled(ctx, slog.LevelDebug) && config.DebugPort > 0 {
		logger.Info("Debug inspector available", "url", fmt.Sprintf("http://localhost:%d/stats", config.DebugPort))
		internal.StartDebugServer(badgerDB, metrics, config.DebugPort)
	}

	// 5. Services
	previews := linkpreview.NewService(logger, linkpreview.NewHTMLFetcher(config.PreviewTimeout), gateway)
	notifications := services.NewNotificationService(logger, notificationRepo, gateway, metrics)
	roomService := services.NewRoomService(logger, rooms, roomUsers, users, messages, bus, registry, notifications, config.ProfileImagePrefix)
	messageService := services.NewMessageService(logger, messages, roomUsers, users, rooms, bus, notifications, previews, files, metrics, config.ProfileImagePrefix)
	presenceService := services.NewPresenceService(logger, tracker, friendships, users, notifications, metrics)
	friendshipService := services.NewFriendshipService(logger, friendships, users, notifications)
	tokens := auth.NewTokenManager(config.AuthTokenSecret, config.AuthTokenDuration)

	// 6. Listeners on supervised workers
	sup := workers.NewSupervisor(logger, config.RestartInterval)
	sup.Add(
		bus.Subscribe("message-activity", listener.NewMessageAddedListener(logger, users, gateway, previews, config.ProfileImagePrefix)),
		bus.Subscribe("user-entered", listener.NewUserEnteredListener(logger, gateway, config.ProfileImagePrefix)),
		bus.Subscribe("user-exited", listener.NewUserExitedListener(logger, gateway)),
		bus.Subscribe("nickname-changed", listener.NewNicknameChangedListener(logger, gateway)),
	)
	if relay != nil {
		sup.Add(relay)
	}

	// 7. Context & Signals
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sup.Run(ctx)
	go metrics.Listen(ctx, config.MetricInterval)

	// 8. HTTP & WebSocket surface
	router := mux.NewRouter()
	api := NewAPI(logger, tokens, users, roomService, messageService, notifications, friendshipService, config.HistoryLines)
	api.Routes(router)
	router.Handle("/ws", NewWSHandler(logger, tokens, hub, registry, presenceService, config.ClientQueueSize))

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           cors.AllowAll().Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 9. Wait for Stop or Error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errChan:
		return exitRuntime, err
	}

	// 10. Final Cleanup (Graceful Shutdown)
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	sup.Stop()
	logger.Info("Program stopped cleanly")

	return exitOK, nil
}

func buildBadgerOpts(config Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)

	if logger.Enabled(ctx, slog.LevelDebug) {
		options = options.WithLoggingLevel(badger.DEBUG).
			WithBypassLockGuard(true)
	} else {
		options = options.WithLoggingLevel(badger.INFO)
	}

	return options
}
