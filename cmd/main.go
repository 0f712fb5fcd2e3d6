package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"github.com/daviderandino/ruggine/auth"
	ruggineHTTP "github.com/daviderandino/ruggine/infrastructure/http"
	"github.com/daviderandino/ruggine/infrastructure/ws"
	"github.com/daviderandino/ruggine/observability"
	"github.com/daviderandino/ruggine/repositories"
	"github.com/daviderandino/ruggine/runtime"
	"github.com/daviderandino/ruggine/runtime/workers"
	"github.com/daviderandino/ruggine/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the HTTP server and background workers.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := observability.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	//  Defer will be executed before run() returned anything to main()
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories
	userRepository := repositories.NewUserRepository(db)
	groupRepository := repositories.NewGroupRepository(db)
	membershipRepository := repositories.NewMembershipRepository(db)
	invitationRepository := repositories.NewInvitationRepository(db)
	messageRepository := repositories.NewMessageRepository(db, log)

	// 4. Runtime: registry, broadcaster, services
	registry := runtime.NewRegistry()
	broadcaster := runtime.NewBroadcaster(log, registry, messageRepository, membershipRepository, config.HistoryLimit)
	guard := services.NewMembershipGuard(membershipRepository)
	tokens := auth.NewTokenManager(config.JWTSecret, config.AuthTokenDuration)

	authService := services.NewAuthService(userRepository, tokens)
	groupService := services.NewGroupService(log, guard, groupRepository, membershipRepository, userRepository, broadcaster)
	invitationService := services.NewInvitationService(log, guard, invitationRepository, groupRepository, userRepository, broadcaster)
	chatService := services.NewChatService(log, guard, broadcaster, messageRepository, config.SessionBufferSize)

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 6. Background workers under supervision
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(
		workers.NewBadgerGCWorker(log, db, config.BadgerGCInterval),
		workers.NewProcessStatsWorker(log, config.StatsInterval),
	)
	supDone := make(chan struct{})
	go func() {
		defer close(supDone)
		sup.Run(ctx)
	}()

	// 7. HTTP Server Setup
	handler := ruggineHTTP.NewHandler(log, authService, groupService, invitationService,
		chatService, userRepository, config.HistoryLimit)
	wsServer := ws.NewServer(log, tokens, chatService, userRepository)
	router := ruggineHTTP.NewRouter(handler, tokens, wsServer)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{
		Addr:              address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Use an error channel to capture Serve() issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 9. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", "error", err)
	}
	sup.Stop()
	<-supDone
	log.Info("Program stopped cleanly")

	return nil
}
