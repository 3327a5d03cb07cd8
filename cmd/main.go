package main

import (
	"chat-relay/contract"
	"chat-relay/internal"
	"chat-relay/moderation"
	"chat-relay/observability"
	"chat-relay/repositories"
	"chat-relay/runtime"
	"chat-relay/runtime/workers"
	"chat-relay/services"
	"chat-relay/storage"
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and blocks until a signal or a fatal worker error.
// Returning instead of exiting lets the deferred cleanups run.
func run() error {
	// 1. Configuration & Logger
	config, err := loadConfig()
	if err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Transfer journal (BadgerDB), in memory when no path is configured
	opts := badger.DefaultOptions(config.BadgerFilepath).WithLoggingLevel(badger.WARNING)
	if config.BadgerFilepath == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Relay components
	store, err := storage.NewDiskStore(config.ReceiveDir)
	if err != nil {
		return fmt.Errorf("receive directory: %w", err)
	}
	registry := runtime.NewRegistry(log)
	monitoring := observability.NewMonitoringManager()
	journal := repositories.NewTransferRepository(db, log)
	transfers := services.NewFileTransferService(log, store, registry, journal, monitoring, uint64(config.MaxFileSize))

	var censor contract.ICensor
	if words := config.Words(); len(words) > 0 {
		char, err := internal.CharacterRune(config.CensorCharacter)
		if err != nil {
			return err
		}
		moderator, err := moderation.NewModerator(words, char, log)
		if err != nil {
			return fmt.Errorf("moderation: %w", err)
		}
		censor = moderator
	}

	// 4. Listener
	listener, err := net.Listen("tcp", config.Address())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", config.Address(), err)
	}

	// 5. Supervision
	sup := workers.NewSupervisor(log)
	acceptor := workers.NewAcceptorWorker(listener, sup, func(conn net.Conn) contract.Worker {
		return workers.NewSessionWorker(conn, registry, transfers, censor, monitoring, log)
	}, log)
	sup.Add(
		acceptor,
		workers.NewHeartbeatWorker(log, monitoring, registry, config.StatsInterval),
		internal.NewDebugServer(config.DebugPort, registry, monitoring, journal, log),
	)

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = sup.Run(ctx)
	if err != nil {
		log.Error("Relay stopped on error", "error", err)
	} else {
		log.Info("Shutting down gracefully...")
	}

	// 7. Drain sessions before closing the journal
	if !sup.Wait(config.ShutdownTimeout) {
		log.Warn("Sessions still running after shutdown timeout", "timeout", config.ShutdownTimeout)
	}
	if err != nil {
		return err
	}
	log.Info("Program stopped cleanly")
	return nil
}
