package main

import (
	"classroom-lab/api"
	grpchealth "classroom-lab/grpc"
	"classroom-lab/internal"
	"classroom-lab/observability"
	"classroom-lab/repositories"
	"classroom-lab/runtime"
	"classroom-lab/runtime/workers"
	"classroom-lab/sink"
	"classroom-lab/transport/ws"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Exit codes to provide meaningful status to the operating system or service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const shutdownTimeout = 10 * time.Second

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Classroom server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component and owns the server lifecycle,
// so deferred cleanups always execute before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, err
	}
	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Activity journal (BadgerDB) and note index (Bluge)
	badgerOptions := badger.DefaultOptions(config.BadgerFilepath).WithLoggingLevel(badger.WARNING)
	if config.BadgerFilepath == "" {
		badgerOptions = badgerOptions.WithInMemory(true)
	}
	db, err := badger.Open(badgerOptions)
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	blugeWriter, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	defer func() {
		log.Info("Closing Bluge...")
		_ = blugeWriter.Close()
	}()

	activityRepository := repositories.NewActivityRepository(db, log, config.LimitActivity)
	noteIndex := repositories.NewNoteIndex(blugeWriter, log)

	// 3. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	metrics := observability.NewMetrics(registry)

	// 4. Supervision & Dispatch
	sup := workers.NewSupervisor(log, config.RestartInterval)
	rooms := runtime.NewRoomRegistry()
	dispatcher := runtime.NewDispatcher(log, sup, rooms, runtime.NewDirectory(),
		metrics, config.BufferSize, config.SinkTimeout)
	dispatcher.Add(sink.NewJournalSink(activityRepository), sink.NewSearchSink(noteIndex, log))
	if config.EnableModeration {
		moderator, err := runtime.LoadModerator(log, charReplacement)
		if err != nil {
			return exitConfig, fmt.Errorf("moderation setup failed: %w", err)
		}
		dispatcher.WithModerator(moderator)
	}
	sup.Add(workers.NewHealthMonitoringWorker(log, metrics, config.MetricInterval))

	// 5. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatched := make(chan struct{})
	go func() {
		defer close(dispatched)
		_ = dispatcher.Start(ctx)
	}()

	// 6. HTTP (directory, websocket, metrics) and gRPC health
	wsHandler := ws.NewHandler(log, dispatcher, ws.Options{
		BufferSize:     config.ConnectionBufferSize,
		WriteTimeout:   config.WriteTimeout,
		PingInterval:   config.PingInterval,
		PongWait:       config.PongWait,
		MaxMessageSize: config.MaxMessageSize,
		AllowedOrigins: config.Origins(),
	})
	apiServer := api.NewServer(log, rooms, activityRepository, noteIndex, registry, wsHandler).WithMetrics(metrics)
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{
		Addr:              address,
		Handler:           apiServer.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	healthAddress := fmt.Sprintf("%s:%d", config.Host, config.GrpcHealthPort)
	listener, err := net.Listen("tcp", healthAddress)
	if err != nil {
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", healthAddress, err)
	}
	healthServer := grpchealth.NewHealthServer(log)

	errChan := make(chan error, 2)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()
	go func() {
		if err := healthServer.Serve(listener); err != nil {
			errChan <- fmt.Errorf("gRPC health server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	code := exitOK
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err = <-errChan:
		log.Error("Server failure, shutting down", "error", err)
		code = exitRuntime
	}

	// 8. Final Cleanup
	healthServer.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown incomplete", "error", err)
	}
	stop()
	dispatcher.Stop()
	<-dispatched
	log.Info("Program stopped cleanly")

	return code, err
}
