package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"chat-room/internal"
	"chat-room/observability"
	"chat-room/runtime"
	"chat-room/runtime/workers"
	"chat-room/services"
	"chat-room/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so every defer executes before the process
// exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return err
	}

	// 2. Moderation (embedded word lists)
	moderator, languages, err := runtime.NewDefaultModerator(charReplacement)
	if err != nil {
		return fmt.Errorf("moderator setup failed: %w", err)
	}
	log.Info("Moderation loaded", "languages", languages)

	// 3. Supervision & room pipeline
	sup := workers.NewSupervisor(log, config.RestartInterval)
	registry := runtime.NewRegistry()
	counters := observability.NewCounters()

	coordinator := runtime.NewCoordinator(log, sup, registry, moderator, counters,
		runtime.Options{
			CommandBuffer:   config.CommandBuffer,
			EventBuffer:     config.EventBuffer,
			TelemetryBuffer: config.TelemetryBuffer,
			SinkTimeout:     config.SinkTimeout,
			MetricInterval:  config.MetricInterval,
			RestartInterval: config.RestartInterval,
			LowCapacity:     config.LowCapacityThreshold,
			CpuWarnPercent:  config.CpuWarnPercent,
		})

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Start the engine
	coordinator.Start(ctx)

	// 6. HTTP & websocket surface
	roomService := services.NewRoomService(coordinator, config.JoinWait)
	server := transport.NewServer(log, roomService, coordinator, transport.ConnConfig{
		ReadLimit:    config.ReadLimit,
		PongWait:     config.PongWait,
		WriteWait:    config.WriteWait,
		SinkBuffer:   config.SinkBuffer,
		RateBurst:    config.RateBurst,
		RateInterval: config.RateInterval,
	}, config.OriginAllowList())

	httpServer := &http.Server{
		Addr:              config.Addr(),
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Use an error channel to capture ListenAndServe issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting server", "address", config.Addr(), "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for stop or error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", "error", err)
	}
	coordinator.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
