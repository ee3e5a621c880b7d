package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/vietddude/stylelog"

	"github.com/vietddude/orderpipe/internal/core/domain"
	"github.com/vietddude/orderpipe/internal/simulator"
)

func main() {
	port := flag.Int("port", 5003, "Port to listen on")
	mode := flag.String("mode", os.Getenv("FAILURE_MODE"), "Initial failure mode (normal|slow|down|error)")
	isDebug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	slogLevel := slog.LevelInfo
	if *isDebug {
		slogLevel = slog.LevelDebug
	}
	stylelog.InitDefault(
		&tint.Options{
			Level:      slogLevel,
			TimeFormat: time.RFC3339,
		})

	initial := domain.ModeNormal
	if *mode != "" {
		parsed, err := domain.ParseFailureMode(*mode)
		if err != nil {
			slog.Error("Invalid failure mode", "mode", *mode, "error", err)
			os.Exit(1)
		}
		initial = parsed
	}

	injector := simulator.New(initial)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: injector.Handler(),
	}

	go func() {
		slog.Info("Validator simulator listening", "port", *port, "mode", initial)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Validator server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	slog.Info("Received signal, shutting down...", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("Validator stopped gracefully")
}
