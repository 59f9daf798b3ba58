package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gauravraj004/InterviewIQ-Voice-Enabled-AI-Interview-Simulator/internal/mockbackend"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:5000", "Listen address")
	requireKey := flag.Bool("require-api-key", false, "Reject /chat until /set_api was called")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	mock := mockbackend.New(mockbackend.Options{RequireAPIKey: *requireKey}, logger)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mock.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Mock backend listening", slog.String("address", *addr), slog.Bool("require_api_key", *requireKey))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Mock backend error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Received shutdown signal", slog.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Error stopping mock backend", slog.String("error", err.Error()))
	}
	logger.Info("Mock backend stopped")
}
