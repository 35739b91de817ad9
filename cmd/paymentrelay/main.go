package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alovak/tuitionpay/payments"
)

func main() {
	cfg, err := payments.LoadConfig()
	if err != nil {
		slog.Error("loading config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	app := payments.NewApp(logger, cfg)
	if err := app.Start(); err != nil {
		logger.Error("starting app", "err", err)
		os.Exit(1)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	app.Shutdown()
}
