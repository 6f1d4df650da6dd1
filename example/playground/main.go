// Playground drives a capsule character around a small scene. On a terminal it
// opens an interactive top-down view, otherwise it replays the configured input
// script headless and logs the result.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/akmonengine/motor/internal/config"
	"github.com/akmonengine/motor/internal/logger"
	"golang.org/x/term"
)

const interactiveLogFile = "playground.log"

func main() {
	configPath := flag.String("config", "example/playground/config.yaml", "path to the playground config")
	headless := flag.Bool("headless", false, "replay the input script even on a terminal")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	interactive := !*headless && term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
	if interactive && cfg.Logging.File == "" {
		// The screen owns stdout
		cfg.Logging.File = interactiveLogFile
	}
	if err := logger.Init(cfg.Logging); err != nil {
		slog.Warn("Logging to stderr", "error", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if interactive {
		err = runInteractive(ctx, cfg, logger.L())
	} else {
		_, err = runHeadless(ctx, cfg, logger.L())
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.L().Error("Playground stopped", "error", err)
		os.Exit(1)
	}
}
