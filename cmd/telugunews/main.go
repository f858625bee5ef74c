package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"

	"TeluguNews/internal/app"
	"TeluguNews/internal/config"
	"TeluguNews/internal/logging"
	"TeluguNews/pkg/logger"
)

func main() {
	bootLog := logger.New("telugunews")

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		bootLog.Printf("cannot load .env: %v", err)
	}

	flags := flag.NewFlagSet("telugunews", flag.ContinueOnError)
	configPath := flags.String("config", "", "path to YAML configuration")
	watch := flags.Bool("watch", false, "run on every scheduler interval until interrupted")
	logLevel := flags.String("log-level", "", "override logging.level (debug, info, warn, error)")

	if err := ff.Parse(flags, os.Args[1:], ff.WithEnvVarPrefix("TELUGU_NEWS")); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		bootLog.Printf("invalid arguments: %v", err)
		os.Exit(2)
	}

	cfg := config.Load(*configPath)
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	log := logging.New(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("application setup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	if *watch {
		err = application.Serve(ctx)
	} else {
		err = application.Run(ctx)
	}
	if err != nil {
		log.Error("application stopped", "error", err)
		application.Close()
		os.Exit(1)
	}
}
