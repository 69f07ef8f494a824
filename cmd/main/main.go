package main

import (
	"context"
	_ "embed"
	"errors"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"marketplace-leads/internal/app"
	"marketplace-leads/internal/config"
)

//go:embed config/config.yaml
var configYamlContent []byte

var runFn = run

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()
	runFn(ctx)
}

func run(ctx context.Context) {
	cfg, err := config.NewFromYamlContent(configYamlContent)
	if err != nil {
		log.Panic(err)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.GetLogLevel()})))

	runner, err := app.New(cfg)
	if err != nil {
		log.Panic(err)
	}

	if err = runner.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
