package main

import (
	"flag"
	"log/slog"
	"os"

	"shogi/internal/server"
	"shogi/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "path to config.json (default: search upwards from cwd)")
	listen := flag.String("listen", "", "listen address, overrides config")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	path := *configPath
	if path == "" {
		found, _, err := server.FindConfigPath()
		if err != nil {
			logger.Error("no config found", "err", err)
			os.Exit(1)
		}
		path = found
	}
	cfg, err := server.LoadConfig(path)
	if err != nil {
		logger.Error("failed to load config", "path", path, "err", err)
		os.Exit(1)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}

	store, err := storage.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "err", err)
		os.Exit(1)
	}
	defer store.Close()

	app := server.New(cfg, logger, store)
	if err := app.Run(); err != nil {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
