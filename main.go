package main

import (
	"log"
	"os"

	"example.com/spahttpd/internal/config"
	"example.com/spahttpd/internal/filestore"
	"example.com/spahttpd/internal/httpd"
	"example.com/spahttpd/internal/logger"
)

func main() {
	if len(os.Args) != 3 {
		log.Fatalf("Usage: %s <address> <document-root>", os.Args[0])
	}
	addr := os.Args[1]
	docRoot := os.Args[2]

	// Programmatic configuration for the simple invocation; the config-file
	// driven entry point lives in cmd/server.
	cfg := &config.Config{
		Server: &config.ServerConfig{
			Address:      &addr,
			DocumentRoot: docRoot,
		},
	}
	config.ApplyDefaults(cfg)
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	lg, err := logger.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer lg.CloseLogFiles()

	store, err := filestore.New(cfg.Server.DocumentRoot)
	if err != nil {
		log.Fatalf("Failed to open document root: %v", err)
	}
	if usage, err := store.Usage(); err == nil {
		lg.Info("store mounted", logger.LogFields{"root": store.Root(), "usage": usage.String()})
	}

	srv, err := httpd.NewServer(cfg, lg, store)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	lg.Info("starting server", logger.LogFields{"address": addr, "root": store.Root()})
	if err := srv.Start(); err != nil {
		lg.Error("server stopped with error", logger.LogFields{"error": err.Error()})
		os.Exit(1)
	}
}
