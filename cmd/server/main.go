package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"example.com/spahttpd/internal/config"
	"example.com/spahttpd/internal/filestore"
	"example.com/spahttpd/internal/httpd"
	"example.com/spahttpd/internal/logger"
	"example.com/spahttpd/internal/util"
)

var configFilePath string

func main() {
	flag.StringVar(&configFilePath, "config", "", "Path to the configuration file (JSON or TOML)")
	flag.Parse()

	if configFilePath == "" {
		fmt.Fprintln(os.Stderr, "Error: Configuration file path must be provided via -config flag.")
		flag.Usage()
		os.Exit(1)
	}

	absConfigPath, err := filepath.Abs(configFilePath)
	if err != nil {
		log.Fatalf("Error getting absolute path for config file %s: %v", configFilePath, err)
	}

	cfg, err := config.LoadConfig(absConfigPath)
	if err != nil {
		log.Fatalf("Failed to load configuration from %s: %v", absConfigPath, err)
	}

	lg, err := logger.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer lg.CloseLogFiles()
	lg.Info("logger initialized", nil)

	store, err := filestore.New(cfg.Server.DocumentRoot)
	if err != nil {
		lg.Error("failed to open document root", logger.LogFields{"root": cfg.Server.DocumentRoot, "error": err.Error()})
		os.Exit(1)
	}
	if usage, err := store.Usage(); err == nil {
		lg.Info("store mounted", logger.LogFields{"root": store.Root(), "usage": usage.String()})
	} else {
		lg.Warn("failed to measure store usage", logger.LogFields{"error": err.Error()})
	}

	srv, err := httpd.NewServer(cfg, lg, store)
	if err != nil {
		lg.Error("failed to create server", logger.LogFields{"error": err.Error()})
		os.Exit(1)
	}

	if err := srv.Listen(); err != nil {
		if util.IsAddrInUse(err) {
			lg.Error("listen address is already in use", logger.LogFields{"address": *cfg.Server.Address})
		} else {
			lg.Error("failed to bind listener", logger.LogFields{"error": err.Error()})
		}
		os.Exit(1)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		lg.Info("signal received, shutting down", logger.LogFields{"signal": sig.String()})
		srv.Stop()
	}()

	if err := srv.Serve(); err != nil {
		lg.Error("server stopped with error", logger.LogFields{"error": err.Error()})
		os.Exit(1)
	}
	lg.Info("server shut down", nil)
}
