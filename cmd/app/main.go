package main

import (
	"log"
	"os"

	"TelescopeStatus/internal/di"
	"TelescopeStatus/pkg/config"

	flag "github.com/spf13/pflag"
)

func main() {
	// Parse flags
	configPath := flag.StringP("config", "c", "config/config.yaml", "config file path")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s telescopes=%v cache=%s/%s", cfg.Environment, cfg.Dashboard.Telescopes, cfg.Cache.Dir, cfg.Cache.Format)

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
