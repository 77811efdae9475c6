package main

import (
	"context"
	"log"
	"os"

	"github.com/noah-isme/evaluation-system/internal/app"
	"github.com/noah-isme/evaluation-system/pkg/config"
	"github.com/noah-isme/evaluation-system/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	application, err := app.New(context.Background(), cfg, logr)
	if err != nil {
		log.Fatalf("failed to initialise application: %v", err)
	}

	cli := &commandLine{
		users:    application.Users,
		auth:     application.Auth,
		subjects: application.Subjects,
		exports:  application.Records,
		out:      os.Stdout,
	}
	err = cli.run(os.Args)
	_ = application.Close()
	if err != nil {
		if err != errHelp {
			log.Printf("error: %s", err)
		}
		os.Exit(1)
	}
}
