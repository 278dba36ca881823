package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"visionocr/cmd"
	"visionocr/internal/config"
	"visionocr/internal/logger"
)

func main() {
	// A missing .env is normal; real environment variables still apply.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg := config.Load()
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Printf("Warning: Could not apply logging configuration: %v", err)
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}

	log := logger.WithComponent("main")
	log.Debug().Msg("Starting visionocr")

	cmd.Execute(cfg)
}
