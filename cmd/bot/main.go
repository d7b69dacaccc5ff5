package main

import (
	"flag"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/gradebook/internal/app"
	"github.com/shrimpsizemoose/gradebook/internal/bot"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	var envPath = flag.String("env", ".env", "Path to optional dotenv file with secrets")
	flag.Parse()

	if err := app.LoadEnv(*envPath); err != nil {
		logger.Error.Fatalf("Failed to load env: %v", err)
	}

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	var tokens *app.TokenManager
	if service.Auth.Enabled() {
		tokens = app.NewTokenManager(service.Auth.Client(), service.Config.Auth.TokenKeyTemplate)
	}

	b, err := bot.New(service, tokens)
	if err != nil {
		service.Close()
		logger.Error.Fatalf("Failed to create bot: %v", err)
	}

	logger.Info.Println("Bot initialized successfully")
	if err := b.Start(); err != nil {
		service.Close()
		logger.Error.Fatalf("Bot error: %v", err)
	}
}
