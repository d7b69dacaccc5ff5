package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/gradebook/internal/app"
	"github.com/shrimpsizemoose/gradebook/internal/export"
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
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	exporter, err := export.NewGSheetExporter(service.Config, service)
	if err != nil {
		service.Close()
		logger.Error.Fatalf("Failed to initialize Google Sheets exporter: %v", err)
	}
	defer exporter.Stop()

	logger.Info.Println("Exporting grades")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info.Println("Exporter stopped")
}
