package main

import (
	"flag"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/gradebook/internal/app"
	"github.com/shrimpsizemoose/gradebook/internal/handlers"
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

	err = serve(service)
	if cerr := service.Close(); cerr != nil {
		logger.Error.Printf("Failed to close service: %v", cerr)
	}
	if err != nil {
		logger.Error.Fatalf("Gradebook server failed: %v", err)
	}
}

func newRouter(service *app.Service) http.Handler {
	mux := http.NewServeMux()
	handlers.NewHandler(service).Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	if len(service.Config.Server.CORSOrigins) == 0 {
		return mux
	}

	logger.Debug.Printf("CORS enabled for %v", service.Config.Server.CORSOrigins)
	return cors.New(cors.Options{
		AllowedOrigins: service.Config.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"*"},
	}).Handler(mux)
}

// serve blocks until the listener fails.
func serve(service *app.Service) error {
	logger.Info.Printf("Starting gradebook server on %s (course week %d)", service.Config.Server.Port, service.CurrentWeek())
	logger.Debug.Println("Requiring headers:")
	for _, h := range service.Config.API.RequiredHeaders {
		logger.Debug.Printf("  %s: %s", h.Name, h.Value)
	}

	if err := http.ListenAndServe(service.Config.Server.Port, newRouter(service)); err != nil {
		return fmt.Errorf("listen on %s: %w", service.Config.Server.Port, err)
	}
	return nil
}
