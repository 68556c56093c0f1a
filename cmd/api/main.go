package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	appanalysis "github.com/trustlit/trustlit-server/internal/application/analysis"
	appchat "github.com/trustlit/trustlit-server/internal/application/chat"
	appreceipt "github.com/trustlit/trustlit-server/internal/application/receipt"
	"github.com/trustlit/trustlit-server/internal/config"
	aiclient "github.com/trustlit/trustlit-server/internal/infra/ai/openai"
	"github.com/trustlit/trustlit-server/internal/infra/ai/prompt"
	"github.com/trustlit/trustlit-server/internal/infra/appstore"
	"github.com/trustlit/trustlit-server/internal/infra/httpserver"
	"github.com/trustlit/trustlit-server/internal/metrics"
	"github.com/trustlit/trustlit-server/internal/middleware"
)

func main() {
	// .env is a local-development convenience; deployments use real env vars
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics.Register()

	// collaborators
	vision := aiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.ChatModel)
	vendor, err := appstore.NewClient(cfg.Apple.SharedSecret,
		appstore.WithEndpoints(cfg.Apple.ProductionURL, cfg.Apple.SandboxURL))
	if err != nil {
		log.Fatalf("appstore client error: %v", err)
	}

	// core engines
	analysisSvc := appanalysis.NewService(vision, prompt.Ladder)
	receiptSvc := appreceipt.NewService(vendor, nil, cfg.Apple.LifetimeProductID)
	chatSvc := appchat.NewService(vision, prompt.AssistantSystemPrompt)

	mux := chi.NewRouter()
	mux.Use(middleware.Logging)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))
	mux.Use(middleware.BodyLimit(int64(cfg.Server.BodyLimitMB) << 20))
	mux.Use(middleware.RateLimit(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))
	mux.Mount("/", httpserver.New(analysisSvc, receiptSvc, chatSvc, httpserver.Options{
		HasOpenAIKey: cfg.OpenAI.APIKey != "",
	}))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
