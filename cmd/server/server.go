package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/antoniamayaobrador/lisbon-agent/config"
	"github.com/antoniamayaobrador/lisbon-agent/db"
	"github.com/antoniamayaobrador/lisbon-agent/handlers"
	"github.com/antoniamayaobrador/lisbon-agent/observability"
	"github.com/antoniamayaobrador/lisbon-agent/services/agent"
	"github.com/antoniamayaobrador/lisbon-agent/services/catalog"

	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()

	if cfg.AnthropicAPIKey == "" {
		log.Fatal("ANTHROPIC_API_KEY environment variable is required")
	}

	if cfg.PineconeAPIKey == "" {
		log.Fatal("PINECONE_API_KEY environment variable is required")
	}

	if cfg.OpenAIAPIKey == "" {
		log.Fatal("OPENAI_API_KEY environment variable is required")
	}

	// Replies may reference plot artifacts under this directory.
	if err := os.MkdirAll(cfg.PlotsDir, 0o755); err != nil {
		log.Fatalf("Failed to create plots directory: %v", err)
	}

	sink, err := observability.NewFileSink(cfg.LogDir)
	if err != nil {
		log.Fatalf("Failed to initialize step log: %v", err)
	}
	defer sink.Close()

	ratingRepo, err := newRatingRepository(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize rating store: %v", err)
	}
	defer ratingRepo.Close()

	accessor, err := catalog.NewPineconeAccessor(cfg.PineconeAPIKey, cfg.OpenAIAPIKey, cfg.PineconeIndexName)
	if err != nil {
		log.Fatalf("Failed to initialize dataset catalog: %v", err)
	}

	client := agent.NewAnthropicClient(cfg.AnthropicAPIKey)
	tools := agent.DefaultTools(cfg.DataDir, cfg.PlotsDir, cfg.TavilyAPIKey)
	agentService := agent.NewService(client, accessor, tools, sink, cfg.MaxAgentSteps)

	agentHandler := handlers.NewAgentHandler(agentService, ratingRepo, sink)

	router := mux.NewRouter()

	router.Use(corsMiddleware)
	router.Use(jsonMiddleware)

	router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("OPTIONS")

	agentHandler.RegisterRoutes(router)

	router.HandleFunc("/health", healthCheckHandler).Methods("GET")

	addr := ":" + cfg.Port
	fmt.Printf("Server starting on port %s\n", cfg.Port)

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// newRatingRepository prefers Postgres and falls back to the append-only
// JSONL file store when no database is configured.
func newRatingRepository(cfg *config.Config) (db.RatingRepository, error) {
	if cfg.DatabaseURL != "" {
		return db.NewPostgresRatingRepository(cfg.DatabaseURL)
	}
	log.Printf("[INFO] DB_URL not set, storing ratings in %s/ratings.jsonl", cfg.LogDir)
	return db.NewFileRatingRepository(cfg.LogDir)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Expose-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "healthy"}`))
}
