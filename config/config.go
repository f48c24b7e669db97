package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	AnthropicAPIKey   string
	OpenAIAPIKey      string
	PineconeAPIKey    string
	PineconeIndexName string
	TavilyAPIKey      string
	DatabaseURL       string
	DataDir           string
	PlotsDir          string
	LogDir            string
	MaxAgentSteps     int
}

// Load reads configuration from the environment, with .env support for local
// development. Missing required values are validated by the callers that
// need them.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[INFO] No .env file found, using environment variables")
	}

	return &Config{
		Port:              getEnv("PORT", "8000"),
		AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		PineconeAPIKey:    os.Getenv("PINECONE_API_KEY"),
		PineconeIndexName: getEnv("PINECONE_INDEX_NAME", "lisbon-datasets-index"),
		TavilyAPIKey:      os.Getenv("TAVILY_API_KEY"),
		DatabaseURL:       os.Getenv("DB_URL"),
		DataDir:           getEnv("DATA_DIR", "data"),
		PlotsDir:          getEnv("PLOTS_DIR", "data/plots"),
		LogDir:            getEnv("LOG_DIR", "logs"),
		MaxAgentSteps:     getEnvInt("MAX_AGENT_STEPS", 10),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("[WARN] Invalid value for %s: %q, using default %d", key, value, fallback)
		return fallback
	}
	return n
}
