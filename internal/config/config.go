package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI    string
	DBName      string
	Port        string
	GinMode     string
	CORSOrigins []string

	// Gemini
	GeminiAPIKey    string
	GenerativeModel string
	EmbeddingsModel string
	GeminiRPM       int

	// Pinecone vector index
	PineconeAPIKey    string
	PineconeHost      string
	PineconeNamespace string

	// Ingestion
	MaxChunkSize   int
	MaxFileSize    int64
	FileStorageDir string

	// Retrieval
	RetrievalTopK int

	// Redis (rate limiting + task queue)
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// HTTP rate limiting
	RateLimitReqs   int
	RateLimitWindow int

	// Telemetry
	TracingEnabled bool
	OTLPEndpoint   string
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017/legalcase"),
		DBName:      getEnv("DB_NAME", "legalcase"),
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),

		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GenerativeModel: getEnv("GENERATIVE_MODEL", "gemini-2.0-flash"),
		EmbeddingsModel: getEnv("EMBEDDINGS_MODEL", "text-embedding-004"),
		GeminiRPM:       getEnvInt("GEMINI_RPM", 10),

		PineconeAPIKey:    getEnv("PINECONE_API_KEY", ""),
		PineconeHost:      getEnv("PINECONE_HOST", ""),
		PineconeNamespace: getEnv("PINECONE_NAMESPACE", ""),

		MaxChunkSize:   getEnvInt("MAX_CHUNK_SIZE", 500),
		MaxFileSize:    getEnvInt64("MAX_FILE_SIZE", 20971520), // 20MB
		FileStorageDir: getEnv("FILE_STORAGE_DIR", "./storage"),

		RetrievalTopK: getEnvInt("RETRIEVAL_TOP_K", 3),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4317"),
	}

	// Validate required fields
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
	}

	if cfg.PineconeAPIKey == "" {
		return nil, fmt.Errorf("PINECONE_API_KEY is required - set it in .env file")
	}

	if cfg.PineconeHost == "" {
		return nil, fmt.Errorf("PINECONE_HOST is required - set it in .env file")
	}

	if cfg.MaxChunkSize < 1 {
		return nil, fmt.Errorf("MAX_CHUNK_SIZE must be >= 1, got %d", cfg.MaxChunkSize)
	}

	if cfg.RetrievalTopK < 1 {
		return nil, fmt.Errorf("RETRIEVAL_TOP_K must be >= 1, got %d", cfg.RetrievalTopK)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
