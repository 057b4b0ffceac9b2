package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every setting the services need. It is loaded once in main
// and handed to constructors; no service reads the environment itself.
type Config struct {
	Port           string
	AllowedOrigins []string

	OpenAIAPIKey   string
	OpenAIBaseURL  string
	EmbeddingModel string
	// Dimension of the embedding vectors, fixed per model.
	EmbeddingDimension int

	ChromaURL      string
	CollectionName string
	// Cap on the broad enumeration query used by delete-by-file.
	DeleteEnumerationLimit int

	TargetTokens  int
	OverlapTokens int
	// Structural split ceiling and overlap, in characters. Deliberately
	// decoupled from the token budget; the structural phase aims for
	// coherent boundaries, not the final size limit.
	StructuralCeilingChars int
	StructuralOverlapChars int

	StorageDir string

	GeminiAPIKey string
	GeminiModel  string
}

// Load reads configuration from the environment, loading a .env file first
// if one is present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("CONFIG: No .env file found, relying on environment variables.")
	}

	cfg := &Config{
		Port:                   getEnv("PORT", "8080"),
		AllowedOrigins:         splitOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		OpenAIAPIKey:           os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:          getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		EmbeddingModel:         getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
		EmbeddingDimension:     getEnvInt("EMBEDDING_DIMENSION", 1536),
		ChromaURL:              getEnv("CHROMA_URL", "http://localhost:8000"),
		CollectionName:         getEnv("COLLECTION_NAME", "documents"),
		DeleteEnumerationLimit: getEnvInt("DELETE_ENUMERATION_LIMIT", 10000),
		TargetTokens:           getEnvInt("TARGET_TOKENS", 400),
		OverlapTokens:          getEnvInt("OVERLAP_TOKENS", 50),
		StructuralCeilingChars: getEnvInt("STRUCTURAL_CEILING_CHARS", 2000),
		StructuralOverlapChars: getEnvInt("STRUCTURAL_OVERLAP_CHARS", 200),
		StorageDir:             getEnv("STORAGE_DIR", "./storage"),
		GeminiAPIKey:           os.Getenv("GEMINI_API_KEY"),
		GeminiModel:            getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	if cfg.OverlapTokens >= cfg.TargetTokens {
		return nil, fmt.Errorf("OVERLAP_TOKENS (%d) must be less than TARGET_TOKENS (%d)",
			cfg.OverlapTokens, cfg.TargetTokens)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("CONFIG: Invalid value for %s: %q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
