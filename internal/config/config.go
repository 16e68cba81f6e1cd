package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/akolanti/DocAssist/internal/domain/errorModel"
	"github.com/joho/godotenv"
)

// Config is the runtime configuration. Every field starts from the defaults in
// environmentVariables.go and can be overridden from the environment or a .env file.
type Config struct {
	IsProd   bool
	LogLevel string

	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Qdrant    QdrantConfig
	Storage   StorageConfig
	Chunking  ChunkingConfig
	Embedding EmbeddingConfig
	Retrieval RetrievalConfig
	LLM       LLMConfig
	Workers   WorkerConfig
}

type ServerConfig struct {
	ListenAddr  string
	AdminToken  string
	RateLimit   float64
	RateBurst   int
	SwaggerHost string
}

type DatabaseConfig struct {
	URL string
	// ChunkBackend selects the chunk store: "pgvector" or "memory".
	ChunkBackend string
}

type RedisConfig struct {
	Addr     string
	Password string
	Enabled  bool
}

type QdrantConfig struct {
	Host   string
	Port   int
	APIKey string
	UseTLS bool
}

type StorageConfig struct {
	Root          string
	MaxUploadSize int64
}

type ChunkingConfig struct {
	Size    int
	Overlap int
}

type EmbeddingConfig struct {
	// Provider is "openai" or "google".
	Provider       string
	OpenAIKey      string
	GoogleKey      string
	Model          string
	Dimension      int
	MaxTokens      int
	Concurrency    int
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	RequestsPerSec float64
	Burst          int
}

type RetrievalConfig struct {
	TopK          int
	Threshold     float64
	ContextBudget int
	CacheEnabled  bool
}

type LLMConfig struct {
	// Provider is "openai" or "gemini".
	Provider      string
	StandardModel string
	AdvancedModel string
	Temperature   float32
	CallTimeout   time.Duration
}

type WorkerConfig struct {
	Min int64
	Max int64
}

// Load reads envFilePath when it exists and builds a Config from the environment.
// A missing env file is not an error.
func Load(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	provider := strings.ToLower(getEnv("EMBEDDING_PROVIDER", "openai"))
	embeddingModel := OpenAIEmbeddingModel
	if provider == "google" {
		embeddingModel = GoogleEmbeddingModel
	}

	llmProvider := strings.ToLower(getEnv("LLM_PROVIDER", "openai"))
	standardModel, advancedModel := OpenAIStandardModel, OpenAIAdvancedModel
	if llmProvider == "gemini" {
		standardModel, advancedModel = GeminiModelName, GeminiAdvancedModelName
	}

	cfg := &Config{
		IsProd:   getEnvAsBool("IS_PROD", IS_PROD),
		LogLevel: getEnv("LOG_LEVEL", ""),
		Server: ServerConfig{
			ListenAddr:  getEnv("LISTEN_ADDR", ServerListenAddr),
			AdminToken:  getEnv("ADMIN_TOKEN", ""),
			RateLimit:   getEnvAsFloat("RATE_LIMIT_PER_SECOND", RATE_LIMIT_PER_SECOND),
			RateBurst:   getEnvAsInt("RATE_LIMIT_BURST", BURST_RATE_LIMIT_PER_SECOND),
			SwaggerHost: getEnv("SWAGGER_HOST", "localhost"+ServerListenAddr),
		},
		Database: DatabaseConfig{
			URL:          getEnv("DATABASE_URL", DatabaseURL),
			ChunkBackend: strings.ToLower(getEnv("CHUNK_STORE", "pgvector")),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", RedisAddr),
			Password: getEnv("REDIS_PASSWORD", ""),
			Enabled:  getEnvAsBool("REDIS_ENABLED", true),
		},
		Qdrant: QdrantConfig{
			Host:   getEnv("QDRANT_HOST", QdrantHost),
			Port:   getEnvAsInt("QDRANT_GRPC_PORT", QdrantGrpcPort),
			APIKey: getEnv("QDRANT_API_KEY", ""),
			UseTLS: getEnvAsBool("QDRANT_USE_TLS", QdrantUseTLS),
		},
		Storage: StorageConfig{
			Root:          getEnv("STORAGE_ROOT", StorageRoot),
			MaxUploadSize: int64(getEnvAsInt("MAX_UPLOAD_SIZE", MaxUploadSize)),
		},
		Chunking: ChunkingConfig{
			Size:    getEnvAsInt("CHUNK_SIZE", DefaultChunkSize),
			Overlap: getEnvAsInt("CHUNK_OVERLAP", DefaultChunkOverlap),
		},
		Embedding: EmbeddingConfig{
			Provider:       provider,
			OpenAIKey:      getEnv("OPENAI_API_KEY", ""),
			GoogleKey:      getEnv("GOOGLE_API_KEY", ""),
			Model:          getEnv("EMBEDDING_MODEL", embeddingModel),
			Dimension:      getEnvAsInt("EMBEDDING_DIMENSION", int(EmbeddingOutputDimensionality)),
			MaxTokens:      getEnvAsInt("EMBEDDING_MAX_TOKENS", EmbeddingMaxTokens),
			Concurrency:    getEnvAsInt("EMBEDDING_CONCURRENCY", EmbeddingConcurrency),
			MaxAttempts:    getEnvAsInt("EMBEDDING_MAX_ATTEMPTS", EmbeddingMaxAttempts),
			InitialBackoff: getEnvAsDuration("EMBEDDING_INITIAL_BACKOFF", EmbeddingInitialBackoff),
			MaxBackoff:     getEnvAsDuration("EMBEDDING_MAX_BACKOFF", EmbeddingMaxBackoff),
			RequestsPerSec: getEnvAsFloat("EMBEDDING_REQUESTS_PER_SECOND", EmbeddingRequestsPerSec),
			Burst:          getEnvAsInt("EMBEDDING_REQUEST_BURST", EmbeddingRequestBurst),
		},
		Retrieval: RetrievalConfig{
			TopK:          getEnvAsInt("RETRIEVAL_TOP_K", DefaultTopK),
			Threshold:     getEnvAsFloat("RETRIEVAL_THRESHOLD", DefaultSimilarityThreshold),
			ContextBudget: getEnvAsInt("RETRIEVAL_CONTEXT_BUDGET", DefaultContextBudget),
			CacheEnabled:  getEnvAsBool("SEMANTIC_CACHE_ENABLED", true),
		},
		LLM: LLMConfig{
			Provider:      llmProvider,
			StandardModel: getEnv("LLM_STANDARD_MODEL", standardModel),
			AdvancedModel: getEnv("LLM_ADVANCED_MODEL", advancedModel),
			Temperature:   float32(getEnvAsFloat("LLM_TEMPERATURE", float64(ModelTemperature))),
			CallTimeout:   getEnvAsDuration("LLM_CALL_TIMEOUT", UpstreamCallTimeout),
		},
		Workers: WorkerConfig{
			Min: int64(getEnvAsInt("MIN_WORKERS", int(MinWorkerCount))),
			Max: int64(getEnvAsInt("MAX_WORKERS", int(MaxWorkerCount))),
		},
	}

	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if err := ValidateChunking(c.Chunking.Size, c.Chunking.Overlap); err != nil {
		return err
	}
	if c.Embedding.Provider != "openai" && c.Embedding.Provider != "google" {
		return errorModel.Configuration("validate", fmt.Errorf("unknown embedding provider %q", c.Embedding.Provider))
	}
	if c.LLM.Provider != "openai" && c.LLM.Provider != "gemini" {
		return errorModel.Configuration("validate", fmt.Errorf("unknown llm provider %q", c.LLM.Provider))
	}
	if c.Database.ChunkBackend != "pgvector" && c.Database.ChunkBackend != "memory" {
		return errorModel.Configuration("validate", fmt.Errorf("unknown chunk store %q", c.Database.ChunkBackend))
	}
	if c.Embedding.Dimension <= 0 {
		return errorModel.Configuration("validate", fmt.Errorf("embedding dimension must be positive, got %d", c.Embedding.Dimension))
	}
	if c.Retrieval.TopK <= 0 {
		return errorModel.Configuration("validate", fmt.Errorf("top k must be positive, got %d", c.Retrieval.TopK))
	}
	if c.Retrieval.Threshold < -1 || c.Retrieval.Threshold > 1 {
		return errorModel.Configuration("validate", fmt.Errorf("similarity threshold %v outside [-1,1]", c.Retrieval.Threshold))
	}
	if c.Workers.Min < 1 || c.Workers.Max < c.Workers.Min {
		return errorModel.Configuration("validate", fmt.Errorf("worker bounds %d..%d", c.Workers.Min, c.Workers.Max))
	}
	return nil
}

// ValidateChunking enforces 0 <= overlap < size.
func ValidateChunking(size, overlap int) error {
	if size <= 0 {
		return errorModel.Configuration("chunking", fmt.Errorf("chunk size must be positive, got %d", size))
	}
	if overlap < 0 || overlap >= size {
		return errorModel.Configuration("chunking", fmt.Errorf("overlap %d must be in [0, %d)", overlap, size))
	}
	return nil
}

// APIKey returns the key for the configured embedding provider.
func (e EmbeddingConfig) APIKey() string {
	if e.Provider == "google" {
		return e.GoogleKey
	}
	return e.OpenAIKey
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
