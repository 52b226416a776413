package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Oracle provider
	OracleProvider string
	OracleAPIKey   string
	OracleModel    string
	OracleBaseURL  string

	// Worker pool
	WorkerCount           int
	MaxQueueSize          int
	MaxConcurrentGenerate int

	// Upload limits
	MaxUploadBytes int64
	MaxPDFPages    int

	// Generation
	QuestionsPerSection int
	MaxQuestions        int
	MinInputLen         int
	GenerateTimeout     time.Duration

	// Job state
	JobTTL time.Duration

	// OCR provider chain, highest priority first.
	OCRProviderURLs []string

	// Audit storage (S3-compatible), optional.
	S3Endpoint        string
	S3Bucket          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3PublicURL       string
}

func Load() Config {
	// A local .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("QUIZWAY_API_KEY"),

		OracleProvider: os.Getenv("ORACLE_PROVIDER"),
		OracleAPIKey:   os.Getenv("ORACLE_API_KEY"),
		OracleModel:    os.Getenv("ORACLE_MODEL"),
		OracleBaseURL:  os.Getenv("ORACLE_BASE_URL"),

		WorkerCount:           envInt("WORKER_COUNT", 4),
		MaxQueueSize:          envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentGenerate: envInt("MAX_CONCURRENT_GENERATE", 4),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 26214400), // 25MB
		MaxPDFPages:    envInt("MAX_PDF_PAGES", 300),

		QuestionsPerSection: envInt("QUESTIONS_PER_SECTION", 3),
		MaxQuestions:        envInt("MAX_QUESTIONS", 30),
		MinInputLen:         envInt("MIN_INPUT_LEN", 100),
		GenerateTimeout:     envDuration("GENERATE_TIMEOUT", 3*time.Minute),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		OCRProviderURLs: envList("OCR_PROVIDER_URLS"),

		S3Endpoint:        os.Getenv("S3_ENDPOINT"),
		S3Bucket:          os.Getenv("S3_BUCKET"),
		S3AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3PublicURL:       os.Getenv("S3_PUBLIC_URL"),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	// Oracle rate limits want a small bound here.
	if cfg.MaxConcurrentGenerate <= 0 || cfg.MaxConcurrentGenerate > 5 {
		cfg.MaxConcurrentGenerate = 4
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 26214400
	}
	if cfg.MaxPDFPages <= 0 {
		cfg.MaxPDFPages = 300
	}
	if cfg.QuestionsPerSection <= 0 {
		cfg.QuestionsPerSection = 3
	}
	if cfg.MaxQuestions <= 0 {
		cfg.MaxQuestions = 30
	}
	if cfg.MinInputLen <= 0 {
		cfg.MinInputLen = 100
	}
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = 3 * time.Minute
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
