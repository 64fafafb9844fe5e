package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultTexInputs    = "/usr/share/texlive/texmf-dist/tex/latex/preprint//:"
	DefaultPDFOutputKey = "pdfs/temp.pdf"

	PDFKeyModeFixed   = "fixed"
	PDFKeyModeDerived = "derived"
)

// Config holds application configuration. It is built once at process start
// and passed by value to bootstrap.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string

	ObjectStoreType    string
	Bucket             string
	LocalStoreDir      string
	PublicBaseURL      string
	GCSCredentialsFile string
	AWSRegion          string
	S3Prefix           string
	S3Endpoint         string
	S3PublicBaseURL    string
	S3AccessKeyID      string
	S3SecretAccessKey  string
	SSEKMSKeyID        string
	MinioEndpoint      string
	MinioAccessKey     string
	MinioSecretKey     string
	MinioUseSSL        bool

	LLMProvider      string
	LLMModel         string
	SummaryModel     string
	SummaryMaxTokens int
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAITimeout    time.Duration
	GeminiAPIKey     string
	VertexProjectID  string
	VertexRegion     string

	LatexCompiler  string
	TexInputs      string
	CompileWorkDir string
	CompileTimeout time.Duration
	PDFOutputKey   string
	PDFKeyMode     string

	MaxUploadBytes int64
	DatabaseURL    string
	RateLimitRPS   float64
	RateLimitBurst int
	RateLimitRedis string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	bucket := getEnv("BUCKET_NAME", "")
	provider := strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "openai")))
	chatModel, summaryModel := defaultModels(provider)

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),

		ObjectStoreType:    normalizeStoreType(getEnv("OBJECT_STORE", defaultStoreType(bucket))),
		Bucket:             bucket,
		LocalStoreDir:      getEnv("LOCAL_STORE_DIR", "./data"),
		PublicBaseURL:      strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		GCSCredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		AWSRegion:          getEnv("AWS_REGION", ""),
		S3Prefix:           getEnv("S3_PREFIX", ""),
		S3Endpoint:         getEnv("S3_ENDPOINT", ""),
		S3PublicBaseURL:    getEnv("S3_PUBLIC_BASE_URL", ""),
		S3AccessKeyID:      getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey:  getEnv("S3_SECRET_ACCESS_KEY", ""),
		SSEKMSKeyID:        getEnv("SSE_KMS_KEY_ID", ""),
		MinioEndpoint:      getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey:     getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:     getEnv("MINIO_SECRET_KEY", ""),
		MinioUseSSL:        getEnvBool("MINIO_USE_SSL", false),

		LLMProvider:      provider,
		LLMModel:         getEnv("LLM_MODEL", chatModel),
		SummaryModel:     getEnv("SUMMARY_MODEL", summaryModel),
		SummaryMaxTokens: getEnvInt("SUMMARY_MAX_TOKENS", 150),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
		OpenAITimeout:    time.Duration(getEnvInt("OPENAI_TIMEOUT_SECONDS", 120)) * time.Second,
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		VertexProjectID:  getEnv("VERTEX_PROJECT_ID", ""),
		VertexRegion:     getEnv("VERTEX_REGION", "us-central1"),

		LatexCompiler:  getEnv("LATEX_COMPILER", "pdflatex"),
		TexInputs:      getEnv("TEXINPUTS_PATH", DefaultTexInputs),
		CompileWorkDir: getEnv("COMPILE_WORK_DIR", os.TempDir()),
		CompileTimeout: getEnvDuration("COMPILE_TIMEOUT", 60*time.Second),
		PDFOutputKey:   getEnv("PDF_OUTPUT_KEY", DefaultPDFOutputKey),
		PDFKeyMode:     normalizePDFKeyMode(getEnv("PDF_KEY_MODE", PDFKeyModeFixed)),

		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 0),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 5),
		RateLimitRedis: getEnv("RATE_LIMIT_REDIS_URL", ""),
	}
}

// Validate reports configuration combinations that cannot work.
func (c Config) Validate() error {
	var errs []error
	switch c.ObjectStoreType {
	case "gcs", "s3", "minio":
		if strings.TrimSpace(c.Bucket) == "" {
			errs = append(errs, fmt.Errorf("OBJECT_STORE=%s requires BUCKET_NAME", c.ObjectStoreType))
		}
	}
	if c.ObjectStoreType == "minio" && strings.TrimSpace(c.MinioEndpoint) == "" {
		errs = append(errs, errors.New("OBJECT_STORE=minio requires MINIO_ENDPOINT"))
	}
	if c.LLMProvider == "vertex" && strings.TrimSpace(c.VertexProjectID) == "" {
		errs = append(errs, errors.New("LLM_PROVIDER=vertex requires VERTEX_PROJECT_ID"))
	}
	if c.SummaryMaxTokens <= 0 {
		errs = append(errs, errors.New("SUMMARY_MAX_TOKENS must be positive"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	if c.PDFKeyMode == PDFKeyModeFixed && strings.TrimSpace(c.PDFOutputKey) == "" {
		errs = append(errs, errors.New("PDF_OUTPUT_KEY is required when PDF_KEY_MODE=fixed"))
	}
	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config: %s invalid int %q, using %d", key, raw, def)
		return def
	}
	return val
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("config: %s invalid float %q, using %v", key, raw, def)
		return def
	}
	return val
}

func getEnvBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return def
	}
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("config: %s invalid duration %q, using %s", key, raw, def)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

// defaultStoreType picks GCS whenever a bucket is configured.
func defaultStoreType(bucket string) string {
	if strings.TrimSpace(bucket) != "" {
		return "gcs"
	}
	return "local"
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gcs", "gs", "google":
		return "gcs"
	case "s3":
		return "s3"
	case "minio":
		return "minio"
	case "memory", "mem":
		return "memory"
	default:
		return "local"
	}
}

// defaultModels returns the tailoring and summary model defaults per provider.
func defaultModels(provider string) (string, string) {
	switch provider {
	case "gemini", "vertex":
		return "gemini-1.5-pro", "gemini-1.5-flash"
	default:
		return "gpt-4o", "gpt-4o-mini"
	}
}

func normalizePDFKeyMode(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), PDFKeyModeDerived) {
		return PDFKeyModeDerived
	}
	return PDFKeyModeFixed
}
