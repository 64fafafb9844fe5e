package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/compile"
	"resume-tailor/internal/history"
	"resume-tailor/internal/llm"
	"resume-tailor/internal/llm/gemini"
	"resume-tailor/internal/llm/openai"
	"resume-tailor/internal/llm/vertex"
	"resume-tailor/internal/services/health"
	"resume-tailor/internal/shared/config"
	"resume-tailor/internal/shared/server"
	"resume-tailor/internal/shared/server/middleware"
	"resume-tailor/internal/shared/storage/db"
	"resume-tailor/internal/shared/storage/object"
	gcsstore "resume-tailor/internal/shared/storage/object/gcs"
	localstore "resume-tailor/internal/shared/storage/object/local"
	memstore "resume-tailor/internal/shared/storage/object/memory"
	miniostore "resume-tailor/internal/shared/storage/object/minio"
	s3store "resume-tailor/internal/shared/storage/object/s3"
	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/internal/summarize"
	"resume-tailor/internal/tailor"
	"resume-tailor/internal/uploads"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	Store    object.ObjectStore
	LLM      llm.Client
	Recorder *history.Recorder

	TailorService    *tailor.Service
	UploadService    *uploads.Service
	CompileService   *compile.Service
	SummarizeService *summarize.Service

	closers []io.Closer
}

// Deps overrides adapters Build would otherwise construct from Config. Nil
// fields fall back to the in-process defaults.
type Deps struct {
	DB          *sql.DB
	Store       object.ObjectStore
	LLM         llm.Client
	Compiler    compile.Compiler
	HistoryRepo history.Repo
	Limiter     middleware.Limiter
}

// Build connects the configured adapters and wires the application.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var closers []io.Closer
	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if sqlDB != nil {
		closers = append(closers, sqlDB)
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		closeAll(closers)
		return nil, err
	}
	if c, ok := store.(io.Closer); ok {
		closers = append(closers, c)
	}

	client, err := buildLLM(ctx, cfg)
	if err != nil {
		closeAll(closers)
		return nil, err
	}
	if c, ok := client.(io.Closer); ok {
		closers = append(closers, c)
	}

	var limiter middleware.Limiter
	if cfg.RateLimitRPS > 0 && cfg.RateLimitRedis != "" {
		redisLimiter, redisClient, err := middleware.NewRedisLimiterFromURL(cfg.RateLimitRedis)
		if err != nil {
			closeAll(closers)
			return nil, fmt.Errorf("rate limit redis: %w", err)
		}
		closers = append(closers, redisClient)
		limiter = redisLimiter
	}

	if cfg.CompileWorkDir != "" {
		if err := os.MkdirAll(cfg.CompileWorkDir, 0o755); err != nil {
			closeAll(closers)
			return nil, fmt.Errorf("create compile work dir: %w", err)
		}
	}

	app := Assemble(cfg, Deps{
		DB:      sqlDB,
		Store:   store,
		LLM:     client,
		Limiter: limiter,
	})
	app.closers = closers
	return app, nil
}

// Assemble wires services, handlers and the router from ready adapters.
func Assemble(cfg config.Config, deps Deps) *App {
	store := deps.Store
	if store == nil {
		store = memstore.New("memory", filesBase(cfg))
	}
	client := deps.LLM
	if client == nil {
		client = llm.PlaceholderClient{}
	}
	compiler := deps.Compiler
	if compiler == nil {
		compiler = compile.PDFLaTeX{
			Binary:    cfg.LatexCompiler,
			TexInputs: cfg.TexInputs,
			Timeout:   cfg.CompileTimeout,
		}
	}
	repo := deps.HistoryRepo
	if repo == nil {
		if deps.DB != nil {
			repo = &history.PGRepo{DB: deps.DB}
		} else {
			repo = history.NewMemoryRepo()
		}
	}
	recorder := history.NewRecorder(repo)

	tailorSvc := &tailor.Service{Store: store, LLM: client, Model: cfg.LLMModel, Recorder: recorder}
	uploadSvc := &uploads.Service{Store: store, MaxBytes: cfg.MaxUploadBytes, Recorder: recorder}
	compileSvc := &compile.Service{
		Store:     store,
		Compiler:  compiler,
		WorkDir:   cfg.CompileWorkDir,
		OutputKey: cfg.PDFOutputKey,
		KeyMode:   cfg.PDFKeyMode,
		Recorder:  recorder,
	}
	summarizeSvc := &summarize.Service{LLM: client, Model: cfg.SummaryModel, MaxTokens: cfg.SummaryMaxTokens}

	var healthSvc *health.Service
	if deps.DB != nil {
		healthSvc = health.NewService(deps.DB)
	}

	routerDeps := server.RouterDeps{
		CORSAllowOrigin: cfg.CORSAllowOrigin,
		Health:          healthSvc,
		Handlers: []server.Routes{
			uploads.NewHandler(uploadSvc),
			compile.NewHandler(compileSvc),
			history.NewHandler(recorder),
		},
		LLMHandlers: []server.Routes{
			tailor.NewHandler(tailorSvc),
			summarize.NewHandler(summarizeSvc),
		},
	}
	if servesFiles(cfg, deps.Store) {
		routerDeps.Files = store
	}
	if cfg.RateLimitRPS > 0 {
		routerDeps.RateLimit = &middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				server.RateLimitGroupLLM: {Rate: cfg.RateLimitRPS, Burst: cfg.RateLimitBurst},
			},
			Limiter: deps.Limiter,
		}
	}

	return &App{
		Config:           cfg,
		Router:           server.NewRouter(routerDeps),
		DB:               deps.DB,
		Store:            store,
		LLM:              client,
		Recorder:         recorder,
		TailorService:    tailorSvc,
		UploadService:    uploadSvc,
		CompileService:   compileSvc,
		SummarizeService: summarizeSvc,
	}
}

// Close releases the database pool and any SDK clients.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	return closeAll(a.closers)
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		telemetry.Info("bootstrap.history.memory", map[string]any{"reason": "DATABASE_URL empty"})
		return nil, nil
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.history.memory", map[string]any{"reason": "database connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "gcs":
		return gcsstore.New(ctx, cfg.Bucket, cfg.GCSCredentialsFile)
	case "s3":
		return s3store.New(ctx, s3store.Options{
			Region:          cfg.AWSRegion,
			Bucket:          cfg.Bucket,
			Prefix:          cfg.S3Prefix,
			KMSKeyID:        cfg.SSEKMSKeyID,
			Endpoint:        cfg.S3Endpoint,
			PublicURL:       cfg.S3PublicBaseURL,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
	case "minio":
		return miniostore.New(ctx, miniostore.Options{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			UseSSL:    cfg.MinioUseSSL,
			Bucket:    cfg.Bucket,
			PublicURL: cfg.PublicBaseURL,
		})
	case "memory":
		return memstore.New("memory", filesBase(cfg)), nil
	default:
		return localstore.New(cfg.LocalStoreDir, filesBase(cfg))
	}
}

func buildLLM(ctx context.Context, cfg config.Config) (llm.Client, error) {
	switch cfg.LLMProvider {
	case "openai":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			return notConfigured(cfg.LLMProvider, "OPENAI_API_KEY empty"), nil
		}
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAITimeout)
	case "gemini":
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			return notConfigured(cfg.LLMProvider, "GEMINI_API_KEY empty"), nil
		}
		return gemini.NewClient(ctx, cfg.GeminiAPIKey)
	case "vertex":
		return vertex.NewClient(ctx, cfg.VertexProjectID, cfg.VertexRegion)
	default:
		return notConfigured(cfg.LLMProvider, "unknown provider"), nil
	}
}

func notConfigured(provider, reason string) llm.Client {
	telemetry.Warn("bootstrap.llm.placeholder", map[string]any{
		"provider": provider,
		"reason":   reason,
	})
	return llm.PlaceholderClient{}
}

// servesFiles reports whether objects must be served by this process because
// the store has no public endpoint.
func servesFiles(cfg config.Config, injected object.ObjectStore) bool {
	if injected == nil {
		return true
	}
	switch cfg.ObjectStoreType {
	case "local", "memory":
		return true
	default:
		return false
	}
}

func filesBase(cfg config.Config) string {
	return object.JoinURL(cfg.PublicBaseURL, "files")
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
