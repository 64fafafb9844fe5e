package server

import (
	"errors"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/services/health"
	"resume-tailor/internal/shared/apperr"
	"resume-tailor/internal/shared/metrics"
	"resume-tailor/internal/shared/server/middleware"
	"resume-tailor/internal/shared/server/respond"
	"resume-tailor/internal/shared/storage/object"
	"resume-tailor/internal/shared/util"
)

// RateLimitGroupLLM is the rate limit group of the routes that call the model.
const RateLimitGroupLLM = "LLM"

// Routes is implemented by every feature handler.
type Routes interface {
	RegisterRoutes(rg gin.IRoutes)
}

// RouterDeps carries everything the router wires. Files, when set, is served
// back at GET /files/*key. LLMHandlers share the LLM rate limit group. Nil
// handlers are skipped.
type RouterDeps struct {
	CORSAllowOrigin []string
	RateLimit       *middleware.RateLimitConfig
	Health          *health.Service
	Files           object.ObjectStore
	Handlers        []Routes
	LLMHandlers     []Routes
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.CORSAllowOrigin),
	)

	r.GET("/health", func(c *gin.Context) {
		status := deps.Health.Status(c.Request.Context())
		code := http.StatusOK
		if !status.OK {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})
	r.GET("/metrics", metrics.Handler())
	if deps.Files != nil {
		r.GET("/files/*key", serveFile(deps.Files))
	}

	for _, h := range deps.Handlers {
		if h != nil {
			h.RegisterRoutes(r)
		}
	}

	llmGroup := r.Group("/")
	if deps.RateLimit != nil {
		cfg := *deps.RateLimit
		cfg.GroupFor = func(*gin.Context) string { return RateLimitGroupLLM }
		llmGroup.Use(middleware.RateLimit(cfg))
	}
	for _, h := range deps.LLMHandlers {
		if h != nil {
			h.RegisterRoutes(llmGroup)
		}
	}

	return r
}

// serveFile streams objects from stores that have no public endpoint of their
// own (local and memory).
func serveFile(store object.ObjectStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimPrefix(c.Param("key"), "/")
		if key == "" || util.HasTraversal(key) {
			respond.FromError(c, apperr.NotFound("file not found"))
			return
		}
		rc, err := store.Open(c.Request.Context(), key)
		if err != nil {
			if errors.Is(err, object.ErrNotFound) {
				respond.FromError(c, apperr.NotFound("file not found"))
				return
			}
			respond.FromError(c, apperr.Unclassified("", err))
			return
		}
		defer rc.Close()

		contentType := mime.TypeByExtension(path.Ext(key))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
