package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/shared/telemetry"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	telemetry.SetOutput(&buf)
	t.Cleanup(func() { telemetry.SetOutput(os.Stdout) })
	return &buf
}

func lastLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) == 0 || lines[0] == "" {
		t.Fatalf("expected log output")
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &payload); err != nil {
		t.Fatalf("decode log json: %v", err)
	}
	return payload
}

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogs(t)

	router := gin.New()
	router.Use(RequestID(), Logging())
	router.POST("/convert_tex_to_pdf", func(c *gin.Context) {
		c.Set(SourceKeyField, "alice/resume.tex")
		c.Set(OutputKeyField, "pdfs/temp.pdf")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/convert_tex_to_pdf", nil)
	req.Header.Set("X-Request-Id", "req-42")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	payload := lastLogLine(t, buf)
	required := []string{"request_id", "method", "path", "status", "duration_ms", "source_key", "output_key"}
	for _, key := range required {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing log field %q in %v", key, payload)
		}
	}
	if payload["msg"] != "request.complete" {
		t.Fatalf("unexpected msg %v", payload["msg"])
	}
	if payload["request_id"] != "req-42" {
		t.Fatalf("expected request_id req-42, got %v", payload["request_id"])
	}
	if payload["status"] != float64(http.StatusOK) {
		t.Fatalf("expected status 200, got %v", payload["status"])
	}
}

func TestLoggingSkipsOptions(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogs(t)

	router := gin.New()
	router.Use(Logging(), CORS([]string{"*"}))
	router.OPTIONS("/summarize", func(c *gin.Context) {})

	req := httptest.NewRequest(http.MethodOptions, "/summarize", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	if strings.TrimSpace(buf.String()) != "" {
		t.Fatalf("expected no log output, got %q", buf.String())
	}
}

func TestRequestIDGeneratedAndPropagated(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var fromCtx string
	router := gin.New()
	router.Use(RequestID())
	router.GET("/health", func(c *gin.Context) {
		fromCtx = telemetry.RequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))

	header := resp.Header().Get("X-Request-Id")
	if header == "" {
		t.Fatalf("expected X-Request-Id header")
	}
	if fromCtx != header {
		t.Fatalf("expected request context id %q, got %q", header, fromCtx)
	}
}

func TestRecoveryReturnsStandardError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogs(t)

	router := gin.New()
	router.Use(RequestID(), Recovery())
	router.GET("/boom", func(c *gin.Context) {
		panic("kaboom")
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["code"] != "internal" {
		t.Fatalf("expected code internal, got %v", body["code"])
	}
	if !strings.Contains(buf.String(), `"msg":"panic"`) {
		t.Fatalf("expected panic log, got %q", buf.String())
	}
}
