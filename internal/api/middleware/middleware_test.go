package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type countingLimiter struct {
	calls int
	err   error
}

func (l *countingLimiter) CheckRateLimit(_ context.Context, _ string, limit int, _ time.Duration) (bool, error) {
	l.calls++
	return l.calls <= limit, l.err
}

func okHandler(c *gin.Context) { c.Status(http.StatusOK) }

func TestRateLimit(t *testing.T) {
	lim := &countingLimiter{}
	r := gin.New()
	r.POST("/up", RateLimit(lim, 2, time.Minute), okHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/up", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Errorf("unexpected codes %v", codes)
	}
}

func TestRateLimit_Degrades(t *testing.T) {
	tests := []struct {
		name    string
		limiter Limiter
	}{
		{"nil limiter", nil},
		{"limiter error", &countingLimiter{calls: 100, err: errors.New("redis down")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/up", RateLimit(tt.limiter, 1, time.Minute), okHandler)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/up", nil))
			if w.Code != http.StatusOK {
				t.Errorf("expected request to pass, got %d", w.Code)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	r.ServeHTTP(w, req)
	if w.Body.String() != "abc-123" || w.Header().Get("X-Request-ID") != "abc-123" {
		t.Errorf("client id should be kept, got %q", w.Body.String())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", strings.Repeat("x", requestIDMaxLen+1))
	r.ServeHTTP(w, req)
	if len(w.Body.String()) != 36 {
		t.Errorf("oversized id should be replaced by a uuid, got %q", w.Body.String())
	}
}

func uploadRequest(contentType, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", contentType)
	return req
}

func TestUpload_RejectsNonMultipart(t *testing.T) {
	r := gin.New()
	r.POST("/", Upload(1024), okHandler)

	for _, ct := range []string{"", "application/json", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, uploadRequest(ct, "x"))
		if w.Code != http.StatusUnsupportedMediaType {
			t.Errorf("content type %q: expected 415, got %d", ct, w.Code)
		}
		if !strings.Contains(w.Body.String(), `"code":20007`) {
			t.Errorf("content type %q: expected code 20007, got %s", ct, w.Body.String())
		}
	}
}

func TestUpload_DeclaredLengthOverCap(t *testing.T) {
	var reached bool
	r := gin.New()
	r.POST("/", Upload(8), func(c *gin.Context) { reached = true })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest("multipart/form-data; boundary=x", "0123456789"))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"code":20006`) {
		t.Errorf("expected code 20006, got %s", w.Body.String())
	}
	if reached {
		t.Error("handler must not run for an oversized upload")
	}
}

func TestUpload_UndeclaredLengthCutByReader(t *testing.T) {
	var readErr error
	r := gin.New()
	r.POST("/", Upload(8), func(c *gin.Context) {
		_, readErr = io.ReadAll(c.Request.Body)
		c.Status(http.StatusOK)
	})

	req := uploadRequest("multipart/form-data; boundary=x", "0123456789")
	req.ContentLength = -1
	r.ServeHTTP(httptest.NewRecorder(), req)

	var tooLarge *http.MaxBytesError
	if !errors.As(readErr, &tooLarge) {
		t.Errorf("expected MaxBytesError, got %v", readErr)
	}
}

func TestUpload_Admits(t *testing.T) {
	r := gin.New()
	r.POST("/", Upload(1024), okHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest("multipart/form-data; boundary=x", "small"))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestLogger_ImportFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(RequestID(), Logger(zap.New(core)))
	r.POST("/imports", func(c *gin.Context) {
		c.Set(UploadFileKey, "09.03.04_plan.xlsx")
		c.Set(RunIDKey, "run-1")
		c.Status(http.StatusOK)
	})
	r.GET("/health", okHandler)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/imports", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["upload"] != "09.03.04_plan.xlsx" || fields["run_id"] != "run-1" {
		t.Errorf("import request fields missing: %v", fields)
	}
	other := entries[1].ContextMap()
	if _, ok := other["upload"]; ok {
		t.Errorf("non-import request should not log upload: %v", other)
	}
	if _, ok := other["run_id"]; ok {
		t.Errorf("non-import request should not log run_id: %v", other)
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173/"}))
	r.GET("/", okHandler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight expected 204, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Error("allowed origin should be echoed")
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("unknown origin must not be allowed")
	}
}
