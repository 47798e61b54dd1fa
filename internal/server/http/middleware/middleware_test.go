package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/promopay/promopay/internal/domain/model"
	"github.com/promopay/promopay/internal/test"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func authEngine(parser TokenParser) *gin.Engine {
	engine := gin.New()
	engine.GET("/protected", AuthRequired(parser), func(c *gin.Context) {
		id, _ := c.Get(ActorIDContextKey)
		role, _ := c.Get(ActorRoleContextKey)
		c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
	})
	engine.GET("/admin", AuthRequired(parser), RequireRole(model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return engine
}

func TestAuthRequiredWithBearerToken(t *testing.T) {
	parser := test.TokenParserStub{Actor: model.Actor{UserID: 7, Role: model.RoleMerchant}}
	engine := authEngine(parser)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"id":7`)) || !bytes.Contains(w.Body.Bytes(), []byte(`"role":"merchant"`)) {
		t.Fatalf("actor not propagated: %s", w.Body.String())
	}
}

func TestAuthRequiredWithCookie(t *testing.T) {
	parser := test.TokenParserStub{Actor: model.Actor{UserID: 7, Role: model.RoleMerchant}}
	engine := authEngine(parser)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "promopay_token", Value: "sometoken"})
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestAuthRequiredMissingToken(t *testing.T) {
	engine := authEngine(test.TokenParserStub{})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRequireRole(t *testing.T) {
	merchant := test.TokenParserStub{Actor: model.Actor{UserID: 7, Role: model.RoleMerchant}}
	admin := test.TokenParserStub{Actor: model.Actor{UserID: 9, Role: model.RoleAdmin}}

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer t")

	w := httptest.NewRecorder()
	authEngine(merchant).ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for merchant, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	authEngine(admin).ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", w.Code)
	}
}

func TestSetAuthCookie(t *testing.T) {
	engine := gin.New()
	engine.GET("/login", func(c *gin.Context) {
		SetAuthCookie(c, "issued")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if got := w.Header().Get("Authorization"); got != "Bearer issued" {
		t.Fatalf("unexpected auth header %q", got)
	}
	cookies := w.Result().Cookies()
	found := false
	for _, c := range cookies {
		if c.Name == "promopay_token" && c.Value == "issued" {
			found = true
		}
	}
	if !found {
		t.Fatalf("auth cookie not set: %v", cookies)
	}
}

func TestRequestLoggerPassesThrough(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestLogger(slog.New(slog.NewJSONHandler(io.Discard, nil))))
	engine.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "pong" {
		t.Fatalf("unexpected response: %d %q", w.Code, w.Body.String())
	}
}

func TestDecompressRequest(t *testing.T) {
	engine := gin.New()
	engine.Use(DecompressRequest())
	engine.POST("/echo", func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(body))
	})

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte("compressed payload")); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/echo", &buf)
	req.Header.Set("Content-Encoding", "gzip")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Body.String() != "compressed payload" {
		t.Fatalf("body not decompressed: %q", w.Body.String())
	}
}
