package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/luc4spas/erp-joy-maker/internal/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(t *testing.T) (*gin.Engine, *auth.Signer) {
	t.Helper()

	signer, err := auth.NewSigner("middleware-secret", time.Hour)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}

	r := gin.New()
	r.Use(AuthMiddleware(signer))
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})
	return r, signer
}

func TestAuthMiddleware_AcceptsBearerToken(t *testing.T) {
	t.Parallel()

	r, signer := newRouter(t)
	token, err := signer.GenerateToken("user-42", "a@b.c", "owner")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "user-42" {
		t.Fatalf("unexpected response %d: %s", w.Code, w.Body.String())
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	t.Parallel()

	r, _ := newRouter(t)
	for _, header := range []string{"", "Token abc", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: want 401 got %d", header, w.Code)
		}
	}
}

func TestStaticUser(t *testing.T) {
	t.Parallel()

	r := gin.New()
	r.Use(StaticUser("local"))
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, UserID(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	if w.Body.String() != "local" {
		t.Fatalf("want local got %q", w.Body.String())
	}
}
