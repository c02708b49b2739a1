package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type fakeUsers map[uint]bool

func (f fakeUsers) Exists(_ context.Context, id uint) (bool, error) {
	if id == 500 {
		return false, errors.New("db down")
	}
	return f[id], nil
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	codec := NewCodec("secret")
	users := fakeUsers{1: true}

	r := gin.New()
	r.GET("/me", AuthMiddleware(codec, users), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetUserID(c)})
	})

	tokenFor := func(id uint) string {
		tok, err := codec.Encode(id)
		if err != nil {
			t.Fatalf("Encode() error = %v", err)
		}
		return tok
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + tokenFor(1), http.StatusOK},
		{"lowercase scheme", "bearer " + tokenFor(1), http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"deleted user", "Bearer " + tokenFor(2), http.StatusUnauthorized},
		{"lookup failure", "Bearer " + tokenFor(500), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestGetUserID_Unset(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := GetUserID(c); got != 0 {
		t.Errorf("GetUserID() = %d, want 0", got)
	}
}
