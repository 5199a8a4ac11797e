package chi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kailas-cloud/docinsight/internal/domain"
	authuc "github.com/kailas-cloud/docinsight/internal/usecase/auth"
)

type fakeVerifier map[string]string

func (f fakeVerifier) Verify(token string) (authuc.Principal, error) {
	id, ok := f[token]
	if !ok {
		return authuc.Principal{}, fmt.Errorf("%w: invalid token", domain.ErrUnauthorized)
	}
	return authuc.Principal{UserID: id}, nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serveAuth(keys []string, method, authHeader string) *httptest.ResponseRecorder {
	return serveAuthConfig(AuthConfig{APIKeys: keys}, method, authHeader)
}

func serveAuthConfig(cfg AuthConfig, method, authHeader string) *httptest.ResponseRecorder {
	handler := BearerAuthMiddleware(cfg)(okHandler())
	req := httptest.NewRequest(method, "/api/documents", http.NoBody)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestAuthMiddleware_Disabled_PassThrough(t *testing.T) {
	for _, keys := range [][]string{nil, {"", ""}} {
		if rr := serveAuth(keys, "GET", ""); rr.Code != http.StatusOK {
			t.Errorf("keys %q: got %d, want %d", keys, rr.Code, http.StatusOK)
		}
	}
}

func TestAuthMiddleware_MissingHeader_401(t *testing.T) {
	rr := serveAuth([]string{"secret"}, "GET", "")

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("missing header: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	var errResp errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Error != "missing authorization header" {
		t.Errorf("error: got %q", errResp.Error)
	}
}

func TestAuthMiddleware_BasicScheme_401(t *testing.T) {
	rr := serveAuth([]string{"secret"}, "GET", "Basic dXNlcjpwYXNz")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("basic scheme: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
	if rr.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Errorf("WWW-Authenticate = %q", rr.Header().Get("WWW-Authenticate"))
	}
}

func TestAuthMiddleware_InvalidToken_401(t *testing.T) {
	for _, h := range []string{"Bearer wrong-key", "Bearer ", "Bearer secret2"} {
		if rr := serveAuth([]string{"secret"}, "GET", h); rr.Code != http.StatusUnauthorized {
			t.Errorf("%q: got %d, want %d", h, rr.Code, http.StatusUnauthorized)
		}
	}
}

func TestAuthMiddleware_ValidToken_200(t *testing.T) {
	if rr := serveAuth([]string{"secret"}, "GET", "Bearer secret"); rr.Code != http.StatusOK {
		t.Errorf("valid token: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestAuthMiddleware_MultipleKeys(t *testing.T) {
	for _, key := range []string{"key1", "key2"} {
		if rr := serveAuth([]string{"key1", "key2"}, "GET", "Bearer "+key); rr.Code != http.StatusOK {
			t.Errorf("key %s: got %d, want %d", key, rr.Code, http.StatusOK)
		}
	}
}

func TestAuthMiddleware_PreflightBypasses(t *testing.T) {
	if rr := serveAuth([]string{"secret"}, "OPTIONS", ""); rr.Code != http.StatusOK {
		t.Errorf("preflight: got %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestAuthMiddleware_UserTokens(t *testing.T) {
	tokens := fakeVerifier{"jwt-abc": "user-1"}

	tests := []struct {
		name   string
		cfg    AuthConfig
		header string
		want   int
	}{
		{"token accepted alongside keys", AuthConfig{APIKeys: []string{"secret"}, Tokens: tokens}, "Bearer jwt-abc", http.StatusOK},
		{"key still accepted", AuthConfig{APIKeys: []string{"secret"}, Tokens: tokens}, "Bearer secret", http.StatusOK},
		{"required without keys", AuthConfig{Tokens: tokens, Required: true}, "Bearer jwt-abc", http.StatusOK},
		{"required rejects missing", AuthConfig{Tokens: tokens, Required: true}, "", http.StatusUnauthorized},
		{"required rejects unknown token", AuthConfig{Tokens: tokens, Required: true}, "Bearer forged", http.StatusUnauthorized},
		{"optional passes anonymous", AuthConfig{Tokens: tokens}, "", http.StatusOK},
		{"token ignored without verifier", AuthConfig{APIKeys: []string{"secret"}}, "Bearer jwt-abc", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rr := serveAuthConfig(tt.cfg, "GET", tt.header); rr.Code != tt.want {
				t.Errorf("got %d, want %d", rr.Code, tt.want)
			}
		})
	}
}
