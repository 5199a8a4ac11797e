package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/docinsight/internal/logger"
)

// AuthConfig selects the bearer credentials accepted on /api.
type AuthConfig struct {
	// APIKeys are static service keys. Any non-empty key turns the check on.
	APIKeys []string
	// Tokens verifies user access tokens; nil accepts API keys only.
	Tokens TokenVerifier
	// Required turns the check on even without API keys.
	Required bool
}

// BearerAuthMiddleware validates "Authorization: Bearer <credential>" where the
// credential is an API key or a user access token. With no keys and Required
// unset, authentication is disabled.
func BearerAuthMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	keys := make([][]byte, 0, len(cfg.APIKeys))
	for _, k := range cfg.APIKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 && !cfg.Required {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Preflight requests carry no credentials.
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeUnauthorized(w, "missing authorization header")
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeUnauthorized(w, "authorization header must use Bearer scheme")
				return
			}
			credential := auth[len(bearerPrefix):]

			if validKey(keys, []byte(credential)) {
				next.ServeHTTP(w, r)
				return
			}
			if cfg.Tokens != nil && credential != "" {
				if p, err := cfg.Tokens.Verify(credential); err == nil {
					ctx := r.Context()
					log := logger.FromContext(ctx).With(zap.String("user_id", p.UserID))
					next.ServeHTTP(w, r.WithContext(logger.ContextWithLogger(ctx, log)))
					return
				}
			}

			writeUnauthorized(w, "invalid credentials")
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, msg)
}

func validKey(keys [][]byte, token []byte) bool {
	ok := 0
	for _, k := range keys {
		ok |= subtle.ConstantTimeCompare(k, token)
	}
	return ok == 1
}
