package chi

import (
	"errors"
	"net/http"
	"time"

	"github.com/kailas-cloud/docinsight/internal/domain"
	"github.com/kailas-cloud/docinsight/internal/logger"
	authuc "github.com/kailas-cloud/docinsight/internal/usecase/auth"
)

const (
	maxFormBody            = 1 << 20
	msgEmailTaken          = "Email already registered"
	msgBadCredentials      = "Incorrect email or password"
	msgCredentialsRequired = "username and password are required"
)

// Register handles POST /auth/register with a JSON {email, password} body.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	tok, err := s.svc.Auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		s.handleAuthError(w, r, err)
		return
	}
	writeToken(w, tok)
}

// Token handles POST /auth/token, an OAuth2 password-style form login with
// username and password fields.
func (s *Server) Token(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
	username, password := r.FormValue("username"), r.FormValue("password")
	if username == "" || password == "" {
		writeError(w, http.StatusBadRequest, msgCredentialsRequired)
		return
	}

	tok, err := s.svc.Auth.Login(r.Context(), username, password)
	if err != nil {
		s.handleAuthError(w, r, err)
		return
	}
	writeToken(w, tok)
}

func (s *Server) handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusBadRequest, msgEmailTaken)
	case errors.Is(err, domain.ErrUnauthorized):
		logger.FromContext(r.Context()).Info("login failed")
		writeUnauthorized(w, msgBadCredentials)
	default:
		s.handleDomainError(w, r, err)
	}
}

func writeToken(w http.ResponseWriter, tok authuc.Token) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		ExpiresIn:   int64(time.Until(tok.ExpiresAt).Seconds()),
	})
}
