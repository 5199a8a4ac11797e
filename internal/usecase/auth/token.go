package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"

	"github.com/kailas-cloud/docinsight/internal/domain"
)

const issuer = "docinsight"

// TokenType is reported alongside every access token.
const TokenType = "bearer"

// Token is a signed access token.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// Principal is the identity carried by a verified token.
type Principal struct {
	UserID string
	Email  string
}

type claims struct {
	Email string `json:"email"`
	jwt.StandardClaims
}

func (s *Service) issue(userID, email string) (Token, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: email,
		StandardClaims: jwt.StandardClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  now.Unix(),
			ExpiresAt: exp.Unix(),
		},
	})
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{AccessToken: signed, TokenType: TokenType, ExpiresAt: exp}, nil
}

// Verify checks signature, issuer and expiry of an access token.
func (s *Service) Verify(raw string) (Principal, error) {
	c := &claims{}
	tok, err := jwt.ParseWithClaims(raw, c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return Principal{}, fmt.Errorf("%w: invalid or expired token", domain.ErrUnauthorized)
	}
	if !c.VerifyIssuer(issuer, true) || c.Subject == "" {
		return Principal{}, fmt.Errorf("%w: invalid token claims", domain.ErrUnauthorized)
	}
	return Principal{UserID: c.Subject, Email: c.Email}, nil
}
