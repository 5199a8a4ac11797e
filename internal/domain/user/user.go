// Package user describes accounts that can obtain API tokens.
package user

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/kailas-cloud/docinsight/internal/domain"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// User is a registered account. Email is stored normalized.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateCredentials checks a registration request. email must already be normalized.
func ValidateCredentials(email, password string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", domain.ErrInvalidArgument)
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email address", domain.ErrInvalidArgument)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", domain.ErrInvalidArgument)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidArgument, MaxPasswordBytes)
	}
	return nil
}
