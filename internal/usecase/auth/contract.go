package auth

import (
	"context"

	domuser "github.com/kailas-cloud/docinsight/internal/domain/user"
)

// UserStore persists accounts.
type UserStore interface {
	Create(ctx context.Context, u domuser.User) error
	ByEmail(ctx context.Context, email string) (domuser.User, error)
}
