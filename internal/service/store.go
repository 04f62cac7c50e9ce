package service

import (
	"context"

	"github.com/antarn88/userserver/internal/domain/user"
)

// Store is the narrow persistence contract the services need. Any
// backing engine works as long as it enforces email uniqueness itself:
// the pre-checks in this package close the common path but only a
// storage-level constraint closes the concurrent-create race.
//
// Implementations return user.ErrNotFound and user.ErrEmailTaken for
// the domain outcomes and pass every other failure through untouched.
type Store interface {
	Insert(ctx context.Context, u user.User) error
	UpdateByID(ctx context.Context, u user.User) error
	DeleteByID(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (user.User, error)
	FindByEmail(ctx context.Context, email string) (user.User, error)
	ListAll(ctx context.Context) ([]user.User, error)
}
