package service

import (
	"context"
	"errors"

	"github.com/antarn88/userserver/internal/auth"
	"github.com/antarn88/userserver/internal/domain/user"
	"github.com/antarn88/userserver/internal/security"
	"github.com/google/uuid"
)

// ErrInvalidCredentials covers both an unknown email and a wrong
// password. Callers must not be able to tell which one happened.
var ErrInvalidCredentials = errors.New("invalid credentials")

type LoginResult struct {
	Token   string       `json:"token"`
	Profile user.Profile `json:"profile"`
}

// Auth answers login(email, password) by composing the store, the
// hasher and the token issuer.
type Auth struct {
	store  Store
	hasher *security.Hasher
	issuer *auth.Issuer

	// dummyHash keeps the unknown-email path as expensive as a real
	// password check, so the two failures look the same from outside.
	dummyHash string
}

func NewAuth(store Store, hasher *security.Hasher, issuer *auth.Issuer) (*Auth, error) {
	dummy, err := hasher.Hash(uuid.NewString())

	if err != nil {
		return nil, err
	}

	return &Auth{
		store:     store,
		hasher:    hasher,
		issuer:    issuer,
		dummyHash: dummy,
	}, nil
}

func (a *Auth) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, err := a.store.FindByEmail(ctx, email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			_, _ = a.hasher.Verify(password, a.dummyHash)

			return LoginResult{}, ErrInvalidCredentials
		}

		return LoginResult{}, err
	}

	ok, err := a.hasher.Verify(password, u.PasswordHash)

	if err != nil || !ok {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := a.issuer.Issue(u.Email)

	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{
		Token:   token,
		Profile: u.Profile(),
	}, nil
}
