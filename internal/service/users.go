package service

import (
	"context"
	"errors"
	"slices"

	"github.com/antarn88/userserver/internal/domain/user"
	"github.com/antarn88/userserver/internal/pagination"
	"github.com/antarn88/userserver/internal/security"
	"github.com/google/uuid"
)

const DefaultPerPage = 10

// Directory owns the user collection: create, update, delete, lookups
// and the paginated sortable listing.
type Directory struct {
	store  Store
	hasher *security.Hasher
}

func NewDirectory(store Store, hasher *security.Hasher) *Directory {
	return &Directory{
		store:  store,
		hasher: hasher,
	}
}

func (d *Directory) Create(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	_, err := d.store.FindByEmail(ctx, req.Email)

	if err == nil {
		return user.User{}, user.ErrEmailTaken
	}

	if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, err
	}

	hash, err := d.hasher.Hash(req.Password)

	if err != nil {
		return user.User{}, err
	}

	u := user.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Age:          req.Age,
		PasswordHash: hash,
	}

	// The store's uniqueness constraint is the authority; the lookup
	// above only gives the common case a friendlier path.
	if err := d.store.Insert(ctx, u); err != nil {
		return user.User{}, err
	}

	return u, nil
}

// Update overwrites name, email, age and the password hash in one shot.
// There is no partial update: the password is re-hashed on every call.
func (d *Directory) Update(ctx context.Context, id string, req user.UpdateUserRequest) (user.User, error) {
	if !validID(id) {
		return user.User{}, user.ErrNotFound
	}

	if _, err := d.store.FindByID(ctx, id); err != nil {
		return user.User{}, err
	}

	owner, err := d.store.FindByEmail(ctx, req.Email)

	if err == nil && owner.ID != id {
		return user.User{}, user.ErrEmailTaken
	}

	if err != nil && !errors.Is(err, user.ErrNotFound) {
		return user.User{}, err
	}

	hash, err := d.hasher.Hash(req.Password)

	if err != nil {
		return user.User{}, err
	}

	u := user.User{
		ID:           id,
		Name:         req.Name,
		Email:        req.Email,
		Age:          req.Age,
		PasswordHash: hash,
	}

	if err := d.store.UpdateByID(ctx, u); err != nil {
		return user.User{}, err
	}

	return u, nil
}

// Delete reports whether a record was removed. Malformed and unknown
// ids are the same non-event, so the operation is idempotent.
func (d *Directory) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}

	err := d.store.DeleteByID(ctx, id)

	if errors.Is(err, user.ErrNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

func (d *Directory) GetByID(ctx context.Context, id string) (user.Profile, error) {
	if !validID(id) {
		return user.Profile{}, user.ErrNotFound
	}

	u, err := d.store.FindByID(ctx, id)

	if err != nil {
		return user.Profile{}, err
	}

	return u.Profile(), nil
}

func (d *Directory) GetByEmail(ctx context.Context, email string) (user.Profile, error) {
	u, err := d.store.FindByEmail(ctx, email)

	if err != nil {
		return user.Profile{}, err
	}

	return u.Profile(), nil
}

// List runs the paginated query engine: allow-listed sort with an id
// tiebreak, clamped page, defaulted perPage, metadata computed over the
// full set.
func (d *Directory) List(ctx context.Context, page, perPage int, sortSpec string) (pagination.Page[user.Profile], error) {
	bySpec, err := parseSortSpec(sortSpec)

	if err != nil {
		return pagination.Page[user.Profile]{}, err
	}

	if page < 1 {
		page = 1
	}

	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	users, err := d.store.ListAll(ctx)

	if err != nil {
		return pagination.Page[user.Profile]{}, err
	}

	slices.SortStableFunc(users, bySpec)

	profiles := make([]user.Profile, 0, len(users))

	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}

	return pagination.NewPage(profiles, page, perPage), nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)

	return err == nil
}
