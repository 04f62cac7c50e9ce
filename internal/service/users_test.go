package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/antarn88/userserver/internal/domain/user"
	"github.com/antarn88/userserver/internal/repo/memory"
	"github.com/antarn88/userserver/internal/security"
	"github.com/antarn88/userserver/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newDirectory() (*service.Directory, *memory.UsersRepo) {
	store := memory.NewUsersRepo()

	return service.NewDirectory(store, security.NewHasher(bcrypt.MinCost)), store
}

func createReq(name, email string, age int) user.CreateUserRequest {
	return user.CreateUserRequest{
		Name:     name,
		Email:    email,
		Age:      age,
		Password: "password-" + email,
	}
}

func TestCreateThenGetByEmail(t *testing.T) {
	d, _ := newDirectory()
	ctx := context.Background()

	created, err := d.Create(ctx, createReq("Alice", "alice@example.com", 30))
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.PasswordHash)
	assert.NotEqual(t, "password-alice@example.com", created.PasswordHash)

	profile, err := d.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)

	assert.Equal(t, created.ID, profile.ID)
	assert.Equal(t, "Alice", profile.Name)
	assert.Equal(t, "alice@example.com", profile.Email)
	assert.Equal(t, 30, profile.Age)
}

func TestCreateDuplicateEmail(t *testing.T) {
	d, store := newDirectory()
	ctx := context.Background()

	_, err := d.Create(ctx, createReq("Alice", "alice@example.com", 30))
	require.NoError(t, err)

	_, err = d.Create(ctx, createReq("Impostor", "alice@example.com", 44))
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	// exactly one record with that email survives
	all, err := store.ListAll(ctx)
	require.NoError(t, err)

	count := 0
	for _, u := range all {
		if u.Email == "alice@example.com" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestUpdateOverwritesEverything(t *testing.T) {
	d, store := newDirectory()
	ctx := context.Background()

	created, err := d.Create(ctx, createReq("Alice", "alice@example.com", 30))
	require.NoError(t, err)

	updated, err := d.Update(ctx, created.ID, user.UpdateUserRequest{
		Name:     "Alice Б.",
		Email:    "alice.b@example.com",
		Age:      31,
		Password: "new-password",
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Alice Б.", updated.Name)
	assert.Equal(t, "alice.b@example.com", updated.Email)
	assert.Equal(t, 31, updated.Age)

	// password was re-hashed
	assert.NotEqual(t, created.PasswordHash, updated.PasswordHash)

	stored, err := store.FindByID(ctx, created.ID)
	require.NoError(t, err)

	ok, err := security.NewHasher(bcrypt.MinCost).Verify("new-password", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUpdateRehashesUnchangedPassword(t *testing.T) {
	d, _ := newDirectory()
	ctx := context.Background()

	created, err := d.Create(ctx, createReq("Alice", "alice@example.com", 30))
	require.NoError(t, err)

	updated, err := d.Update(ctx, created.ID, user.UpdateUserRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Age:      30,
		Password: "password-alice@example.com",
	})
	require.NoError(t, err)

	// same plaintext, fresh salt
	assert.NotEqual(t, created.PasswordHash, updated.PasswordHash)
}

func TestUpdateNotFound(t *testing.T) {
	d, store := newDirectory()
	ctx := context.Background()

	created, err := d.Create(ctx, createReq("Alice", "alice@example.com", 30))
	require.NoError(t, err)

	_, err = d.Update(ctx, "5b5a9f6e-0000-4000-8000-000000000000", user.UpdateUserRequest{
		Name:     "Ghost",
		Email:    "ghost@example.com",
		Age:      1,
		Password: "pw",
	})
	assert.ErrorIs(t, err, user.ErrNotFound)

	// nothing was mutated
	stored, err := store.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", stored.Name)
}

func TestUpdateMalformedID(t *testing.T) {
	d, _ := newDirectory()

	_, err := d.Update(context.Background(), "definitely-not-a-uuid", user.UpdateUserRequest{
		Name:     "X",
		Email:    "x@example.com",
		Age:      1,
		Password: "pw",
	})
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestUpdateEmailCollision(t *testing.T) {
	d, store := newDirectory()
	ctx := context.Background()

	alice, err := d.Create(ctx, createReq("Alice", "alice@example.com", 30))
	require.NoError(t, err)

	bob, err := d.Create(ctx, createReq("Bob", "bob@example.com", 40))
	require.NoError(t, err)

	_, err = d.Update(ctx, bob.ID, user.UpdateUserRequest{
		Name:     "Bob",
		Email:    "alice@example.com",
		Age:      40,
		Password: "pw",
	})
	assert.ErrorIs(t, err, user.ErrEmailTaken)

	// both records unchanged
	storedAlice, err := store.FindByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", storedAlice.Email)

	storedBob, err := store.FindByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", storedBob.Email)
}

func TestUpdateKeepingOwnEmail(t *testing.T) {
	d, _ := newDirectory()
	ctx := context.Background()

	alice, err := d.Create(ctx, createReq("Alice", "alice@example.com", 30))
	require.NoError(t, err)

	updated, err := d.Update(ctx, alice.ID, user.UpdateUserRequest{
		Name:     "Alice Renamed",
		Email:    "alice@example.com",
		Age:      31,
		Password: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Renamed", updated.Name)
}

func TestDeleteIdempotent(t *testing.T) {
	d, _ := newDirectory()
	ctx := context.Background()

	created, err := d.Create(ctx, createReq("Alice", "alice@example.com", 30))
	require.NoError(t, err)

	deleted, err := d.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = d.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = d.Delete(ctx, "not-a-uuid")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestGetByIDMalformedAndMissing(t *testing.T) {
	d, _ := newDirectory()
	ctx := context.Background()

	_, err := d.GetByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, user.ErrNotFound)

	_, err = d.GetByID(ctx, "5b5a9f6e-0000-4000-8000-000000000000")
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func seedUsers(t *testing.T, d *service.Directory, n int) {
	t.Helper()

	ctx := context.Background()

	for i := 0; i < n; i++ {
		_, err := d.Create(ctx, user.CreateUserRequest{
			Name:     fmt.Sprintf("user-%02d", i),
			Email:    fmt.Sprintf("user-%02d@example.com", i),
			Age:      20 + i,
			Password: "pw",
		})
		require.NoError(t, err)
	}
}

func TestListPaginationDeterminism(t *testing.T) {
	d, _ := newDirectory()
	seedUsers(t, d, 25)

	page, err := d.List(context.Background(), 2, 10, "name")
	require.NoError(t, err)

	require.Len(t, page.Data, 10)

	// users ranked 11-20 in ascending name order
	for i, profile := range page.Data {
		assert.Equal(t, fmt.Sprintf("user-%02d", 10+i), profile.Name)
	}

	assert.Equal(t, 1, page.FirstPage)
	require.NotNil(t, page.PrevPage)
	assert.Equal(t, 1, *page.PrevPage)
	require.NotNil(t, page.NextPage)
	assert.Equal(t, 3, *page.NextPage)
	assert.Equal(t, 3, page.LastPage)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 25, page.TotalItems)
}

func TestListSortDirections(t *testing.T) {
	d, _ := newDirectory()
	seedUsers(t, d, 5)

	asc, err := d.List(context.Background(), 1, 10, "age")
	require.NoError(t, err)

	for i := 1; i < len(asc.Data); i++ {
		assert.LessOrEqual(t, asc.Data[i-1].Age, asc.Data[i].Age)
	}

	desc, err := d.List(context.Background(), 1, 10, "-age")
	require.NoError(t, err)

	for i := 1; i < len(desc.Data); i++ {
		assert.GreaterOrEqual(t, desc.Data[i-1].Age, desc.Data[i].Age)
	}
}

func TestListTiesBreakByID(t *testing.T) {
	d, _ := newDirectory()
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := d.Create(ctx, user.CreateUserRequest{
			Name:     "same",
			Email:    fmt.Sprintf("tie-%d@example.com", i),
			Age:      50,
			Password: "pw",
		})
		require.NoError(t, err)
	}

	page, err := d.List(ctx, 1, 10, "-age")
	require.NoError(t, err)

	require.Len(t, page.Data, 4)

	for i := 1; i < len(page.Data); i++ {
		assert.Less(t, page.Data[i-1].ID, page.Data[i].ID, "ties must order by id ascending")
	}
}

func TestListRejectsUnknownSortField(t *testing.T) {
	d, _ := newDirectory()

	_, err := d.List(context.Background(), 1, 10, "passwordHash")
	assert.ErrorIs(t, err, service.ErrInvalidSortField)

	_, err = d.List(context.Background(), 1, 10, "")
	assert.ErrorIs(t, err, service.ErrInvalidSortField)

	_, err = d.List(context.Background(), 1, 10, "-")
	assert.ErrorIs(t, err, service.ErrInvalidSortField)
}

func TestListNormalizesPageAndPerPage(t *testing.T) {
	d, _ := newDirectory()
	seedUsers(t, d, 12)

	// page < 1 clamps to 1
	page, err := d.List(context.Background(), 0, 10, "name")
	require.NoError(t, err)
	assert.Nil(t, page.PrevPage)
	require.Len(t, page.Data, 10)
	assert.Equal(t, "user-00", page.Data[0].Name)

	// perPage <= 0 falls back to the default of 10
	page, err = d.List(context.Background(), 1, -5, "name")
	require.NoError(t, err)
	assert.Len(t, page.Data, 10)
	assert.Equal(t, 2, page.TotalPages)
}

func TestListBeyondLastPage(t *testing.T) {
	d, _ := newDirectory()
	seedUsers(t, d, 5)

	page, err := d.List(context.Background(), 9, 10, "name")
	require.NoError(t, err)

	assert.Empty(t, page.Data)
	assert.Equal(t, 5, page.TotalItems)
	assert.Equal(t, 1, page.TotalPages)
	assert.Nil(t, page.NextPage)
}

func TestListEmptyDirectory(t *testing.T) {
	d, _ := newDirectory()

	page, err := d.List(context.Background(), 1, 10, "name")
	require.NoError(t, err)

	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
	assert.Equal(t, 0, page.TotalItems)
	assert.Equal(t, 0, page.TotalPages)
	assert.Nil(t, page.PrevPage)
	assert.Nil(t, page.NextPage)
}

func TestListUnboundedPerPageForExport(t *testing.T) {
	d, _ := newDirectory()
	seedUsers(t, d, 25)

	page, err := d.List(context.Background(), 1, 1000, "name")
	require.NoError(t, err)

	assert.Len(t, page.Data, 25)
	assert.Equal(t, 1, page.TotalPages)
}
