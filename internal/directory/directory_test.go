package directory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/user-directory/internal/auth"
	"github.com/iliyamo/user-directory/internal/config"
	"github.com/iliyamo/user-directory/internal/model"
	"github.com/iliyamo/user-directory/internal/repository"
)

var testSuperuser = config.Superuser{
	Username: "superuser",
	Email:    "super.user@example.com",
	FullName: "Super User",
	Password: "passw0rd",
}

func newTestDirectory() *Directory {
	return New(repository.NewMemStore(), bcrypt.MinCost, testSuperuser, nil)
}

func mustCreate(t *testing.T, d *Directory, username, email, password string) model.User {
	t.Helper()
	u, err := d.Create(context.Background(), CreateInput{
		Username: username,
		Email:    email,
		Password: password,
		IsActive: true,
	})
	require.NoError(t, err)
	return u
}

func ptr[T any](v T) *T { return &v }

func TestCreateAssignsIDAndHashesPassword(t *testing.T) {
	d := newTestDirectory()
	u := mustCreate(t, d, "testuser1", "test.user1@example.com", "dummypass")

	assert.Equal(t, uint64(1), u.ID)
	assert.NotEqual(t, "dummypass", u.PasswordHash)
	assert.True(t, auth.VerifyPassword(u.PasswordHash, "dummypass"))
}

func TestCreateConflicts(t *testing.T) {
	d := newTestDirectory()
	mustCreate(t, d, "testuser1", "test.user1@example.com", "dummypass")

	// Same email, any username.
	_, err := d.Create(context.Background(), CreateInput{
		Username: "other", Email: "test.user1@example.com", Password: "x",
	})
	assert.ErrorIs(t, err, repository.ErrEmailExists)

	// Same username, fresh email.
	_, err = d.Create(context.Background(), CreateInput{
		Username: "testuser1", Email: "other@example.com", Password: "x",
	})
	assert.ErrorIs(t, err, repository.ErrUsernameExists)
}

func TestBootstrapSuperuser(t *testing.T) {
	d := newTestDirectory()

	u, err := d.BootstrapSuperuser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), u.ID)
	assert.Equal(t, "superuser", u.Username)
	assert.True(t, u.IsSuperuser)
	assert.True(t, u.IsActive)

	// Second run must fail with the email conflict, not succeed silently.
	_, err = d.BootstrapSuperuser(context.Background())
	assert.ErrorIs(t, err, repository.ErrEmailExists)
}

func TestGetBySelector(t *testing.T) {
	d := newTestDirectory()
	u := mustCreate(t, d, "testuser1", "test.user1@example.com", "dummypass")
	ctx := context.Background()

	got, err := d.Get(ctx, Selector{ID: ptr(u.ID)})
	require.NoError(t, err)
	assert.Equal(t, u.Username, got.Username)

	got, err = d.Get(ctx, Selector{Username: ptr("testuser1")})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = d.Get(ctx, Selector{Email: ptr("test.user1@example.com")})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = d.Get(ctx, Selector{})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = d.Get(ctx, Selector{ID: ptr(uint64(99))})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListInsertionOrder(t *testing.T) {
	d := newTestDirectory()
	mustCreate(t, d, "a", "a@example.com", "x")
	mustCreate(t, d, "b", "b@example.com", "x")
	mustCreate(t, d, "c", "c@example.com", "x")

	users, err := d.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, []uint64{1, 2, 3}, []uint64{users[0].ID, users[1].ID, users[2].ID})
}

func TestUpdatePartial(t *testing.T) {
	d := newTestDirectory()
	u := mustCreate(t, d, "testuser1", "test.user1@example.com", "dummypass")
	ctx := context.Background()

	got, err := d.Update(ctx, u.ID, UpdateInput{
		FullName: ptr("TEST USER1 NEW"),
		IsActive: ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "TEST USER1 NEW", got.FullName)
	assert.False(t, got.IsActive)
	// Untouched fields survive.
	assert.Equal(t, "testuser1", got.Username)
	assert.Equal(t, "test.user1@example.com", got.Email)
	assert.Equal(t, u.PasswordHash, got.PasswordHash)
}

func TestUpdateNotFound(t *testing.T) {
	d := newTestDirectory()
	_, err := d.Update(context.Background(), 99, UpdateInput{FullName: ptr("x")})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateUniquenessRecheck(t *testing.T) {
	d := newTestDirectory()
	mustCreate(t, d, "testuser1", "test.user1@example.com", "x")
	u2 := mustCreate(t, d, "testuser2", "test.user2@example.com", "x")
	ctx := context.Background()

	_, err := d.Update(ctx, u2.ID, UpdateInput{Username: ptr("testuser1")})
	assert.ErrorIs(t, err, repository.ErrUsernameExists)

	_, err = d.Update(ctx, u2.ID, UpdateInput{Email: ptr("test.user1@example.com")})
	assert.ErrorIs(t, err, repository.ErrEmailExists)

	// Re-supplying the record's own values is not a conflict.
	got, err := d.Update(ctx, u2.ID, UpdateInput{
		Username: ptr("testuser2"),
		Email:    ptr("test.user2@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, "testuser2", got.Username)
}

func TestUpdatePasswordAlwaysRehashed(t *testing.T) {
	d := newTestDirectory()
	u := mustCreate(t, d, "testuser1", "test.user1@example.com", "dummypass")
	ctx := context.Background()

	// Even the same plaintext produces a fresh digest.
	got, err := d.Update(ctx, u.ID, UpdateInput{Password: ptr("dummypass")})
	require.NoError(t, err)
	assert.NotEqual(t, u.PasswordHash, got.PasswordHash)
	assert.True(t, auth.VerifyPassword(got.PasswordHash, "dummypass"))

	got, err = d.Update(ctx, u.ID, UpdateInput{Password: ptr("newpass")})
	require.NoError(t, err)
	assert.True(t, auth.VerifyPassword(got.PasswordHash, "newpass"))
	assert.False(t, auth.VerifyPassword(got.PasswordHash, "dummypass"))
}

func TestDelete(t *testing.T) {
	d := newTestDirectory()
	u := mustCreate(t, d, "testuser1", "test.user1@example.com", "dummypass")
	ctx := context.Background()

	du, err := d.Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DeletedUser{
		Username: "testuser1",
		Email:    "test.user1@example.com",
		IsActive: true,
		Status:   "deleted",
	}, du)

	_, err = d.Get(ctx, Selector{ID: ptr(u.ID)})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = d.Delete(ctx, u.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
