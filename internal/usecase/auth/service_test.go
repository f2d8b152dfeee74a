package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	domain "accounts/backend/internal/domain/account"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepository is an in-memory UserRepository keyed by email.
type memoryRepository struct {
	users map[string]*domain.User
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{users: map[string]*domain.User{}}
}

func (r *memoryRepository) Create(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.Email]; ok {
		return domain.ErrEmailTaken
	}
	clone := *user
	r.users[user.Email] = &clone
	return nil
}

func (r *memoryRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *memoryRepository) List(_ context.Context, filter domain.UserFilter) ([]*domain.User, error) {
	var out []*domain.User
	for _, user := range r.users {
		if filter.Role != "" && user.Role != filter.Role {
			continue
		}
		clone := *user
		out = append(out, &clone)
	}
	return out, nil
}

func (r *memoryRepository) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.Email]; !ok {
		return domain.ErrUserNotFound
	}
	clone := *user
	r.users[user.Email] = &clone
	return nil
}

func (r *memoryRepository) Deactivate(_ context.Context, email string, updatedAt time.Time) error {
	user, ok := r.users[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.IsActive = false
	user.UpdatedAt = updatedAt
	return nil
}

// stubTokens issues "token:<email>" and decodes the same format back,
// unless an error is forced.
type stubTokens struct {
	issueErr  error
	decodeErr error
}

func (s *stubTokens) Issue(email string) (string, error) {
	if s.issueErr != nil {
		return "", s.issueErr
	}
	return "token:" + email, nil
}

func (s *stubTokens) Decode(token string) (string, error) {
	if s.decodeErr != nil {
		return "", s.decodeErr
	}
	var email string
	if _, err := fmt.Sscanf(token, "token:%s", &email); err != nil {
		return "", domain.ErrTokenInvalid
	}
	return email, nil
}

func newTestService() (*Service, *memoryRepository, *stubTokens) {
	repo := newMemoryRepository()
	tokens := &stubTokens{}
	return NewService(repo, tokens), repo, tokens
}

func TestRegister_NewUser(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newTestService()
	ctx := context.Background()

	user, token, err := svc.Register(ctx, RegisterInput{
		Email:    "alice@example.com",
		Password: "correct horse",
		Name:     "Alice",
		Surname:  "Liddell",
	})
	require.NoError(t, err)
	assert.Equal(t, "token:alice@example.com", token)
	assert.True(t, user.IsActive)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Empty(t, user.PasswordHash, "hash must not leave the service")

	stored := repo.users["alice@example.com"]
	require.NotNil(t, stored)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "correct horse", stored.PasswordHash)
}

func TestRegister_ActiveEmailRejectedIdempotently(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterInput{Email: "a@x", Password: "password-1"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, _, err = svc.Register(ctx, RegisterInput{Email: "a@x", Password: "password-2"})
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
	}
	assert.Len(t, repo.users, 1)

	// The original password still works; the rejected calls changed nothing.
	ok, err := svc.VerifyLogin(ctx, "a@x", "password-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegister_ReactivatesInactiveRow(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newTestService()
	ctx := context.Background()

	repo.users["ghost@example.com"] = &domain.User{
		ID:       "row-1",
		Email:    "ghost@example.com",
		Role:     domain.RoleUser,
		IsActive: false,
	}

	user, token, err := svc.Register(ctx, RegisterInput{
		Email:    "ghost@example.com",
		Password: "resurrect",
		Name:     "Ghost",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, user.IsActive)
	assert.Equal(t, "row-1", user.ID, "inactive row is reused, not replaced")
	assert.Len(t, repo.users, 1)

	ok, err := svc.VerifyLogin(ctx, "ghost@example.com", "resurrect")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegister_EmailIsCaseSensitive(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterInput{Email: "Alice@x", Password: "password-1"})
	require.NoError(t, err)
	_, _, err = svc.Register(ctx, RegisterInput{Email: "alice@x", Password: "password-2"})
	require.NoError(t, err)
	assert.Len(t, repo.users, 2)
}

func TestVerifyLogin_Matrix(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterInput{Email: "bob@x", Password: "right-pass"})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, "bob@x"))
	_, _, err = svc.Register(ctx, RegisterInput{Email: "carol@x", Password: "carol-pass"})
	require.NoError(t, err)

	cases := []struct {
		name     string
		email    string
		password string
		want     bool
	}{
		{"unknown email", "nobody@x", "whatever", false},
		{"inactive account", "bob@x", "right-pass", false},
		{"wrong password", "carol@x", "wrong", false},
		{"active with correct password", "carol@x", "carol-pass", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ok, err := svc.VerifyLogin(ctx, tc.email, tc.password)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestLogin_DoesNotLeakWhichCheckFailed(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterInput{Email: "dave@x", Password: "dave-pass"})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, "dave@x"))

	_, _, errUnknown := svc.Login(ctx, domain.Credentials{Email: "nobody@x", Password: "p"})
	_, _, errInactive := svc.Login(ctx, domain.Credentials{Email: "dave@x", Password: "dave-pass"})
	assert.ErrorIs(t, errUnknown, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, errInactive, domain.ErrInvalidCredentials)
	assert.Equal(t, errUnknown, errInactive)
}

func TestUpdateProfile_PartialFields(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterInput{
		Email:      "eve@x",
		Password:   "eve-pass-1",
		Name:       "Eve",
		Surname:    "Adams",
		MiddleName: "Q",
	})
	require.NoError(t, err)

	newName := "Evelyn"
	cleared := ""
	updated, err := svc.UpdateProfile(ctx, "eve@x", UpdateInput{
		Name:       &newName,
		MiddleName: &cleared,
	})
	require.NoError(t, err)
	assert.Equal(t, "Evelyn", updated.Name)
	assert.Equal(t, "Adams", updated.Surname, "absent field stays untouched")
	assert.Equal(t, "", updated.MiddleName, "provided empty field is cleared")

	// Password untouched.
	ok, err := svc.VerifyLogin(ctx, "eve@x", "eve-pass-1")
	require.NoError(t, err)
	assert.True(t, ok)

	newPassword := "eve-pass-2"
	before := repo.users["eve@x"].PasswordHash
	_, err = svc.UpdateProfile(ctx, "eve@x", UpdateInput{Password: &newPassword})
	require.NoError(t, err)
	assert.NotEqual(t, before, repo.users["eve@x"].PasswordHash)

	ok, err = svc.VerifyLogin(ctx, "eve@x", "eve-pass-1")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = svc.VerifyLogin(ctx, "eve@x", "eve-pass-2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUpdateProfile_ForcesActive(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterInput{Email: "frank@x", Password: "frank-pass"})
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(ctx, "frank@x"))
	require.False(t, repo.users["frank@x"].IsActive)

	name := "Frank"
	updated, err := svc.UpdateProfile(ctx, "frank@x", UpdateInput{Name: &name})
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
}

func TestResolveToken(t *testing.T) {
	t.Parallel()
	svc, _, tokens := newTestService()
	ctx := context.Background()

	_, token, err := svc.Register(ctx, RegisterInput{Email: "gina@x", Password: "gina-pass"})
	require.NoError(t, err)

	user, err := svc.ResolveToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "gina@x", user.Email)
	assert.Empty(t, user.PasswordHash)

	// Deactivated user no longer resolves.
	require.NoError(t, svc.Deactivate(ctx, "gina@x"))
	_, err = svc.ResolveToken(ctx, token)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	// Decode failures pass through untouched.
	tokens.decodeErr = domain.ErrTokenExpired
	_, err = svc.ResolveToken(ctx, token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestListUsers(t *testing.T) {
	t.Parallel()
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterInput{Email: "u@x", Password: "password", Role: "user"})
	require.NoError(t, err)
	_, _, err = svc.Register(ctx, RegisterInput{Email: "a@x", Password: "password", Role: "admin"})
	require.NoError(t, err)

	all, err := svc.ListUsers(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	for _, u := range all {
		assert.Empty(t, u.PasswordHash)
	}

	admins, err := svc.ListUsers(ctx, Filter{Role: "admin"})
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "a@x", admins[0].Email)

	_, err = svc.ListUsers(ctx, Filter{Role: "superuser"})
	assert.ErrorIs(t, err, domain.ErrInvalidRole)
}

// Full lifecycle: register, login, soft delete, re-register on the same row.
func TestAccountLifecycle(t *testing.T) {
	t.Parallel()
	svc, repo, _ := newTestService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "first-pass"})
	require.NoError(t, err)

	tok, _, err := svc.Login(ctx, domain.Credentials{Email: "alice@example.com", Password: "first-pass"})
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	require.NoError(t, svc.Deactivate(ctx, "alice@example.com"))

	ok, err := svc.VerifyLogin(ctx, "alice@example.com", "first-pass")
	require.NoError(t, err)
	assert.False(t, ok)

	// Second registration reclaims the soft-deleted row instead of failing.
	_, _, err = svc.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "second-pass"})
	require.NoError(t, err)
	assert.Len(t, repo.users, 1)

	ok, err = svc.VerifyLogin(ctx, "alice@example.com", "second-pass")
	require.NoError(t, err)
	assert.True(t, ok)
}
