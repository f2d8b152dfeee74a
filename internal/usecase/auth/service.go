package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	domain "accounts/backend/internal/domain/account"

	"github.com/google/uuid"
)

// Service coordinates account workflows between domain and infrastructure:
// registration, credential checks, session token resolution, profile
// changes, and soft deletion.
type Service struct {
	users   domain.UserRepository
	tokens  TokenManager
	nowFunc func() time.Time
}

// NewService constructs an auth service.
func NewService(users domain.UserRepository, tokens TokenManager) *Service {
	return &Service{
		users:   users,
		tokens:  tokens,
		nowFunc: time.Now,
	}
}

// RegisterInput defines the payload to register an account.
type RegisterInput struct {
	Email      string
	Password   string
	Name       string
	Surname    string
	MiddleName string
	Role       string
}

// UpdateInput defines a partial profile update. Nil fields are left
// untouched; a non-nil empty string clears the field.
type UpdateInput struct {
	Name       *string
	Surname    *string
	MiddleName *string
	Password   *string
}

// Filter captures supported filters for listing users.
type Filter struct {
	Role string
}

// Register creates an account for the email, or reactivates an inactive row
// left behind by a soft delete. An already active email is rejected with
// ErrEmailTaken; repeating the call changes nothing. On success a session
// token is issued for the new account.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, string, error) {
	email := strings.TrimSpace(input.Email)
	password := strings.TrimSpace(input.Password)
	if email == "" {
		return nil, "", errors.New("email is required")
	}
	if password == "" {
		return nil, "", errors.New("password is required")
	}

	role, err := domain.ParseRole(strings.TrimSpace(input.Role))
	if err != nil {
		return nil, "", err
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, "", err
	}

	now := s.nowFunc().UTC()

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.IsActive:
		return nil, "", domain.ErrEmailTaken
	case err == nil:
		// Soft-deleted or never-completed row: take it over.
		existing.Name = strings.TrimSpace(input.Name)
		existing.Surname = strings.TrimSpace(input.Surname)
		existing.MiddleName = strings.TrimSpace(input.MiddleName)
		existing.Role = role
		existing.PasswordHash = hashed
		existing.IsActive = true
		existing.UpdatedAt = now
		if err := s.users.Update(ctx, existing); err != nil {
			return nil, "", err
		}
		return s.issueFor(existing)
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, "", err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		Surname:      strings.TrimSpace(input.Surname),
		MiddleName:   strings.TrimSpace(input.MiddleName),
		Role:         role,
		PasswordHash: hashed,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The unique index on email is the arbiter here: a concurrent
	// registration of the same email loses with ErrEmailTaken instead of
	// producing a second row.
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	return s.issueFor(user)
}

// Login validates credentials and returns a session token plus the user.
// Unknown email, inactive account, and wrong password all fail with the
// same ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, creds domain.Credentials) (string, *domain.User, error) {
	user, err := s.authenticate(ctx, creds.Email, creds.Password)
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return "", nil, err
	}
	return token, sanitizeUser(user), nil
}

// VerifyLogin answers whether the email/password pair names an active
// account with a matching password. Storage failures propagate; a plain
// mismatch is false, not an error.
func (s *Service) VerifyLogin(ctx context.Context, email, password string) (bool, error) {
	_, err := s.authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Service) authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	// Inactive behaves exactly like absent.
	if !user.IsActive {
		return nil, domain.ErrInvalidCredentials
	}
	if !verifyPassword(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// ResolveToken decodes a session token and resolves it to the active user
// it names. Expired and otherwise invalid tokens stay distinguishable for
// logging; a token naming a missing or inactive user resolves to
// ErrUserNotFound.
func (s *Service) ResolveToken(ctx context.Context, token string) (*domain.User, error) {
	email, err := s.tokens.Decode(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrUserNotFound
	}
	return sanitizeUser(user), nil
}

// UpdateProfile applies a partial update to the user's profile. A password,
// when present, is re-hashed before storage, and the account is re-affirmed
// active.
func (s *Service) UpdateProfile(ctx context.Context, email string, input UpdateInput) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Surname != nil {
		user.Surname = strings.TrimSpace(*input.Surname)
	}
	if input.MiddleName != nil {
		user.MiddleName = strings.TrimSpace(*input.MiddleName)
	}
	if input.Password != nil {
		password := strings.TrimSpace(*input.Password)
		if password == "" {
			return nil, errors.New("password must not be empty")
		}
		hashed, err := hashPassword(password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashed
	}

	user.IsActive = true
	user.UpdatedAt = s.nowFunc().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return sanitizeUser(user), nil
}

// Deactivate soft-deletes the account; the row is kept and a later
// registration with the same email reclaims it.
func (s *Service) Deactivate(ctx context.Context, email string) error {
	return s.users.Deactivate(ctx, strings.TrimSpace(email), s.nowFunc().UTC())
}

// ListUsers returns users matching the supplied filter.
func (s *Service) ListUsers(ctx context.Context, filter Filter) ([]*domain.User, error) {
	domainFilter := domain.UserFilter{}
	if raw := strings.TrimSpace(filter.Role); raw != "" {
		role, err := domain.ParseRole(raw)
		if err != nil {
			return nil, err
		}
		domainFilter.Role = role
	}

	users, err := s.users.List(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.User, 0, len(users))
	for _, u := range users {
		out = append(out, sanitizeUser(u))
	}
	return out, nil
}

func (s *Service) issueFor(user *domain.User) (*domain.User, string, error) {
	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return nil, "", err
	}
	return sanitizeUser(user), token, nil
}

func sanitizeUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	copy := *u
	copy.PasswordHash = ""
	return &copy
}
