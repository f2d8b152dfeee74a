package account

import (
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials indicates a login failure. It covers unknown,
	// inactive, and wrong-password cases alike so callers cannot tell which
	// one occurred.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken signals a registration attempt for an already active email.
	ErrEmailTaken = errors.New("email already registered")
	// ErrTokenInvalid means a supplied token is malformed or its signature
	// cannot be verified.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired means a structurally valid token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrUserNotFound indicates a missing or inactive user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidRole indicates the provided role is not supported.
	ErrInvalidRole = errors.New("invalid role")
)

// Role identifies the privileges assigned to a user.
type Role string

const (
	// RoleUser represents a standard application user.
	RoleUser Role = "user"
	// RoleAdmin represents an administrative user.
	RoleAdmin Role = "admin"
)

// ParseRole validates a raw role string, defaulting an empty value to RoleUser.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case "":
		return RoleUser, nil
	case RoleUser, RoleAdmin:
		return Role(raw), nil
	default:
		return "", ErrInvalidRole
	}
}

// User models the account entity persisted in storage. Email is the public
// identity and is stored case-sensitively. IsActive distinguishes a real,
// loginable account from a soft-deleted or never-completed one.
type User struct {
	ID           string
	Email        string
	Name         string
	Surname      string
	MiddleName   string
	Role         Role
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Credentials captures raw credential input for login.
type Credentials struct {
	Email    string
	Password string
}
