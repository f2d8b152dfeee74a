package account

import (
	"context"
	"time"
)

// UserRepository defines persistence operations for account users.
// Implementations surface missing rows as ErrUserNotFound and duplicate
// emails as ErrEmailTaken; any other storage failure propagates unchanged.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, filter UserFilter) ([]*User, error)
	Update(ctx context.Context, user *User) error
	// Deactivate soft-deletes a user by flipping is_active to false.
	// The row itself is preserved for later reactivation.
	Deactivate(ctx context.Context, email string, updatedAt time.Time) error
}

// UserFilter allows narrowing user queries.
type UserFilter struct {
	Role Role
}
