package repository

import (
	"context"
	"time"

	authdomain "selkie-backend/internal/auth/domain"
)

// UserRepository finds and creates users. Finders return (nil, nil) on a miss.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*authdomain.User, error)
	FindByExternalID(ctx context.Context, externalID string) (*authdomain.User, error)
	FindByID(ctx context.Context, userID string) (*authdomain.User, error)

	// Create fails with ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, email, name, hashedPassword string) (*authdomain.User, error)
	CreateFromExternalIdentity(ctx context.Context, email, name, externalID string) (*authdomain.User, error)

	// LinkExternalID reports false when the user does not exist or already has an external id.
	LinkExternalID(ctx context.Context, userID, externalID string) (bool, error)
}

// StateStore keeps one-time OAuth state values.
type StateStore interface {
	Save(ctx context.Context, state string, ttl time.Duration) error
	// Consume reports whether state was live, and invalidates it.
	Consume(ctx context.Context, state string) (bool, error)
}
