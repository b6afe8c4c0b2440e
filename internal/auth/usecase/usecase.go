package usecase

import (
	"context"
	"time"

	authdomain "selkie-backend/internal/auth/domain"
	"selkie-backend/internal/auth/token"
	"selkie-backend/pkg/google"
)

// AuthUsecase runs the login flows and resolves session tokens to users.
type AuthUsecase interface {
	// Register creates a password account. The returned user never carries a digest.
	Register(ctx context.Context, email, password, name string) (*authdomain.User, error)

	// PasswordLogin returns a session token for valid credentials.
	PasswordLogin(ctx context.Context, email, password string) (string, error)

	// ExternalLogin resolves or creates the user for an external identity and returns a session token.
	ExternalLogin(ctx context.Context, externalID, email, name string) (string, *authdomain.User, error)

	// ResolveCurrentUser maps a raw credential, optionally "Bearer "-prefixed, to its user.
	ResolveCurrentUser(ctx context.Context, raw string) (*authdomain.User, error)

	// GoogleLoginURL creates a fresh OAuth state and returns the consent URL.
	GoogleLoginURL(ctx context.Context) (string, error)

	// GoogleCallback validates state, exchanges code and logs the user in.
	GoogleCallback(ctx context.Context, state, code string) (string, error)
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

type TokenCodec interface {
	Issue(claims token.Claims, ttl time.Duration) (string, error)
	Decode(raw string) (*token.Claims, bool)
}

type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*google.Identity, error)
}

type LoginRecorder interface {
	RecordLogin(method, outcome string)
}
