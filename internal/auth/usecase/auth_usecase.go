package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	authdomain "selkie-backend/internal/auth/domain"
	"selkie-backend/internal/auth/repository"
	"selkie-backend/internal/auth/token"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	stateTTL     = 10 * time.Minute
	bearerPrefix = "Bearer "

	methodPassword = "password"
	methodGoogle   = "google"
)

type authUsecase struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	tokens   TokenCodec
	provider IdentityProvider
	states   repository.StateStore
	recorder LoginRecorder
	logger   *slog.Logger
}

// NewAuthUsecase creates a new instance of AuthUsecase. recorder may be nil.
func NewAuthUsecase(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	tokens TokenCodec,
	provider IdentityProvider,
	states repository.StateStore,
	recorder LoginRecorder,
	logger *slog.Logger,
) AuthUsecase {
	if logger == nil {
		logger = slog.Default()
	}
	return &authUsecase{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		provider: provider,
		states:   states,
		recorder: recorder,
		logger:   logger.With(slog.String("component", "auth")),
	}
}

func (u *authUsecase) Register(ctx context.Context, email, password, name string) (*authdomain.User, error) {
	existing, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, authdomain.ErrEmailAlreadyRegistered
	}

	digest, err := u.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, authdomain.ErrPasswordTooLong
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := u.userRepo.Create(ctx, email, name, digest)
	if err != nil {
		// Lost a race with a concurrent registration for the same email.
		if errors.Is(err, authdomain.ErrDuplicateEmail) {
			return nil, fmt.Errorf("%w: %w", authdomain.ErrEmailAlreadyRegistered, err)
		}
		return nil, err
	}

	user.HashedPassword = nil
	u.logger.Info("user registered", slog.String("user_id", user.ID))
	return user, nil
}

func (u *authUsecase) PasswordLogin(ctx context.Context, email, password string) (string, error) {
	user, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		u.record(methodPassword, "error")
		return "", err
	}
	if user == nil || !user.HasPassword() || !u.hasher.Verify(password, *user.HashedPassword) {
		u.record(methodPassword, "rejected")
		return "", authdomain.ErrInvalidCredentials
	}

	signed, err := u.tokens.Issue(token.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: user.Email},
	}, 0)
	if err != nil {
		u.record(methodPassword, "error")
		return "", err
	}
	u.record(methodPassword, "success")
	return signed, nil
}

// ExternalLogin treats email as verified by the caller.
func (u *authUsecase) ExternalLogin(ctx context.Context, externalID, email, name string) (string, *authdomain.User, error) {
	return u.externalLogin(ctx, externalID, email, name, true)
}

func (u *authUsecase) externalLogin(ctx context.Context, externalID, email, name string, emailVerified bool) (string, *authdomain.User, error) {
	if externalID == "" || email == "" {
		return "", nil, authdomain.ErrIncompleteIdentity
	}

	user, err := u.resolveExternalUser(ctx, externalID, email, name, emailVerified)
	if err != nil {
		if errors.Is(err, authdomain.ErrUnverifiedEmail) {
			u.record(methodGoogle, "rejected")
		} else {
			u.record(methodGoogle, "error")
		}
		return "", nil, err
	}

	signed, err := u.tokens.Issue(token.Claims{
		UserID:           user.ID,
		RegisteredClaims: jwt.RegisteredClaims{Subject: user.Email},
	}, 0)
	if err != nil {
		u.record(methodGoogle, "error")
		return "", nil, err
	}

	u.record(methodGoogle, "success")
	user.HashedPassword = nil
	return signed, user, nil
}

// resolveExternalUser prefers the linked identity, then an account with the
// same email (which gets linked), and only then creates a new user. An
// unverified email can only sign in to an identity that is already linked.
func (u *authUsecase) resolveExternalUser(ctx context.Context, externalID, email, name string, emailVerified bool) (*authdomain.User, error) {
	user, err := u.userRepo.FindByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}
	if !emailVerified {
		return nil, authdomain.ErrUnverifiedEmail
	}

	user, err = u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		linked, err := u.userRepo.LinkExternalID(ctx, user.ID, externalID)
		if err != nil {
			return nil, err
		}
		if linked {
			user.ExternalID = &externalID
			u.logger.Info("external identity linked", slog.String("user_id", user.ID))
		} else {
			u.logger.Warn("external identity not linked, account already has one",
				slog.String("user_id", user.ID),
			)
		}
		return user, nil
	}

	user, err = u.userRepo.CreateFromExternalIdentity(ctx, email, name, externalID)
	if err != nil {
		return nil, err
	}
	u.logger.Info("user created from external identity", slog.String("user_id", user.ID))
	return user, nil
}

func (u *authUsecase) ResolveCurrentUser(ctx context.Context, raw string) (*authdomain.User, error) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), bearerPrefix))
	if raw == "" {
		return nil, authdomain.ErrUnauthenticated
	}

	claims, ok := u.tokens.Decode(raw)
	// Users are looked up by subject only, so a token carrying just user_id cannot resolve.
	if !ok || claims.Subject == "" {
		return nil, authdomain.ErrUnauthenticated
	}

	user, err := u.userRepo.FindByEmail(ctx, claims.Subject)
	if err != nil {
		u.logger.Error("resolve current user lookup failed", slog.String("error", err.Error()))
		return nil, authdomain.ErrUnauthenticated
	}
	if user == nil {
		return nil, authdomain.ErrUnauthenticated
	}

	user.HashedPassword = nil
	return user, nil
}

func (u *authUsecase) GoogleLoginURL(ctx context.Context) (string, error) {
	state, err := newState()
	if err != nil {
		return "", err
	}
	if err := u.states.Save(ctx, state, stateTTL); err != nil {
		return "", err
	}
	return u.provider.AuthCodeURL(state), nil
}

func (u *authUsecase) GoogleCallback(ctx context.Context, state, code string) (string, error) {
	if state == "" {
		return "", authdomain.ErrInvalidOAuthState
	}
	live, err := u.states.Consume(ctx, state)
	if err != nil {
		return "", err
	}
	if !live {
		u.record(methodGoogle, "rejected")
		return "", authdomain.ErrInvalidOAuthState
	}

	identity, err := u.provider.Exchange(ctx, code)
	if err != nil {
		u.record(methodGoogle, "error")
		return "", fmt.Errorf("google exchange: %w", err)
	}
	if identity.Subject == "" || identity.Email == "" {
		u.record(methodGoogle, "rejected")
		return "", authdomain.ErrIncompleteIdentity
	}

	signed, _, err := u.externalLogin(ctx, identity.Subject, identity.Email, identity.Name, identity.EmailVerified)
	return signed, err
}

func (u *authUsecase) record(method, outcome string) {
	if u.recorder != nil {
		u.recorder.RecordLogin(method, outcome)
	}
}

func newState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
