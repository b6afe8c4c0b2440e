package domain

import "errors"

var (
	ErrDuplicateEmail         = errors.New("email already present")
	ErrDuplicateExternalID    = errors.New("external identity already linked to another user")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("incorrect email or password")
	ErrUnauthenticated        = errors.New("could not validate credentials")
	ErrInvalidOAuthState      = errors.New("invalid or expired oauth state")
	ErrIncompleteIdentity     = errors.New("identity provider returned no subject or email")
	ErrUnverifiedEmail        = errors.New("identity provider has not verified the email")
	ErrPasswordTooLong        = errors.New("password exceeds 72 bytes")
)
