package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/scoutshq/outpost/internal/database"
	"github.com/scoutshq/outpost/internal/model"
)

// ErrUnauthorized is returned when a bearer token cannot be resolved to an
// existing user, for whatever reason.
var ErrUnauthorized = errors.New("could not validate credentials")

// UserStore is the credential store the authenticator reads from.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// Authenticator composes the credential store, the password hasher and the
// token service to answer who a caller is.
type Authenticator struct {
	store  UserStore
	tokens *TokenService
}

// NewAuthenticator creates a new authenticator
func NewAuthenticator(store UserStore, tokens *TokenService) *Authenticator {
	return &Authenticator{
		store:  store,
		tokens: tokens,
	}
}

// Authenticate returns the user matching the username/password pair, or nil
// when no such user exists or the password does not match. The two cases are
// deliberately indistinguishable to the caller.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := a.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !VerifyPassword(password, user.Password) {
		return nil, nil
	}

	return user, nil
}

// CurrentUser resolves a bearer token to the user it represents. Token
// validity is checked before any store lookup, so garbage input never
// costs a database round-trip.
func (a *Authenticator) CurrentUser(ctx context.Context, tokenString string) (*model.User, error) {
	claims, err := a.tokens.Validate(tokenString)
	if err != nil {
		return nil, ErrUnauthorized
	}

	if claims.Subject == "" {
		return nil, ErrUnauthorized
	}

	user, err := a.store.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	return user, nil
}
