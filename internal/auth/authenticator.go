package auth

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/user-directory/internal/model"
	"github.com/iliyamo/user-directory/internal/repository"
)

// ErrInvalidCredentials is returned by Login when the username is unknown
// or the password does not verify. The two cases are indistinguishable.
var ErrInvalidCredentials = errors.New("incorrect username or password")

// ErrInactiveUser is returned by Login when the credentials are correct
// but the account is deactivated.
var ErrInactiveUser = errors.New("inactive user")

// Token is the login response payload.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // always "bearer"
}

// Authenticator verifies credentials against the store and issues access
// tokens. Secret and TTL are fixed at construction; rotating the secret
// means restarting the process and invalidates all outstanding tokens.
type Authenticator struct {
	Store     repository.UserStore
	Secret    string
	AccessTTL time.Duration
}

func NewAuthenticator(store repository.UserStore, secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{Store: store, Secret: secret, AccessTTL: ttl}
}

// Authenticate looks the user up by username and verifies the password.
// It returns nil without an error when either step fails, and does not
// check is_active: inactive accounts still authenticate, the caller
// decides whether they may proceed.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	u, err := a.Store.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !VerifyPassword(u.PasswordHash, password) {
		return nil, nil
	}
	return &u, nil
}

// Login authenticates, rejects inactive accounts, and issues a bearer
// token whose subject is the username.
func (a *Authenticator) Login(ctx context.Context, username, password string) (Token, error) {
	u, err := a.Authenticate(ctx, username, password)
	if err != nil {
		return Token{}, err
	}
	if u == nil {
		return Token{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		return Token{}, ErrInactiveUser
	}
	signed, err := IssueToken(a.Secret, u.Username, a.AccessTTL)
	if err != nil {
		return Token{}, err
	}
	return Token{AccessToken: signed, TokenType: "bearer"}, nil
}
