package auth

import (
	"context"
	"errors"
	"fmt"

	"reminders-lite/internal/model"
)

// ErrInvalidLogin covers both an unknown email and a wrong password.
var ErrInvalidLogin = errors.New("Invalid Login!")

// UserLookup finds the single user whose stored email and password both
// equal the given values. Passwords are compared as stored, not hashed.
type UserLookup interface {
	FindUserByCredentials(ctx context.Context, email, password string) (model.User, bool, error)
}

type LoginResult struct {
	Authenticated bool   `json:"auth"`
	UserID        int64  `json:"userId"`
	Token         string `json:"token"`
}

type Verifier struct {
	Users       UserLookup
	TokenConfig TokenConfig
}

func NewVerifier(users UserLookup, cfg TokenConfig) *Verifier {
	return &Verifier{Users: users, TokenConfig: cfg}
}

func (v *Verifier) Login(ctx context.Context, email, password string) (LoginResult, error) {
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidLogin
	}

	user, ok, err := v.Users.FindUserByCredentials(ctx, email, password)
	if err != nil {
		return LoginResult{}, fmt.Errorf("lookup user: %w", err)
	}
	if !ok {
		return LoginResult{}, ErrInvalidLogin
	}

	token, err := CreateToken(user.ID, v.TokenConfig)
	if err != nil {
		return LoginResult{}, fmt.Errorf("create token: %w", err)
	}
	return LoginResult{Authenticated: true, UserID: user.ID, Token: token}, nil
}
