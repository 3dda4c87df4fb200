// Package repository defines remote API interfaces implemented by concrete transports.
package repository

import (
	"context"

	"github.com/and161185/notepad/internal/model"
)

// AuthRepository provides account operations on the remote API.
type AuthRepository interface {
	// Register creates an account and returns the server message. No token is issued.
	Register(ctx context.Context, r model.Registration) (message string, err error)
	// Login exchanges credentials for an access token.
	Login(ctx context.Context, c model.Credentials) (model.Token, error)
}
