package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/and161185/notepad/internal/convert"
	"github.com/and161185/notepad/internal/errs"
	"github.com/and161185/notepad/internal/model"
)

// Register creates an account. The server answers with a message only.
func (c *Client) Register(ctx context.Context, r model.Registration) (string, error) {
	var out convert.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", "", convert.FromModelRegistration(r), &out); err != nil {
		return "", fmt.Errorf("register: %w", err)
	}
	return out.Text(), nil
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, cr model.Credentials) (model.Token, error) {
	var out convert.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", convert.FromModelCredentials(cr), &out); err != nil {
		return model.Token{}, fmt.Errorf("login: %w", err)
	}
	if out.Token == "" {
		return model.Token{}, fmt.Errorf("login: %w", &errs.APIError{Kind: errs.ErrNetwork, Message: "malformed response: no token"})
	}
	return model.Token{AccessToken: out.Token}, nil
}
