package api

import (
	"context"
	"net/http"

	"github.com/me/examdesk/pkg/model"
)

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (string, error) {
	const op = "login"
	if err := c.check(op, creds); err != nil {
		return "", err
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.call(ctx, op, http.MethodPost, "/auth/login", false, creds, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", model.NewValidationError(op, "backend returned no token")
	}
	return out.Token, nil
}

// Register creates an operator account. Backend validation messages are
// returned individually through the error's Details.
func (c *Client) Register(ctx context.Context, creds model.Credentials) error {
	const op = "register"
	if err := c.check(op, creds); err != nil {
		return err
	}
	return c.call(ctx, op, http.MethodPost, "/auth/register", false, creds, nil)
}
