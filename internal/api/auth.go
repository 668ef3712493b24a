package api

import (
	"context"
	"fmt"
	"net/http"
)

// Backend authentication endpoints.
const (
	LoginPath    = "/auth/login"
	RegisterPath = "/auth/register"
	LogoutPath   = "/auth/logout"
	StatusPath   = "/auth/status"
	RefreshPath  = "/auth/refresh"
)

// The auth endpoints bypass the unauthorized handler: a 401 from them is an
// answer about credentials, not a stale session.

func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	result := &AuthResponse{}
	if _, err := handleError(c.send(ctx, http.MethodPost, LoginPath, creds, result)); err != nil {
		return nil, err
	}
	if result.AccessToken == "" || result.User == nil {
		return nil, fmt.Errorf("login response missing token or user")
	}
	return result, nil
}

func (c *Client) Register(ctx context.Context, reg Registration) (*RegisterResponse, error) {
	result := &RegisterResponse{}
	if _, err := handleError(c.send(ctx, http.MethodPost, RegisterPath, reg, result)); err != nil {
		return nil, err
	}
	if !result.Success && result.User == nil {
		return nil, fmt.Errorf("registration was not accepted")
	}
	return result, nil
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := handleError(c.send(ctx, http.MethodPost, LogoutPath, nil, nil))
	return err
}

func (c *Client) Status(ctx context.Context) (*AuthResponse, error) {
	result := &AuthResponse{}
	if _, err := handleError(c.send(ctx, http.MethodGet, StatusPath, nil, result)); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	result := &AuthResponse{}
	body := refreshRequest{RefreshToken: refreshToken}
	if _, err := handleError(c.send(ctx, http.MethodPost, RefreshPath, body, result)); err != nil {
		return nil, err
	}
	if result.AccessToken == "" {
		return nil, fmt.Errorf("refresh response missing token")
	}
	return result, nil
}
