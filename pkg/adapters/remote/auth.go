package remote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/patrickmn/go-cache"

	"github.com/aretw0/cleverpad/pkg/core"
)

// User is the backend profile of an account.
type User struct {
	ID    flexID `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	resp, err := c.doForm(ctx, "/auth/login", form)
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	var tok tokenResponse
	if err := decodeResponse(resp, &tok); err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("login failed: empty access token")
	}
	return tok.AccessToken, nil
}

// Signup creates an account. It does not log in.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (User, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/signup", "", req)
	if err != nil {
		return User{}, fmt.Errorf("signup request failed: %w", err)
	}
	var u User
	if err := decodeResponse(resp, &u); err != nil {
		return User{}, fmt.Errorf("signup failed: %w", err)
	}
	return u, nil
}

// Me returns the profile behind token. Answers are cached per token.
func (c *Client) Me(ctx context.Context, token string) (User, error) {
	if v, ok := c.profiles.Get(token); ok {
		return v.(User), nil
	}

	resp, err := c.doRequest(ctx, http.MethodGet, "/auth/me", token, nil)
	if err != nil {
		return User{}, fmt.Errorf("profile request failed: %w", err)
	}
	var u User
	if err := decodeResponse(resp, &u); err != nil {
		return User{}, fmt.Errorf("failed to load profile: %w", err)
	}
	c.profiles.Set(token, u, cache.DefaultExpiration)
	return u, nil
}

// Forget drops the cached profile of token, e.g. on logout.
func (c *Client) Forget(token string) {
	c.profiles.Delete(token)
}

// Authenticate logs in and returns the resulting session.
func (c *Client) Authenticate(ctx context.Context, email, password string) (core.Session, error) {
	token, err := c.Login(ctx, email, password)
	if err != nil {
		return core.Session{}, err
	}
	u, err := c.Me(ctx, token)
	if err != nil {
		return core.Session{}, err
	}
	return core.Session{
		UserID: string(u.ID),
		Name:   u.Name,
		Email:  u.Email,
		Token:  token,
	}, nil
}

// Register creates an account and logs straight into it.
func (c *Client) Register(ctx context.Context, req SignupRequest) (core.Session, error) {
	if _, err := c.Signup(ctx, req); err != nil {
		return core.Session{}, err
	}
	return c.Authenticate(ctx, req.Email, req.Password)
}
