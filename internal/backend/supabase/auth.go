package supabase

import (
	"context"
	"net/http"
	"time"

	"taskverse/internal/backend"
)

// authSession is the token-grant response shape of the auth service.
type authSession struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"`
	User         authUser `json:"user"`
}

type authUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		Name string `json:"name"`
	} `json:"user_metadata"`
}

func (u authUser) toUser() backend.User {
	return backend.User{ID: u.ID, Email: u.Email, Name: u.UserMetadata.Name}
}

func (s authSession) toSession() *backend.Session {
	return &backend.Session{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(s.ExpiresIn) * time.Second),
		User:         s.User.toUser(),
	}
}

// SignUp implements backend.Auth. With email confirmation enabled the
// response carries the user but no tokens; that is reported as a nil session.
func (c *Client) SignUp(ctx context.Context, creds backend.Credentials) (*backend.Session, error) {
	body := map[string]any{
		"email":    creds.Email,
		"password": creds.Password,
		"data":     map[string]string{"name": creds.Name},
	}
	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/auth/v1/signup", "", body)
	if err != nil {
		return nil, backend.NewError(err.Error())
	}
	var out authSession
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" {
		return nil, nil
	}
	return out.toSession(), nil
}

// SignInWithPassword implements backend.Auth.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*backend.Session, error) {
	body := map[string]string{"email": email, "password": password}
	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/auth/v1/token?grant_type=password", "", body)
	if err != nil {
		return nil, backend.NewError(err.Error())
	}
	var out authSession
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.toSession(), nil
}

// GetSession implements backend.Auth by resolving the token against the auth
// service's user endpoint. A rejected token is no session, not a failure.
func (c *Client) GetSession(ctx context.Context, accessToken string) (*backend.Session, error) {
	if accessToken == "" {
		return nil, backend.ErrNoSession
	}
	req, err := c.newRequest(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", accessToken, nil)
	if err != nil {
		return nil, backend.NewError(err.Error())
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, backend.NewError(err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, backend.ErrNoSession
	}
	var u authUser
	if err := decodeBody(resp, &u); err != nil {
		return nil, err
	}
	return &backend.Session{AccessToken: accessToken, User: u.toUser()}, nil
}

// SignOut implements backend.Auth.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	req, err := c.newRequest(ctx, http.MethodPost, c.baseURL+"/auth/v1/logout", accessToken, nil)
	if err != nil {
		return backend.NewError(err.Error())
	}
	return c.do(req, nil)
}
