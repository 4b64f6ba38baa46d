package supabase

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"taskverse/internal/backend"
)

// Refresh implements backend.Auth. The session token is an OAuth2-shaped
// bearer token, so the exchange goes through an oauth2.TokenSource wired to
// the auth service's refresh grant.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*backend.Session, error) {
	if refreshToken == "" {
		return nil, backend.ErrNoSession
	}
	tok, err := c.refreshSource(ctx, refreshToken).Token()
	if err != nil {
		return nil, err
	}
	return sessionFromToken(tok), nil
}

// TokenSource yields the session's access token, refreshing it through the
// auth service when it expires.
func (c *Client) TokenSource(ctx context.Context, sess *backend.Session) oauth2.TokenSource {
	current := &oauth2.Token{
		AccessToken:  sess.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: sess.RefreshToken,
		Expiry:       sess.ExpiresAt,
	}
	return oauth2.ReuseTokenSource(current, c.refreshSource(ctx, sess.RefreshToken))
}

func (c *Client) refreshSource(ctx context.Context, refreshToken string) oauth2.TokenSource {
	return &refreshSource{ctx: ctx, c: c, refreshToken: refreshToken}
}

// refreshSource is an oauth2.TokenSource backed by the refresh grant. Each
// exchange rotates the stored refresh token.
type refreshSource struct {
	ctx          context.Context
	c            *Client
	refreshToken string
}

func (s *refreshSource) Token() (*oauth2.Token, error) {
	body := map[string]string{"refresh_token": s.refreshToken}
	req, err := s.c.newRequest(s.ctx, http.MethodPost,
		s.c.baseURL+"/auth/v1/token?grant_type=refresh_token", "", body)
	if err != nil {
		return nil, backend.NewError(err.Error())
	}
	var out authSession
	if err := s.c.do(req, &out); err != nil {
		return nil, err
	}
	s.refreshToken = out.RefreshToken

	tok := &oauth2.Token{
		AccessToken:  out.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: out.RefreshToken,
		Expiry:       time.Now().Add(time.Duration(out.ExpiresIn) * time.Second),
	}
	return tok.WithExtra(map[string]any{"user": out.User}), nil
}

func sessionFromToken(tok *oauth2.Token) *backend.Session {
	sess := &backend.Session{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
	}
	if u, ok := tok.Extra("user").(authUser); ok {
		sess.User = u.toUser()
	}
	return sess
}
