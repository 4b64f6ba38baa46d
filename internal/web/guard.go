package web

import (
	"context"
	"net/http"

	"taskverse/internal/backend"
)

// Session cookie names. The cookies hold the backend's own tokens; there is
// no separate server-side session state to sign.
const (
	accessCookie  = "tv_access_token"
	refreshCookie = "tv_refresh_token"
)

// requireSession gates protected routes. The session query runs before any
// protected byte is written; a query error or an absent session issues one
// redirect to the login entry point and nothing else. An expired access
// token is retried once through the refresh token before giving up.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.client.GetSession(r.Context(), cookieValue(r, accessCookie))
		if err != nil || sess == nil {
			sess = s.tryRefresh(w, r)
		}
		if sess == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeySession, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) tryRefresh(w http.ResponseWriter, r *http.Request) *backend.Session {
	rt := cookieValue(r, refreshCookie)
	if rt == "" {
		return nil
	}
	sess, err := s.client.Refresh(r.Context(), rt)
	if err != nil || sess == nil {
		return nil
	}
	s.setSessionCookies(w, sess)
	return sess
}

// sessionFrom returns the guard-attached session.
func sessionFrom(ctx context.Context) *backend.Session {
	sess, _ := ctx.Value(ctxKeySession).(*backend.Session)
	return sess
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func (s *Server) setSessionCookies(w http.ResponseWriter, sess *backend.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookie,
		Value:    sess.AccessToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    sess.RefreshToken,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{accessCookie, refreshCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
