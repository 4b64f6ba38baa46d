package web

import (
	"net/http"

	"taskverse/internal/backend"
	"taskverse/internal/validate"
)

// formData feeds the credential form templates.
type formData struct {
	Values    map[string]string
	Errors    validate.FieldErrors
	FormError string
}

// redirectData feeds the post-submit notice page, which navigates on after a
// short fixed delay so the notice renders first.
type redirectData struct {
	Title   string
	Message string
	URL     string
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "register.tmpl", formData{Values: map[string]string{}})
}

// handleRegister validates the registration fields and submits them to the
// backend's sign-up endpoint. Success shows the email-confirmation notice
// and then navigates to login; failure surfaces the backend's message and
// re-enables the form.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")
	email := r.FormValue("email")
	password := r.FormValue("password")

	data := formData{Values: map[string]string{"name": name, "email": email}}
	if data.Errors = validate.Registration(name, email, password); len(data.Errors) > 0 {
		s.render(w, http.StatusUnprocessableEntity, "register.tmpl", data)
		return
	}

	_, err := s.client.SignUp(r.Context(), backend.Credentials{
		Email:    email,
		Password: password,
		Name:     name,
	})
	if err != nil {
		data.FormError = errorMessage(err, "Registration failed. Please try again.")
		s.render(w, http.StatusBadGateway, "register.tmpl", data)
		return
	}

	s.render(w, http.StatusOK, "redirect.tmpl", redirectData{
		Title:   "Registration successful",
		Message: "Registration successful! Please check your email to confirm your account.",
		URL:     "/login",
	})
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "login.tmpl", formData{Values: map[string]string{}})
}

// handleLogin validates the login fields and exchanges them for a session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	data := formData{Values: map[string]string{"email": email}}
	if data.Errors = validate.Login(email, password); len(data.Errors) > 0 {
		s.render(w, http.StatusUnprocessableEntity, "login.tmpl", data)
		return
	}

	sess, err := s.client.SignInWithPassword(r.Context(), email, password)
	if err != nil {
		data.FormError = errorMessage(err, "Login failed. Please try again.")
		s.render(w, http.StatusUnauthorized, "login.tmpl", data)
		return
	}

	s.setSessionCookies(w, sess)
	s.render(w, http.StatusOK, "redirect.tmpl", redirectData{
		Title:   "Login successful",
		Message: "Login successful! Taking you to your tasks.",
		URL:     "/tasks",
	})
}

// handleLogout closes the mounted controller, revokes the session, and
// clears the cookies.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if ctl := s.controllers.remove(sess.User.ID); ctl != nil {
		ctl.Close()
	}
	if err := s.client.SignOut(r.Context(), sess.AccessToken); err != nil {
		s.log.Warn("sign-out failed", "error", err)
	}
	s.clearSessionCookies(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// errorMessage prefers the backend's user-facing text over the fallback.
func errorMessage(err error, fallback string) string {
	if msg := backend.Message(err); msg != "" {
		return msg
	}
	return fallback
}
