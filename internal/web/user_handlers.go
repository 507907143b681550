package web

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/evcraddock/realty-crm/internal/auth"
)

// tokenResponse is the login result.
type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// handleRegister creates a user account.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := s.users.Register(req.Username, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("user registered", "username", u.Username)
	apiJSON(w, u, http.StatusCreated)
}

// handleLogin exchanges a username and password for a bearer token.
// Accepts a JSON body or an OAuth2-style form post.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	ip := auth.ClientIP(r)
	if s.limiter.Blocked(ip) {
		apiError(w, "too many failed login attempts, try again later", http.StatusTooManyRequests)
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		req.Username = r.FormValue("username")
		req.Password = r.FormValue("password")
	default:
		if !decodeJSON(w, r, &req) {
			return
		}
	}

	u, err := s.users.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			s.limiter.RecordFailure(ip)
			slog.Warn("login failed", "username", req.Username, "ip", ip)
			apiError(w, "Incorrect username or password", http.StatusUnauthorized)
			return
		}
		writeError(w, r, err)
		return
	}
	s.limiter.Reset(ip)

	token, expires, err := s.tokens.Issue(u.Username)
	if err != nil {
		writeError(w, r, err)
		return
	}

	apiJSON(w, tokenResponse{AccessToken: token, TokenType: "bearer", ExpiresAt: expires}, http.StatusOK)
}

// handleMe returns the authenticated user.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthenticated)
		return
	}
	apiJSON(w, u, http.StatusOK)
}
