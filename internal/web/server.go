// Package web provides the HTTP JSON API for the CRM.
package web

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/evcraddock/realty-crm/internal/auth"
	"github.com/evcraddock/realty-crm/internal/client"
	"github.com/evcraddock/realty-crm/internal/clock"
	"github.com/evcraddock/realty-crm/internal/config"
	"github.com/evcraddock/realty-crm/internal/logging"
	"github.com/evcraddock/realty-crm/internal/negotiation"
	"github.com/evcraddock/realty-crm/internal/property"
	"github.com/evcraddock/realty-crm/internal/visit"
)

// Server is the CRM API HTTP server.
type Server struct {
	users        *auth.UserStore
	tokens       *auth.TokenIssuer
	limiter      *auth.LoginLimiter
	properties   *property.Repository
	clients      *client.Repository
	visits       *visit.Service
	negotiations *negotiation.Repository
	mux          *http.ServeMux
	handler      http.Handler
}

// NewServer creates an API server backed by db. A nil clock uses the system clock.
func NewServer(db *sql.DB, cfg *config.Config, clk clock.Clock) *Server {
	if clk == nil {
		clk = clock.System{}
	}

	properties := property.NewRepository(db)
	clients := client.NewRepository(db)

	s := &Server{
		users:        auth.NewUserStore(db, auth.NewHasher(cfg.BcryptCost)),
		tokens:       auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL, clk),
		limiter:      auth.NewLoginLimiter(0, 0, clk),
		properties:   properties,
		clients:      clients,
		visits:       visit.NewService(db, clients, properties, clk, cfg.Location),
		negotiations: negotiation.NewRepository(db, clients, properties, clk),
		mux:          http.NewServeMux(),
	}

	s.mux.HandleFunc("/ping", s.handlePing)
	s.mux.HandleFunc("/users/register", s.handleRegister)
	s.mux.HandleFunc("/users/login", s.handleLogin)
	s.mux.HandleFunc("/users/me", s.handleMe)
	s.mux.HandleFunc("/properties/", s.handleProperties)
	s.mux.HandleFunc("/clients/", s.handleClients)
	s.mux.HandleFunc("/visits/", s.handleVisits)
	s.mux.HandleFunc("/negotiations/", s.handleNegotiations)

	var h http.Handler = s.mux
	h = auth.RequireBearer(s.tokens, s.users, h)
	h = cors(allowedOrigins(cfg.FrontendURL), h)
	s.handler = logging.RequestLogger(h)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("starting API server", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Info("shutting down API server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// splitPath returns the segments after prefix, e.g. "/visits/3/status" -> ["3", "status"].
func splitPath(path, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}
