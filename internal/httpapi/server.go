package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/MrEthical07/consoleauth"
	"github.com/MrEthical07/consoleauth/metrics/export/prometheus"
	"github.com/MrEthical07/consoleauth/middleware"
)

// maxLoginBody caps the login request body.
const maxLoginBody = 64 << 10

// Server holds the engine and the routes built on it.
type Server struct {
	engine  *consoleauth.Engine
	metrics *prometheus.PrometheusExporter
	logger  *slog.Logger
}

// New returns a Server. A nil logger discards output.
func New(engine *consoleauth.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		engine:  engine,
		metrics: prometheus.NewPrometheusExporter(engine),
		logger:  logger.With("component", "httpapi"),
	}
}

// Handler returns the route mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.Handle("GET /auth/me", middleware.Guard(s.engine)(http.HandlerFunc(s.handleMe)))
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

// NewHTTPServer returns an http.Server for addr with conservative timeouts.
func (s *Server) NewHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type meResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxLoginBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "bad request"})
		return
	}
	username, secret := loginFields(body)

	res, err := s.engine.Login(middleware.RequestContext(r), username, secret)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, res)
	case errors.Is(err, consoleauth.ErrLoginRateLimited):
		writeJSON(w, http.StatusTooManyRequests, messageResponse{Message: "too many attempts"})
	case errors.Is(err, consoleauth.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "invalid credentials"})
	default:
		s.logger.Error("login failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "internal error"})
	}
}

// loginFields extracts username and password from a JSON body. Anything
// other than an object with string fields yields empty values, which the
// engine rejects as invalid credentials.
func loginFields(body []byte) (string, string) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return "", ""
	}
	return stringField(raw["username"]), stringField(raw["password"])
}

func stringField(v json.RawMessage) string {
	var s string
	if len(v) == 0 || json.Unmarshal(v, &s) != nil {
		return ""
	}
	return s
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	res, ok := middleware.AuthResultFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, meResponse{
		ID:        res.UserID,
		Username:  res.Username,
		IssuedAt:  res.IssuedAt.UTC(),
		ExpiresAt: res.ExpiresAt.UTC(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
