package server

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"authsvc/internal/auth"
	"authsvc/internal/config"
)

// RateLimiter is the subset of auth.RateLimiter the handlers use.
type RateLimiter interface {
	IsIPBanned(ctx context.Context, ip string) bool
	RegisterLoginFailure(ctx context.Context, ip string) error
	ResetLogin(ctx context.Context, ip string)
	RegisterVerifyAttempt(ctx context.Context, key string) (bool, time.Duration, error)
	ResetVerify(ctx context.Context, key string)
	RegisterResetAttempt(ctx context.Context, email, ip string) (bool, time.Duration, error)
	RegisterRegisterAttempt(ctx context.Context, email, ip string) (bool, time.Duration, error)
	CooldownTTL(ctx context.Context, key string) time.Duration
	SetCooldown(ctx context.Context, key string, ttl time.Duration)
}

type Server struct {
	Auth           *auth.Service
	Tokens         *auth.TokenService
	RateLimiter    RateLimiter
	Mailer         auth.Mailer
	Config         config.Config
	trustedProxies []net.IPNet
}

func NewServer(cfg config.Config, svc *auth.Service, tokens *auth.TokenService, rl RateLimiter, mailer auth.Mailer) *Server {
	return &Server{
		Auth:           svc,
		Tokens:         tokens,
		RateLimiter:    rl,
		Mailer:         mailer,
		Config:         cfg,
		trustedProxies: parseProxyCIDRs(cfg.TrustedProxies),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	formatter := &middleware.DefaultLogFormatter{
		Logger:  log.New(log.Writer(), "", log.Flags()),
		NoColor: true,
	}
	r.Use(middleware.RequestLogger(formatter))
	r.Use(middleware.Recoverer)
	r.Use(secureHeaders)
	r.Use(corsMiddleware(s.Config.CORSOrigins))

	r.Get("/", s.handleRoot)

	r.Route("/api/auth", func(ar chi.Router) {
		ar.Post("/register", s.handleRegister)
		ar.Post("/login", s.handleLogin)
		ar.Post("/logout", s.handleLogout)
		ar.Post("/send-reset-otp", s.handleSendResetOtp)
		ar.Post("/reset-password", s.handleResetPassword)

		ar.Group(func(pr chi.Router) {
			pr.Use(s.requireAuth)
			pr.Post("/send-verify-otp", s.handleSendVerifyOtp)
			pr.Post("/verify-account", s.handleVerifyAccount)
			pr.Post("/is-auth", s.handleIsAuth)
		})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(s.requireAuth)
		pr.Get("/api/user/data", s.handleUserData)
	})

	return r
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("API is working."))
}
