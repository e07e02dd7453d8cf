package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"authsvc/internal/auth"
	"authsvc/internal/i18n"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	ctx := r.Context()
	locale := i18n.LocaleFromRequest(r)
	ip := clientIP(r, s.trustedProxies)

	if locked, ttl, err := s.RateLimiter.RegisterRegisterAttempt(ctx, req.Email, ip); err != nil {
		log.Printf("register: rate limit check failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Registration throttled.")
		return
	} else if locked {
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"success":  false,
			"message":  "Too many signup attempts. Try again later.",
			"cooldown": int64(ttl.Seconds()),
		})
		return
	}

	user, token, err := s.Auth.Register(ctx, req.Name, req.Email, req.Password, locale)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	auth.SetTokenCookie(w, token, time.Now().Add(s.Tokens.TTL()))
	writeSuccess(w, http.StatusCreated, "Registration successful.", map[string]interface{}{
		"user": user,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	ctx := r.Context()
	ip := clientIP(r, s.trustedProxies)

	if s.RateLimiter.IsIPBanned(ctx, ip) {
		writeError(w, http.StatusForbidden, "Too many failed attempts. Try again later.")
		return
	}

	user, token, err := s.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			_ = s.RateLimiter.RegisterLoginFailure(ctx, ip)
		}
		writeAuthError(w, err)
		return
	}

	s.RateLimiter.ResetLogin(ctx, ip)
	auth.SetTokenCookie(w, token, time.Now().Add(s.Tokens.TTL()))
	s.sendSignInAlert(r, user)

	writeSuccess(w, http.StatusOK, "Login successful.", map[string]interface{}{
		"user": user.Public(),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	// Tokens are stateless; logout only tells the client to drop the cookie.
	auth.ClearTokenCookie(w)
	writeSuccess(w, http.StatusOK, "Logged out.", nil)
}

func (s *Server) handleSendVerifyOtp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := userIDFromContext(ctx)
	locale := i18n.LocaleFromRequest(r)

	cooldownKey := fmt.Sprintf("verify_otp_cooldown:%s", userID)
	if ttl := s.RateLimiter.CooldownTTL(ctx, cooldownKey); ttl > 0 {
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"success":  false,
			"message":  "Please wait before requesting another code.",
			"cooldown": int64(ttl.Seconds()),
		})
		return
	}

	if err := s.Auth.SendVerifyOtp(ctx, userID, locale); err != nil {
		writeAuthError(w, err)
		return
	}
	s.RateLimiter.SetCooldown(ctx, cooldownKey, auth.EmailCooldown)

	writeSuccess(w, http.StatusOK, "Verification code sent to your email.", nil)
}

type verifyAccountRequest struct {
	OTP string `json:"otp"`
}

func (s *Server) handleVerifyAccount(w http.ResponseWriter, r *http.Request) {
	var req verifyAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	req.OTP = strings.TrimSpace(req.OTP)
	if len(req.OTP) != 6 {
		writeError(w, http.StatusBadRequest, "Invalid code.")
		return
	}

	ctx := r.Context()
	userID := userIDFromContext(ctx)

	locked, ttl, err := s.RateLimiter.RegisterVerifyAttempt(ctx, userID)
	if err != nil {
		log.Printf("verify-account: rate limit check failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to verify account.")
		return
	}
	if locked {
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"success":  false,
			"message":  "Too many verification attempts. Try again later.",
			"cooldown": int64(ttl.Seconds()),
		})
		return
	}

	if err := s.Auth.VerifyEmail(ctx, userID, req.OTP); err != nil {
		writeAuthError(w, err)
		return
	}
	s.RateLimiter.ResetVerify(ctx, userID)

	writeSuccess(w, http.StatusOK, "Email verified successfully.", nil)
}

func (s *Server) handleIsAuth(w http.ResponseWriter, r *http.Request) {
	user, err := s.Auth.GetAuthDetails(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Authenticated.", map[string]interface{}{
		"user": user,
	})
}

func (s *Server) handleUserData(w http.ResponseWriter, r *http.Request) {
	user, err := s.Auth.GetAuthDetails(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeAuthError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "User data retrieved.", map[string]interface{}{
		"userData": user,
	})
}
