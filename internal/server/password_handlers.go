package server

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"authsvc/internal/auth"
	"authsvc/internal/i18n"
)

type sendResetOtpRequest struct {
	Email string `json:"email"`
}

func (s *Server) handleSendResetOtp(w http.ResponseWriter, r *http.Request) {
	var req sendResetOtpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if !auth.ValidEmail(req.Email) {
		writeError(w, http.StatusBadRequest, "Invalid email format.")
		return
	}

	ctx := r.Context()
	locale := i18n.LocaleFromRequest(r)
	emailKey := strings.ToLower(req.Email)
	cooldownKey := fmt.Sprintf("reset_otp_cooldown:%s", emailKey)

	if ttl := s.RateLimiter.CooldownTTL(ctx, cooldownKey); ttl > 0 {
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"success":  false,
			"message":  "Please wait before requesting another code.",
			"cooldown": int64(ttl.Seconds()),
		})
		return
	}

	ip := clientIP(r, s.trustedProxies)
	if locked, ttl, err := s.RateLimiter.RegisterResetAttempt(ctx, req.Email, ip); err != nil {
		log.Printf("send-reset-otp: rate limit check failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to process request.")
		return
	} else if locked {
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"success":  false,
			"message":  "Too many reset requests. Try again later.",
			"cooldown": int64(ttl.Seconds()),
		})
		return
	}

	if err := s.Auth.SendResetOtp(ctx, req.Email, locale); err != nil {
		writeAuthError(w, err)
		return
	}
	s.RateLimiter.SetCooldown(ctx, cooldownKey, auth.EmailCooldown)

	writeSuccess(w, http.StatusOK, "Password reset code sent to your email.", nil)
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	req.OTP = strings.TrimSpace(req.OTP)
	if !auth.ValidEmail(req.Email) || len(req.OTP) != 6 {
		writeError(w, http.StatusBadRequest, "Invalid request data.")
		return
	}

	if err := s.Auth.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		writeAuthError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Password has been reset successfully.", nil)
}
