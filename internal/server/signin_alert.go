package server

import (
	"log"
	"net/http"
	"time"

	"authsvc/internal/auth"
	"authsvc/internal/i18n"
)

// sendSignInAlert emails the user about a new sign-in. Best-effort: a failed
// send is logged and never fails the login.
func (s *Server) sendSignInAlert(r *http.Request, user *auth.User) {
	if s.Mailer == nil {
		return
	}

	content := i18n.SignInAlertEmail(
		i18n.LocaleFromRequest(r),
		user.Email,
		time.Now().UTC().Format(time.RFC1123),
		clientIP(r, s.trustedProxies),
		deriveLocation(r),
		r.UserAgent(),
	)

	if err := s.Mailer.Send(r.Context(), user.Email, content.Subject, content.Text, content.HTML); err != nil {
		log.Printf("sign-in alert to %s failed: %v", user.Email, err)
	}
}
