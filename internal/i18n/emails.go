package i18n

import (
	"strconv"
	"strings"
)

type EmailContent struct {
	Subject string
	Text    string
	HTML    string
}

type emailStrings struct {
	WelcomeSubject string
	WelcomeText    string
	WelcomeHTML    string

	VerificationSubject string
	VerificationText    string
	VerificationHTML    string

	PasswordResetSubject string
	PasswordResetText    string
	PasswordResetHTML    string

	SignInSubject string
	SignInText    string
	SignInHTML    string

	UnknownLocation string
	UnknownDevice   string
}

var emailTranslations = map[string]emailStrings{
	"en": {
		WelcomeSubject: "Welcome",
		WelcomeText:    "Hi {name},\n\nYour account has been created. Please verify your email address to unlock all features.",
		WelcomeHTML: "<p>Hi {name},</p>" +
			"<p>Your account has been created.</p>" +
			"<p>Please verify your email address to unlock all features.</p>",

		VerificationSubject: "Verify your email",
		VerificationText:    "Your verification code is {code}. It is valid for {hours} hour(s).",
		VerificationHTML: "<p>Verify your email</p>" +
			"<p>Use the code below to verify your email address.</p>" +
			"<p><strong>{code}</strong></p>" +
			"<p>The code expires in {hours} hour(s).</p>" +
			"<p>If you did not request this, you can ignore this email.</p>",

		PasswordResetSubject: "Reset your password",
		PasswordResetText:    "Your password reset code is {code}. It is valid for {minutes} minutes.\nIf you did not request this, ignore this email.",
		PasswordResetHTML: "<p>Password reset</p>" +
			"<p>Use the code below to reset your password.</p>" +
			"<p><strong>{code}</strong></p>" +
			"<p>The code expires in {minutes} minutes.</p>" +
			"<p>If you did not request this, ignore this email.</p>",

		SignInSubject: "New sign-in to your account",
		SignInText: "Hi {email},\n\nA new sign-in occurred on {time}.\n\n" +
			"IP: {ip}\nLocation: {location}\nDevice: {device}\n\n" +
			"If this wasn't you, please reset your password.",
		SignInHTML: "<p>Hi {email},</p>" +
			"<p>A new sign-in occurred on <strong>{time}</strong>.</p>" +
			"<ul><li><strong>IP:</strong> {ip}</li>" +
			"<li><strong>Location:</strong> {location}</li>" +
			"<li><strong>Device:</strong> {device}</li></ul>" +
			"<p>If this wasn't you, please reset your password.</p>",

		UnknownLocation: "Unknown location",
		UnknownDevice:   "Unknown device",
	},
	"de": {
		WelcomeSubject: "Willkommen",
		WelcomeText:    "Hallo {name},\n\nIhr Konto wurde erstellt. Bitte verifizieren Sie Ihre E-Mail-Adresse, um alle Funktionen freizuschalten.",
		WelcomeHTML: "<p>Hallo {name},</p>" +
			"<p>Ihr Konto wurde erstellt.</p>" +
			"<p>Bitte verifizieren Sie Ihre E-Mail-Adresse, um alle Funktionen freizuschalten.</p>",

		VerificationSubject: "E-Mail verifizieren",
		VerificationText:    "Ihr Verifizierungscode ist {code}. Er ist {hours} Stunde(n) gültig.",
		VerificationHTML: "<p>E-Mail verifizieren</p>" +
			"<p>Verwenden Sie den untenstehenden Code, um Ihre E-Mail zu verifizieren.</p>" +
			"<p><strong>{code}</strong></p>" +
			"<p>Der Code ist {hours} Stunde(n) gültig.</p>" +
			"<p>Wenn Sie dies nicht angefordert haben, können Sie diese E-Mail ignorieren.</p>",

		PasswordResetSubject: "Passwort zurücksetzen",
		PasswordResetText:    "Ihr Code zum Zurücksetzen des Passworts ist {code}. Er ist {minutes} Minuten gültig.\nWenn Sie dies nicht angefordert haben, ignorieren Sie diese E-Mail.",
		PasswordResetHTML: "<p>Passwort zurücksetzen</p>" +
			"<p>Verwenden Sie den untenstehenden Code, um Ihr Passwort zurückzusetzen.</p>" +
			"<p><strong>{code}</strong></p>" +
			"<p>Der Code ist in {minutes} Minuten abgelaufen.</p>" +
			"<p>Wenn Sie dies nicht angefordert haben, ignorieren Sie diese E-Mail.</p>",

		SignInSubject: "Neue Anmeldung in Ihrem Konto",
		SignInText: "Hallo {email},\n\nEine neue Anmeldung erfolgte am {time}.\n\n" +
			"IP: {ip}\nOrt: {location}\nGerät: {device}\n\n" +
			"Wenn Sie das nicht waren, setzen Sie bitte Ihr Passwort zurück.",
		SignInHTML: "<p>Hallo {email},</p>" +
			"<p>Eine neue Anmeldung erfolgte am <strong>{time}</strong>.</p>" +
			"<ul><li><strong>IP:</strong> {ip}</li>" +
			"<li><strong>Ort:</strong> {location}</li>" +
			"<li><strong>Gerät:</strong> {device}</li></ul>" +
			"<p>Wenn Sie das nicht waren, setzen Sie bitte Ihr Passwort zurück.</p>",

		UnknownLocation: "Unbekannter Ort",
		UnknownDevice:   "Unbekanntes Gerät",
	},
}

func emailStringsForLocale(locale string) emailStrings {
	key := NormalizeLocale(locale)
	if val, ok := emailTranslations[key]; ok {
		return val
	}
	return emailTranslations[DefaultLocale]
}

func renderTemplate(tmpl string, values map[string]string) string {
	if tmpl == "" || len(values) == 0 {
		return tmpl
	}

	replacements := make([]string, 0, len(values)*2)
	for key, value := range values {
		replacements = append(replacements, "{"+key+"}", value)
	}
	return strings.NewReplacer(replacements...).Replace(tmpl)
}

func WelcomeEmail(locale, name string) EmailContent {
	templates := emailStringsForLocale(locale)
	values := map[string]string{"name": name}
	return EmailContent{
		Subject: templates.WelcomeSubject,
		Text:    renderTemplate(templates.WelcomeText, values),
		HTML:    renderTemplate(templates.WelcomeHTML, values),
	}
}

func VerificationEmail(locale, code string, hours int) EmailContent {
	templates := emailStringsForLocale(locale)
	values := map[string]string{
		"code":  code,
		"hours": strconv.Itoa(hours),
	}
	return EmailContent{
		Subject: templates.VerificationSubject,
		Text:    renderTemplate(templates.VerificationText, values),
		HTML:    renderTemplate(templates.VerificationHTML, values),
	}
}

func PasswordResetEmail(locale, code string, minutes int) EmailContent {
	templates := emailStringsForLocale(locale)
	values := map[string]string{
		"code":    code,
		"minutes": strconv.Itoa(minutes),
	}
	return EmailContent{
		Subject: templates.PasswordResetSubject,
		Text:    renderTemplate(templates.PasswordResetText, values),
		HTML:    renderTemplate(templates.PasswordResetHTML, values),
	}
}

func SignInAlertEmail(locale, email, when, ip, location, device string) EmailContent {
	templates := emailStringsForLocale(locale)
	if location == "" {
		location = templates.UnknownLocation
	}
	if device == "" {
		device = templates.UnknownDevice
	}
	values := map[string]string{
		"email":    email,
		"time":     when,
		"ip":       ip,
		"location": location,
		"device":   device,
	}
	return EmailContent{
		Subject: templates.SignInSubject,
		Text:    renderTemplate(templates.SignInText, values),
		HTML:    renderTemplate(templates.SignInHTML, values),
	}
}
