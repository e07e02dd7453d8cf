package i18n

import (
	"net/http"
	"strings"
)

const DefaultLocale = "en"

var supportedLocales = map[string]bool{
	"en": true,
	"de": true,
}

// LocaleFromRequest picks the email locale from the Accept-Language header.
func LocaleFromRequest(r *http.Request) string {
	if r == nil {
		return DefaultLocale
	}
	return NormalizeLocale(r.Header.Get("Accept-Language"))
}

// NormalizeLocale maps an Accept-Language header onto a supported locale,
// taking the first supported language tag in header order. Quality weights
// are ignored.
func NormalizeLocale(header string) string {
	for _, part := range strings.Split(header, ",") {
		lang, _, _ := strings.Cut(part, ";")
		lang = strings.ToLower(strings.TrimSpace(lang))
		if base, _, found := strings.Cut(lang, "-"); found {
			lang = base
		}
		if supportedLocales[lang] {
			return lang
		}
	}
	return DefaultLocale
}
