// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the scrubbing applied by Logger before request metadata
// reaches the logs: obvious identifiers in query strings and header values are
// replaced, and sensitive headers are masked entirely. Bodies are never logged.
package middleware

import (
	"net/http"
	"regexp"
	"strings"
)

// Redaction placeholders.
const (
	redactedValue = "[REDACTED]"
	redactedID    = "[REDACTED:id]"
	redactedEmail = "[REDACTED:email]"
	redactedPhone = "[REDACTED:phone]"
)

var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Digits-only so hex runs of a UUID never match.
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// Redactor scrubs request metadata. The zero value is not usable; build one
// with NewRedactor.
type Redactor struct {
	mask map[string]struct{}
}

// NewRedactor returns a Redactor that fully masks Authorization, Cookie,
// Set-Cookie and any extra header named in maskHeaders (case-insensitive).
func NewRedactor(maskHeaders ...string) *Redactor {
	m := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range maskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			m[h] = struct{}{}
		}
	}
	return &Redactor{mask: m}
}

// String replaces UUIDs, e-mail addresses and phone numbers in s.
// UUIDs go first so the phone pattern cannot eat their digit groups.
func (r *Redactor) String(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, redactedID)
	s = emailRE.ReplaceAllString(s, redactedEmail)
	return phoneRE.ReplaceAllString(s, redactedPhone)
}

// Headers flattens h into a loggable map with masked and scrubbed values.
func (r *Redactor) Headers(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if _, ok := r.mask[strings.ToLower(k)]; ok {
			out[k] = redactedValue
			continue
		}
		out[k] = r.String(strings.Join(vv, ", "))
	}
	return out
}
