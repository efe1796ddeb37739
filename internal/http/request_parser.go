package http

import (
	"net/http"
	"strings"

	"expensetracker/internal/tracker"
)

// draftFields are the form fields read on create.
var draftFields = []string{
	tracker.FieldKind,
	tracker.FieldTitle,
	tracker.FieldDate,
	tracker.FieldAmount,
}

// RequireMethod writes a 405 and returns false unless r uses one of methods.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	MethodNotAllowedError(strings.Join(methods, ", ")).Write(w)
	return false
}

// isHTMX reports whether the request was issued by htmx.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// sanitizeInput removes control characters except tab, newline and carriage
// return. Surrounding whitespace is kept: titles are stored as typed.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		if r == 127 {
			return -1
		}
		return r
	}, s)
}

// postedFields returns the draft fields present in the parsed form, sanitized.
func postedFields(r *http.Request) map[string]string {
	out := make(map[string]string, len(draftFields))
	for _, name := range draftFields {
		if _, ok := r.PostForm[name]; !ok {
			continue
		}
		out[name] = sanitizeInput(r.PostForm.Get(name))
	}
	return out
}
