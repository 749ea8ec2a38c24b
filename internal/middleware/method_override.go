package middleware

import (
	"net/http"
	"strings"
)

// MethodOverrideHeader lets form-only clients tunnel PUT, PATCH and DELETE through POST.
const MethodOverrideHeader = "X-HTTP-Method-Override"

var overridable = map[string]bool{
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// MethodOverride rewrites a POST to the method named by the X-HTTP-Method-Override
// header or the _method form field. It wraps the router because gin picks the route
// before any gin middleware runs.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if m := overrideMethod(r); overridable[m] {
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}

func overrideMethod(r *http.Request) string {
	if m := r.Header.Get(MethodOverrideHeader); m != "" {
		return strings.ToUpper(strings.TrimSpace(m))
	}
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "application/x-www-form-urlencoded") && !strings.HasPrefix(ct, "multipart/form-data") {
		return ""
	}
	return strings.ToUpper(strings.TrimSpace(r.FormValue("_method")))
}
