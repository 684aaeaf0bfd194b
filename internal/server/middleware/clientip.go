package middleware

import (
	"context"
	"net"
	"net/http"
)

// ClientIP stores the request's client IP in the context so code below the
// HTTP layer (the audit log) can read it. Mount after RealIP so forwarded
// addresses are already resolved.
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientIPKey, ip)))
	})
}
