package middleware

import (
	"context"
	"net/http"
	"time"
)

// Deadline bounds the request context. Unlike chi's Timeout it writes
// nothing itself: a store call cut short fails like any other store error.
func Deadline(d time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if d <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
