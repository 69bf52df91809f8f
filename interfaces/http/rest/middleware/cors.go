package middleware

import (
	"net/http"

	"voidstate/pkg/common"

	"github.com/go-chi/cors"
)

const (
	allowedMethods = "GET, POST, OPTIONS"
	allowedHeaders = "Content-Type"
)

// CORS opens every endpoint to every origin. go-chi/cors negotiates browser
// requests first, but the fixed headers set afterwards overwrite everything
// it sets except Vary, so its visible contribution is the Vary headers that
// keep shared caches from mixing responses across origins. The fixed headers
// are sent on every response, including calls that carry no Origin.
func CORS() func(next http.Handler) http.Handler {
	negotiate := cors.Handler(cors.Options{
		AllowedOrigins:     []string{"*"},
		AllowedMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:     []string{"Content-Type"},
		AllowCredentials:   false,
		OptionsPassthrough: true,
	})

	return func(next http.Handler) http.Handler {
		fixed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", "*")
			h.Set("Access-Control-Allow-Methods", allowedMethods)
			h.Set("Access-Control-Allow-Headers", allowedHeaders)
			h.Set("Content-Type", "application/json")
			next.ServeHTTP(w, r)
		})
		return negotiate(fixed)
	}
}

// Preflight answers OPTIONS on any path with 200 and an empty body.
func Preflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			common.RespondEmpty(w, http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
