package middleware

import (
	"net/http"

	"voidstate/pkg/auth"
	"voidstate/pkg/common"
)

// ClientIdentity resolves the caller from the trusted proxy header and
// stores it in the request context.
func ClientIdentity(header string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := common.WithClientID(r.Context(), auth.ClientIdentity(r, header))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
