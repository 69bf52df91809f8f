package auth

import (
	"net/http"
	"strings"

	"voidstate/domain/core/valueobjects"
)

// DefaultClientIPHeader is the header set by the edge proxy in front of the
// service.
const DefaultClientIPHeader = "CF-Connecting-IP"

// ClientIdentity returns the caller's identity from the trusted proxy header.
// The connection's remote address is never used: behind a proxy it names the
// proxy. Callers without the header share the "unknown" identity.
func ClientIdentity(r *http.Request, header string) valueobjects.ClientID {
	if header == "" {
		header = DefaultClientIPHeader
	}
	value := r.Header.Get(header)

	// X-Forwarded-For style lists carry the original client first
	if i := strings.IndexByte(value, ','); i >= 0 {
		value = value[:i]
	}
	return valueobjects.NewClientID(strings.TrimSpace(value))
}
