package common

import (
	"encoding/json"
	"net/http"
)

// OKResponse is the body of operations with nothing to report
type OKResponse struct {
	OK bool `json:"ok"`
}

// RespondJSON sends data as the JSON response body
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondEmpty sends a body-less response that still declares JSON
func RespondEmpty(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
}
