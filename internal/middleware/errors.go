package middleware

import (
	"encoding/json"
	"net/http"
)

// writeError writes the API error body shared with the handlers:
// {"error": "<message>", "code": "<CODE>"}.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}{message, code})
}
