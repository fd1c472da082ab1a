package api

import (
	"bytes"
	"encoding/json"
	"net/http"
)

const contentTypeJSON = "application/json; charset=utf-8"

// setHeaders adds the content type and CORS headers every response carries.
func setHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", contentTypeJSON)
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type")
}

// errorResponse is the body of every error reply.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes v as the response body. Non-ASCII and HTML characters
// are written as is.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		writeError(w, http.StatusInternalServerError, MessageInternalError)
		return
	}

	setHeaders(w)
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, message string) {
	setHeaders(w)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: message})
}

func writeEmpty(w http.ResponseWriter, status int) {
	setHeaders(w)
	w.WriteHeader(status)
}
