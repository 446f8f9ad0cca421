package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"classifyd/internal/pipeline"
	"classifyd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// kinded errors carry an error class for the payload.
type kinded interface{ Kind() string }

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status, Kind: kind})
}

// writeServiceError maps err to a status code and writes it. Errors that do
// not carry a status are server faults and their text is not disclosed.
func writeServiceError(w http.ResponseWriter, err error) int {
	var he HTTPError
	if errors.As(err, &he) {
		var kind string
		var k kinded
		if errors.As(err, &k) {
			kind = k.Kind()
		}
		writeJSONError(w, he.StatusCode(), kind, he.Error())
		return he.StatusCode()
	}
	writeJSONError(w, http.StatusInternalServerError, pipeline.KindInference, "Prediction failed.")
	return http.StatusInternalServerError
}
