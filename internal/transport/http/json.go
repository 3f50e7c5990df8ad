package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"assessment-service/internal/domain"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// readJSON decodes a bounded request body; malformed payloads are invalid input.
func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: msg, Code: code})
}

// respond maps an error to its status code. Server faults are logged with the
// request id and reported without detail.
func respond(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	if domain.IsServerFault(err) {
		logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestID(r)),
			zap.Error(err),
		)
		code := "INTERNAL"
		if errors.Is(err, domain.ErrCorruptSession) {
			code = "CORRUPT_SESSION"
		}
		writeError(w, http.StatusInternalServerError, code, "internal server error")
		return
	}
	status, code := statusFor(err)
	writeError(w, status, code, err.Error())
}
