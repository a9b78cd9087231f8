package mux

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
	"hpblackjack-server/pkg/engine"
	"hpblackjack-server/pkg/session"
)

const maxRows = 100
const defaultRows = 20

var errConflict = errors.New("the game changed since it was loaded, refresh and try again")
var errProfileExists = errors.New("a profile already exists")
var errNoProfile = errors.New("create a profile first")

func parseRows(r *http.Request) (int, error) {
	rows := defaultRows
	if rowsStr := r.FormValue("rows"); rowsStr != "" {
		val, err := strconv.Atoi(rowsStr)
		if err != nil {
			return 0, err
		}

		if val <= 0 {
			return 0, errors.New("rows must be greater than zero")
		}

		if val > maxRows {
			return 0, fmt.Errorf("rows cannot be greater than %d", maxRows)
		}

		rows = val
	}

	return rows, nil
}

func decodeRequest(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	if ct := r.Header.Get("Content-Type"); ct != "application/json" && ct != "text/json" {
		writeJSONError(w, http.StatusUnsupportedMediaType, nil)
		return false
	}

	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("could not write JSON response")
	}
}

type errorResponse struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// statusFor maps an engine or store error to an HTTP status
// The returned error is what the client is allowed to see.
func statusFor(err error) (int, error) {
	switch {
	case engine.IsUserError(err):
		return http.StatusBadRequest, err
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound, errNoProfile
	case errors.Is(err, session.ErrDuplicateKey):
		return http.StatusConflict, errProfileExists
	case errors.Is(err, session.ErrConcurrencyConflict):
		return http.StatusConflict, errConflict
	case errors.Is(err, engine.ErrPersistence):
		return http.StatusServiceUnavailable, engine.ErrPersistence
	}

	return http.StatusInternalServerError, err
}

func writeError(w http.ResponseWriter, err error) {
	statusCode, clientErr := statusFor(err)
	if statusCode >= 500 {
		logrus.WithField("statusCode", statusCode).Error(err)
	}

	writeJSON(w, statusCode, newErrorResponse(statusCode, clientErr))
}

// newErrorResponse hides the details of server errors
func newErrorResponse(statusCode int, err error) errorResponse {
	msg := http.StatusText(statusCode)
	if err != nil && (statusCode < 500 || err == engine.ErrPersistence) {
		msg = err.Error()
	}

	return errorResponse{
		Message:    msg,
		StatusCode: statusCode,
	}
}

func writeJSONError(w http.ResponseWriter, statusCode int, err error) {
	if statusCode >= 500 {
		logrus.WithField("statusCode", statusCode).Error(err)
	}

	writeJSON(w, statusCode, newErrorResponse(statusCode, err))
}
