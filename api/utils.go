package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"hermannm.dev/devlog/log"
	"hermannm.dev/findash/analysis"
	"hermannm.dev/wrap"
)

func sendJSON(res http.ResponseWriter, value any) {
	res.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(res).Encode(value); err != nil {
		sendServerError(res, err, "failed to serialize response")
	}
}

func sendClientError(res http.ResponseWriter, err error, message string) {
	sendError(res, err, message, http.StatusBadRequest)
}

func sendServerError(res http.ResponseWriter, err error, message string) {
	log.ErrorCause(err, message)
	sendError(res, err, message, http.StatusInternalServerError)
}

// sendLoadError responds with the loader's typed error message, which names the failing source,
// missing columns or invalid row.
func sendLoadError(res http.ResponseWriter, err error) {
	sendServerError(res, err, "failed to load dataset")
}

func sendError(res http.ResponseWriter, err error, message string, statusCode int) {
	if err != nil {
		if message == "" {
			message = err.Error()
		} else {
			message = wrap.Error(err, message).Error()
		}
	}

	http.Error(res, message, statusCode)
}

func isInvalidFilter(err error) bool {
	var filterErr *analysis.InvalidFilterError
	return errors.As(err, &filterErr)
}
