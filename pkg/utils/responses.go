package utils

import (
	"encoding/json"
	"errors"
	"net/http"
)

type Response struct {
	Status  bool   `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// ResponseJSON writes JSON response with custom status code
func ResponseJSON(w http.ResponseWriter, httpCode int, status bool, code, message string, data, errs any) {
	response := Response{
		Status:  status,
		Code:    code,
		Message: message,
		Data:    data,
		Errors:  errs,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpCode)
	json.NewEncoder(w).Encode(response)
}

// ------------- Success responses -------------

// returns 200 OK
func ResponseSuccess(w http.ResponseWriter, message string, data any) {
	ResponseJSON(w, http.StatusOK, true, "", message, data, nil)
}

// returns 201 Created
func ResponseCreated(w http.ResponseWriter, message string, data any) {
	ResponseJSON(w, http.StatusCreated, true, "", message, data, nil)
}

// ------------- Error responses -------------

// returns 400 Bad Request
func ResponseBadRequest(w http.ResponseWriter, message string, errs any) {
	ResponseJSON(w, http.StatusBadRequest, false, "BAD_REQUEST", message, nil, errs)
}

// returns 401 Unauthorized
func ResponseUnauthorized(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusUnauthorized, false, "UNAUTHORIZED", message, nil, nil)
}

// returns 403 Forbidden
func ResponseForbidden(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusForbidden, false, "FORBIDDEN", message, nil, nil)
}

// returns 404 Not Found
func ResponseNotFound(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusNotFound, false, "NOT_FOUND", message, nil, nil)
}

// returns 409 Conflict with the reason code of the lost race
func ResponseConflict(w http.ResponseWriter, code, message string) {
	ResponseJSON(w, http.StatusConflict, false, code, message, nil, nil)
}

// returns 422 with the reason code of the failed precondition
func ResponseUnprocessable(w http.ResponseWriter, code, message string) {
	ResponseJSON(w, http.StatusUnprocessableEntity, false, code, message, nil, nil)
}

// returns 500 Internal Server Error
func ResponseInternalError(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusInternalServerError, false, "INTERNAL", message, nil, nil)
}

// ResponseAppError maps a coded application error onto the wire envelope.
func ResponseAppError(w http.ResponseWriter, httpCode int, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		ResponseJSON(w, httpCode, false, appErr.Code, appErr.Message, nil, nil)
		return
	}
	ResponseInternalError(w, "Internal server error")
}
