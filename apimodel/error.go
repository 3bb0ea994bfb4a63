package apimodel

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
)

type ErrorMessage struct {
	ErrStatusCode int    `json:"status_code"`
	ErrMessage    string `json:"message"`
}

func (e *ErrorMessage) StatusCode() int {
	return e.ErrStatusCode
}

func (e *ErrorMessage) Error() string {
	if e.ErrMessage != "" {
		return strconv.Itoa(e.ErrStatusCode) + ":" + e.ErrMessage
	}
	return strconv.Itoa(e.ErrStatusCode)
}

func (e ErrorMessage) SendError(w http.ResponseWriter) {
	message := e.ErrMessage
	if message == "" {
		switch e.ErrStatusCode {
		case http.StatusOK:
			message = "Ok"
		case http.StatusNotFound:
			message = "Page not found"
		case http.StatusMethodNotAllowed:
			message = "Method not allowed"
		case http.StatusForbidden:
			message = "Forbidden"
		case http.StatusBadRequest:
			message = "Bad request"
		default:
			message = "Internal error"
		}
	}
	e.ErrMessage = message
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.ErrStatusCode)
	err := json.NewEncoder(w).Encode(e)
	if err != nil {
		logrus.Panicf("error when encoding error: %v", err)
	}
}
