package util

import (
	"fmt"
	"net/http"
)

// Error is a loggable error with both an operator-facing log message
// and a simple message that is safe to surface to API consumers.
type Error struct {
	LogMsg     string
	SimpleMsg  string
	Response   string
	URL        string
	HTTPStatus int
}

// Error implements the error interface
func (e Error) Error() string {
	if e.SimpleMsg != "" {
		return e.SimpleMsg
	}
	return e.LogMsg
}

// Log writes the full detail of the error to the log, prefixed if
// needed, and returns the error for bubbling up
func (e Error) Log(context LogContext, prefix string) error {
	message := e.LogMsg
	if message == "" {
		message = e.SimpleMsg
	}
	if prefix != "" {
		message = prefix + ": " + message
	}
	if e.URL != "" {
		message += fmt.Sprintf(" url=%s", e.URL)
	}
	if e.HTTPStatus != 0 {
		message += fmt.Sprintf(" status=%d", e.HTTPStatus)
	}
	if e.Response != "" {
		message += "\nresponse: " + e.Response
	}
	LogAlert(context, message)
	return e
}

// HTTPErr is an error that maps directly onto an HTTP response status
type HTTPErr struct {
	Status  int
	Message string
}

// Error implements the error interface
func (e HTTPErr) Error() string {
	return e.Message
}

// HTTPError writes an error response in a consistent format
func HTTPError(request *http.Request, writer http.ResponseWriter, context LogContext, message string, status int) {
	writer.Header().Set("Content-Type", "text/plain")
	writer.WriteHeader(status)
	fmt.Fprintf(writer, "%d: %s", status, message)
}
