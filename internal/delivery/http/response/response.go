// Package response renders the JSON bodies shared by every handler.
package response

import (
	"github.com/labstack/echo/v4"
)

// MessageBody is the body of every success response that carries no data.
type MessageBody struct {
	Message string `json:"message"`
}

// ErrorBody is the body of every error response.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// Message writes {"message": message}.
func Message(c echo.Context, statusCode int, message string) error {
	return c.JSON(statusCode, MessageBody{Message: message})
}

// Error writes an ErrorBody.
func Error(c echo.Context, statusCode int, errorCode, message, details string) error {
	return c.JSON(statusCode, ErrorBody{
		Message: message,
		Code:    errorCode,
		Details: details,
	})
}
