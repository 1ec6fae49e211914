package utils

import "net/http"

// AppError adalah error dengan status code HTTP. Details opsional, dipakai
// misalnya untuk membawa daftar konflik pada response 409.
type AppError struct {
	Code    int         `json:"-"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewValidationError(message string) *AppError {
	return &AppError{Code: http.StatusBadRequest, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Code: http.StatusNotFound, Message: message}
}

func NewConflictError(message string, details interface{}) *AppError {
	return &AppError{Code: http.StatusConflict, Message: message, Details: details}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Code: http.StatusForbidden, Message: message}
}

func NewInternalError(message string) *AppError {
	return &AppError{Code: http.StatusInternalServerError, Message: message}
}
