package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the standardized API error payload. Message carries the
// stable bracket token (e.g. "[[error:no-privileges]]") that clients match
// against; Details is free-form context for humans.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError is the application error type. For forum errors Code holds the
// stable machine token and Message the bracket-tag wire form.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Stable error tokens surfaced verbatim to callers.
const (
	TokenNoTopic          = "no-topic"
	TokenNoPost           = "no-post"
	TokenNoPrivileges     = "no-privileges"
	TokenTopicNotQuestion = "topic-not-question"
	TokenInvalidTid       = "invalid-tid"
)

// NewForumError builds an AppError whose message is the bracket-tag wire
// form of a stable token.
func NewForumError(token string) *AppError {
	return &AppError{
		Code:    token,
		Message: fmt.Sprintf("[[error:%s]]", token),
	}
}

// NewForumErrorWithCause is NewForumError with wrapped context (e.g. which
// tid in a batch failed). The cause ends up in ErrorResponse.Details, never
// in Message.
func NewForumErrorWithCause(token string, cause error) *AppError {
	err := NewForumError(token)
	err.Err = cause
	return err
}

func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
		Err:     err,
	}
}

// IsForumError reports whether err carries the given stable token.
func IsForumError(err error, token string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == token
}

// StatusForError maps an AppError to an HTTP status code.
func StatusForError(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case TokenNoTopic, TokenNoPost, "NOT_FOUND":
		return fiber.StatusNotFound
	case TokenNoPrivileges, "UNAUTHORIZED":
		return fiber.StatusForbidden
	case TokenTopicNotQuestion, TokenInvalidTid, "VALIDATION_ERROR":
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError writes a standardized error response.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Message: appErr.Message,
			Code:    appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Message: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
