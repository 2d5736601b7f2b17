package response

import (
	"net/http"

	"go-gin-gorm-accounts/internal/domain"
)

// Error codes carried in the "error" field of every failure body.
const (
	CodeValidation         = "ValidationError"
	CodeEmailTaken         = "EmailTaken"
	CodeInvalidCredentials = "InvalidCredentials"
	CodeInvalidToken       = "InvalidOrExpiredToken"
	CodeForbidden          = "Forbidden"
	CodeNotFound           = "NotFound"
	CodeInternal           = "InternalError"

	CodePayloadTooLarge = "PayloadTooLarge"
	CodeTooManyRequests = "TooManyRequests"
	CodeTimeout         = "Timeout"
	CodeUnavailable     = "ServiceUnavailable"
)

// CodeMsgMap holds the default message of each code.
var CodeMsgMap = map[string]string{
	CodeValidation:         "Invalid request",
	CodeEmailTaken:         "Email is already registered",
	CodeInvalidCredentials: "Invalid email or password",
	CodeInvalidToken:       "Invalid or expired token",
	CodeForbidden:          "Forbidden",
	CodeNotFound:           "Not found",
	CodeInternal:           "Internal server error",
	CodePayloadTooLarge:    "Request body too large",
	CodeTooManyRequests:    "Too many requests",
	CodeTimeout:            "Request timed out",
	CodeUnavailable:        "Service unavailable",
}

// StatusOf maps an error kind to its HTTP status and code. Store failures are
// reported as plain internal errors.
func StatusOf(k domain.Kind) (int, string) {
	switch k {
	case domain.KindValidation:
		return http.StatusBadRequest, CodeValidation
	case domain.KindEmailTaken:
		return http.StatusConflict, CodeEmailTaken
	case domain.KindInvalidCredentials:
		return http.StatusUnauthorized, CodeInvalidCredentials
	case domain.KindInvalidToken:
		return http.StatusUnauthorized, CodeInvalidToken
	case domain.KindForbidden:
		return http.StatusForbidden, CodeForbidden
	case domain.KindNotFound:
		return http.StatusNotFound, CodeNotFound
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
