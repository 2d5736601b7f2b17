package response

import (
	"github.com/gin-gonic/gin"

	"go-gin-gorm-accounts/internal/domain"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

type Body struct {
	Error   string       `json:"error"`
	Message string       `json:"message"`
	Details []FieldError `json:"details,omitempty"`
}

// Error builds a failure body; an empty msg falls back to the code's default.
func Error(code, msg string) Body {
	if msg == "" {
		msg = CodeMsgMap[code]
	}
	return Body{Error: code, Message: msg}
}

func Validation(details []FieldError) Body {
	b := Error(CodeValidation, "")
	b.Details = details
	return b
}

// Abort stops the chain with a failure body.
func Abort(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, Error(code, msg))
}

// Fail maps err to its status. The error is attached to the context for the
// access log; the client only ever sees the code's default message.
func Fail(c *gin.Context, err error) {
	status, code := StatusOf(domain.KindOf(err))
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, Error(code, ""))
}
