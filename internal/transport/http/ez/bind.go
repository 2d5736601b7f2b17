package ez

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"go-gin-gorm-accounts/internal/domain"
	resp "go-gin-gorm-accounts/internal/transport/http/response"
)

var setupOnce sync.Once

// Setup teaches gin's validator about Patch fields and the maxbytes rule, and
// makes field errors report json/form names. It must run before the first
// request is bound.
func Setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(tagName)
		v.RegisterCustomTypeFunc(patchValue, domain.Patch[string]{}, domain.Patch[domain.Role]{})
		_ = v.RegisterValidation("maxbytes", maxBytes)
	})
}

func tagName(f reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// maxBytes bounds the encoded length of a string. bcrypt rejects passwords
// over 72 bytes, which max=72 cannot express since it counts runes.
func maxBytes(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= n
}

// patchValue exposes a present, non-null Patch as a pointer to its value.
// Absent and null patches validate as a nil pointer, which omitnil skips.
func patchValue(v reflect.Value) any {
	switch p := v.Interface().(type) {
	case domain.Patch[string]:
		if p.HasValue() {
			return &p.Value
		}
	case domain.Patch[domain.Role]:
		if p.HasValue() {
			s := string(p.Value)
			return &s
		}
	}
	return (*string)(nil)
}

// bindStatus classifies a bind error into the status and details to answer with.
func bindStatus(err error) (int, resp.Body) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge, resp.Error(resp.CodePayloadTooLarge, "")
	}
	return http.StatusBadRequest, resp.Validation(parseBindError(err))
}

func parseBindError(err error) []resp.FieldError {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		out := make([]resp.FieldError, 0, len(ves))
		for _, fe := range ves {
			out = append(out, resp.FieldError{
				Field:   fe.Field(),
				Rule:    fe.Tag(),
				Param:   fe.Param(),
				Message: validationMessage(fe.Tag(), fe.Param()),
			})
		}
		return out
	}

	var syn *json.SyntaxError
	if errors.As(err, &syn) || errors.Is(err, io.ErrUnexpectedEOF) {
		return []resp.FieldError{{Field: "body", Rule: "json", Message: "malformed JSON"}}
	}
	if errors.Is(err, io.EOF) {
		return []resp.FieldError{{Field: "body", Rule: "required", Message: "is required"}}
	}

	var typ *json.UnmarshalTypeError
	if errors.As(err, &typ) {
		field := typ.Field
		if field == "" {
			field = "body"
		}
		return []resp.FieldError{{
			Field:   field,
			Rule:    "type",
			Message: fmt.Sprintf("must be of type %s", typ.Type.String()),
		}}
	}

	return []resp.FieldError{{Field: "request", Rule: "parse", Message: "could not be parsed"}}
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	case "maxbytes":
		return "must be at most " + param + " bytes"
	case "gte":
		return "must be greater than or equal to " + param
	case "lte":
		return "must be less than or equal to " + param
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
