package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

var registerTagNames sync.Once

// UseJSONFieldNames makes gin's validator report fields by their json name.
func UseJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(sf reflect.StructField) string {
			name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return sf.Name
			}
			return name
		})
	})
}

// BindJSON binds and validates the body into out. On failure it writes a
// 400 whose message names the first offending field.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	UseJSONFieldNames()

	err := ctx.ShouldBindJSON(out)

	if err != nil {
		message, details := parseBindError(err)
		RespondBadRequest(ctx, message, details)

		return false
	}

	return true
}

func parseBindError(err error) (string, interface{}) {
	// validator errors (struct bind tags)
	var validatorError validator.ValidationErrors

	if errors.As(err, &validatorError) {
		fields := make([]FieldError, 0, len(validatorError))

		for _, fieldError := range validatorError {
			rule := fieldError.Tag()
			param := fieldError.Param()

			fields = append(fields, FieldError{
				Field:   fieldError.Field(),
				Rule:    rule,
				Param:   param,
				Message: validationMessage(rule, param),
			})
		}

		first := fields[0]
		return first.Field + " " + first.Message, gin.H{"fields": fields}
	}

	// in the event of bad json
	var syntaxError *json.SyntaxError

	if errors.As(err, &syntaxError) || errors.Is(err, io.ErrUnexpectedEOF) {
		return "Invalid JSON body", gin.H{"json": "invalid_json_syntax"}
	}

	if errors.Is(err, io.EOF) {
		return "Request body is required", gin.H{"json": "empty_body"}
	}

	// in the event of a type mismatch
	var unmatchedTypeError *json.UnmarshalTypeError

	if errors.As(err, &unmatchedTypeError) {
		field := strings.TrimSpace(unmatchedTypeError.Field)
		message := fmt.Sprintf("must be of type %s", unmatchedTypeError.Type.String())

		return field + " " + message, gin.H{
			"json": "invalid_json_type",
			"fields": []FieldError{
				{Field: field, Rule: "type", Message: message},
			},
		}
	}

	var maxBytesError *http.MaxBytesError

	if errors.As(err, &maxBytesError) {
		return "Request body too large", gin.H{"limit": maxBytesError.Limit}
	}

	// final fallback if the error could not be deciphered
	return "Invalid request body", gin.H{"reason": err.Error()}
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param
	case "max":
		return "must be at most " + param
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}
		return "failed " + rule + " validation"
	}
}
