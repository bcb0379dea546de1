package user

import (
	"errors"
	"strings"
)

// ValidationError reports a missing or malformed required field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Message
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate is the store level presence check. Format and range rules live
// at the API boundary.
func (f Fields) Validate() error {
	switch {
	case strings.TrimSpace(f.Name) == "":
		return &ValidationError{Field: "name", Message: "is required"}
	case strings.TrimSpace(f.Email) == "":
		return &ValidationError{Field: "email", Message: "is required"}
	case f.Age == 0:
		return &ValidationError{Field: "age", Message: "is required"}
	case strings.TrimSpace(f.City) == "":
		return &ValidationError{Field: "city", Message: "is required"}
	}

	return nil
}

// Normalize trims surrounding whitespace from the text fields.
func (f Fields) Normalize() Fields {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.City = strings.TrimSpace(f.City)

	return f
}
