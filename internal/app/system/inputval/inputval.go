// internal/app/system/inputval/inputval.go

// Package inputval validates and sanitizes request payloads.
//
// Struct validation uses go-playground/validator tags; free-text fields
// entered by admins (names, messages) are stripped of any HTML with a
// bluemonday strict policy before they are stored or echoed back.
package inputval

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// Validator bundles the tag validator and the text sanitizer. Construct one
// at startup and share it; both underlying objects are safe for concurrent
// use.
type Validator struct {
	validate *validator.Validate
	strip    *bluemonday.Policy
}

// New builds a Validator.
func New() *Validator {
	return &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		strip:    bluemonday.StrictPolicy(),
	}
}

// Struct validates v and returns a user-facing error naming the first
// offending field, or nil.
func (iv *Validator) Struct(v any) error {
	err := iv.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%s is %s", strings.ToLower(fe.Field()), humanTag(fe))
	}
	return err
}

// Clean strips HTML and trims whitespace from free-text input.
func (iv *Validator) Clean(s string) string {
	return strings.TrimSpace(iv.strip.Sanitize(s))
}

func humanTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "min":
		return "too short (min " + fe.Param() + ")"
	case "max":
		return "too long (max " + fe.Param() + ")"
	case "gt", "gte":
		return "too small"
	default:
		return "invalid"
	}
}
