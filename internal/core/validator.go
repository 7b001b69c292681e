package core

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"omc/internal/types"
)

// ValidationError describes one failed field rule.
type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult collects the rule failures of one struct.
type ValidationResult struct {
	Errors   []ValidationError `json:"errors,omitempty"`
	Warnings []string          `json:"warnings,omitempty"`
}

// IsValid reports whether no rule failed. Warnings do not count.
func (r ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Validator wraps go-playground/validator with the domain tags used on
// inbound payloads.
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a Validator. Field names in results use the json tag.
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("rsin", isRSIN); err != nil {
		logger.Error("failed to register validation tag", "tag", "rsin", "error", err)
	}
	return &Validator{validate: v, logger: logger}
}

// Check runs the struct rules on s and returns every failure.
func (v *Validator) Check(s any) ValidationResult {
	var res ValidationResult
	err := v.validate.Struct(s)
	if err == nil {
		return res
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		v.logger.Error("validation could not run", "error", err)
		res.Errors = append(res.Errors, ValidationError{Code: "invalid", Message: err.Error()})
		return res
	}
	for _, fe := range fieldErrs {
		res.Errors = append(res.Errors, ValidationError{
			Field:   fieldPath(fe.Namespace()),
			Code:    fe.Tag(),
			Message: ruleMessage(fe),
		})
	}
	return res
}

// ValidateStruct is Check expressed as an error: nil when valid, otherwise
// an ErrCodeValidationInvalidEvent AppError listing the failures.
func (v *Validator) ValidateStruct(s any) error {
	res := v.Check(s)
	if res.IsValid() {
		return nil
	}
	return types.NewAppErrorWithDetails(types.ErrCodeValidationInvalidEvent,
		"notification failed validation", nil,
		map[string]any{"errors": res.Errors})
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be an absolute URL"
	case "rsin":
		return "must be a 9 digit RSIN"
	default:
		return fmt.Sprintf("failed rule %q", fe.Tag())
	}
}

// isRSIN accepts the 9 digit organization numbers used as bronorganisatie.
func isRSIN(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 9 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
