package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/vo-tracker-api/internal/dto"
	"github.com/noah-isme/vo-tracker-api/internal/models"
	appErrors "github.com/noah-isme/vo-tracker-api/pkg/errors"
)

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

// New returns a validator that reports JSON/form field names, knows the
// domain enum tags and unwraps dto.Optional values.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	_ = v.RegisterValidation("vostatus", func(fl validator.FieldLevel) bool {
		return models.VOStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("submissiontype", func(fl validator.FieldLevel) bool {
		return models.SubmissionType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("filestage", func(fl validator.FieldLevel) bool {
		return models.FileStage(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("paymentstatus", func(fl validator.FieldLevel) bool {
		return models.PaymentStatus(fl.Field().String()).Valid()
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if o, ok := field.Interface().(interface{ ValidationValue() interface{} }); ok {
			return o.ValidationValue()
		}
		return nil
	}, dto.OptionalTypes()...)
	return v
}

// Errors accumulates field violations so every problem is reported at once.
type Errors struct {
	items []appErrors.FieldError
}

// Add records a violation for field.
func (e *Errors) Add(field, reason string) {
	e.items = append(e.items, appErrors.FieldError{Field: field, Reason: reason})
}

// Struct runs tag validation on payload and records every failure.
func (e *Errors) Struct(v *validator.Validate, payload interface{}) {
	err := v.Struct(payload)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		e.Add("", err.Error())
		return
	}
	for _, fe := range fieldErrs {
		e.Add(fe.Field(), reason(fe))
	}
}

// Empty reports whether no violations were recorded.
func (e *Errors) Empty() bool {
	return len(e.items) == 0
}

// Items returns the recorded violations.
func (e *Errors) Items() []appErrors.FieldError {
	return e.items
}

// Err returns a validation error carrying every violation, or nil.
func (e *Errors) Err(message string) error {
	if e.Empty() {
		return nil
	}
	return appErrors.Validation(message, e.items)
}

// Amount parses an optional non-negative monetary value. Missing or blank
// input yields a null decimal.
func (e *Errors) Amount(field string, raw *dto.Numeric) decimal.NullDecimal {
	if raw == nil || raw.Blank() {
		return decimal.NullDecimal{}
	}
	value, err := raw.Decimal()
	if err != nil {
		e.Add(field, "must be a number")
		return decimal.NullDecimal{}
	}
	if value.IsNegative() {
		e.Add(field, "must be greater than or equal to 0")
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: value, Valid: true}
}

// Percentage parses an optional value constrained to 0..100.
func (e *Errors) Percentage(field string, raw *dto.Numeric) decimal.NullDecimal {
	before := len(e.items)
	value := e.Amount(field, raw)
	if len(e.items) == before && value.Valid && value.Decimal.GreaterThan(decimal.NewFromInt(100)) {
		e.Add(field, "must be between 0 and 100")
		return decimal.NullDecimal{}
	}
	return value
}

// Date parses a calendar date. Blank input is reported as required.
func (e *Errors) Date(field, raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		e.Add(field, "is required")
		return time.Time{}, false
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		e.Add(field, "must be a valid date (YYYY-MM-DD)")
		return time.Time{}, false
	}
	return parsed, true
}

// OptionalDate parses a nullable date; blank input yields nil.
func (e *Errors) OptionalDate(field string, raw *string) *time.Time {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	parsed, ok := e.Date(field, *raw)
	if !ok {
		return nil
	}
	return &parsed
}

// ParseDate accepts ISO dates and RFC 3339 timestamps, truncated to the day in UTC.
func ParseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "vostatus":
		return "must be one of: " + joinEnum(models.VOStatuses())
	case "submissiontype":
		return "must be one of: " + joinEnum(models.SubmissionTypes())
	case "filestage":
		return "must be one of: " + joinEnum(models.FileStages())
	case "paymentstatus":
		return "must be one of: " + joinEnum(models.PaymentStatuses())
	}
	return fmt.Sprintf("failed %s validation", fe.Tag())
}

func joinEnum[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
