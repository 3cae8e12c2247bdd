package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Domenick1991/civicbook/internal/domain"
	"github.com/Domenick1991/civicbook/internal/logger"
	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Fields maps field names to messages, keeping the first message per field.
func (v ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(v))
	for _, err := range v {
		if _, ok := out[err.Field]; !ok {
			out[err.Field] = err.Message
		}
	}
	return out
}

type RequestValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewRequestValidator(log *logger.Logger) (*RequestValidator, error) {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)

	if err := v.RegisterValidation("slot_label", validateSlotLabel); err != nil {
		return nil, fmt.Errorf("register slot_label validator: %w", err)
	}

	log.Debug("Request validator initialized")

	return &RequestValidator{
		validate: v,
		logger:   log,
	}, nil
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

func validateSlotLabel(fl validator.FieldLevel) bool {
	_, err := domain.ParseSlot(fl.Field().String())
	return err == nil
}

// Contact validates requester fields. Callers normalize first.
func (v *RequestValidator) Contact(c domain.Contact) error {
	return v.check(c)
}

// Details validates the category variant.
func (v *RequestValidator) Details(d domain.Details) error {
	if d == nil || reflect.ValueOf(d).IsNil() {
		return ValidationErrors{{Field: "details", Message: "details is required"}}
	}
	return v.check(d)
}

func (v *RequestValidator) check(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *RequestValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "required_without":
			message = fmt.Sprintf("%s is required when %s is empty", err.Field(), strings.ToLower(err.Param()))
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "gt":
			message = fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
		case "gte":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "datetime":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		case "slot_label":
			message = fmt.Sprintf("%s must be a time range like 09:00-12:00", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	v.logger.Debug("Validation failed", "errors", len(validationErrors))

	return validationErrors
}
