package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"lendly/pkg/logger"
	"lendly/pkg/model"
)

var handoverTimeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

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

type ItemValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewItemValidator(log *logger.Logger) *ItemValidator {
	v := validator.New()

	if err := v.RegisterValidation("handover_time", validateHandoverTime); err != nil {
		log.Fatal("Failed to register 'handover_time' validator", "error", err)
	}

	return &ItemValidator{
		validate: v,
		logger:   log,
	}
}

func validateHandoverTime(fl validator.FieldLevel) bool {
	return handoverTimeRegex.MatchString(fl.Field().String())
}

func (v *ItemValidator) Validate(item *model.Item) error {
	if err := v.validate.Struct(item); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return v.validateAvailability(&item.Availability)
}

func (v *ItemValidator) ValidateUpdate(update *model.ItemUpdate) error {
	if err := v.validate.Struct(update); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if update.Availability != nil {
		return v.validateAvailability(update.Availability)
	}
	return nil
}

// validateAvailability enforces the variant-specific shape the struct tags
// cannot express.
func (v *ItemValidator) validateAvailability(a *model.Availability) error {
	switch a.Type {
	case model.AvailabilityAlways:
		return nil

	case model.AvailabilityDateRange:
		if a.StartDate != nil && a.EndDate != nil && a.EndDate.Before(*a.StartDate) {
			return ValidationErrors{
				ValidationError{
					Field:   "Availability",
					Message: "availability window end must not be before its start",
				},
			}
		}
		return nil

	case model.AvailabilityRecurring:
		if len(a.DaysOfWeek) == 0 {
			return ValidationErrors{
				ValidationError{
					Field:   "Availability",
					Message: "recurring availability requires at least one weekday",
				},
			}
		}
		return nil

	default:
		return ValidationErrors{
			ValidationError{
				Field:   "Availability",
				Message: fmt.Sprintf("unknown availability type: %s", a.Type),
			},
		}
	}
}

func (v *ItemValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "handover_time":
			message = fmt.Sprintf("%s must be a local time in HH:MM format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
