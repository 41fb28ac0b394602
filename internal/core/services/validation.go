package services

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/sm8ta/patient_records/internal/core/domain"
)

// basicEmail matches something@something.something.
var basicEmail = regexp.MustCompile(`\S+@\S+\.\S+`)

var fieldLabels = map[string]string{
	"name":           "Name",
	"email":          "Email",
	"address":        "Address",
	"dateOfBirth":    "Date of birth",
	"registeredDate": "Registered date",
}

// NewValidator returns a validator that reports fields by their JSON names
// and understands the notblank and basic_email tags.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("basic_email", func(fl validator.FieldLevel) bool {
		return basicEmail.MatchString(fl.Field().String())
	})

	return v
}

// ValidatePatient checks a form before any network call. Every failing
// field gets its own message.
func ValidatePatient(v *validator.Validate, req domain.PatientRequest) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		name := fe.Field()
		if _, seen := fields[name]; seen {
			continue
		}
		label := fieldLabels[name]
		switch fe.Tag() {
		case "required", "notblank":
			fields[name] = label + " is required"
		default:
			fields[name] = label + " is invalid"
		}
	}
	return &domain.ValidationError{Fields: fields}
}
