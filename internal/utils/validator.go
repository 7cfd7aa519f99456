package utils

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/schoolscan/omr-service/internal/errors"
)

var (
	versionCodeRe = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)
	studentCodeRe = regexp.MustCompile(`^[0-9]+$`)
)

// Validator wraps the struct validator with the domain's custom rules.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	validate := validator.New()
	registerCustomValidators(validate)
	return &Validator{validate: validate}
}

// Validate checks struct tags and returns field errors as the shared
// ValidationErrors type.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("choice_label", validateChoiceLabel)
	validate.RegisterValidation("version_code", validateVersionCode)
	validate.RegisterValidation("student_code", validateStudentCode)

	// Report json field names in error messages.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func validateChoiceLabel(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return len(value) == 1 && value[0] >= 'A' && value[0] <= 'F'
}

func validateVersionCode(fl validator.FieldLevel) bool {
	return versionCodeRe.MatchString(fl.Field().String())
}

func validateStudentCode(fl validator.FieldLevel) bool {
	return studentCodeRe.MatchString(fl.Field().String())
}
