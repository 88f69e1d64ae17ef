package validator

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// Moroccan or international phone: optional +, 9 to 15 digits, spaces allowed.
var phoneRegex = regexp.MustCompile(`^\+?[0-9 ]{9,20}$`)

// Loose IBAN shape: country code, check digits, 11 to 30 alphanumerics.
var ibanRegex = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z0-9]{11,30}$`)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phoneRegex.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	_ = validate.RegisterValidation("iban", func(fl validator.FieldLevel) bool {
		v := strings.ToUpper(strings.ReplaceAll(fl.Field().String(), " ", ""))
		return ibanRegex.MatchString(v)
	})
}

// Validate struct fields
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}
