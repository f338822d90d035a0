// util/validation_util.go

package util

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	obd_errors "github.com/acemetillidie0001/obd-premium-apps/errors"
	"github.com/acemetillidie0001/obd-premium-apps/model"
)

// FieldError names a failing field and rule. Values are never echoed back.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

type ValidationUtil struct {
	validate *validator.Validate
}

func NewValidationUtil() *ValidationUtil {
	v := validator.New(validator.WithRequiredStructEnabled())
	// same tag gin binds with, so request structs validate identically in both places
	v.SetTagName("binding")
	RegisterValidations(v)
	return &ValidationUtil{validate: v}
}

// RegisterValidations installs the app/action/role tags and JSON field naming
// on v. It is also applied to gin's binding validator.
func RegisterValidations(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("appkey", func(fl validator.FieldLevel) bool {
		return model.AppKey(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("actionkey", func(fl validator.FieldLevel) bool {
		return model.ActionKey(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return model.Role(fl.Field().String()).Valid()
	})
}

// RegisterBindingValidations applies RegisterValidations to gin's validator.
func RegisterBindingValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterValidations(v)
	}
}

// Struct validates s and returns a VALIDATION_ERROR AppError on failure.
func (u *ValidationUtil) Struct(s any) error {
	if err := u.validate.Struct(s); err != nil {
		return BindingError(err)
	}
	return nil
}

// BindingError converts a gin binding or validator error into VALIDATION_ERROR.
func BindingError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return obd_errors.Validation("", ValidationDetails(verrs))
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return obd_errors.Validation("The request body is empty.", nil)
	case errors.As(err, &syntaxErr):
		return obd_errors.Validation("The request body is not valid JSON.", nil)
	case errors.As(err, &typeErr):
		return obd_errors.Validation("", []FieldError{{Field: typeErr.Field, Rule: "type"}})
	default:
		return obd_errors.Validation("", nil)
	}
}

func ValidationDetails(verrs validator.ValidationErrors) []FieldError {
	details := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return details
}
