package validation

import (
	"errors"
	"fmt"
	"medchat/internal/repository/db"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxTitleLength is the longest conversation title accepted, in characters
const MaxTitleLength = 200

// RequestValidator validates incoming requests using struct tags
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator creates a RequestValidator that reports fields by
// their JSON names and understands the notblank, role and language tags
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return db.Role(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("language", func(fl validator.FieldLevel) bool {
		return db.Language(fl.Field().String()).Valid()
	})

	return &RequestValidator{validate: v}
}

// ValidateStruct validates s against its validate tags and returns the first
// violation as a readable error
func (v *RequestValidator) ValidateStruct(s any) error {
	return describe(v.validate.Struct(s), "")
}

// ValidateTitle validates an optional conversation title
func (v *RequestValidator) ValidateTitle(title string) error {
	return describe(v.validate.Var(title, fmt.Sprintf("max=%d", MaxTitleLength)), "title")
}

// ValidateLanguageHint validates an optional language code ("", "en" or "hi")
func (v *RequestValidator) ValidateLanguageHint(lang string) error {
	return describe(v.validate.Var(lang, "omitempty,language"), "language")
}

// ValidateID validates a required identifier
func (v *RequestValidator) ValidateID(field, id string) error {
	return describe(v.validate.Var(id, "notblank"), field)
}

func describe(err error, field string) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	name := fe.Field()
	if name == "" {
		name = field
	}

	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Errorf("%s is required", name)
	case "oneof":
		return fmt.Errorf("%s must be one of: %s", name, fe.Param())
	case "role":
		return fmt.Errorf("%s must be one of: %s %s", name, db.RoleDoctor, db.RolePatient)
	case "language":
		return fmt.Errorf("%s must be one of: %s %s", name, db.LanguageEnglish, db.LanguageHindi)
	case "max":
		return fmt.Errorf("%s must be at most %s characters", name, fe.Param())
	case "url":
		return fmt.Errorf("%s must be a valid URL", name)
	default:
		return fmt.Errorf("%s is invalid", name)
	}
}
