package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"admin-backoffice/internal/entities"
)

// код привилегии: сегменты через двоеточие, например system:user:list
var permCodeRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]*(:[a-z0-9_*-]+)+$`)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("perm_code", isPermissionCode); err != nil {
		return err
	}
	if err := v.RegisterValidation("data_scope", isDataScope); err != nil {
		return err
	}
	if err := v.RegisterValidation("custom_email", isGoodEmailFormat); err != nil {
		return err
	}
	return nil
}

func isPermissionCode(fl validator.FieldLevel) bool {
	return permCodeRegex.MatchString(fl.Field().String())
}

func isDataScope(fl validator.FieldLevel) bool {
	return entities.DataScope(fl.Field().Int()).Valid()
}

func isGoodEmailFormat(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}
