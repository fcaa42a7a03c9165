package domain

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gosuda/agrotrack/internal/apperr"
)

// MsgInvalidForm is the summary message of every validation failure raised
// by this package.
const MsgInvalidForm = "Los datos del formulario no son válidos"

// v is the package-level singleton validator. Field names are reported by
// their JSON name so the field map matches what the backend sends.
var v = newValidator() //nolint:gochecknoglobals // validator caches struct metadata

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return val
}

// Validate checks s against its validate tags. Failures are returned as an
// apperr validation error whose field map holds one message per broken rule.
func Validate(s any) error {
	fields, err := fieldErrors(s)
	if err != nil {
		return err
	}
	if len(fields) > 0 {
		return apperr.NewValidation(MsgInvalidForm, fields)
	}
	return nil
}

func fieldErrors(s any) (map[string][]string, error) {
	err := v.Struct(s)
	if err == nil {
		return nil, nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, fmt.Errorf("domain.Validate: %w", err)
	}

	fields := make(map[string][]string, len(ve))
	for _, fe := range ve {
		name := fieldPath(fe.Namespace())
		fields[name] = append(fields[name], message(fe))
	}
	return fields, nil
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "Este campo es requerido"
	case "len":
		return fmt.Sprintf("Debe tener exactamente %s caracteres", fe.Param())
	case "min":
		if isString {
			return fmt.Sprintf("Debe tener al menos %s caracteres", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("Debe incluir al menos %s elemento(s)", fe.Param())
		}
		return fmt.Sprintf("Debe ser al menos %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("No puede exceder %s caracteres", fe.Param())
		}
		return fmt.Sprintf("No puede ser mayor a %s", fe.Param())
	case "email":
		return "Debe ser un correo electrónico válido"
	case "numeric":
		return "Solo puede contener dígitos"
	case "gt":
		return fmt.Sprintf("Debe ser mayor a %s", fe.Param())
	case "gte":
		if fe.Param() == "0" {
			return "No puede ser negativo"
		}
		return fmt.Sprintf("Debe ser mayor o igual a %s", fe.Param())
	case "oneof":
		return "Debe ser uno de: " + strings.Join(strings.Fields(fe.Param()), ", ")
	default:
		return "Valor no válido"
	}
}
