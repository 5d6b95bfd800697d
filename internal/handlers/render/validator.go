package render

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(useJSONTagNames)

	// Money validated as number, so gte/lte work on it
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

	return v
}

func useJSONTagNames(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	// skip if tag key says it should be ignored
	if name == "-" {
		return ""
	}
	return name
}

func decimalValue(v reflect.Value) any {
	d, ok := v.Interface().(decimal.Decimal)
	if !ok {
		return nil
	}
	f, _ := d.Float64()
	return f
}

// Validate struct with the package validator
func Validate(s any) error {
	return validate.Struct(s)
}

// Render validation errors with field messages
// Not validator errors rendered as bad request with message only
func ValidationErrors(w http.ResponseWriter, message string, err error) {
	if message == "" {
		message = MessageValidation
	}

	response := ErrorResponse{Error: message}

	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		response.Fields = make(map[string]string, len(errs))
		for _, fieldError := range errs {
			response.Fields[fieldError.Field()] = fieldMessage(fieldError)
		}
	}

	JSONWithStatus(w, response, http.StatusBadRequest)
}

func fieldMessage(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return "campo obrigatório"
	case "email":
		return "email inválido"
	case "min":
		if isString {
			return fmt.Sprintf("deve ter pelo menos %s caracteres", fe.Param())
		}
		return fmt.Sprintf("deve ser no mínimo %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("deve ter no máximo %s caracteres", fe.Param())
		}
		return fmt.Sprintf("deve ser no máximo %s", fe.Param())
	case "gte":
		return fmt.Sprintf("deve ser maior ou igual a %s", fe.Param())
	default:
		return "valor inválido"
	}
}
