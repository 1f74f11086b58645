// internal/utils/validator.go
package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("product_type", validateProductType)
	validate.RegisterValidation("stock_type", validateStockType)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateProductType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "standard", "perfiles", "chapas_conformadas":
		return true
	}
	return false
}

func validateStockType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "quantity", "availability":
		return true
	}
	return false
}

type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "product_type":
		return "Product type must be standard, perfiles or chapas_conformadas"
	case "stock_type":
		return "Stock type must be quantity or availability"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	default:
		return e.Field() + " is invalid"
	}
}
