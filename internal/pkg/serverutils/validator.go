package serverutils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"neuroviz-server/internal/apperror"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation and folds the failures
// into a single validation error for the HTTP error handler.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperror.Internal("request validation failed", err)
	}

	var fields []string
	for _, fieldErr := range validationErrors {
		fields = append(fields, fmt.Sprintf("%s (%s)", fieldErr.Field(), fieldErr.Tag()))
	}
	return apperror.Validation("invalid request: %s", strings.Join(fields, ", "))
}
