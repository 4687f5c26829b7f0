package handlers

import (
	"fmt"

	"github.com/gin-gonic/gin"

	appErrors "github.com/charlesng35/bellcenter/pkg/errors"
	"github.com/charlesng35/bellcenter/pkg/response"
	appValidator "github.com/charlesng35/bellcenter/pkg/validator"
)

// bindAndValidate binds the JSON payload into dest and runs struct validation rules.
// When validation fails, an error response is automatically written and false is returned.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		response.Error(c, validationFailure(err))
		return false
	}

	return true
}

// validationFailure turns validator output into a field-keyed 400.
func validationFailure(err error) *appErrors.AppError {
	ve, ok := err.(appValidator.ValidationErrors)
	if !ok || len(ve) == 0 {
		return appErrors.NewBadRequest("invalid request payload")
	}

	details := make(map[string][]string, len(ve))
	for _, failure := range ve {
		details[failure.Field] = append(details[failure.Field], validationMessage(failure))
	}
	return appErrors.NewValidation(details)
}

func validationMessage(failure appValidator.ValidationError) string {
	switch failure.Tag {
	case "required":
		return "is required"
	case "uuid":
		return "must be a valid identifier"
	case "max":
		return fmt.Sprintf("must contain at most %s entries", failure.Param)
	default:
		if failure.Param != "" {
			return fmt.Sprintf("failed validation: %s=%s", failure.Tag, failure.Param)
		}
		return fmt.Sprintf("failed validation: %s", failure.Tag)
	}
}
