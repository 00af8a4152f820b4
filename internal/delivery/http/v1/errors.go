package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var errInvalidRequestBody = errors.New("invalid request body")

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, gin.H{"error": err.Message})
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// abortWithBindingError turns gin binding failures into a 400 with
// per-field descriptors when the validator produced them.
func abortWithBindingError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	fields := make([]fieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fields = append(fields, fieldError{
			Field:   fe.Field(),
			Message: "failed on the '" + fe.Tag() + "' rule",
		})
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":  errInvalidRequestBody.Error(),
		"errors": fields,
	})
}
