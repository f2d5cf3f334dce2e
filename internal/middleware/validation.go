package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/pkg/validation"
)

// BindJSON decodes the JSON body into obj using gin's validator. On failure it writes a 400 and returns false.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		RespondBindingError(c, err)
		return false
	}
	return true
}

// RespondBindingError writes a 400 describing why the request body could not be bound.
func RespondBindingError(c *gin.Context, err error) {
	if missing := validation.MissingFields(err); len(missing) > 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "missing required fields: "+strings.Join(missing, ", ")).
			WithDetails(map[string]interface{}{"missing": missing}).
			WithSeverity(dto.ErrorSeverityWarning)
		if len(missing) == 1 {
			errorDetail.WithField(missing[0])
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	errorDetail := dto.NewErrorDetail(dto.ErrorCodeInvalidRequest, "Invalid request format").
		WithDetails(validation.Messages(err)).
		WithSeverity(dto.ErrorSeverityWarning)
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}
