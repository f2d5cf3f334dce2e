package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/logger"
)

// --- Central Error Handling ---

// StatusFor maps an application error to its HTTP status code and error code.
func StatusFor(err error) (int, dto.ErrorCode) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.ErrorCodeExpiredToken
	case errors.Is(err, apperrors.ErrTokenInvalid):
		return http.StatusUnauthorized, dto.ErrorCodeInvalidToken
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, dto.ErrorCodeUnauthorized
	case errors.Is(err, apperrors.ErrAccountDisabled):
		return http.StatusForbidden, dto.ErrorCodeForbidden
	case errors.Is(err, apperrors.ErrValidationFailed):
		return http.StatusBadRequest, dto.ErrorCodeValidationFailed
	case errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.ErrorCodeInvalidRequest
	case errors.Is(err, apperrors.ErrPreconditionFailed):
		return http.StatusBadRequest, dto.ErrorCodePreconditionFailed
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.ErrorCodeResourceNotFound
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.ErrorCodeResourceAlreadyExists
	case errors.Is(err, apperrors.ErrUpstreamFailure):
		return http.StatusInternalServerError, dto.ErrorCodeExternalServiceError
	default:
		return http.StatusInternalServerError, dto.ErrorCodeInternalServer
	}
}

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	status, code := StatusFor(err)
	respondError(c, status, code, err)
}

// HandleAPIErrorWithStatus writes err with a fixed status, keeping its classification code.
func HandleAPIErrorWithStatus(c *gin.Context, status int, err error) {
	_, code := StatusFor(err)
	respondError(c, status, code, err)
}

func respondError(c *gin.Context, status int, code dto.ErrorCode, err error) {
	message := "Internal server error"
	if status < http.StatusInternalServerError {
		message = apperrors.PublicMessage(err, err.Error())
	} else {
		logger.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("Request failed")
	}

	errorDetail := dto.NewErrorDetail(code, message)

	var ce *apperrors.CustomError
	if status < http.StatusInternalServerError && errors.As(err, &ce) && len(ce.Details) > 0 {
		errorDetail = errorDetail.WithDetails(ce.Details)
	}
	if status < http.StatusInternalServerError {
		errorDetail = errorDetail.WithSeverity(dto.ErrorSeverityWarning)
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(errorDetail))
}
