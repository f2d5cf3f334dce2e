// Package controllers handles HTTP request handling
package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
)

// parseIDParam parses a UUID path parameter
func parseIDParam(ctx *gin.Context, paramName string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Param(paramName))
	if err != nil {
		return uuid.Nil, apperrors.NewValidationError(paramName + " must be a valid UUID")
	}
	return id, nil
}
