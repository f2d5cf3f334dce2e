package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/services"
	"github.com/yigit/schooldesk/internal/middleware"
)

// DocumentController serves printable documents
type DocumentController struct {
	documentService services.DocumentService
	logger          zerolog.Logger
}

// NewDocumentController creates a new DocumentController
func NewDocumentController(documentService services.DocumentService, logger zerolog.Logger) *DocumentController {
	return &DocumentController{
		documentService: documentService,
		logger:          logger,
	}
}

// GeneratePDF godoc
// @Summary Generate a PDF
// @Description Renders a printable enquiry or admission form
// @Tags documents
// @Accept json
// @Produce application/pdf
// @Security BearerAuth
// @Param request body dto.GenerateDocumentRequest true "Record to render"
// @Success 200 {file} file
// @Failure 400 {object} dto.ErrorResponse "Invalid type or id"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Record not found"
// @Failure 500 {object} dto.ErrorResponse "Rendering failed"
// @Router /generate-pdf [post]
func (c *DocumentController) GeneratePDF(ctx *gin.Context) {
	var req dto.GenerateDocumentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	doc, err := c.documentService.GenerateDocument(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	sendDocument(ctx, doc)
}

// sendDocument writes a generated file as a download.
func sendDocument(ctx *gin.Context, doc *dto.GeneratedDocument) {
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	if doc.Pages > 0 {
		ctx.Header("X-Page-Count", strconv.Itoa(doc.Pages))
	}
	ctx.Data(http.StatusOK, doc.ContentType, doc.Data)
}
