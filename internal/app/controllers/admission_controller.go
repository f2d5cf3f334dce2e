package controllers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/services"
	"github.com/yigit/schooldesk/internal/middleware"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/helpers"
)

// AdmissionController handles admission submission and review
type AdmissionController struct {
	admissionService services.AdmissionService
	maxUploadBytes   int64
	logger           zerolog.Logger
}

// NewAdmissionController creates a new AdmissionController
func NewAdmissionController(admissionService services.AdmissionService, maxUploadBytes int64, logger zerolog.Logger) *AdmissionController {
	return &AdmissionController{
		admissionService: admissionService,
		maxUploadBytes:   maxUploadBytes,
		logger:           logger,
	}
}

// SubmitAdmission godoc
// @Summary Submit an admission form
// @Description Creates an admission for an approved enquiry. Repeated groups use siblings[i].name and academics[i].subject style keys.
// @Tags admissions
// @Accept multipart/form-data
// @Produce json
// @Param enquiryNumber formData string true "Approved enquiry number"
// @Param studentName formData string true "Student name"
// @Param class formData string true "Class applied for"
// @Param session formData string true "Academic session"
// @Param gender formData string true "Gender"
// @Param dateOfBirth formData string true "Date of birth"
// @Param fatherName formData string false "Father's name (father or mother required)"
// @Param motherName formData string false "Mother's name (father or mother required)"
// @Param residentialAddress formData string true "Residential address"
// @Param category formData string false "Category" Enums(SC, ST, General, Handicapped)
// @Param photo formData file false "Student photo"
// @Param birthCertificate formData file false "Birth certificate"
// @Success 201 {object} dto.APIResponse{data=models.Admission}
// @Failure 400 {object} dto.ErrorResponse "Invalid form, unknown enquiry or enquiry not approved"
// @Failure 409 {object} dto.ErrorResponse "Admission already submitted for this enquiry"
// @Failure 500 {object} dto.ErrorResponse "Attachment upload or storage failure"
// @Router /admissions [post]
func (c *AdmissionController) SubmitAdmission(ctx *gin.Context) {
	form, err := c.readSubmission(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Str("stage", "parse").Msg("Invalid admission form")
		middleware.HandleAPIError(ctx, err)
		return
	}

	admission, err := c.admissionService.SubmitAdmission(ctx.Request.Context(), form)
	if err != nil {
		// the cited enquiry is part of the input, so an unknown one is a bad request
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			middleware.HandleAPIErrorWithStatus(ctx, http.StatusBadRequest, err)
			return
		}
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(admission, "Admission submitted"))
}

// readSubmission parses a multipart or urlencoded admission form.
func (c *AdmissionController) readSubmission(ctx *gin.Context) (*dto.AdmissionSubmission, error) {
	if c.maxUploadBytes > 0 {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, c.maxUploadBytes)
	}

	err := ctx.Request.ParseMultipartForm(32 << 20)
	if errors.Is(err, http.ErrNotMultipart) {
		err = ctx.Request.ParseForm()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperrors.NewBadRequestError(fmt.Sprintf("form exceeds %d bytes", tooLarge.Limit))
		}
		return nil, apperrors.NewBadRequestError("malformed form data")
	}

	submission := &dto.AdmissionSubmission{
		Values: ctx.Request.PostForm,
		Files:  map[string]*dto.UploadedFile{},
	}
	if ctx.Request.MultipartForm == nil {
		return submission, nil
	}

	for _, field := range []string{services.FieldPhoto, services.FieldBirthCertificate} {
		headers := ctx.Request.MultipartForm.File[field]
		if len(headers) == 0 {
			continue
		}
		data, err := readFormFile(headers[0])
		if err != nil {
			return nil, apperrors.NewBadRequestError("could not read " + field)
		}
		submission.Files[field] = &dto.UploadedFile{Filename: headers[0].Filename, Data: data}
	}
	return submission, nil
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// ListAdmissions godoc
// @Summary List admissions
// @Description Lists admissions newest first, optionally filtered by status
// @Tags admissions
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter" Enums(pending, reviewing, approved, rejected)
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} dto.APIResponse{data=dto.AdmissionListResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /admissions [get]
func (c *AdmissionController) ListAdmissions(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	list, err := c.admissionService.ListAdmissions(ctx.Request.Context(), ctx.Query("status"), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(list, ""))
}

// GetAdmissionByID godoc
// @Summary Get an admission
// @Tags admissions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Admission ID"
// @Success 200 {object} dto.APIResponse{data=models.Admission}
// @Failure 400 {object} dto.ErrorResponse "Invalid ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Admission not found"
// @Router /admissions/{id} [get]
func (c *AdmissionController) GetAdmissionByID(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	admission, err := c.admissionService.GetAdmissionByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(admission, ""))
}

// ReviewAdmission godoc
// @Summary Review an admission
// @Description Sets the admission status and optionally assigns an admission number
// @Tags admissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Admission ID"
// @Param request body dto.ReviewAdmissionRequest true "Review decision"
// @Success 200 {object} dto.APIResponse{data=models.Admission}
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Admission not found"
// @Router /admissions/{id}/review [patch]
func (c *AdmissionController) ReviewAdmission(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.ReviewAdmissionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	admission, err := c.admissionService.ReviewAdmission(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(admission, "Admission reviewed"))
}

// ExportAdmissions godoc
// @Summary Export admissions
// @Description Downloads admissions as an xlsx spreadsheet, optionally filtered by status
// @Tags admissions
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param status query string false "Status filter" Enums(pending, reviewing, approved, rejected)
// @Success 200 {file} file
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /admissions/export [get]
func (c *AdmissionController) ExportAdmissions(ctx *gin.Context) {
	doc, err := c.admissionService.ExportAdmissions(ctx.Request.Context(), ctx.Query("status"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	sendDocument(ctx, doc)
}
