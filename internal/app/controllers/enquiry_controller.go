package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/services"
	"github.com/yigit/schooldesk/internal/middleware"
	"github.com/yigit/schooldesk/internal/pkg/helpers"
)

// EnquiryController handles the enquiry register endpoints
type EnquiryController struct {
	enquiryService services.EnquiryService
	logger         zerolog.Logger
}

// NewEnquiryController creates a new EnquiryController
func NewEnquiryController(enquiryService services.EnquiryService, logger zerolog.Logger) *EnquiryController {
	return &EnquiryController{
		enquiryService: enquiryService,
		logger:         logger,
	}
}

// CreateEnquiry godoc
// @Summary Submit an admission enquiry
// @Description Stores a new enquiry in pending status and returns its enquiry number. Accepts JSON or form data.
// @Tags enquiries
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body dto.CreateEnquiryRequest true "Enquiry"
// @Success 201 {object} dto.APIResponse{data=models.Enquiry}
// @Failure 400 {object} dto.ErrorResponse "Missing or invalid fields"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /enquiries [post]
func (c *EnquiryController) CreateEnquiry(ctx *gin.Context) {
	var req dto.CreateEnquiryRequest
	if err := ctx.ShouldBind(&req); err != nil {
		c.logger.Warn().Err(err).Msg("Invalid enquiry payload")
		middleware.RespondBindingError(ctx, err)
		return
	}

	enquiry, err := c.enquiryService.CreateEnquiry(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(enquiry, "Enquiry submitted"))
}

// GetEnquiryByNumber godoc
// @Summary Look up an enquiry
// @Description Returns the status of an enquiry by its enquiry number. Contact details are not included.
// @Tags enquiries
// @Produce json
// @Param enquiryNumber path string true "Enquiry number" example(ENQ-1001)
// @Success 200 {object} dto.APIResponse{data=dto.EnquiryStatusView}
// @Failure 404 {object} dto.ErrorResponse "Enquiry not found"
// @Router /enquiries/number/{enquiryNumber} [get]
func (c *EnquiryController) GetEnquiryByNumber(ctx *gin.Context) {
	enquiry, err := c.enquiryService.GetEnquiryByNumber(ctx.Request.Context(), ctx.Param("enquiryNumber"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.NewEnquiryStatusView(enquiry), ""))
}

// GetEnquiryByID godoc
// @Summary Get an enquiry
// @Tags enquiries
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enquiry ID"
// @Success 200 {object} dto.APIResponse{data=models.Enquiry}
// @Failure 400 {object} dto.ErrorResponse "Invalid ID"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "Enquiry not found"
// @Router /enquiries/{id} [get]
func (c *EnquiryController) GetEnquiryByID(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	enquiry, err := c.enquiryService.GetEnquiryByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(enquiry, ""))
}

// ListEnquiries godoc
// @Summary List enquiries
// @Description Lists enquiries newest first, optionally filtered by status
// @Tags enquiries
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter" Enums(pending, reviewing, approved, rejected)
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} dto.APIResponse{data=dto.EnquiryListResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /enquiries [get]
func (c *EnquiryController) ListEnquiries(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	list, err := c.enquiryService.ListEnquiries(ctx.Request.Context(), ctx.Query("status"), page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(list, ""))
}

// UpdateEnquiryStatus godoc
// @Summary Change enquiry status
// @Description Moves an enquiry to a new status. An approved enquiry can be cited by an admission. Admin only.
// @Tags enquiries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enquiry ID"
// @Param request body dto.UpdateStatusRequest true "New status"
// @Success 200 {object} dto.APIResponse{data=models.Enquiry}
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Admin role required"
// @Failure 404 {object} dto.ErrorResponse "Enquiry not found"
// @Router /enquiries/{id}/status [patch]
func (c *EnquiryController) UpdateEnquiryStatus(ctx *gin.Context) {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	var req dto.UpdateStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	enquiry, err := c.enquiryService.SetEnquiryStatus(ctx.Request.Context(), id, req.Status)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewAPIResponse(enquiry, "Enquiry status updated"))
}
