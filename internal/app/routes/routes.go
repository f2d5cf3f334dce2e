package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/schooldesk/internal/app/controllers"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	enquiryController *controllers.EnquiryController,
	admissionController *controllers.AdmissionController,
	documentController *controllers.DocumentController,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	v1.POST("/auth/login", authController.Login)

	v1.POST("/enquiries", enquiryController.CreateEnquiry)
	v1.GET("/enquiries/number/:enquiryNumber", enquiryController.GetEnquiryByNumber)

	v1.POST("/admissions", admissionController.SubmitAdmission)

	// --- Staff routes ---
	staff := v1.Group("")
	staff.Use(authMiddleware.JWTAuth())
	{
		enquiries := staff.Group("/enquiries")
		{
			enquiries.GET("", enquiryController.ListEnquiries)
			enquiries.GET("/:id", enquiryController.GetEnquiryByID)
			enquiries.PATCH("/:id/status", authMiddleware.RoleRequired(models.RoleAdmin), enquiryController.UpdateEnquiryStatus)
		}

		admissions := staff.Group("/admissions")
		{
			admissions.GET("", admissionController.ListAdmissions)
			admissions.GET("/export", admissionController.ExportAdmissions)
			admissions.GET("/:id", admissionController.GetAdmissionByID)
			admissions.PATCH("/:id/review", authMiddleware.RoleRequired(models.RoleAdmin), admissionController.ReviewAdmission)
		}

		staff.POST("/generate-pdf", documentController.GeneratePDF)
	}
}
