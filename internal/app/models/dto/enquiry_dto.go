package dto

import (
	"time"

	"github.com/yigit/schooldesk/internal/app/models"
)

// CreateEnquiryRequest is the public enquiry form.
// Values are trimmed before the validate rules run.
type CreateEnquiryRequest struct {
	StudentName  string `json:"studentName" form:"studentName" validate:"required" example:"Asha Verma"`
	ParentName   string `json:"parentName" form:"parentName" validate:"required" example:"Rakesh Verma"`
	ClassApplied string `json:"classApplied" form:"classApplied" validate:"required" example:"5"`
	MobileNumber string `json:"mobileNumber" form:"mobileNumber" validate:"required,mobile" example:"9876543210"`
	Location     string `json:"location" form:"location" validate:"required" example:"Lucknow"`
	Email        string `json:"email" form:"email" validate:"omitempty,email"`
	Message      string `json:"message" form:"message" validate:"max=2000"`
}

// UpdateStatusRequest moves an enquiry or admission to a new status.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required" example:"approved"`
}

// EnquiryListResponse is a page of enquiries.
type EnquiryListResponse struct {
	Enquiries  []*models.Enquiry `json:"enquiries"`
	Pagination PaginationInfo    `json:"pagination"`
}

// EnquiryStatusView is what the public lookup returns. Contact details stay with staff.
type EnquiryStatusView struct {
	EnquiryNumber string        `json:"enquiryNumber" example:"ENQ-1001"`
	StudentName   string        `json:"studentName" example:"Asha Verma"`
	ClassApplied  string        `json:"classApplied" example:"5"`
	Status        models.Status `json:"status" example:"pending"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// NewEnquiryStatusView trims an enquiry down to its public fields.
func NewEnquiryStatusView(e *models.Enquiry) EnquiryStatusView {
	return EnquiryStatusView{
		EnquiryNumber: e.EnquiryNumber,
		StudentName:   e.StudentName,
		ClassApplied:  e.ClassApplied,
		Status:        e.Status,
		CreatedAt:     e.CreatedAt,
	}
}
