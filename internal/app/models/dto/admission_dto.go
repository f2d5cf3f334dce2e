package dto

import "github.com/yigit/schooldesk/internal/app/models"

// ReviewAdmissionRequest records the staff decision on an admission.
type ReviewAdmissionRequest struct {
	Status      string  `json:"status" binding:"required" example:"approved"`
	AdmissionNo *string `json:"admissionNo" example:"ADM-2025-014"`
}

// AdmissionListResponse is a page of admissions.
type AdmissionListResponse struct {
	Admissions []*models.Admission `json:"admissions"`
	Pagination PaginationInfo      `json:"pagination"`
}

// AdmissionFormFields are the scalar fields of the multipart admission form.
// Flags arrive as checkbox strings and are parsed separately.
type AdmissionFormFields struct {
	EnquiryNumber string `form:"enquiryNumber"`

	StudentName        string `form:"studentName" validate:"required"`
	Class              string `form:"class" validate:"required"`
	Session            string `form:"session" validate:"required"`
	Gender             string `form:"gender" validate:"required"`
	DateOfBirth        string `form:"dateOfBirth" validate:"required"`
	DateOfBirthInWords string `form:"dateOfBirthInWords"`
	BloodGroup         string `form:"bloodGroup"`

	FatherName          string `form:"fatherName" validate:"required_without=MotherName"`
	FatherOccupation    string `form:"fatherOccupation"`
	FatherQualification string `form:"fatherQualification"`
	FatherMobile        string `form:"fatherMobile" validate:"omitempty,mobile"`
	FatherEmail         string `form:"fatherEmail" validate:"omitempty,email"`

	MotherName          string `form:"motherName" validate:"required_without=FatherName"`
	MotherOccupation    string `form:"motherOccupation"`
	MotherQualification string `form:"motherQualification"`
	MotherMobile        string `form:"motherMobile" validate:"omitempty,mobile"`
	MotherEmail         string `form:"motherEmail" validate:"omitempty,email"`

	ResidentialAddress string `form:"residentialAddress" validate:"required"`
	PermanentAddress   string `form:"permanentAddress"`
	City               string `form:"city"`
	State              string `form:"state"`
	PinCode            string `form:"pinCode" validate:"omitempty,pincode"`

	PreviousSchool string `form:"previousSchool"`
	PreviousClass  string `form:"previousClass"`
	PreviousBoard  string `form:"previousBoard"`

	IsSingleGirlChild string `form:"isSingleGirlChild"`
	IsSpeciallyAbled  string `form:"isSpeciallyAbled"`
	IsEWS             string `form:"isEWS"`
	Category          string `form:"category" validate:"omitempty,oneof=SC ST General Handicapped"`
	AadharNo          string `form:"aadharNo"`
}

// UploadedFile is an attachment read from the multipart form.
type UploadedFile struct {
	Filename string
	Data     []byte
}

// AdmissionSubmission is a decoded multipart admission form.
type AdmissionSubmission struct {
	Values map[string][]string
	Files  map[string]*UploadedFile
}
