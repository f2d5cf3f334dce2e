package models

import (
	"time"

	"github.com/google/uuid"
)

// ParentDetails is one of the mirrored father/mother blocks of an admission form.
type ParentDetails struct {
	Name          string `json:"name"`
	Occupation    string `json:"occupation,omitempty"`
	Qualification string `json:"qualification,omitempty"`
	Mobile        string `json:"mobile,omitempty"`
	Email         string `json:"email,omitempty"`
}

// Sibling is a brother or sister listed on the form.
type Sibling struct {
	Name   string `json:"name"`
	Age    string `json:"age,omitempty"`
	School string `json:"school,omitempty"`
}

// AcademicRecord is one subject line of the previous year's results.
// Percentage is always computed server side.
type AcademicRecord struct {
	Subject       string  `json:"subject"`
	MaxMarks      float64 `json:"maxMarks"`
	MarksObtained float64 `json:"marksObtained"`
	Percentage    float64 `json:"percentage"`
	Remarks       string  `json:"remarks,omitempty"`
}

// Admission is the full application, created only against an approved enquiry.
type Admission struct {
	ID            uuid.UUID `db:"id" json:"id"`
	EnquiryNumber string    `db:"enquiry_number" json:"enquiryNumber"`
	AdmissionNo   *string   `db:"admission_no" json:"admissionNo,omitempty"`

	StudentName        string `db:"student_name" json:"studentName"`
	Class              string `db:"class" json:"class"`
	Session            string `db:"session" json:"session"`
	Gender             string `db:"gender" json:"gender"`
	DateOfBirth        string `db:"date_of_birth" json:"dateOfBirth"`
	DateOfBirthInWords string `db:"date_of_birth_in_words" json:"dateOfBirthInWords,omitempty"`
	BloodGroup         string `db:"blood_group" json:"bloodGroup,omitempty"`

	Father ParentDetails `json:"father"`
	Mother ParentDetails `json:"mother"`

	ResidentialAddress string `db:"residential_address" json:"residentialAddress"`
	PermanentAddress   string `db:"permanent_address" json:"permanentAddress,omitempty"`
	City               string `db:"city" json:"city,omitempty"`
	State              string `db:"state" json:"state,omitempty"`
	PinCode            string `db:"pin_code" json:"pinCode,omitempty"`

	PreviousSchool string `db:"previous_school" json:"previousSchool,omitempty"`
	PreviousClass  string `db:"previous_class" json:"previousClass,omitempty"`
	PreviousBoard  string `db:"previous_board" json:"previousBoard,omitempty"`

	IsSingleGirlChild bool     `db:"is_single_girl_child" json:"isSingleGirlChild"`
	IsSpeciallyAbled  bool     `db:"is_specially_abled" json:"isSpeciallyAbled"`
	IsEWS             bool     `db:"is_ews" json:"isEWS"`
	Category          Category `db:"category" json:"category,omitempty"`
	AadharNo          string   `db:"aadhar_no" json:"aadharNo,omitempty"`

	Siblings  []Sibling        `db:"siblings" json:"siblings"`
	Academics []AcademicRecord `db:"academics" json:"academics"`

	PhotoURL                 string `db:"photo_url" json:"photoUrl,omitempty"`
	PhotoPublicID            string `db:"photo_public_id" json:"photoPublicId,omitempty"`
	BirthCertificateURL      string `db:"birth_certificate_url" json:"birthCertificateUrl,omitempty"`
	BirthCertificatePublicID string `db:"birth_certificate_public_id" json:"birthCertificatePublicId,omitempty"`

	Status    Status    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
