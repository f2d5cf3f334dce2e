package models

import (
	"time"

	"github.com/google/uuid"
)

// Enquiry is the lightweight admission interest record submitted by a prospective parent.
type Enquiry struct {
	ID            uuid.UUID `db:"id" json:"id"`
	EnquiryNumber string    `db:"enquiry_number" json:"enquiryNumber"`
	StudentName   string    `db:"student_name" json:"studentName"`
	ParentName    string    `db:"parent_name" json:"parentName"`
	ClassApplied  string    `db:"class_applied" json:"classApplied"`
	MobileNumber  string    `db:"mobile_number" json:"mobileNumber"`
	Location      string    `db:"location" json:"location"`
	Email         string    `db:"email" json:"email,omitempty"`
	Message       string    `db:"message" json:"message,omitempty"`
	Status        Status    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}
