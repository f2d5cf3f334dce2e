package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/repositories"
	"github.com/yigit/schooldesk/internal/pkg/email"
)

// EnquiryStore is the persistence the enquiry register needs.
type EnquiryStore interface {
	Create(ctx context.Context, e *models.Enquiry) error
	GetByNumber(ctx context.Context, number string) (*models.Enquiry, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Enquiry, error)
	List(ctx context.Context, filter repositories.EnquiryFilter) ([]*models.Enquiry, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) (*models.Enquiry, error)
}

// AdmissionStore is the persistence the admission processor needs.
type AdmissionStore interface {
	Create(ctx context.Context, a *models.Admission) error
	ExistsForEnquiry(ctx context.Context, enquiryNumber string) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Admission, error)
	List(ctx context.Context, filter repositories.AdmissionFilter) ([]*models.Admission, int64, error)
	UpdateReview(ctx context.Context, id uuid.UUID, status models.Status, admissionNo *string) (*models.Admission, error)
}

// StaffStore is the persistence behind staff login and seeding.
type StaffStore interface {
	Create(ctx context.Context, staff *models.StaffUser) error
	GetByEmail(ctx context.Context, email string) (*models.StaffUser, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// Notifier announces new submissions. Implementations must not block on failure.
type Notifier interface {
	NotifyAdmission(ctx context.Context, notice email.AdmissionNotice)
	NotifyEnquiry(ctx context.Context, notice email.EnquiryNotice)
}

var (
	_ EnquiryStore   = (*repositories.EnquiryRepository)(nil)
	_ AdmissionStore = (*repositories.AdmissionRepository)(nil)
	_ StaffStore     = (*repositories.StaffRepository)(nil)
	_ Notifier       = (*email.Notifier)(nil)
)
