package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/app/repositories"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/email"
	"github.com/yigit/schooldesk/internal/pkg/helpers"
	"github.com/yigit/schooldesk/internal/pkg/metrics"
	"github.com/yigit/schooldesk/internal/pkg/validation"
)

// EnquiryService defines the enquiry register operations
type EnquiryService interface {
	CreateEnquiry(ctx context.Context, req *dto.CreateEnquiryRequest) (*models.Enquiry, error)
	GetEnquiryByNumber(ctx context.Context, number string) (*models.Enquiry, error)
	GetEnquiryByID(ctx context.Context, id uuid.UUID) (*models.Enquiry, error)
	ListEnquiries(ctx context.Context, status string, page, size int) (*dto.EnquiryListResponse, error)
	SetEnquiryStatus(ctx context.Context, id uuid.UUID, status string) (*models.Enquiry, error)
	WaitForNotifications(timeout time.Duration) bool
}

// enquiryServiceImpl implements the EnquiryService interface
type enquiryServiceImpl struct {
	enquiries EnquiryStore
	notifier  Notifier
	metrics   *metrics.Metrics
	logger    zerolog.Logger
	bg        background
}

// NewEnquiryService creates a new enquiry service instance
func NewEnquiryService(enquiries EnquiryStore, notifier Notifier, m *metrics.Metrics, logger zerolog.Logger) EnquiryService {
	return &enquiryServiceImpl{
		enquiries: enquiries,
		notifier:  notifier,
		metrics:   m,
		logger:    logger,
	}
}

// validationFailure turns a validator error into an InvalidInput error naming the offending fields.
func validationFailure(err error) error {
	if missing := validation.MissingFields(err); len(missing) > 0 {
		return apperrors.NewCustomError(apperrors.ErrValidationFailed,
			"missing required fields: "+strings.Join(missing, ", ")).
			WithDetails(map[string]interface{}{"missing": missing})
	}
	msgs := validation.Messages(err)
	return apperrors.NewCustomError(apperrors.ErrValidationFailed, strings.Join(msgs, "; ")).
		WithDetails(map[string]interface{}{"errors": msgs})
}

// parseStatusFilter converts an optional query value to a filter. Blank means all statuses.
func parseStatusFilter(raw string) (*models.Status, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	st, ok := models.ParseStatus(raw)
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid status %q", raw))
	}
	return &st, nil
}

func (s *enquiryServiceImpl) CreateEnquiry(ctx context.Context, req *dto.CreateEnquiryRequest) (*models.Enquiry, error) {
	if req == nil {
		return nil, apperrors.NewValidationError("request body is required")
	}
	validation.TrimStrings(req)
	if err := validation.Struct(req); err != nil {
		return nil, validationFailure(err)
	}

	enquiry := &models.Enquiry{
		StudentName:  req.StudentName,
		ParentName:   req.ParentName,
		ClassApplied: req.ClassApplied,
		MobileNumber: req.MobileNumber,
		Location:     req.Location,
		Email:        req.Email,
		Message:      req.Message,
		Status:       models.StatusPending,
	}

	if err := s.enquiries.Create(ctx, enquiry); err != nil {
		s.logger.Error().Err(err).Str("stage", "persist").Msg("Failed to store enquiry")
		return nil, fmt.Errorf("failed to create enquiry: %w", err)
	}
	s.metrics.ObserveEnquiry()

	s.logger.Info().Str("enquiryNumber", enquiry.EnquiryNumber).Msg("Enquiry created")

	notice := email.EnquiryNotice{
		EnquiryNumber: enquiry.EnquiryNumber,
		StudentName:   enquiry.StudentName,
		ParentName:    enquiry.ParentName,
		ClassApplied:  enquiry.ClassApplied,
		MobileNumber:  enquiry.MobileNumber,
		Location:      enquiry.Location,
	}
	s.bg.Go(ctx, func(ctx context.Context) {
		s.notifier.NotifyEnquiry(ctx, notice)
	})

	return enquiry, nil
}

func (s *enquiryServiceImpl) GetEnquiryByNumber(ctx context.Context, number string) (*models.Enquiry, error) {
	if number == "" {
		return nil, apperrors.NewValidationError("enquiry number is required")
	}
	return s.enquiries.GetByNumber(ctx, number)
}

func (s *enquiryServiceImpl) GetEnquiryByID(ctx context.Context, id uuid.UUID) (*models.Enquiry, error) {
	return s.enquiries.GetByID(ctx, id)
}

func (s *enquiryServiceImpl) ListEnquiries(ctx context.Context, status string, page, size int) (*dto.EnquiryListResponse, error) {
	filter, err := parseStatusFilter(status)
	if err != nil {
		return nil, err
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	enquiries, total, err := s.enquiries.List(ctx, repositories.EnquiryFilter{Status: filter, Offset: offset, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list enquiries: %w", err)
	}

	return &dto.EnquiryListResponse{
		Enquiries:  enquiries,
		Pagination: helpers.NewPaginationInfo(total, page, limit),
	}, nil
}

func (s *enquiryServiceImpl) SetEnquiryStatus(ctx context.Context, id uuid.UUID, status string) (*models.Enquiry, error) {
	next, ok := models.ParseStatus(status)
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid status %q", status))
	}

	current, err := s.enquiries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, apperrors.NewPreconditionFailedError(
			fmt.Sprintf("cannot move enquiry from %s to %s", current.Status, next))
	}

	updated, err := s.enquiries.UpdateStatus(ctx, id, next)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("enquiryNumber", updated.EnquiryNumber).
		Str("from", string(current.Status)).
		Str("to", string(next)).
		Msg("Enquiry status changed")
	return updated, nil
}

func (s *enquiryServiceImpl) WaitForNotifications(timeout time.Duration) bool {
	return s.bg.Wait(timeout)
}
