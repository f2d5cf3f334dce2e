package services

import (
	"context"
	"errors"
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
	"github.com/yigit/schooldesk/internal/pkg/filestorage"
	"github.com/yigit/schooldesk/internal/pkg/helpers"
	"github.com/yigit/schooldesk/internal/pkg/metrics"
	"github.com/yigit/schooldesk/internal/pkg/validation"
)

// Attachment form fields, in upload order
const (
	FieldPhoto            = "photo"
	FieldBirthCertificate = "birthCertificate"
)

// AdmissionService defines the admission processor operations
type AdmissionService interface {
	SubmitAdmission(ctx context.Context, form *dto.AdmissionSubmission) (*models.Admission, error)
	GetAdmissionByID(ctx context.Context, id uuid.UUID) (*models.Admission, error)
	ListAdmissions(ctx context.Context, status string, page, size int) (*dto.AdmissionListResponse, error)
	ReviewAdmission(ctx context.Context, id uuid.UUID, req *dto.ReviewAdmissionRequest) (*models.Admission, error)
	ExportAdmissions(ctx context.Context, status string) (*dto.GeneratedDocument, error)
	WaitForNotifications(timeout time.Duration) bool
}

// admissionServiceImpl implements the AdmissionService interface
type admissionServiceImpl struct {
	enquiries  EnquiryStore
	admissions AdmissionStore
	store      filestorage.AttachmentStore
	notifier   Notifier
	metrics    *metrics.Metrics
	logger     zerolog.Logger
	now        func() time.Time
	bg         background
}

// NewAdmissionService creates a new admission service instance
func NewAdmissionService(
	enquiries EnquiryStore,
	admissions AdmissionStore,
	store filestorage.AttachmentStore,
	notifier Notifier,
	m *metrics.Metrics,
	logger zerolog.Logger,
) AdmissionService {
	return &admissionServiceImpl{
		enquiries:  enquiries,
		admissions: admissions,
		store:      store,
		notifier:   notifier,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
	}
}

// SubmitAdmission validates the form, uploads its attachments, stores the admission and notifies the office.
// The cited enquiry must exist and be approved.
func (s *admissionServiceImpl) SubmitAdmission(ctx context.Context, form *dto.AdmissionSubmission) (*models.Admission, error) {
	if form == nil || form.Values == nil {
		s.metrics.ObserveSubmission(metrics.OutcomeInvalid)
		return nil, apperrors.NewValidationError("form data is required")
	}

	fields, err := decodeAdmissionFields(form.Values)
	if err != nil {
		s.metrics.ObserveSubmission(metrics.OutcomeInvalid)
		return nil, apperrors.NewValidationError("malformed form data")
	}

	log := s.logger.With().Str("enquiryNumber", fields.EnquiryNumber).Logger()

	if fields.EnquiryNumber == "" {
		s.metrics.ObserveSubmission(metrics.OutcomeInvalid)
		return nil, apperrors.NewCustomError(apperrors.ErrValidationFailed, "missing required fields: enquiryNumber").
			WithDetails(map[string]interface{}{"missing": []string{"enquiryNumber"}})
	}

	enquiry, err := s.enquiries.GetByNumber(ctx, fields.EnquiryNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrResourceNotFound) {
			log.Warn().Str("stage", "lookup").Msg("Admission cites unknown enquiry")
			s.metrics.ObserveSubmission(metrics.OutcomeInvalid)
			return nil, err
		}
		log.Error().Err(err).Str("stage", "lookup").Msg("Failed to look up enquiry")
		s.metrics.ObserveSubmission(metrics.OutcomeError)
		return nil, fmt.Errorf("failed to look up enquiry: %w", err)
	}
	if enquiry.Status != models.StatusApproved {
		log.Warn().Str("stage", "lookup").Str("status", string(enquiry.Status)).Msg("Admission cites an enquiry that is not approved")
		s.metrics.ObserveSubmission(metrics.OutcomeNotApproved)
		return nil, apperrors.ErrEnquiryNotApproved
	}

	if err := validation.Struct(fields); err != nil {
		s.metrics.ObserveSubmission(metrics.OutcomeInvalid)
		return nil, validationFailure(err)
	}

	exists, err := s.admissions.ExistsForEnquiry(ctx, fields.EnquiryNumber)
	if err != nil {
		log.Error().Err(err).Str("stage", "lookup").Msg("Failed to check for an existing admission")
		s.metrics.ObserveSubmission(metrics.OutcomeError)
		return nil, fmt.Errorf("failed to check existing admission: %w", err)
	}
	if exists {
		s.metrics.ObserveSubmission(metrics.OutcomeConflict)
		return nil, apperrors.ErrAdmissionExists
	}

	admission := buildAdmission(fields, form.Values)
	warnOnGroupGaps(log, form.Values)

	uploaded, err := s.uploadAttachments(ctx, log, admission, form.Files)
	if err != nil {
		s.rollbackUploads(ctx, log, uploaded)
		s.metrics.ObserveSubmission(metrics.OutcomeUploadFailed)
		return nil, err
	}

	if err := s.admissions.Create(ctx, admission); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			// Same enquiry, same keys: the objects now back the stored admission and must stay.
			log.Warn().Str("stage", "persist").Msg("Admission already exists for enquiry")
			s.metrics.ObserveSubmission(metrics.OutcomeConflict)
			return nil, err
		}
		log.Error().Err(err).Str("stage", "persist").Msg("Failed to store admission")
		s.rollbackUploads(ctx, log, uploaded)
		s.metrics.ObserveSubmission(metrics.OutcomeError)
		return nil, fmt.Errorf("failed to store admission: %w", err)
	}

	s.metrics.ObserveSubmission(metrics.OutcomeCreated)
	log.Info().Str("admissionId", admission.ID.String()).Msg("Admission submitted")

	notice := email.AdmissionNotice{
		EnquiryNumber: admission.EnquiryNumber,
		StudentName:   admission.StudentName,
		Class:         admission.Class,
	}
	s.bg.Go(ctx, func(ctx context.Context) {
		s.notifier.NotifyAdmission(ctx, notice)
	})

	return admission, nil
}

// uploadAttachments uploads the photo then the birth certificate. It returns the objects stored so far, also on error.
func (s *admissionServiceImpl) uploadAttachments(ctx context.Context, log zerolog.Logger, a *models.Admission, files map[string]*dto.UploadedFile) ([]*filestorage.StoredObject, error) {
	var uploaded []*filestorage.StoredObject
	slug := helpers.Slugify(a.StudentName)

	for _, field := range []string{FieldPhoto, FieldBirthCertificate} {
		file := files[field]
		if file == nil || len(file.Data) == 0 {
			continue
		}

		var prepared filestorage.NormalizedFile
		if field == FieldPhoto {
			prepared = filestorage.NormalizePhoto(file.Data, file.Filename)
		} else {
			prepared = filestorage.PassThrough(file.Data, file.Filename)
		}

		obj, err := s.store.Upload(ctx, filestorage.AdmissionKey(a.EnquiryNumber, slug, field), prepared.Data, prepared.ContentType)
		s.metrics.ObserveUpload(field, err)
		if err != nil {
			log.Error().Err(err).Str("stage", "upload").Str("field", field).Msg("Attachment upload failed")
			return uploaded, apperrors.NewUpstreamError("failed to upload "+field, err)
		}
		uploaded = append(uploaded, obj)

		switch field {
		case FieldPhoto:
			a.PhotoURL, a.PhotoPublicID = obj.URL, obj.PublicID
		case FieldBirthCertificate:
			a.BirthCertificateURL, a.BirthCertificatePublicID = obj.URL, obj.PublicID
		}
	}
	return uploaded, nil
}

// rollbackUploads deletes objects uploaded for a submission that was not stored. Failures are only logged.
func (s *admissionServiceImpl) rollbackUploads(ctx context.Context, log zerolog.Logger, uploaded []*filestorage.StoredObject) {
	ctx = context.WithoutCancel(ctx)
	for _, obj := range uploaded {
		if err := s.store.Delete(ctx, obj.PublicID); err != nil {
			log.Warn().Err(err).Str("stage", "rollback").Str("publicId", obj.PublicID).Msg("Failed to delete orphaned attachment")
		}
	}
}

func (s *admissionServiceImpl) GetAdmissionByID(ctx context.Context, id uuid.UUID) (*models.Admission, error) {
	return s.admissions.GetByID(ctx, id)
}

func (s *admissionServiceImpl) ListAdmissions(ctx context.Context, status string, page, size int) (*dto.AdmissionListResponse, error) {
	filter, err := parseStatusFilter(status)
	if err != nil {
		return nil, err
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	admissions, total, err := s.admissions.List(ctx, repositories.AdmissionFilter{Status: filter, Offset: offset, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to list admissions: %w", err)
	}

	return &dto.AdmissionListResponse{
		Admissions: admissions,
		Pagination: helpers.NewPaginationInfo(total, page, limit),
	}, nil
}

func (s *admissionServiceImpl) ReviewAdmission(ctx context.Context, id uuid.UUID, req *dto.ReviewAdmissionRequest) (*models.Admission, error) {
	if req == nil {
		return nil, apperrors.NewValidationError("request body is required")
	}
	next, ok := models.ParseStatus(req.Status)
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid status %q", req.Status))
	}

	var admissionNo *string
	if req.AdmissionNo != nil {
		if trimmed := strings.TrimSpace(*req.AdmissionNo); trimmed != "" {
			admissionNo = &trimmed
		}
	}

	current, err := s.admissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, apperrors.NewPreconditionFailedError(
			fmt.Sprintf("cannot move admission from %s to %s", current.Status, next))
	}

	updated, err := s.admissions.UpdateReview(ctx, id, next, admissionNo)
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("enquiryNumber", updated.EnquiryNumber).
		Str("from", string(current.Status)).
		Str("to", string(next)).
		Msg("Admission reviewed")
	return updated, nil
}

func (s *admissionServiceImpl) WaitForNotifications(timeout time.Duration) bool {
	return s.bg.Wait(timeout)
}
