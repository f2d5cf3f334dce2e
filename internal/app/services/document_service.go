package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/document"
	"github.com/yigit/schooldesk/internal/pkg/metrics"
)

// DocumentService renders printable documents for stored records
type DocumentService interface {
	GenerateDocument(ctx context.Context, req *dto.GenerateDocumentRequest) (*dto.GeneratedDocument, error)
}

type documentServiceImpl struct {
	enquiries  EnquiryStore
	admissions AdmissionStore
	generator  *document.Generator
	metrics    *metrics.Metrics
	logger     zerolog.Logger
}

// NewDocumentService creates a new document service instance
func NewDocumentService(enquiries EnquiryStore, admissions AdmissionStore, generator *document.Generator, m *metrics.Metrics, logger zerolog.Logger) DocumentService {
	return &documentServiceImpl{
		enquiries:  enquiries,
		admissions: admissions,
		generator:  generator,
		metrics:    m,
		logger:     logger,
	}
}

func (s *documentServiceImpl) GenerateDocument(ctx context.Context, req *dto.GenerateDocumentRequest) (*dto.GeneratedDocument, error) {
	if req == nil {
		return nil, apperrors.NewValidationError("request body is required")
	}
	docType := strings.ToLower(strings.TrimSpace(req.Type))
	id, err := uuid.Parse(strings.TrimSpace(req.ID))
	if err != nil {
		return nil, apperrors.NewValidationError("id must be a valid UUID")
	}

	var (
		rendered      *document.Rendered
		enquiryNumber string
	)
	switch docType {
	case dto.DocumentTypeEnquiry:
		enquiry, err := s.enquiries.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		enquiryNumber = enquiry.EnquiryNumber
		rendered, err = s.generator.Enquiry(enquiry)
		if err != nil {
			return nil, s.renderFailure(err, docType, enquiryNumber)
		}
	case dto.DocumentTypeAdmission:
		admission, err := s.admissions.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		enquiryNumber = admission.EnquiryNumber
		rendered, err = s.generator.Admission(admission)
		if err != nil {
			return nil, s.renderFailure(err, docType, enquiryNumber)
		}
	default:
		return nil, apperrors.NewValidationError("type must be one of: enquiry, admission")
	}

	s.metrics.ObserveDocument(docType)
	s.logger.Info().
		Str("type", docType).
		Str("enquiryNumber", enquiryNumber).
		Int("pages", rendered.Pages).
		Msg("Document generated")

	return &dto.GeneratedDocument{
		Filename:    rendered.Filename,
		ContentType: "application/pdf",
		Pages:       rendered.Pages,
		Data:        rendered.Data,
	}, nil
}

func (s *documentServiceImpl) renderFailure(err error, docType, enquiryNumber string) error {
	s.logger.Error().Err(err).
		Str("stage", "render").
		Str("type", docType).
		Str("enquiryNumber", enquiryNumber).
		Msg("Failed to render document")
	return apperrors.NewUpstreamError("failed to render document", err)
}
