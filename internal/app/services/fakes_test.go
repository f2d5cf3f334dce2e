package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/repositories"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/email"
	"github.com/yigit/schooldesk/internal/pkg/filestorage"
)

var testLogger = zerolog.Nop()

// memEnquiries is an in-memory EnquiryStore.
type memEnquiries struct {
	mu   sync.Mutex
	next int
	rows map[uuid.UUID]*models.Enquiry
}

func newMemEnquiries() *memEnquiries {
	return &memEnquiries{next: 1001, rows: map[uuid.UUID]*models.Enquiry{}}
}

// seed stores an enquiry with the given number and status.
func (m *memEnquiries) seed(number string, status models.Status) *models.Enquiry {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := &models.Enquiry{
		ID:            uuid.New(),
		EnquiryNumber: number,
		StudentName:   "Asha Verma",
		ParentName:    "Rakesh Verma",
		ClassApplied:  "5",
		MobileNumber:  "9876543210",
		Location:      "Lucknow",
		Status:        status,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	m.rows[e.ID] = e
	return e
}

func (m *memEnquiries) Create(_ context.Context, e *models.Enquiry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = uuid.New()
	e.EnquiryNumber = fmt.Sprintf("ENQ-%d", m.next)
	m.next++
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	cp := *e
	m.rows[e.ID] = &cp
	return nil
}

func (m *memEnquiries) GetByNumber(_ context.Context, number string) (*models.Enquiry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.rows {
		if e.EnquiryNumber == number {
			cp := *e
			return &cp, nil
		}
	}
	return nil, apperrors.ErrEnquiryNotFound
}

func (m *memEnquiries) GetByID(_ context.Context, id uuid.UUID) (*models.Enquiry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rows[id]
	if !ok {
		return nil, apperrors.ErrEnquiryNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memEnquiries) List(_ context.Context, filter repositories.EnquiryFilter) ([]*models.Enquiry, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Enquiry
	for _, e := range m.rows {
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnquiryNumber < out[j].EnquiryNumber })
	total := int64(len(out))
	start := int(filter.Offset)
	if start > len(out) {
		start = len(out)
	}
	out = out[start:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (m *memEnquiries) UpdateStatus(_ context.Context, id uuid.UUID, status models.Status) (*models.Enquiry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.rows[id]
	if !ok {
		return nil, apperrors.ErrEnquiryNotFound
	}
	e.Status = status
	e.UpdatedAt = time.Now()
	cp := *e
	return &cp, nil
}

// memAdmissions is an in-memory AdmissionStore enforcing one admission per enquiry.
type memAdmissions struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]*models.Admission
	createErr error
}

func newMemAdmissions() *memAdmissions {
	return &memAdmissions{rows: map[uuid.UUID]*models.Admission{}}
}

func (m *memAdmissions) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

func (m *memAdmissions) Create(_ context.Context, a *models.Admission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.rows {
		if existing.EnquiryNumber == a.EnquiryNumber {
			return apperrors.ErrAdmissionExists
		}
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	m.rows[a.ID] = &cp
	return nil
}

func (m *memAdmissions) ExistsForEnquiry(_ context.Context, enquiryNumber string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.rows {
		if a.EnquiryNumber == enquiryNumber {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAdmissions) GetByID(_ context.Context, id uuid.UUID) (*models.Admission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return nil, apperrors.ErrAdmissionNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAdmissions) List(_ context.Context, filter repositories.AdmissionFilter) ([]*models.Admission, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.Admission
	for _, a := range m.rows {
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnquiryNumber < out[j].EnquiryNumber })
	total := int64(len(out))
	start := int(filter.Offset)
	if start > len(out) {
		start = len(out)
	}
	out = out[start:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func (m *memAdmissions) UpdateReview(_ context.Context, id uuid.UUID, status models.Status, admissionNo *string) (*models.Admission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return nil, apperrors.ErrAdmissionNotFound
	}
	a.Status = status
	if admissionNo != nil {
		no := *admissionNo
		a.AdmissionNo = &no
	}
	cp := *a
	return &cp, nil
}

// memStore is an in-memory AttachmentStore. Uploads for keys containing failOn fail.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	deleted []string
	failOn  string
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *memStore) Upload(_ context.Context, key string, data []byte, contentType string) (*filestorage.StoredObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != "" && strings.Contains(key, m.failOn) {
		return nil, errors.New("bucket unavailable")
	}
	m.objects[key] = append([]byte(nil), data...)
	m.types[key] = contentType
	return &filestorage.StoredObject{URL: "https://cdn.example/" + key, PublicID: key}, nil
}

func (m *memStore) Delete(_ context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, publicID)
	m.deleted = append(m.deleted, publicID)
	return nil
}

func (m *memStore) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.objects))
	for k := range m.objects {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// recordingNotifier keeps every notice it receives.
type recordingNotifier struct {
	mu         sync.Mutex
	admissions []email.AdmissionNotice
	enquiries  []email.EnquiryNotice
}

func (r *recordingNotifier) NotifyAdmission(_ context.Context, n email.AdmissionNotice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.admissions = append(r.admissions, n)
}

func (r *recordingNotifier) NotifyEnquiry(_ context.Context, n email.EnquiryNotice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enquiries = append(r.enquiries, n)
}

func (r *recordingNotifier) admissionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.admissions)
}

func (r *recordingNotifier) enquiryCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.enquiries)
}

// memStaff is an in-memory StaffStore keyed by lowercase email.
type memStaff struct {
	mu   sync.Mutex
	rows map[string]*models.StaffUser
}

func newMemStaff() *memStaff {
	return &memStaff{rows: map[string]*models.StaffUser{}}
}

func (m *memStaff) Create(_ context.Context, s *models.StaffUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(s.Email)
	if _, ok := m.rows[key]; ok {
		return apperrors.ErrStaffExists
	}
	s.ID = uuid.New()
	cp := *s
	m.rows[key] = &cp
	return nil
}

func (m *memStaff) GetByEmail(_ context.Context, emailAddr string) (*models.StaffUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[strings.ToLower(emailAddr)]
	if !ok {
		return nil, apperrors.ErrStaffNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStaff) EmailExists(_ context.Context, emailAddr string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[strings.ToLower(emailAddr)]
	return ok, nil
}
