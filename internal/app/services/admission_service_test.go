package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/app/models/dto"
	"github.com/yigit/schooldesk/internal/pkg/apperrors"
	"github.com/yigit/schooldesk/internal/pkg/metrics"
)

type admissionFixture struct {
	enquiries  *memEnquiries
	admissions *memAdmissions
	store      *memStore
	notifier   *recordingNotifier
	metrics    *metrics.Metrics
	service    AdmissionService
}

func newAdmissionFixture() *admissionFixture {
	f := &admissionFixture{
		enquiries:  newMemEnquiries(),
		admissions: newMemAdmissions(),
		store:      newMemStore(),
		notifier:   &recordingNotifier{},
		metrics:    metrics.New(),
	}
	f.service = NewAdmissionService(f.enquiries, f.admissions, f.store, f.notifier, f.metrics, testLogger)
	return f
}

func (f *admissionFixture) outcome(name string) float64 {
	return testutil.ToFloat64(f.metrics.AdmissionsSubmitted.WithLabelValues(name))
}

func validAdmissionValues(enquiryNumber string) map[string][]string {
	return map[string][]string{
		"enquiryNumber":      {enquiryNumber},
		"studentName":        {"Asha Verma"},
		"class":              {"5"},
		"session":            {"2025-26"},
		"gender":             {"Female"},
		"dateOfBirth":        {"2015-04-12"},
		"fatherName":         {"Rakesh Verma"},
		"fatherMobile":       {"9876543210"},
		"residentialAddress": {"12 Civil Lines, Lucknow"},
		"isEWS":              {"on"},
		"category":           {"General"},
	}
}

func TestSubmitAdmission_ApprovedEnquiry(t *testing.T) {
	f := newAdmissionFixture()
	f.enquiries.seed("ENQ-1001", models.StatusApproved)

	values := validAdmissionValues("ENQ-1001")
	values["academics[0].subject"] = []string{"Math"}
	values["academics[0].maxMarks"] = []string{"100"}
	values["academics[0].marksObtained"] = []string{"97"}
	values["siblings[0].name"] = []string{"Ravi Verma"}
	values["siblings[0].age"] = []string{"9"}

	admission, err := f.service.SubmitAdmission(context.Background(), &dto.AdmissionSubmission{
		Values: values,
		Files: map[string]*dto.UploadedFile{
			FieldPhoto: {Filename: "asha.png", Data: []byte("not really a png")},
		},
	})
	if err != nil {
		t.Fatalf("SubmitAdmission() error = %v", err)
	}

	if admission.Status != models.StatusPending {
		t.Errorf("Status = %q, want %q", admission.Status, models.StatusPending)
	}
	if len(admission.Academics) != 1 || admission.Academics[0].Percentage != 97.00 {
		t.Fatalf("Academics = %+v, want one record at 97.00%%", admission.Academics)
	}
	if len(admission.Siblings) != 1 || admission.Siblings[0].Name != "Ravi Verma" {
		t.Errorf("Siblings = %+v, want Ravi Verma", admission.Siblings)
	}
	if !admission.IsEWS || admission.IsSingleGirlChild {
		t.Errorf("flags = EWS %v, single girl %v; want true, false", admission.IsEWS, admission.IsSingleGirlChild)
	}
	if admission.PhotoPublicID != "admissions/ENQ-1001/asha-verma-photo" {
		t.Errorf("PhotoPublicID = %q, want %q", admission.PhotoPublicID, "admissions/ENQ-1001/asha-verma-photo")
	}
	if admission.PhotoURL == "" {
		t.Error("PhotoURL is empty")
	}
	if admission.BirthCertificateURL != "" {
		t.Errorf("BirthCertificateURL = %q, want empty", admission.BirthCertificateURL)
	}
	if got := f.admissions.count(); got != 1 {
		t.Errorf("stored admissions = %d, want 1", got)
	}

	if !f.service.WaitForNotifications(time.Second) {
		t.Fatal("notifications did not finish")
	}
	if got := f.notifier.admissionCount(); got != 1 {
		t.Errorf("admission notices = %d, want 1", got)
	}
	if got := f.outcome(metrics.OutcomeCreated); got != 1 {
		t.Errorf("created outcome = %v, want 1", got)
	}
}

func TestSubmitAdmission_PendingEnquiry(t *testing.T) {
	f := newAdmissionFixture()
	f.enquiries.seed("ENQ-1002", models.StatusPending)

	_, err := f.service.SubmitAdmission(context.Background(), &dto.AdmissionSubmission{
		Values: validAdmissionValues("ENQ-1002"),
		Files: map[string]*dto.UploadedFile{
			FieldPhoto: {Filename: "asha.jpg", Data: []byte("photo")},
		},
	})
	if !errors.Is(err, apperrors.ErrPreconditionFailed) {
		t.Fatalf("error = %v, want precondition failure", err)
	}

	f.service.WaitForNotifications(time.Second)
	if got := f.admissions.count(); got != 0 {
		t.Errorf("stored admissions = %d, want 0", got)
	}
	if keys := f.store.keys(); len(keys) != 0 {
		t.Errorf("uploaded objects = %v, want none", keys)
	}
	if got := f.notifier.admissionCount(); got != 0 {
		t.Errorf("admission notices = %d, want 0", got)
	}
	if got := f.outcome(metrics.OutcomeNotApproved); got != 1 {
		t.Errorf("not_approved outcome = %v, want 1", got)
	}
}

func TestSubmitAdmission_LookupAndValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string][]string)
		wantErr error
		wantMsg string
	}{
		{
			name:    "unknown enquiry",
			mutate:  func(v map[string][]string) { v["enquiryNumber"] = []string{"ENQ-9999"} },
			wantErr: apperrors.ErrResourceNotFound,
		},
		{
			name:    "missing enquiry number",
			mutate:  func(v map[string][]string) { delete(v, "enquiryNumber") },
			wantErr: apperrors.ErrValidationFailed,
			wantMsg: "missing required fields: enquiryNumber",
		},
		{
			name: "missing required fields",
			mutate: func(v map[string][]string) {
				delete(v, "studentName")
				v["class"] = []string{"   "}
			},
			wantErr: apperrors.ErrValidationFailed,
			wantMsg: "missing required fields: class, studentName",
		},
		{
			name: "no parent named",
			mutate: func(v map[string][]string) {
				delete(v, "fatherName")
			},
			wantErr: apperrors.ErrValidationFailed,
			wantMsg: "missing required fields: fatherName, motherName",
		},
		{
			name:    "bad category",
			mutate:  func(v map[string][]string) { v["category"] = []string{"OBC"} },
			wantErr: apperrors.ErrValidationFailed,
			wantMsg: "category must be one of: SC ST General Handicapped",
		},
		{
			name:    "bad mobile",
			mutate:  func(v map[string][]string) { v["fatherMobile"] = []string{"call me"} },
			wantErr: apperrors.ErrValidationFailed,
			wantMsg: "fatherMobile must be a valid mobile number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAdmissionFixture()
			f.enquiries.seed("ENQ-1001", models.StatusApproved)

			values := validAdmissionValues("ENQ-1001")
			tt.mutate(values)

			_, err := f.service.SubmitAdmission(context.Background(), &dto.AdmissionSubmission{Values: values})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				if got := apperrors.PublicMessage(err, ""); got != tt.wantMsg {
					t.Errorf("message = %q, want %q", got, tt.wantMsg)
				}
			}
			if got := f.admissions.count(); got != 0 {
				t.Errorf("stored admissions = %d, want 0", got)
			}
		})
	}
}

func TestSubmitAdmission_UploadFailureRollsBack(t *testing.T) {
	f := newAdmissionFixture()
	f.enquiries.seed("ENQ-1001", models.StatusApproved)
	f.store.failOn = FieldBirthCertificate

	_, err := f.service.SubmitAdmission(context.Background(), &dto.AdmissionSubmission{
		Values: validAdmissionValues("ENQ-1001"),
		Files: map[string]*dto.UploadedFile{
			FieldPhoto:            {Filename: "asha.jpg", Data: []byte("photo")},
			FieldBirthCertificate: {Filename: "birth.pdf", Data: []byte("%PDF-1.4")},
		},
	})
	if !errors.Is(err, apperrors.ErrUpstreamFailure) {
		t.Fatalf("error = %v, want upstream failure", err)
	}
	if got := f.admissions.count(); got != 0 {
		t.Errorf("stored admissions = %d, want 0", got)
	}
	if keys := f.store.keys(); len(keys) != 0 {
		t.Errorf("objects left behind = %v, want none", keys)
	}
	if len(f.store.deleted) != 1 || f.store.deleted[0] != "admissions/ENQ-1001/asha-verma-photo" {
		t.Errorf("deleted = %v, want the photo", f.store.deleted)
	}
	if got := f.outcome(metrics.OutcomeUploadFailed); got != 1 {
		t.Errorf("upload_failed outcome = %v, want 1", got)
	}
}

func TestSubmitAdmission_SameNameApplicantsKeepSeparateAttachments(t *testing.T) {
	f := newAdmissionFixture()
	f.enquiries.seed("ENQ-1001", models.StatusApproved)
	f.enquiries.seed("ENQ-1002", models.StatusApproved)
	ctx := context.Background()

	first, err := f.service.SubmitAdmission(ctx, &dto.AdmissionSubmission{
		Values: validAdmissionValues("ENQ-1001"),
		Files: map[string]*dto.UploadedFile{
			FieldPhoto: {Filename: "first.jpg", Data: []byte("first applicant")},
		},
	})
	if err != nil {
		t.Fatalf("first SubmitAdmission() error = %v", err)
	}

	f.store.failOn = FieldBirthCertificate
	_, err = f.service.SubmitAdmission(ctx, &dto.AdmissionSubmission{
		Values: validAdmissionValues("ENQ-1002"),
		Files: map[string]*dto.UploadedFile{
			FieldPhoto:            {Filename: "second.jpg", Data: []byte("second applicant")},
			FieldBirthCertificate: {Filename: "birth.pdf", Data: []byte("%PDF-1.4")},
		},
	})
	if !errors.Is(err, apperrors.ErrUpstreamFailure) {
		t.Fatalf("second error = %v, want upstream failure", err)
	}

	if got := string(f.store.objects[first.PhotoPublicID]); got != "first applicant" {
		t.Errorf("stored photo of ENQ-1001 = %q, want %q", got, "first applicant")
	}
	if len(f.store.deleted) != 1 || f.store.deleted[0] != "admissions/ENQ-1002/asha-verma-photo" {
		t.Errorf("deleted = %v, want only the ENQ-1002 photo", f.store.deleted)
	}
}

func TestSubmitAdmission_NonLatinNamesDoNotCollide(t *testing.T) {
	f := newAdmissionFixture()
	f.enquiries.seed("ENQ-1001", models.StatusApproved)
	f.enquiries.seed("ENQ-1002", models.StatusApproved)
	ctx := context.Background()

	submit := func(number, name, photo string) *models.Admission {
		t.Helper()
		values := validAdmissionValues(number)
		values["studentName"] = []string{name}
		a, err := f.service.SubmitAdmission(ctx, &dto.AdmissionSubmission{
			Values: values,
			Files: map[string]*dto.UploadedFile{
				FieldPhoto: {Filename: "photo.jpg", Data: []byte(photo)},
			},
		})
		if err != nil {
			t.Fatalf("SubmitAdmission(%s) error = %v", number, err)
		}
		return a
	}

	first := submit("ENQ-1001", "आशा वर्मा", "asha")
	second := submit("ENQ-1002", "राहुल", "rahul")

	if first.PhotoPublicID == second.PhotoPublicID {
		t.Fatalf("both admissions use key %q", first.PhotoPublicID)
	}
	if got := string(f.store.objects[first.PhotoPublicID]); got != "asha" {
		t.Errorf("first photo = %q, want %q", got, "asha")
	}
	if got := string(f.store.objects[second.PhotoPublicID]); got != "rahul" {
		t.Errorf("second photo = %q, want %q", got, "rahul")
	}
}

func TestSubmitAdmission_PersistFailureRollsBack(t *testing.T) {
	f := newAdmissionFixture()
	f.enquiries.seed("ENQ-1001", models.StatusApproved)
	f.admissions.createErr = errors.New("connection reset")

	_, err := f.service.SubmitAdmission(context.Background(), &dto.AdmissionSubmission{
		Values: validAdmissionValues("ENQ-1001"),
		Files: map[string]*dto.UploadedFile{
			FieldBirthCertificate: {Filename: "birth.pdf", Data: []byte("%PDF-1.4")},
		},
	})
	if err == nil {
		t.Fatal("SubmitAdmission() error = nil, want failure")
	}
	if keys := f.store.keys(); len(keys) != 0 {
		t.Errorf("objects left behind = %v, want none", keys)
	}
}

func TestSubmitAdmission_SecondSubmissionConflicts(t *testing.T) {
	f := newAdmissionFixture()
	f.enquiries.seed("ENQ-1001", models.StatusApproved)

	form := &dto.AdmissionSubmission{
		Values: validAdmissionValues("ENQ-1001"),
		Files: map[string]*dto.UploadedFile{
			FieldPhoto: {Filename: "asha.jpg", Data: []byte("photo")},
		},
	}
	if _, err := f.service.SubmitAdmission(context.Background(), form); err != nil {
		t.Fatalf("first SubmitAdmission() error = %v", err)
	}

	_, err := f.service.SubmitAdmission(context.Background(), form)
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("second error = %v, want conflict", err)
	}
	if got := f.admissions.count(); got != 1 {
		t.Errorf("stored admissions = %d, want 1", got)
	}
	if keys := f.store.keys(); len(keys) != 1 {
		t.Errorf("objects = %v, want the first submission's photo", keys)
	}
}

func TestSubmitAdmission_IndexGapStopsParsing(t *testing.T) {
	f := newAdmissionFixture()
	f.enquiries.seed("ENQ-1001", models.StatusApproved)

	values := validAdmissionValues("ENQ-1001")
	values["academics[0].subject"] = []string{"English"}
	values["academics[0].maxMarks"] = []string{"80"}
	values["academics[0].marksObtained"] = []string{"60"}
	values["academics[2].subject"] = []string{"Science"}
	values["academics[2].maxMarks"] = []string{"100"}
	values["academics[2].marksObtained"] = []string{"90"}

	admission, err := f.service.SubmitAdmission(context.Background(), &dto.AdmissionSubmission{Values: values})
	if err != nil {
		t.Fatalf("SubmitAdmission() error = %v", err)
	}
	if len(admission.Academics) != 1 || admission.Academics[0].Subject != "English" {
		t.Fatalf("Academics = %+v, want only English", admission.Academics)
	}
	if admission.Academics[0].Percentage != 75 {
		t.Errorf("Percentage = %v, want 75", admission.Academics[0].Percentage)
	}
}

func TestWarnOnGroupGaps(t *testing.T) {
	var buf bytes.Buffer
	warnOnGroupGaps(zerolog.New(&buf), map[string][]string{
		"siblings[0].name":     {"Ravi"},
		"siblings[1].name":     {"Meera"},
		"academics[0].subject": {"English"},
		"academics[2].subject": {"Science"},
		"academics[3].subject": {"Art"},
	})

	out := buf.String()
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("log lines = %q, want one warning", out)
	}
	for _, want := range []string{`"group":"academics"`, `"missingIndex":1`, `"ignored":[2,3]`} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q does not contain %s", out, want)
		}
	}
}

func TestParseAcademics_DropsUnusableRows(t *testing.T) {
	values := map[string][]string{
		"academics[0].subject":       {"Math"},
		"academics[0].maxMarks":      {"0"},
		"academics[0].marksObtained": {"0"},
		"academics[1].subject":       {""},
		"academics[1].maxMarks":      {"100"},
		"academics[1].marksObtained": {"40"},
		"academics[2].subject":       {"Hindi"},
		"academics[2].maxMarks":      {"abc"},
		"academics[2].marksObtained": {"40"},
		"academics[3].subject":       {"Art"},
		"academics[3].maxMarks":      {"3"},
		"academics[3].marksObtained": {"2"},
		"academics[3].remarks":       {"good"},
	}

	got := parseAcademics(values)
	if len(got) != 1 {
		t.Fatalf("parseAcademics() = %+v, want one record", got)
	}
	if got[0].Subject != "Art" || got[0].Percentage != 66.67 || got[0].Remarks != "good" {
		t.Errorf("record = %+v, want Art at 66.67 with remarks", got[0])
	}
}

func TestParseFlag(t *testing.T) {
	tests := map[string]bool{
		"on":    true,
		"true":  true,
		"1":     true,
		" Yes ": true,
		"":      false,
		"off":   false,
		"false": false,
		"no":    false,
	}
	for in, want := range tests {
		if got := parseFlag(in); got != want {
			t.Errorf("parseFlag(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestReviewAdmission(t *testing.T) {
	f := newAdmissionFixture()
	f.enquiries.seed("ENQ-1001", models.StatusApproved)
	admission, err := f.service.SubmitAdmission(context.Background(), &dto.AdmissionSubmission{Values: validAdmissionValues("ENQ-1001")})
	if err != nil {
		t.Fatalf("SubmitAdmission() error = %v", err)
	}

	no := "  ADM-2025-014 "
	updated, err := f.service.ReviewAdmission(context.Background(), admission.ID, &dto.ReviewAdmissionRequest{Status: "Approved", AdmissionNo: &no})
	if err != nil {
		t.Fatalf("ReviewAdmission() error = %v", err)
	}
	if updated.Status != models.StatusApproved {
		t.Errorf("Status = %q, want approved", updated.Status)
	}
	if updated.AdmissionNo == nil || *updated.AdmissionNo != "ADM-2025-014" {
		t.Errorf("AdmissionNo = %v, want ADM-2025-014", updated.AdmissionNo)
	}

	_, err = f.service.ReviewAdmission(context.Background(), admission.ID, &dto.ReviewAdmissionRequest{Status: "archived"})
	if !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("invalid status error = %v, want validation failure", err)
	}
}

func TestExportAdmissions(t *testing.T) {
	f := newAdmissionFixture()
	for _, number := range []string{"ENQ-1001", "ENQ-1002"} {
		f.enquiries.seed(number, models.StatusApproved)
		values := validAdmissionValues(number)
		values["academics[0].subject"] = []string{"Math"}
		values["academics[0].maxMarks"] = []string{"100"}
		values["academics[0].marksObtained"] = []string{"97"}
		if _, err := f.service.SubmitAdmission(context.Background(), &dto.AdmissionSubmission{Values: values}); err != nil {
			t.Fatalf("SubmitAdmission(%s) error = %v", number, err)
		}
	}

	doc, err := f.service.ExportAdmissions(context.Background(), "")
	if err != nil {
		t.Fatalf("ExportAdmissions() error = %v", err)
	}
	if !strings.HasPrefix(doc.Filename, "admissions_all_") || !strings.HasSuffix(doc.Filename, ".xlsx") {
		t.Errorf("Filename = %q", doc.Filename)
	}
	if doc.ContentType != xlsxContentType {
		t.Errorf("ContentType = %q", doc.ContentType)
	}

	book, err := excelize.OpenReader(bytes.NewReader(doc.Data))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer book.Close()

	rows, err := book.GetRows(exportSheet)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header plus 2", len(rows))
	}
	if rows[0][0] != "Enquiry Number" || rows[1][0] != "ENQ-1001" || rows[2][0] != "ENQ-1002" {
		t.Errorf("first column = %q, %q, %q", rows[0][0], rows[1][0], rows[2][0])
	}
	if rows[1][14] != "97.00" {
		t.Errorf("academic average = %q, want 97.00", rows[1][14])
	}

	if _, err := f.service.ExportAdmissions(context.Background(), "closed"); !errors.Is(err, apperrors.ErrValidationFailed) {
		t.Errorf("bad status error = %v, want validation failure", err)
	}
}
