package document

import (
	"fmt"
	"strconv"
	"time"

	"github.com/yigit/schooldesk/internal/app/models"
	"github.com/yigit/schooldesk/internal/pkg/helpers"
)

// Document types
const (
	TypeEnquiry   = "enquiry"
	TypeAdmission = "admission"
)

// Declaration is printed at the end of every admission form.
const Declaration = "I hereby declare that the information furnished in this form is true and correct " +
	"to the best of my knowledge and belief. I understand that any false or misleading information " +
	"may lead to cancellation of the admission. I agree to abide by the rules and regulations of the " +
	"school as amended from time to time."

// Rendered is a finished PDF.
type Rendered struct {
	Filename string
	Pages    int
	Data     []byte
}

// Generator renders enquiries and admissions as printable PDFs.
type Generator struct {
	institution string
	opts        Options
	now         func() time.Time
}

// NewGenerator creates a Generator that prints institution in every header.
func NewGenerator(institution string) *Generator {
	return &Generator{
		institution: institution,
		opts:        DefaultOptions(),
		now:         time.Now,
	}
}

// WithClock overrides the clock used for file names.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Filename builds <type>_<slug>_<yyyyMMdd_HHmmss>.pdf.
func Filename(docType, subject string, at time.Time) string {
	return fmt.Sprintf("%s_%s_%s.pdf", docType, helpers.Slugify(subject), helpers.FileTimestamp(at))
}

// Enquiry renders an enquiry record.
func (g *Generator) Enquiry(e *models.Enquiry) (*Rendered, error) {
	l := NewLayout(g.opts)
	l.Header(g.institution, "Admission Enquiry")

	l.Section("Enquiry Details")
	l.Field("Enquiry Number", e.EnquiryNumber)
	l.Field("Status", string(e.Status))
	l.Field("Submitted On", e.CreatedAt.Format("02 Jan 2006 15:04"))
	l.Field("Student Name", e.StudentName)
	l.Field("Class Applied", e.ClassApplied)

	l.Section("Contact Details")
	l.Field("Parent Name", e.ParentName)
	l.Field("Mobile Number", e.MobileNumber)
	l.Field("Email", e.Email)
	l.WrappedField("Location", e.Location)

	l.Section("Notes")
	if e.Message != "" {
		l.Paragraph(e.Message)
	} else {
		l.Paragraph("No additional notes.")
	}

	return g.finish(l, TypeEnquiry, e.StudentName)
}

// Admission renders a full admission form.
func (g *Generator) Admission(a *models.Admission) (*Rendered, error) {
	l := NewLayout(g.opts)
	l.Header(g.institution, "Application for Admission")

	l.Section("Student Details")
	l.Field("Enquiry Number", a.EnquiryNumber)
	if a.AdmissionNo != nil {
		l.Field("Admission No", *a.AdmissionNo)
	}
	l.Field("Student Name", a.StudentName)
	l.Field("Class", a.Class)
	l.Field("Session", a.Session)
	l.Field("Gender", a.Gender)
	l.Field("Date of Birth", a.DateOfBirth)
	l.WrappedField("Date of Birth (words)", a.DateOfBirthInWords)
	l.Field("Blood Group", a.BloodGroup)
	l.Field("Category", string(a.Category))
	l.Field("Aadhar No", a.AadharNo)
	l.Field("Single Girl Child", yesNo(a.IsSingleGirlChild))
	l.Field("Specially Abled", yesNo(a.IsSpeciallyAbled))
	l.Field("EWS", yesNo(a.IsEWS))

	l.Section("Parent Information")
	parentFields(l, "Father", a.Father)
	parentFields(l, "Mother", a.Mother)

	l.Section("Address Information")
	l.WrappedField("Residential Address", a.ResidentialAddress)
	l.WrappedField("Permanent Address", a.PermanentAddress)
	l.Field("City", a.City)
	l.Field("State", a.State)
	l.Field("PIN Code", a.PinCode)

	l.Section("Previous Schooling")
	l.Field("School", a.PreviousSchool)
	l.Field("Class", a.PreviousClass)
	l.Field("Board", a.PreviousBoard)

	l.Section("Siblings")
	if len(a.Siblings) == 0 {
		l.Paragraph("None listed.")
	} else {
		rows := make([][]string, 0, len(a.Siblings))
		for _, s := range a.Siblings {
			rows = append(rows, []string{s.Name, s.Age, s.School})
		}
		l.Table([]string{"Name", "Age", "School"}, []float64{70, 20, 90}, rows)
	}

	l.Section("Academic Record")
	if len(a.Academics) == 0 {
		l.Paragraph("None listed.")
	} else {
		rows := make([][]string, 0, len(a.Academics))
		for _, r := range a.Academics {
			rows = append(rows, []string{
				r.Subject,
				formatMarks(r.MaxMarks),
				formatMarks(r.MarksObtained),
				strconv.FormatFloat(r.Percentage, 'f', 2, 64),
				r.Remarks,
			})
		}
		l.Table([]string{"Subject", "Max", "Obtained", "%", "Remarks"}, []float64{55, 20, 25, 20, 60}, rows)
	}

	l.Section("Declaration")
	l.CenteredParagraph(Declaration)
	l.SignatureLines("Signature of Parent", "Signature of Principal")

	return g.finish(l, TypeAdmission, a.StudentName)
}

func (g *Generator) finish(l *Layout, docType, subject string) (*Rendered, error) {
	data, err := l.Bytes()
	if err != nil {
		return nil, err
	}
	return &Rendered{
		Filename: Filename(docType, subject, g.now()),
		Pages:    l.PageCount(),
		Data:     data,
	}, nil
}

func parentFields(l *Layout, who string, p models.ParentDetails) {
	l.Field(who+"'s Name", p.Name)
	l.Field("Occupation", p.Occupation)
	l.Field("Qualification", p.Qualification)
	l.Field("Mobile", p.Mobile)
	l.Field("Email", p.Email)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func formatMarks(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
