package email

import (
	"context"
	"fmt"
	"html"

	"github.com/rs/zerolog"
)

// AdmissionNotice carries what staff need to find a new admission.
type AdmissionNotice struct {
	EnquiryNumber string
	StudentName   string
	Class         string
}

// EnquiryNotice carries what staff need to follow up a new enquiry.
type EnquiryNotice struct {
	EnquiryNumber string
	StudentName   string
	ParentName    string
	ClassApplied  string
	MobileNumber  string
	Location      string
}

// Notifier emails the admissions office about new submissions.
// Delivery is best effort: transport errors are logged and never returned.
type Notifier struct {
	transport    Transport
	adminAddress string
	schoolName   string
	logger       zerolog.Logger
}

// NewNotifier creates a Notifier sending to adminAddress.
func NewNotifier(transport Transport, adminAddress, schoolName string, logger zerolog.Logger) *Notifier {
	return &Notifier{
		transport:    transport,
		adminAddress: adminAddress,
		schoolName:   schoolName,
		logger:       logger,
	}
}

// NotifyAdmission announces a submitted admission form.
func (n *Notifier) NotifyAdmission(ctx context.Context, notice AdmissionNotice) {
	subject := fmt.Sprintf("New admission form: %s (%s)", notice.StudentName, notice.EnquiryNumber)
	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">%s - New Admission Form</h2>
				<p>A new admission form has been submitted.</p>
				<table cellpadding="4">
					<tr><td><strong>Enquiry Number</strong></td><td>%s</td></tr>
					<tr><td><strong>Student Name</strong></td><td>%s</td></tr>
					<tr><td><strong>Class</strong></td><td>%s</td></tr>
				</table>
			</div>
		</body>
		</html>
	`, html.EscapeString(n.schoolName), html.EscapeString(notice.EnquiryNumber),
		html.EscapeString(notice.StudentName), html.EscapeString(notice.Class))

	n.send(ctx, "admission", notice.EnquiryNumber, subject, body)
}

// NotifyEnquiry announces a new enquiry.
func (n *Notifier) NotifyEnquiry(ctx context.Context, notice EnquiryNotice) {
	subject := fmt.Sprintf("New enquiry: %s (%s)", notice.StudentName, notice.EnquiryNumber)
	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">%s - New Enquiry</h2>
				<table cellpadding="4">
					<tr><td><strong>Enquiry Number</strong></td><td>%s</td></tr>
					<tr><td><strong>Student Name</strong></td><td>%s</td></tr>
					<tr><td><strong>Parent Name</strong></td><td>%s</td></tr>
					<tr><td><strong>Class Applied</strong></td><td>%s</td></tr>
					<tr><td><strong>Mobile</strong></td><td>%s</td></tr>
					<tr><td><strong>Location</strong></td><td>%s</td></tr>
				</table>
			</div>
		</body>
		</html>
	`, html.EscapeString(n.schoolName), html.EscapeString(notice.EnquiryNumber),
		html.EscapeString(notice.StudentName), html.EscapeString(notice.ParentName),
		html.EscapeString(notice.ClassApplied), html.EscapeString(notice.MobileNumber),
		html.EscapeString(notice.Location))

	n.send(ctx, "enquiry", notice.EnquiryNumber, subject, body)
}

func (n *Notifier) send(ctx context.Context, kind, enquiryNumber, subject, body string) {
	if n.adminAddress == "" {
		n.logger.Debug().Str("kind", kind).Str("enquiryNumber", enquiryNumber).Msg("No admin address configured, skipping notification")
		return
	}

	err := n.transport.Send(ctx, Message{To: n.adminAddress, Subject: subject, HTMLBody: body})
	if err != nil {
		n.logger.Error().Err(err).
			Str("kind", kind).
			Str("enquiryNumber", enquiryNumber).
			Str("stage", "notify").
			Msg("Failed to send notification email")
		return
	}
	n.logger.Info().Str("kind", kind).Str("enquiryNumber", enquiryNumber).Msg("Notification email sent")
}
