package email

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type recordingTransport struct {
	sent []Message
	err  error
}

func (r *recordingTransport) Send(_ context.Context, msg Message) error {
	r.sent = append(r.sent, msg)
	return r.err
}

func TestNewTransportWithoutHostIsNoop(t *testing.T) {
	tr := NewTransport(SMTPConfig{}, zerolog.Nop())
	if _, ok := tr.(NoopTransport); !ok {
		t.Fatalf("transport = %T, want NoopTransport", tr)
	}
	if err := tr.Send(context.Background(), Message{To: "x@y.z"}); err != nil {
		t.Fatalf("Send: %v", err)
	}

	tr = NewTransport(SMTPConfig{Host: "smtp.example.com", Port: 587}, zerolog.Nop())
	if _, ok := tr.(*SMTPTransport); !ok {
		t.Fatalf("transport = %T, want *SMTPTransport", tr)
	}
}

func TestNotifyAdmissionEscapesAndAddressesAdmin(t *testing.T) {
	tr := &recordingTransport{}
	n := NewNotifier(tr, "office@school.test", "Springdale", zerolog.Nop())

	n.NotifyAdmission(context.Background(), AdmissionNotice{
		EnquiryNumber: "ENQ-1001",
		StudentName:   "<Aarav>",
		Class:         "5",
	})

	if len(tr.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(tr.sent))
	}
	msg := tr.sent[0]
	if msg.To != "office@school.test" {
		t.Fatalf("To = %q", msg.To)
	}
	if !strings.Contains(msg.Subject, "ENQ-1001") {
		t.Fatalf("Subject = %q, want enquiry number", msg.Subject)
	}
	if strings.Contains(msg.HTMLBody, "<Aarav>") || !strings.Contains(msg.HTMLBody, "&lt;Aarav&gt;") {
		t.Fatal("student name was not escaped")
	}
}

func TestNotifySwallowsTransportErrors(t *testing.T) {
	var logs bytes.Buffer
	tr := &recordingTransport{err: errors.New("relay down")}
	n := NewNotifier(tr, "office@school.test", "Springdale", zerolog.New(&logs))

	n.NotifyEnquiry(context.Background(), EnquiryNotice{EnquiryNumber: "ENQ-1005", StudentName: "Mira"})

	if len(tr.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(tr.sent))
	}
	if !strings.Contains(logs.String(), "relay down") {
		t.Fatalf("expected transport error in logs, got %q", logs.String())
	}
}

func TestNotifyWithoutAdminAddressSkips(t *testing.T) {
	tr := &recordingTransport{}
	n := NewNotifier(tr, "", "Springdale", zerolog.Nop())
	n.NotifyEnquiry(context.Background(), EnquiryNotice{EnquiryNumber: "ENQ-1"})
	if len(tr.sent) != 0 {
		t.Fatalf("sent = %d, want 0", len(tr.sent))
	}
}

func TestBuildMessageHeaders(t *testing.T) {
	msg := string(buildMessage("Office", "office@school.test", "head@school.test", "Hi", "<p>x</p>"))
	if !strings.HasPrefix(msg, "From: Office <office@school.test>\r\nTo: head@school.test\r\nSubject: Hi\r\n") {
		t.Fatalf("unexpected headers: %q", msg)
	}
	if !strings.HasSuffix(msg, "\r\n\r\n<p>x</p>") {
		t.Fatalf("unexpected body: %q", msg)
	}
}

func TestBuildMessageFoldsInjectedHeaders(t *testing.T) {
	subject := "New admission form: A\r\nBcc: victim@evil.test\r\nX-Injected: 1 (ENQ-1001)"
	msg := string(buildMessage("Office", "office@school.test", "head@school.test", subject, "<p>x</p>"))

	head, _, _ := strings.Cut(msg, "\r\n\r\n")
	lines := strings.Split(head, "\r\n")
	if len(lines) != 5 {
		t.Fatalf("header lines = %q, want 5", lines)
	}
	for _, line := range lines {
		if strings.HasPrefix(line, "Bcc:") || strings.HasPrefix(line, "X-Injected:") {
			t.Fatalf("injected header %q", line)
		}
	}
	if lines[2] != "Subject: New admission form: A Bcc: victim@evil.test X-Injected: 1 (ENQ-1001)" {
		t.Fatalf("Subject line = %q", lines[2])
	}
}

func TestBuildMessageEncodesNonASCIISubject(t *testing.T) {
	msg := string(buildMessage("Office", "office@school.test", "head@school.test", "New admission form: आशा", "<p>x</p>"))
	want := "Subject: " + mime.QEncoding.Encode("utf-8", "New admission form: आशा") + "\r\n"
	if !strings.Contains(msg, want) {
		t.Fatalf("message %q does not contain %q", msg, want)
	}
	if !strings.Contains(msg, "Subject: =?utf-8?q?") {
		t.Fatalf("subject is not RFC 2047 encoded: %q", msg)
	}
}
