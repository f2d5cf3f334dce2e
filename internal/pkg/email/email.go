package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Message is a single outgoing HTML email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

// Transport delivers messages.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
}

// NewTransport returns an SMTP transport when a host is configured and a no-op transport otherwise.
func NewTransport(config SMTPConfig, logger zerolog.Logger) Transport {
	if strings.TrimSpace(config.Host) == "" {
		logger.Warn().Msg("SMTP host not configured - notification emails will only be logged")
		return NoopTransport{logger: logger}
	}
	return &SMTPTransport{config: config, logger: logger}
}

// NoopTransport logs messages instead of sending them.
type NoopTransport struct {
	logger zerolog.Logger
}

// Send implements Transport
func (t NoopTransport) Send(_ context.Context, msg Message) error {
	t.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Msg("Email transport disabled, message dropped")
	return nil
}

// SMTPTransport sends messages through an SMTP relay.
type SMTPTransport struct {
	config SMTPConfig
	logger zerolog.Logger
}

// Send implements Transport
func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.sendHTMLEmail(msg.To, msg.Subject, msg.HTMLBody)
}

// headerValue folds a value onto one line so it cannot start new header fields.
func headerValue(v string) string {
	v = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(v)
	return strings.TrimSpace(v)
}

// buildMessage renders headers and body in a stable order.
// Display name and subject are RFC 2047 encoded when they are not plain ASCII.
func buildMessage(fromName, fromEmail, to, subject, htmlBody string) []byte {
	headers := [][2]string{
		{"From", fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", headerValue(fromName)), headerValue(fromEmail))},
		{"To", headerValue(to)},
		{"Subject", mime.QEncoding.Encode("utf-8", headerValue(subject))},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var b strings.Builder
	for _, h := range headers {
		fmt.Fprintf(&b, "%s: %s\r\n", h[0], h[1])
	}
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

// sendHTMLEmail sends an HTML email
func (t *SMTPTransport) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	var auth smtp.Auth
	if t.config.Username != "" {
		auth = smtp.PlainAuth("", t.config.Username, t.config.Password, t.config.Host)
	}

	message := buildMessage(t.config.FromName, t.config.FromEmail, toEmail, subject, htmlBody)
	serverAddress := t.config.Host + ":" + strconv.Itoa(t.config.Port)

	if !t.config.UseTLS {
		if err := smtp.SendMail(serverAddress, auth, t.config.FromEmail, []string{toEmail}, message); err != nil {
			t.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}

	conn, err := tls.Dial("tcp", serverAddress, &tls.Config{ServerName: t.config.Host})
	if err != nil {
		t.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to connect to SMTP server")
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, t.config.Host)
	if err != nil {
		t.logger.Error().Err(err).Msg("Failed to create SMTP client")
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Quit()

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			t.logger.Error().Err(err).Msg("SMTP authentication failed")
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err = client.Mail(t.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return nil
}
