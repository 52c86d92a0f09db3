package email

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"
)

// EmailConfig holds SMTP configuration
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
}

// Attachment is a file sent along with a message
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// HandoverLine is one label/value row in the handover report
type HandoverLine struct {
	Label string
	Value string
}

// HandoverReport is the data rendered into the handover email
type HandoverReport struct {
	OutletName string
	HandedBy   string
	HandedTo   string
	Period     string
	Totals     []HandoverLine
	Payments   []HandoverLine
	Variance   string
}

// EmailService handles email sending
type EmailService struct {
	config EmailConfig
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewEmailService creates a new email service
func NewEmailService(config EmailConfig) *EmailService {
	return &EmailService{config: config, send: smtp.SendMail}
}

// IsConfigured reports whether an SMTP server is set
func (s *EmailService) IsConfigured() bool {
	return s.config.SMTPHost != "" && s.config.FromEmail != ""
}

// SendHandoverReport mails a shift handover summary with its spreadsheet attached
func (s *EmailService) SendHandoverReport(to []string, report HandoverReport, attachment *Attachment) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email is not configured")
	}
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	htmlContent, err := renderHandoverReport(report)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Shift handover - %s - %s", report.OutletName, report.Period)
	message, err := s.buildMessage(to, subject, htmlContent, attachment)
	if err != nil {
		return err
	}
	return s.sendEmail(to, message)
}

// sendEmail sends an email using SMTP
func (s *EmailService) sendEmail(to []string, message []byte) error {
	addr := fmt.Sprintf("%s:%d", s.config.SMTPHost, s.config.SMTPPort)

	var auth smtp.Auth
	if s.config.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
	}

	if err := s.send(addr, auth, s.config.FromEmail, to, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// buildMessage builds a multipart/mixed message with an HTML body and an
// optional attachment
func (s *EmailService) buildMessage(to []string, subject, htmlBody string, attachment *Attachment) ([]byte, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	htmlPart, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/html; charset="UTF-8"`},
	})
	if err != nil {
		return nil, err
	}
	if _, err := htmlPart.Write([]byte(htmlBody)); err != nil {
		return nil, err
	}

	if attachment != nil {
		part, err := writer.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {attachment.ContentType},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {fmt.Sprintf(`attachment; filename="%s"`, attachment.Filename)},
		})
		if err != nil {
			return nil, err
		}
		encoded := base64.StdEncoding.EncodeToString(attachment.Data)
		for len(encoded) > 76 {
			part.Write([]byte(encoded[:76] + "\r\n"))
			encoded = encoded[76:]
		}
		part.Write([]byte(encoded + "\r\n"))
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	headers := fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: multipart/mixed; boundary=%s\r\n"+
			"\r\n",
		s.config.FromName,
		s.config.FromEmail,
		strings.Join(to, ", "),
		subject,
		writer.Boundary(),
	)
	return append([]byte(headers), body.Bytes()...), nil
}

func renderHandoverReport(report HandoverReport) (string, error) {
	tmpl, err := template.New("handover").Parse(handoverTemplate)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, report); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// handoverTemplate is the HTML template for handover report emails
const handoverTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Shift handover</title>
</head>
<body style="margin: 0; padding: 0; font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; background-color: #f4f7fa;">
    <table role="presentation" style="max-width: 600px; margin: 24px auto; background-color: #ffffff; border-collapse: collapse;">
        <tr>
            <td style="background-color: #1a1a2e; padding: 24px; color: #ffffff;">
                <h1 style="margin: 0; font-size: 22px;">{{.OutletName}}</h1>
                <p style="margin: 8px 0 0 0; font-size: 14px;">Shift handover {{.Period}}</p>
            </td>
        </tr>
        <tr>
            <td style="padding: 24px; color: #4a5568; font-size: 15px;">
                <p style="margin: 0 0 16px 0;">Handed over by <strong>{{.HandedBy}}</strong> to <strong>{{.HandedTo}}</strong>.</p>
                <table role="presentation" style="width: 100%; border-collapse: collapse;">
                    {{range .Totals}}
                    <tr>
                        <td style="padding: 6px 0; border-bottom: 1px solid #e2e8f0;">{{.Label}}</td>
                        <td style="padding: 6px 0; border-bottom: 1px solid #e2e8f0; text-align: right;">{{.Value}}</td>
                    </tr>
                    {{end}}
                </table>
                <h2 style="font-size: 17px; margin: 24px 0 8px 0;">Payments</h2>
                <table role="presentation" style="width: 100%; border-collapse: collapse;">
                    {{range .Payments}}
                    <tr>
                        <td style="padding: 6px 0; border-bottom: 1px solid #e2e8f0;">{{.Label}}</td>
                        <td style="padding: 6px 0; border-bottom: 1px solid #e2e8f0; text-align: right;">{{.Value}}</td>
                    </tr>
                    {{end}}
                </table>
                {{if .Variance}}<p style="margin: 16px 0 0 0;">Cash variance: <strong>{{.Variance}}</strong></p>{{end}}
            </td>
        </tr>
    </table>
</body>
</html>
`
