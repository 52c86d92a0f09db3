package email

import (
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendHandoverReport_BuildsMultipartMessage(t *testing.T) {
	svc := NewEmailService(EmailConfig{
		SMTPHost:  "smtp.test",
		SMTPPort:  25,
		FromName:  "POS",
		FromEmail: "pos@example.com",
	})

	var gotAddr string
	var gotTo []string
	var gotMsg string
	svc.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	err := svc.SendHandoverReport([]string{"manager@example.com"}, HandoverReport{
		OutletName: "Main Restaurant",
		HandedBy:   "Asha",
		HandedTo:   "Ravi",
		Period:     "2026-10-18 08:00 to 16:00",
		Totals:     []HandoverLine{{Label: "Net", Value: "180.00"}},
		Payments:   []HandoverLine{{Label: "Cash", Value: "180.00"}},
	}, &Attachment{Filename: "handover.xlsx", ContentType: "application/octet-stream", Data: []byte("xlsx")})
	require.NoError(t, err)

	assert.Equal(t, "smtp.test:25", gotAddr)
	assert.Equal(t, []string{"manager@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: Shift handover - Main Restaurant")
	assert.Contains(t, gotMsg, "multipart/mixed")
	assert.Contains(t, gotMsg, `filename="handover.xlsx"`)
	assert.True(t, strings.Contains(gotMsg, "Handed over by <strong>Asha</strong>"))
}

func TestSendHandoverReport_NotConfigured(t *testing.T) {
	svc := NewEmailService(EmailConfig{})
	err := svc.SendHandoverReport([]string{"a@example.com"}, HandoverReport{}, nil)
	assert.Error(t, err)
}
