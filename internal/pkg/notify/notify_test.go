package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmtpValidate(t *testing.T) {
	conf := Smtp{Host: "smtp.example.com", Port: 587, From: "noreply@example.com"}
	assert.NoError(t, conf.Validate())

	assert.Error(t, (&Smtp{Port: 587, From: "a@b.c"}).Validate())
	assert.Error(t, (&Smtp{Host: "h", From: "a@b.c"}).Validate())
	assert.Error(t, (&Smtp{Host: "h", Port: 587}).Validate())
}

func TestInvitationTemplate(t *testing.T) {
	body, err := render(invitationTmpl, struct {
		InvitationMail
		BaseURL string
	}{
		InvitationMail: InvitationMail{
			Email:       "new@example.com",
			OrgName:     "Green Acres",
			Role:        "worker",
			InviterName: "Jonas Petraitis",
			Token:       "tok-123",
			ExpiresAt:   "Mon, 07 Sep 2026 12:00:00 UTC",
		},
		BaseURL: "https://app.example.com",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "Jonas Petraitis has invited you to join Green Acres as worker")
	assert.Contains(t, body, "https://app.example.com/invitations/accept?token=tok-123")
	assert.Contains(t, body, "Mon, 07 Sep 2026 12:00:00 UTC")
}

func TestVerificationTemplate(t *testing.T) {
	body, err := render(verificationTmpl, struct {
		VerificationMail
		BaseURL string
	}{
		VerificationMail: VerificationMail{
			Email: "jonas@example.com",
			Name:  "Jonas",
			Code:  "042431",
			Token: "tok-456",
		},
		BaseURL: "https://app.example.com",
	})
	require.NoError(t, err)
	assert.Contains(t, body, "Your verification code is 042431")
	assert.Contains(t, body, "https://app.example.com/auth/verify-email/tok-456")
}
