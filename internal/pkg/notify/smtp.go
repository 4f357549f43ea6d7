// Copyright 2025 Minija Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"text/template"
)

// Smtp is the mail delivery configuration.
type Smtp struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	From     string `mapstructure:"from"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	BaseURL  string `mapstructure:"baseUrl"`
}

func (s *Smtp) Validate() error {
	if s.Host == "" {
		return fmt.Errorf("smtp host is required")
	}
	if s.Port <= 0 {
		return fmt.Errorf("smtp port is required")
	}
	if s.From == "" {
		return fmt.Errorf("smtp from address is required")
	}
	return nil
}

var invitationTmpl = template.Must(template.New("invitation").Parse(
	`Hello,

{{.InviterName}} has invited you to join {{.OrgName}} as {{.Role}}.

Accept the invitation here:
{{.BaseURL}}/invitations/accept?token={{.Token}}

The invitation expires on {{.ExpiresAt}}.
`))

var verificationTmpl = template.Must(template.New("verification").Parse(
	`Hello {{.Name}},

Your verification code is {{.Code}}.

Or verify directly with this link:
{{.BaseURL}}/auth/verify-email/{{.Token}}

If you did not request this, you can ignore this message.
`))

// SMTPNotifier sends transactional mail over plain SMTP.
type SMTPNotifier struct {
	conf Smtp
}

func NewSMTPNotifier(conf Smtp) *SMTPNotifier {
	return &SMTPNotifier{conf: conf}
}

func (n *SMTPNotifier) SendInvitation(ctx context.Context, mail InvitationMail) error {
	body, err := render(invitationTmpl, struct {
		InvitationMail
		BaseURL string
	}{mail, n.conf.BaseURL})
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("You have been invited to join %s", mail.OrgName)
	return n.send(ctx, mail.Email, subject, body)
}

func (n *SMTPNotifier) SendVerification(ctx context.Context, mail VerificationMail) error {
	body, err := render(verificationTmpl, struct {
		VerificationMail
		BaseURL string
	}{mail, n.conf.BaseURL})
	if err != nil {
		return err
	}
	return n.send(ctx, mail.Email, "Verify your email address", body)
}

func render(tmpl *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render mail template: %w", err)
	}
	return buf.String(), nil
}

func (n *SMTPNotifier) send(_ context.Context, to, subject, body string) error {
	if err := n.conf.Validate(); err != nil {
		return err
	}

	msg := "From: " + n.conf.From + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body

	var auth smtp.Auth
	if n.conf.Username != "" {
		auth = smtp.PlainAuth("", n.conf.Username, n.conf.Password, n.conf.Host)
	}

	addr := fmt.Sprintf("%s:%d", n.conf.Host, n.conf.Port)
	if err := smtp.SendMail(addr, auth, n.conf.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
