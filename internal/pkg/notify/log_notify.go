package notify

import (
	"context"

	"github.com/minija-farm/minija/pkg/log"
)

// LogNotifier writes mail to the application log instead of delivering it.
// Used when no SMTP host is configured, typically in development.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) SendInvitation(ctx context.Context, mail InvitationMail) error {
	log.ForContext(ctx).Infow("invitation mail (log sink)",
		"email", mail.Email, "org", mail.OrgName, "role", mail.Role, "token", mail.Token)
	return nil
}

func (n *LogNotifier) SendVerification(ctx context.Context, mail VerificationMail) error {
	log.ForContext(ctx).Infow("verification mail (log sink)",
		"email", mail.Email, "code", mail.Code, "token", mail.Token)
	return nil
}
