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

import "context"

// InvitationMail carries everything needed to render an invitation email.
type InvitationMail struct {
	Email       string
	OrgName     string
	Role        string
	InviterName string
	Token       string
	ExpiresAt   string
}

// VerificationMail carries the one-time code and link token for a
// verification email.
type VerificationMail struct {
	Email string
	Name  string
	Code  string
	Token string
}

// Notifier delivers transactional mail. Implementations must not retry
// internally; callers decide what a delivery failure means.
type Notifier interface {
	SendInvitation(ctx context.Context, mail InvitationMail) error
	SendVerification(ctx context.Context, mail VerificationMail) error
}
