package model

import "time"

// OrganizationInvitation is a time-boxed, single-use offer for an email
// address to join an organization at a given role.
type OrganizationInvitation struct {
	BaseModel
	InvitationId string     `gorm:"column:invitation_id;uniqueIndex" json:"invitationId"`
	OrgId        string     `gorm:"column:org_id" json:"orgId"`
	Email        string     `gorm:"column:email" json:"email"`
	Role         string     `gorm:"column:role" json:"role"`
	InvitedBy    string     `gorm:"column:invited_by" json:"invitedBy"`
	Token        string     `gorm:"column:token;uniqueIndex" json:"-"`
	Status       string     `gorm:"column:status" json:"status"`
	ExpiresAt    time.Time  `gorm:"column:expires_at" json:"expiresAt"`
	AcceptedAt   *time.Time `gorm:"column:accepted_at" json:"acceptedAt,omitempty"`
}

func (OrganizationInvitation) TableName() string {
	return "t_organization_invitation"
}

// Invitation statuses. pending is the only non-terminal status.
const (
	InvitationStatusPending  = "pending"
	InvitationStatusAccepted = "accepted"
	InvitationStatusExpired  = "expired"
	InvitationStatusRevoked  = "revoked"
)

type InviteMemberReq struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

type AcceptInvitationReq struct {
	Token string `json:"token"`
}

type InvitationResp struct {
	InvitationId string     `json:"invitationId"`
	OrgId        string     `json:"orgId"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	InvitedBy    string     `json:"invitedBy"`
	Status       string     `json:"status"`
	ExpiresAt    time.Time  `json:"expiresAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	AcceptedAt   *time.Time `json:"acceptedAt,omitempty"`
}

func ToInvitationResp(inv *OrganizationInvitation) *InvitationResp {
	return &InvitationResp{
		InvitationId: inv.InvitationId,
		OrgId:        inv.OrgId,
		Email:        inv.Email,
		Role:         inv.Role,
		InvitedBy:    inv.InvitedBy,
		Status:       inv.Status,
		ExpiresAt:    inv.ExpiresAt,
		CreatedAt:    inv.CreatedAt,
		AcceptedAt:   inv.AcceptedAt,
	}
}
