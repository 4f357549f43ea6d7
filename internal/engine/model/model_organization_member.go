package model

import (
	"time"

	"gorm.io/datatypes"
)

// OrganizationMember links a user to an organization with a role. At most
// one row ever exists per (org, user) pair; leaving deactivates the row and
// rejoining reactivates it.
type OrganizationMember struct {
	ID          uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrgId       string         `gorm:"column:org_id;uniqueIndex:uniq_org_user" json:"orgId"`
	UserId      string         `gorm:"column:user_id;uniqueIndex:uniq_org_user" json:"userId"`
	Role        string         `gorm:"column:role" json:"role"`
	Permissions datatypes.JSON `gorm:"column:permissions;type:json" json:"permissions"`
	IsActive    bool           `gorm:"column:is_active" json:"isActive"`
	JoinedAt    time.Time      `gorm:"column:joined_at;autoCreateTime" json:"joinedAt"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (OrganizationMember) TableName() string {
	return "t_organization_member"
}

// Organization member roles, ordered owner > admin > worker.
const (
	OrgRoleOwner  = "owner"
	OrgRoleAdmin  = "admin"
	OrgRoleWorker = "worker"
)

// ValidRole reports whether role is one of the three member roles.
func ValidRole(role string) bool {
	switch role {
	case OrgRoleOwner, OrgRoleAdmin, OrgRoleWorker:
		return true
	}
	return false
}

// ValidInviteRole reports whether role may be granted through an
// invitation. Ownership is never granted by invite.
func ValidInviteRole(role string) bool {
	return role == OrgRoleAdmin || role == OrgRoleWorker
}

type UpdateMemberRoleReq struct {
	Role string `json:"role"`
}

type TransferOwnershipReq struct {
	NewOwnerUserId string `json:"newOwnerUserId"`
}

type MemberResp struct {
	OrgId    string    `json:"orgId"`
	UserId   string    `json:"userId"`
	Role     string    `json:"role"`
	IsActive bool      `json:"isActive"`
	JoinedAt time.Time `json:"joinedAt"`
}

func ToMemberResp(m *OrganizationMember) *MemberResp {
	return &MemberResp{
		OrgId:    m.OrgId,
		UserId:   m.UserId,
		Role:     m.Role,
		IsActive: m.IsActive,
		JoinedAt: m.JoinedAt,
	}
}
