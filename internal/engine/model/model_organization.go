package model

import "gorm.io/datatypes"

// Organization is the tenant container grouping users and farm data.
type Organization struct {
	BaseModel
	OrgId       string         `gorm:"column:org_id;uniqueIndex" json:"orgId"`
	Name        string         `gorm:"column:name" json:"name"`
	Slug        string         `gorm:"column:slug;uniqueIndex" json:"slug"`
	Description string         `gorm:"column:description" json:"description"`
	OwnerUserId string         `gorm:"column:owner_user_id" json:"ownerUserId"`
	Settings    datatypes.JSON `gorm:"column:settings;type:json" json:"settings"`
	IsActive    bool           `gorm:"column:is_active" json:"isActive"`
}

func (Organization) TableName() string {
	return "t_organization"
}

type CreateOrgReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateOrgReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type OrgResp struct {
	OrgId       string `json:"orgId"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	OwnerUserId string `json:"ownerUserId"`
	IsActive    bool   `json:"isActive"`
	MemberCount int64  `json:"memberCount,omitempty"`
}

func ToOrgResp(org *Organization) *OrgResp {
	return &OrgResp{
		OrgId:       org.OrgId,
		Name:        org.Name,
		Slug:        org.Slug,
		Description: org.Description,
		OwnerUserId: org.OwnerUserId,
		IsActive:    org.IsActive,
	}
}
