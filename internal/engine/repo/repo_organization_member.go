package repo

import (
	"errors"

	"github.com/minija-farm/minija/internal/engine/model"
	"github.com/minija-farm/minija/pkg/database"
	"gorm.io/gorm"
)

type IOrganizationMemberRepository interface {
	Get(orgId, userId string) (*model.OrganizationMember, error)
	GetActive(orgId, userId string) (*model.OrganizationMember, error)
	ListActive(orgId string) ([]model.OrganizationMember, error)
	CountActive(orgId string) (int64, error)
	FirstActiveByUser(userId string) (*model.OrganizationMember, error)
	HasActiveByEmail(orgId, email string) (bool, error)
	UpdateRole(orgId, userId, role string) error
	Deactivate(orgId, userId string) error
}

type OrganizationMemberRepo struct {
	db database.IDatabase
}

func NewOrganizationMemberRepo(db database.IDatabase) IOrganizationMemberRepository {
	return &OrganizationMemberRepo{db: db}
}

func (r *OrganizationMemberRepo) Get(orgId, userId string) (*model.OrganizationMember, error) {
	var member model.OrganizationMember
	err := r.db.Database().
		Where("org_id = ? AND user_id = ?", orgId, userId).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *OrganizationMemberRepo) GetActive(orgId, userId string) (*model.OrganizationMember, error) {
	var member model.OrganizationMember
	err := r.db.Database().
		Where("org_id = ? AND user_id = ? AND is_active = ?", orgId, userId, true).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *OrganizationMemberRepo) ListActive(orgId string) ([]model.OrganizationMember, error) {
	var members []model.OrganizationMember
	err := r.db.Database().
		Where("org_id = ? AND is_active = ?", orgId, true).
		Order("joined_at").
		Find(&members).Error
	return members, err
}

func (r *OrganizationMemberRepo) CountActive(orgId string) (int64, error) {
	var count int64
	err := r.db.Database().Model(&model.OrganizationMember{}).
		Where("org_id = ? AND is_active = ?", orgId, true).Count(&count).Error
	return count, err
}

// FirstActiveByUser returns the user's oldest active membership in an
// active organization, used as the request-context default.
func (r *OrganizationMemberRepo) FirstActiveByUser(userId string) (*model.OrganizationMember, error) {
	var member model.OrganizationMember
	err := r.db.Database().
		Joins("JOIN t_organization o ON o.org_id = t_organization_member.org_id").
		Where("t_organization_member.user_id = ? AND t_organization_member.is_active = ? AND o.is_active = ?", userId, true, true).
		Order("t_organization_member.joined_at").
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// HasActiveByEmail reports whether the email belongs to an active member
// of the organization.
func (r *OrganizationMemberRepo) HasActiveByEmail(orgId, email string) (bool, error) {
	var count int64
	err := r.db.Database().Model(&model.OrganizationMember{}).
		Joins("JOIN t_user u ON u.user_id = t_organization_member.user_id").
		Where("t_organization_member.org_id = ? AND t_organization_member.is_active = ? AND u.email = ?", orgId, true, email).
		Count(&count).Error
	return count > 0, err
}

func (r *OrganizationMemberRepo) UpdateRole(orgId, userId, role string) error {
	res := r.db.Database().Model(&model.OrganizationMember{}).
		Where("org_id = ? AND user_id = ? AND is_active = ?", orgId, userId, true).
		Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *OrganizationMemberRepo) Deactivate(orgId, userId string) error {
	res := r.db.Database().Model(&model.OrganizationMember{}).
		Where("org_id = ? AND user_id = ? AND is_active = ?", orgId, userId, true).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// reactivateOrCreate reactivates an existing (org, user) row with the new
// role, or creates one. Runs inside the caller's transaction so invitation
// acceptance stays atomic. Never produces a second row for the same pair.
func reactivateOrCreate(tx *gorm.DB, member *model.OrganizationMember) error {
	var existing model.OrganizationMember
	err := tx.Where("org_id = ? AND user_id = ?", member.OrgId, member.UserId).
		First(&existing).Error
	if err == nil {
		return tx.Model(&model.OrganizationMember{}).
			Where("org_id = ? AND user_id = ?", member.OrgId, member.UserId).
			Updates(map[string]interface{}{
				"is_active": true,
				"role":      member.Role,
			}).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return tx.Create(member).Error
}
