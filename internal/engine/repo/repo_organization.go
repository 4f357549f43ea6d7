package repo

import (
	"github.com/minija-farm/minija/internal/engine/model"
	"github.com/minija-farm/minija/pkg/database"
	"gorm.io/gorm"
)

type IOrganizationRepository interface {
	CreateWithOwner(org *model.Organization, owner *model.OrganizationMember) error
	GetByOrgId(orgId string) (*model.Organization, error)
	GetActiveByOrgId(orgId string) (*model.Organization, error)
	SlugExists(slug string) (bool, error)
	Update(orgId string, updates map[string]interface{}) error
	Deactivate(orgId string) error
	ListByUser(userId string) ([]model.Organization, error)
	TransferOwnership(orgId, currentOwnerId, newOwnerId string) error
}

type OrganizationRepo struct {
	db database.IDatabase
}

func NewOrganizationRepo(db database.IDatabase) IOrganizationRepository {
	return &OrganizationRepo{db: db}
}

// CreateWithOwner persists the organization and its owner membership as
// one atomic unit.
func (r *OrganizationRepo) CreateWithOwner(org *model.Organization, owner *model.OrganizationMember) error {
	return r.db.Database().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return err
		}
		return tx.Create(owner).Error
	})
}

func (r *OrganizationRepo) GetByOrgId(orgId string) (*model.Organization, error) {
	var org model.Organization
	err := r.db.Database().Where("org_id = ?", orgId).First(&org).Error
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepo) GetActiveByOrgId(orgId string) (*model.Organization, error) {
	var org model.Organization
	err := r.db.Database().Where("org_id = ? AND is_active = ?", orgId, true).First(&org).Error
	if err != nil {
		return nil, err
	}
	return &org, nil
}

func (r *OrganizationRepo) SlugExists(slug string) (bool, error) {
	var count int64
	err := r.db.Database().Model(&model.Organization{}).
		Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

func (r *OrganizationRepo) Update(orgId string, updates map[string]interface{}) error {
	return r.db.Database().Model(&model.Organization{}).
		Where("org_id = ?", orgId).
		Updates(updates).Error
}

// Deactivate soft-deletes the organization. Memberships and invitations
// stay on record for audit, unreachable through active-org queries.
func (r *OrganizationRepo) Deactivate(orgId string) error {
	return r.db.Database().Model(&model.Organization{}).
		Where("org_id = ?", orgId).
		Update("is_active", false).Error
}

func (r *OrganizationRepo) ListByUser(userId string) ([]model.Organization, error) {
	var orgs []model.Organization
	err := r.db.Database().
		Joins("JOIN t_organization_member m ON m.org_id = t_organization.org_id").
		Where("m.user_id = ? AND m.is_active = ? AND t_organization.is_active = ?", userId, true, true).
		Find(&orgs).Error
	return orgs, err
}

// TransferOwnership demotes the current owner to admin, promotes the new
// owner and swaps the recorded owner in one transaction. No intermediate
// state with zero or two owners is ever visible.
func (r *OrganizationRepo) TransferOwnership(orgId, currentOwnerId, newOwnerId string) error {
	return r.db.Database().Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.OrganizationMember{}).
			Where("org_id = ? AND user_id = ? AND role = ?", orgId, currentOwnerId, model.OrgRoleOwner).
			Update("role", model.OrgRoleAdmin)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		res = tx.Model(&model.OrganizationMember{}).
			Where("org_id = ? AND user_id = ? AND is_active = ?", orgId, newOwnerId, true).
			Update("role", model.OrgRoleOwner)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return tx.Model(&model.Organization{}).
			Where("org_id = ?", orgId).
			Update("owner_user_id", newOwnerId).Error
	})
}
