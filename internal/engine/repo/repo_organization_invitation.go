package repo

import (
	"time"

	"github.com/minija-farm/minija/internal/engine/model"
	"github.com/minija-farm/minija/pkg/database"
	"gorm.io/gorm"
)

type IOrganizationInvitationRepository interface {
	CreateReplacingPending(inv *model.OrganizationInvitation) error
	GetById(invitationId string) (*model.OrganizationInvitation, error)
	GetPendingByToken(token string) (*model.OrganizationInvitation, error)
	Accept(invitationId string, acceptedAt time.Time, member *model.OrganizationMember) error
	MarkExpired(invitationId string) error
	Revoke(invitationId string) error
	ListPendingByEmail(email string) ([]model.OrganizationInvitation, error)
	ListByOrg(orgId string) ([]model.OrganizationInvitation, error)
	ExpireOverdue(now time.Time) (int64, error)
}

type OrganizationInvitationRepo struct {
	db database.IDatabase
}

func NewOrganizationInvitationRepo(db database.IDatabase) IOrganizationInvitationRepository {
	return &OrganizationInvitationRepo{db: db}
}

// CreateReplacingPending revokes any pending invitation for the same
// (org, email) pair and creates the new one in a single transaction, so at
// most one pending invitation per pair ever exists.
func (r *OrganizationInvitationRepo) CreateReplacingPending(inv *model.OrganizationInvitation) error {
	return r.db.Database().Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.OrganizationInvitation{}).
			Where("org_id = ? AND email = ? AND status = ?", inv.OrgId, inv.Email, model.InvitationStatusPending).
			Update("status", model.InvitationStatusRevoked).Error; err != nil {
			return err
		}
		return tx.Create(inv).Error
	})
}

func (r *OrganizationInvitationRepo) GetById(invitationId string) (*model.OrganizationInvitation, error) {
	var inv model.OrganizationInvitation
	err := r.db.Database().Where("invitation_id = ?", invitationId).First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *OrganizationInvitationRepo) GetPendingByToken(token string) (*model.OrganizationInvitation, error) {
	var inv model.OrganizationInvitation
	err := r.db.Database().
		Where("token = ? AND status = ?", token, model.InvitationStatusPending).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Accept flips the invitation to accepted and reactivates or creates the
// membership in one transaction. The guarded status update makes the token
// single-use: a concurrent replay loses the race and gets ErrRecordNotFound.
func (r *OrganizationInvitationRepo) Accept(invitationId string, acceptedAt time.Time, member *model.OrganizationMember) error {
	return r.db.Database().Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.OrganizationInvitation{}).
			Where("invitation_id = ? AND status = ?", invitationId, model.InvitationStatusPending).
			Updates(map[string]interface{}{
				"status":      model.InvitationStatusAccepted,
				"accepted_at": acceptedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return reactivateOrCreate(tx, member)
	})
}

func (r *OrganizationInvitationRepo) MarkExpired(invitationId string) error {
	return r.db.Database().Model(&model.OrganizationInvitation{}).
		Where("invitation_id = ? AND status = ?", invitationId, model.InvitationStatusPending).
		Update("status", model.InvitationStatusExpired).Error
}

func (r *OrganizationInvitationRepo) Revoke(invitationId string) error {
	res := r.db.Database().Model(&model.OrganizationInvitation{}).
		Where("invitation_id = ? AND status = ?", invitationId, model.InvitationStatusPending).
		Update("status", model.InvitationStatusRevoked)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *OrganizationInvitationRepo) ListPendingByEmail(email string) ([]model.OrganizationInvitation, error) {
	var invs []model.OrganizationInvitation
	err := r.db.Database().
		Where("email = ? AND status = ? AND expires_at > ?", email, model.InvitationStatusPending, time.Now()).
		Order("created_at DESC").
		Find(&invs).Error
	return invs, err
}

func (r *OrganizationInvitationRepo) ListByOrg(orgId string) ([]model.OrganizationInvitation, error) {
	var invs []model.OrganizationInvitation
	err := r.db.Database().
		Where("org_id = ?", orgId).
		Order("created_at DESC").
		Find(&invs).Error
	return invs, err
}

// ExpireOverdue flips every pending invitation past its deadline to
// expired. Called from the maintenance sweep.
func (r *OrganizationInvitationRepo) ExpireOverdue(now time.Time) (int64, error) {
	res := r.db.Database().Model(&model.OrganizationInvitation{}).
		Where("status = ? AND expires_at <= ?", model.InvitationStatusPending, now).
		Update("status", model.InvitationStatusExpired)
	return res.RowsAffected, res.Error
}
