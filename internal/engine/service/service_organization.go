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

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/minija-farm/minija/internal/engine/config"
	"github.com/minija-farm/minija/internal/engine/errs"
	"github.com/minija-farm/minija/internal/engine/model"
	"github.com/minija-farm/minija/internal/engine/perm"
	"github.com/minija-farm/minija/internal/engine/repo"
	"github.com/minija-farm/minija/internal/engine/tool"
	"github.com/minija-farm/minija/internal/pkg/notify"
	"github.com/minija-farm/minija/pkg/id"
	"github.com/minija-farm/minija/pkg/log"
	"gorm.io/gorm"
)

// OrganizationService coordinates tenants, memberships and the invitation
// workflow. Authorization failures for callers who are not active members
// surface as not-found, so probing cannot confirm an org exists.
type OrganizationService struct {
	orgRepo    repo.IOrganizationRepository
	memberRepo repo.IOrganizationMemberRepository
	invRepo    repo.IOrganizationInvitationRepository
	userRepo   repo.IUserRepository
	notifier   notify.Notifier
	conf       config.InvitationConfig
}

func NewOrganizationService(
	orgRepo repo.IOrganizationRepository,
	memberRepo repo.IOrganizationMemberRepository,
	invRepo repo.IOrganizationInvitationRepository,
	userRepo repo.IUserRepository,
	notifier notify.Notifier,
	conf config.InvitationConfig,
) *OrganizationService {
	return &OrganizationService{
		orgRepo:    orgRepo,
		memberRepo: memberRepo,
		invRepo:    invRepo,
		userRepo:   userRepo,
		notifier:   notifier,
		conf:       conf,
	}
}

// Create makes a new organization owned by the caller, who joins it as an
// active owner member in the same transaction.
func (os *OrganizationService) Create(ownerUserId string, req *model.CreateOrgReq) (*model.OrgResp, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errs.Validationf("organization name is required")
	}

	// Two callers can see the same slug as free; the loser hits the
	// unique index and goes around for the next suffix.
	for attempt := 0; attempt < slugInsertRetries; attempt++ {
		slug, err := os.uniqueSlug(name)
		if err != nil {
			return nil, err
		}

		org := &model.Organization{
			OrgId:       id.GetUUIDWithoutDashes(),
			Name:        name,
			Slug:        slug,
			Description: req.Description,
			OwnerUserId: ownerUserId,
			IsActive:    true,
		}
		owner := &model.OrganizationMember{
			OrgId:    org.OrgId,
			UserId:   ownerUserId,
			Role:     model.OrgRoleOwner,
			IsActive: true,
		}
		err = os.orgRepo.CreateWithOwner(org, owner)
		if err == nil {
			return model.ToOrgResp(org), nil
		}
		if !repo.IsDuplicateKey(err) {
			return nil, err
		}
	}
	return nil, errs.Conflictf("organization name %q is taken", name)
}

// CreateDefault provisions the personal organization every user gets on
// registration.
func (os *OrganizationService) CreateDefault(user *model.User) (*model.OrgResp, error) {
	name := fmt.Sprintf("%s's Farm", user.FullName())
	return os.Create(user.UserId, &model.CreateOrgReq{Name: name})
}

// slugInsertRetries bounds how often Create re-derives a slug after losing
// an insert race on the unique index.
const slugInsertRetries = 3

// uniqueSlug derives a slug from the name, appending -1, -2, ... until it
// is free. Uniqueness is finally enforced by the database index; a race
// there sends Create around for another suffix.
func (os *OrganizationService) uniqueSlug(name string) (string, error) {
	base := tool.Slugify(name)
	slug := base
	for i := 1; ; i++ {
		exists, err := os.orgRepo.SlugExists(slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// Get returns the organization if the caller is an active member of it.
func (os *OrganizationService) Get(orgId, userId string) (*model.OrgResp, error) {
	org, _, err := os.requireMember(orgId, userId)
	if err != nil {
		return nil, err
	}
	resp := model.ToOrgResp(org)
	if count, err := os.memberRepo.CountActive(orgId); err == nil {
		resp.MemberCount = count
	}
	return resp, nil
}

// ListByUser returns every active organization the user belongs to.
func (os *OrganizationService) ListByUser(userId string) ([]model.OrgResp, error) {
	orgs, err := os.orgRepo.ListByUser(userId)
	if err != nil {
		return nil, err
	}
	resp := make([]model.OrgResp, 0, len(orgs))
	for i := range orgs {
		resp = append(resp, *model.ToOrgResp(&orgs[i]))
	}
	return resp, nil
}

// Update changes the organization's name or description. Admin or owner
// only. Changing the name does not change the slug.
func (os *OrganizationService) Update(orgId, userId string, req *model.UpdateOrgReq) error {
	_, member, err := os.requireMember(orgId, userId)
	if err != nil {
		return err
	}
	if !perm.IsAdmin(member) {
		return errs.Authorizationf("admin role required")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return errs.Validationf("organization name cannot be empty")
		}
		updates["name"] = name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if len(updates) == 0 {
		return nil
	}
	return os.orgRepo.Update(orgId, updates)
}

// Deactivate soft-deletes the organization. Owner only.
func (os *OrganizationService) Deactivate(orgId, userId string) error {
	_, member, err := os.requireMember(orgId, userId)
	if err != nil {
		return err
	}
	if !perm.IsOwner(member) {
		return errs.Authorizationf("only the owner can deactivate the organization")
	}
	return os.orgRepo.Deactivate(orgId)
}

// InviteMember creates a pending invitation and emails the invite link. A
// previous pending invitation for the same address is revoked so only the
// newest token works.
func (os *OrganizationService) InviteMember(ctx context.Context, orgId, inviterId string, req *model.InviteMemberReq) (*model.InvitationResp, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, errs.Validationf("email is required")
	}
	if !model.ValidInviteRole(req.Role) {
		return nil, errs.Validationf("role must be %s or %s", model.OrgRoleAdmin, model.OrgRoleWorker)
	}

	org, inviter, err := os.requireMember(orgId, inviterId)
	if err != nil {
		return nil, err
	}
	if !perm.IsAdmin(inviter) {
		return nil, errs.Authorizationf("admin role required to invite members")
	}

	already, err := os.memberRepo.HasActiveByEmail(orgId, email)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, errs.Conflictf("%s is already a member", email)
	}

	count, err := os.memberRepo.CountActive(orgId)
	if err != nil {
		return nil, err
	}
	if count >= int64(os.conf.MemberLimit) {
		return nil, errs.Conflictf("member limit of %d reached", os.conf.MemberLimit)
	}

	inv := &model.OrganizationInvitation{
		InvitationId: id.GetUUIDWithoutDashes(),
		OrgId:        orgId,
		Email:        email,
		Role:         req.Role,
		InvitedBy:    inviterId,
		Token:        id.GetUUID(),
		Status:       model.InvitationStatusPending,
		ExpiresAt:    time.Now().Add(time.Duration(os.conf.ExpiryDays) * 24 * time.Hour),
	}
	if err := os.invRepo.CreateReplacingPending(inv); err != nil {
		return nil, err
	}

	inviterName := inviterId
	if u, err := os.userRepo.GetByUserId(inviterId); err == nil {
		inviterName = u.FullName()
	}
	mail := notify.InvitationMail{
		Email:       email,
		OrgName:     org.Name,
		Role:        inv.Role,
		InviterName: inviterName,
		Token:       inv.Token,
		ExpiresAt:   inv.ExpiresAt.Format(time.RFC1123),
	}
	if err := os.notifier.SendInvitation(ctx, mail); err != nil {
		// the invitation stands, the inviter can re-send or share the link
		log.ForContext(ctx).Errorw("invitation mail delivery failed",
			"orgId", orgId, "email", email, "error", err)
	}
	return model.ToInvitationResp(inv), nil
}

// AcceptInvitation redeems a pending token for the authenticated user. The
// invited email must match the user's email. Expiry is checked lazily, so
// an overdue invitation is flipped to expired on first touch.
func (os *OrganizationService) AcceptInvitation(userId, token string) (*model.MemberResp, error) {
	user, err := os.userRepo.GetByUserId(userId)
	if err != nil {
		return nil, err
	}

	inv, err := os.invRepo.GetPendingByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("invitation")
		}
		return nil, err
	}

	if time.Now().After(inv.ExpiresAt) {
		if err := os.invRepo.MarkExpired(inv.InvitationId); err != nil {
			log.Errorw("failed to mark invitation expired",
				"invitationId", inv.InvitationId, "error", err)
		}
		return nil, errs.Statef("invitation has expired")
	}

	if !strings.EqualFold(user.Email, inv.Email) {
		return nil, errs.Authorizationf("invitation was issued to a different email address")
	}

	count, err := os.memberRepo.CountActive(inv.OrgId)
	if err != nil {
		return nil, err
	}
	if count >= int64(os.conf.MemberLimit) {
		return nil, errs.Conflictf("member limit of %d reached", os.conf.MemberLimit)
	}

	member := &model.OrganizationMember{
		OrgId:    inv.OrgId,
		UserId:   userId,
		Role:     inv.Role,
		IsActive: true,
	}
	if err := os.invRepo.Accept(inv.InvitationId, time.Now(), member); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// lost the race with a concurrent accept or revoke
			return nil, errs.NotFoundf("invitation")
		}
		return nil, err
	}
	return model.ToMemberResp(member), nil
}

// RevokeInvitation cancels a pending invitation. Admin or owner only.
func (os *OrganizationService) RevokeInvitation(orgId, userId, invitationId string) error {
	_, member, err := os.requireMember(orgId, userId)
	if err != nil {
		return err
	}
	if !perm.IsAdmin(member) {
		return errs.Authorizationf("admin role required to revoke invitations")
	}

	inv, err := os.invRepo.GetById(invitationId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFoundf("invitation %s", invitationId)
		}
		return err
	}
	if inv.OrgId != orgId {
		return errs.NotFoundf("invitation %s", invitationId)
	}
	if err := os.invRepo.Revoke(invitationId); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.Statef("invitation is no longer pending")
		}
		return err
	}
	return nil
}

// ListInvitations returns the organization's invitations, newest first.
// Admin or owner only.
func (os *OrganizationService) ListInvitations(orgId, userId string) ([]model.InvitationResp, error) {
	_, member, err := os.requireMember(orgId, userId)
	if err != nil {
		return nil, err
	}
	if !perm.IsAdmin(member) {
		return nil, errs.Authorizationf("admin role required to list invitations")
	}
	invs, err := os.invRepo.ListByOrg(orgId)
	if err != nil {
		return nil, err
	}
	resp := make([]model.InvitationResp, 0, len(invs))
	for i := range invs {
		resp = append(resp, *model.ToInvitationResp(&invs[i]))
	}
	return resp, nil
}

// ListPendingForUser returns the live invitations addressed to the user's
// email, for the "you have been invited" surface.
func (os *OrganizationService) ListPendingForUser(userId string) ([]model.InvitationResp, error) {
	user, err := os.userRepo.GetByUserId(userId)
	if err != nil {
		return nil, err
	}
	invs, err := os.invRepo.ListPendingByEmail(strings.ToLower(user.Email))
	if err != nil {
		return nil, err
	}
	resp := make([]model.InvitationResp, 0, len(invs))
	for i := range invs {
		resp = append(resp, *model.ToInvitationResp(&invs[i]))
	}
	return resp, nil
}

// ListMembers returns the active members ordered by join time.
func (os *OrganizationService) ListMembers(orgId, userId string) ([]model.MemberResp, error) {
	if _, _, err := os.requireMember(orgId, userId); err != nil {
		return nil, err
	}
	members, err := os.memberRepo.ListActive(orgId)
	if err != nil {
		return nil, err
	}
	resp := make([]model.MemberResp, 0, len(members))
	for i := range members {
		resp = append(resp, *model.ToMemberResp(&members[i]))
	}
	return resp, nil
}

// UpdateMemberRole changes a member's role between admin and worker. Owner
// only. The owner's own row is immutable here; ownership moves only through
// TransferOwnership.
func (os *OrganizationService) UpdateMemberRole(orgId, actorId, targetUserId, role string) error {
	_, actor, err := os.requireMember(orgId, actorId)
	if err != nil {
		return err
	}
	if !perm.IsOwner(actor) {
		return errs.Authorizationf("only the owner can change member roles")
	}
	if !model.ValidInviteRole(role) {
		return errs.Validationf("role must be %s or %s", model.OrgRoleAdmin, model.OrgRoleWorker)
	}

	target, err := os.memberRepo.GetActive(orgId, targetUserId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFoundf("member %s", targetUserId)
		}
		return err
	}
	if perm.IsOwner(target) {
		return errs.Statef("the owner's role cannot be changed, transfer ownership instead")
	}
	return os.memberRepo.UpdateRole(orgId, targetUserId, role)
}

// RemoveMember deactivates a membership. Admins can remove workers and
// other admins, never the owner. Members can remove themselves, the owner
// cannot leave without transferring first.
func (os *OrganizationService) RemoveMember(orgId, actorId, targetUserId string) error {
	_, actor, err := os.requireMember(orgId, actorId)
	if err != nil {
		return err
	}

	target, err := os.memberRepo.GetActive(orgId, targetUserId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFoundf("member %s", targetUserId)
		}
		return err
	}
	if perm.IsOwner(target) {
		return errs.Statef("the owner cannot be removed, transfer ownership first")
	}
	if actorId != targetUserId && !perm.IsAdmin(actor) {
		return errs.Authorizationf("admin role required to remove members")
	}
	return os.memberRepo.Deactivate(orgId, targetUserId)
}

// TransferOwnership demotes the current owner to admin and promotes the
// target, atomically. Owner only, and the target must be an active member.
func (os *OrganizationService) TransferOwnership(orgId, actorId, newOwnerId string) error {
	_, actor, err := os.requireMember(orgId, actorId)
	if err != nil {
		return err
	}
	if !perm.IsOwner(actor) {
		return errs.Authorizationf("only the owner can transfer ownership")
	}
	if actorId == newOwnerId {
		return errs.Validationf("cannot transfer ownership to yourself")
	}
	if _, err := os.memberRepo.GetActive(orgId, newOwnerId); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFoundf("member %s", newOwnerId)
		}
		return err
	}
	if err := os.orgRepo.TransferOwnership(orgId, actorId, newOwnerId); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.Conflictf("ownership changed concurrently, retry")
		}
		return err
	}
	return nil
}

// FirstActiveOrgId returns the user's oldest active membership's org, the
// fallback when a request names no organization.
func (os *OrganizationService) FirstActiveOrgId(userId string) (string, error) {
	m, err := os.memberRepo.FirstActiveByUser(userId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errs.NotFoundf("no active organization for user")
		}
		return "", err
	}
	return m.OrgId, nil
}

// ExpireOverdueInvitations is the maintenance sweep behind lazy expiry.
func (os *OrganizationService) ExpireOverdueInvitations() {
	n, err := os.invRepo.ExpireOverdue(time.Now())
	if err != nil {
		log.Errorw("invitation expiry sweep failed", "error", err)
		return
	}
	if n > 0 {
		log.Infow("expired overdue invitations", "count", n)
	}
}

// requireMember loads the active org and the caller's active membership.
// Both a missing org and a missing membership come back as not-found.
func (os *OrganizationService) requireMember(orgId, userId string) (*model.Organization, *model.OrganizationMember, error) {
	org, err := os.orgRepo.GetActiveByOrgId(orgId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errs.NotFoundf("organization %s", orgId)
		}
		return nil, nil, err
	}
	member, err := os.memberRepo.GetActive(orgId, userId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, errs.NotFoundf("organization %s", orgId)
		}
		return nil, nil, err
	}
	return org, member, nil
}
