package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/minija-farm/minija/internal/engine/config"
	"github.com/minija-farm/minija/internal/engine/model"
	"github.com/minija-farm/minija/internal/pkg/notify"
	"github.com/minija-farm/minija/pkg/http"
	"gorm.io/gorm"
)

// memStore is the in-memory backing for the repo fakes used across the
// service tests. It mimics the repo contracts, in particular returning
// gorm.ErrRecordNotFound where the real repos do.
type memStore struct {
	mu      sync.Mutex
	users   map[string]*model.User // by userId
	orgs    map[string]*model.Organization
	members []*model.OrganizationMember
	invs    map[string]*model.OrganizationInvitation

	sentInvites       []notify.InvitationMail
	sentVerifications []notify.VerificationMail
	failDelivery      bool

	// fault injection
	raceSlug        string // first insert with this slug loses to a phantom competitor
	slugAlwaysTaken bool   // every org insert fails the slug unique index
	invGetErr       error  // forced failure for invitation lookups
}

func newMemStore() *memStore {
	return &memStore{
		users: map[string]*model.User{},
		orgs:  map[string]*model.Organization{},
		invs:  map[string]*model.OrganizationInvitation{},
	}
}

func (s *memStore) member(orgId, userId string) *model.OrganizationMember {
	for _, m := range s.members {
		if m.OrgId == orgId && m.UserId == userId {
			return m
		}
	}
	return nil
}

// ---- IUserRepository fake ----

type fakeUserRepo struct{ s *memStore }

func (f *fakeUserRepo) Register(user *model.User) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	// Mirrors the unique index on verification_token: NULL rows never
	// collide, values must be distinct.
	for _, u := range f.s.users {
		if u.VerificationToken != nil && user.VerificationToken != nil &&
			*u.VerificationToken == *user.VerificationToken {
			return &mysql.MySQLError{Number: 1062, Message: "Duplicate entry for key 't_user.verification_token'"}
		}
	}
	f.s.users[user.UserId] = user
	return nil
}

func (f *fakeUserRepo) GetByEmail(email string) (*model.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, u := range f.s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByUserId(userId string) (*model.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if u, ok := f.s.users[userId]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByVerificationToken(token string) (*model.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, u := range f.s.users {
		if u.VerificationToken != nil && *u.VerificationToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FetchUserInfo(userId string) (*model.UserInfo, error) {
	u, err := f.GetByUserId(userId)
	if err != nil {
		return nil, err
	}
	return &model.UserInfo{UserId: u.UserId, Username: u.Username, Email: u.Email}, nil
}

func (f *fakeUserRepo) SetVerification(userId, code, token string, expiresAt, sentAt time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[userId]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.VerificationCode = code
	u.VerificationToken = &token
	u.CodeExpiresAt = &expiresAt
	u.LastSentAt = &sentAt
	u.Attempts = 0
	return nil
}

func (f *fakeUserRepo) IncrementAttempts(userId string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[userId]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Attempts++
	return nil
}

func (f *fakeUserRepo) MarkVerified(userId string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[userId]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.IsVerified = true
	u.IsActive = true
	u.VerificationCode = ""
	u.VerificationToken = nil
	u.CodeExpiresAt = nil
	u.Attempts = 0
	return nil
}

func (f *fakeUserRepo) SetToken(userId, aToken string, auth http.Auth) (string, error) {
	return "token:" + userId, nil
}

func (f *fakeUserRepo) GetToken(userId string, auth http.Auth) (string, error) { return "", nil }

func (f *fakeUserRepo) DelToken(userId string, auth http.Auth) error { return nil }

// ---- IOrganizationRepository fake ----

type fakeOrgRepo struct{ s *memStore }

func (f *fakeOrgRepo) CreateWithOwner(org *model.Organization, owner *model.OrganizationMember) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '" + org.Slug + "' for key 't_organization.slug'"}
	if f.s.slugAlwaysTaken {
		return dup
	}
	if f.s.raceSlug != "" && org.Slug == f.s.raceSlug {
		// the competitor takes the slug between the existence check and
		// the insert
		f.s.orgs["race-winner"] = &model.Organization{OrgId: "race-winner", Slug: org.Slug, IsActive: true}
		f.s.raceSlug = ""
		return dup
	}
	f.s.orgs[org.OrgId] = org
	owner.JoinedAt = time.Now()
	f.s.members = append(f.s.members, owner)
	return nil
}

func (f *fakeOrgRepo) GetByOrgId(orgId string) (*model.Organization, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if o, ok := f.s.orgs[orgId]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeOrgRepo) GetActiveByOrgId(orgId string) (*model.Organization, error) {
	org, err := f.GetByOrgId(orgId)
	if err != nil || !org.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return org, nil
}

func (f *fakeOrgRepo) SlugExists(slug string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, o := range f.s.orgs {
		if o.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOrgRepo) Update(orgId string, updates map[string]interface{}) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	o, ok := f.s.orgs[orgId]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["name"]; ok {
		o.Name = v.(string)
	}
	if v, ok := updates["description"]; ok {
		o.Description = v.(string)
	}
	return nil
}

func (f *fakeOrgRepo) Deactivate(orgId string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	o, ok := f.s.orgs[orgId]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.IsActive = false
	return nil
}

func (f *fakeOrgRepo) ListByUser(userId string) ([]model.Organization, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []model.Organization
	for _, m := range f.s.members {
		if m.UserId == userId && m.IsActive {
			if o, ok := f.s.orgs[m.OrgId]; ok && o.IsActive {
				out = append(out, *o)
			}
		}
	}
	return out, nil
}

func (f *fakeOrgRepo) TransferOwnership(orgId, currentOwnerId, newOwnerId string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	cur := f.s.member(orgId, currentOwnerId)
	if cur == nil || cur.Role != model.OrgRoleOwner {
		return gorm.ErrRecordNotFound
	}
	next := f.s.member(orgId, newOwnerId)
	if next == nil || !next.IsActive {
		return gorm.ErrRecordNotFound
	}
	cur.Role = model.OrgRoleAdmin
	next.Role = model.OrgRoleOwner
	f.s.orgs[orgId].OwnerUserId = newOwnerId
	return nil
}

// ---- IOrganizationMemberRepository fake ----

type fakeMemberRepo struct{ s *memStore }

func (f *fakeMemberRepo) Get(orgId, userId string) (*model.OrganizationMember, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if m := f.s.member(orgId, userId); m != nil {
		cp := *m
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMemberRepo) GetActive(orgId, userId string) (*model.OrganizationMember, error) {
	m, err := f.Get(orgId, userId)
	if err != nil || !m.IsActive {
		return nil, gorm.ErrRecordNotFound
	}
	return m, nil
}

func (f *fakeMemberRepo) ListActive(orgId string) ([]model.OrganizationMember, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []model.OrganizationMember
	for _, m := range f.s.members {
		if m.OrgId == orgId && m.IsActive {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMemberRepo) CountActive(orgId string) (int64, error) {
	members, _ := f.ListActive(orgId)
	return int64(len(members)), nil
}

func (f *fakeMemberRepo) FirstActiveByUser(userId string) (*model.OrganizationMember, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, m := range f.s.members {
		if m.UserId == userId && m.IsActive {
			cp := *m
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMemberRepo) HasActiveByEmail(orgId, email string) (bool, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, m := range f.s.members {
		if m.OrgId != orgId || !m.IsActive {
			continue
		}
		if u, ok := f.s.users[m.UserId]; ok && strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMemberRepo) UpdateRole(orgId, userId, role string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	m := f.s.member(orgId, userId)
	if m == nil || !m.IsActive {
		return gorm.ErrRecordNotFound
	}
	m.Role = role
	return nil
}

func (f *fakeMemberRepo) Deactivate(orgId, userId string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	m := f.s.member(orgId, userId)
	if m == nil || !m.IsActive {
		return gorm.ErrRecordNotFound
	}
	m.IsActive = false
	return nil
}

// ---- IOrganizationInvitationRepository fake ----

type fakeInvRepo struct{ s *memStore }

func (f *fakeInvRepo) CreateReplacingPending(inv *model.OrganizationInvitation) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, old := range f.s.invs {
		if old.OrgId == inv.OrgId && strings.EqualFold(old.Email, inv.Email) &&
			old.Status == model.InvitationStatusPending {
			old.Status = model.InvitationStatusRevoked
		}
	}
	f.s.invs[inv.InvitationId] = inv
	return nil
}

func (f *fakeInvRepo) GetById(invitationId string) (*model.OrganizationInvitation, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.invGetErr != nil {
		return nil, f.s.invGetErr
	}
	if inv, ok := f.s.invs[invitationId]; ok {
		cp := *inv
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeInvRepo) GetPendingByToken(token string) (*model.OrganizationInvitation, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, inv := range f.s.invs {
		if inv.Token == token && inv.Status == model.InvitationStatusPending {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeInvRepo) Accept(invitationId string, acceptedAt time.Time, member *model.OrganizationMember) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	inv, ok := f.s.invs[invitationId]
	if !ok || inv.Status != model.InvitationStatusPending {
		return gorm.ErrRecordNotFound
	}
	inv.Status = model.InvitationStatusAccepted
	inv.AcceptedAt = &acceptedAt
	if existing := f.s.member(member.OrgId, member.UserId); existing != nil {
		existing.IsActive = true
		existing.Role = member.Role
		*member = *existing
		return nil
	}
	member.JoinedAt = time.Now()
	f.s.members = append(f.s.members, member)
	return nil
}

func (f *fakeInvRepo) MarkExpired(invitationId string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if inv, ok := f.s.invs[invitationId]; ok && inv.Status == model.InvitationStatusPending {
		inv.Status = model.InvitationStatusExpired
	}
	return nil
}

func (f *fakeInvRepo) Revoke(invitationId string) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	inv, ok := f.s.invs[invitationId]
	if !ok || inv.Status != model.InvitationStatusPending {
		return gorm.ErrRecordNotFound
	}
	inv.Status = model.InvitationStatusRevoked
	return nil
}

func (f *fakeInvRepo) ListPendingByEmail(email string) ([]model.OrganizationInvitation, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []model.OrganizationInvitation
	for _, inv := range f.s.invs {
		if strings.EqualFold(inv.Email, email) &&
			inv.Status == model.InvitationStatusPending &&
			inv.ExpiresAt.After(time.Now()) {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeInvRepo) ListByOrg(orgId string) ([]model.OrganizationInvitation, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []model.OrganizationInvitation
	for _, inv := range f.s.invs {
		if inv.OrgId == orgId {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeInvRepo) ExpireOverdue(now time.Time) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for _, inv := range f.s.invs {
		if inv.Status == model.InvitationStatusPending && !inv.ExpiresAt.After(now) {
			inv.Status = model.InvitationStatusExpired
			n++
		}
	}
	return n, nil
}

// ---- Notifier fake ----

type fakeNotifier struct{ s *memStore }

func (f *fakeNotifier) SendInvitation(ctx context.Context, mail notify.InvitationMail) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.failDelivery {
		return errDeliveryDown
	}
	f.s.sentInvites = append(f.s.sentInvites, mail)
	return nil
}

func (f *fakeNotifier) SendVerification(ctx context.Context, mail notify.VerificationMail) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.failDelivery {
		return errDeliveryDown
	}
	f.s.sentVerifications = append(f.s.sentVerifications, mail)
	return nil
}

var errDeliveryDown = errSMTPDown{}

type errSMTPDown struct{}

func (errSMTPDown) Error() string { return "smtp down" }

// ---- environment ----

type testEnv struct {
	store        *memStore
	users        *UserService
	orgs         *OrganizationService
	verification *VerificationService
}

func newTestEnv() *testEnv {
	store := newMemStore()
	userRepo := &fakeUserRepo{s: store}
	notifier := &fakeNotifier{s: store}
	verification := NewVerificationService(userRepo, notifier, config.VerificationConfig{
		CodeLength:            6,
		CodeExpiryMinutes:     10,
		MaxAttempts:           5,
		ResendCooldownSeconds: 60,
	})
	orgs := NewOrganizationService(
		&fakeOrgRepo{s: store},
		&fakeMemberRepo{s: store},
		&fakeInvRepo{s: store},
		userRepo,
		notifier,
		config.InvitationConfig{ExpiryDays: 7, MemberLimit: 50},
	)
	users := NewUserService(userRepo, orgs, verification)
	return &testEnv{store: store, users: users, orgs: orgs, verification: verification}
}

// seedUser adds a verified, active user directly to the store.
func (e *testEnv) seedUser(userId, email string) *model.User {
	u := &model.User{
		UserId:     userId,
		Username:   userId,
		FirstName:  userId,
		Email:      email,
		IsActive:   true,
		IsVerified: true,
	}
	e.store.users[userId] = u
	return u
}

// seedOrg adds an active org with the given owner membership.
func (e *testEnv) seedOrg(orgId, ownerId string) *model.Organization {
	o := &model.Organization{
		OrgId:       orgId,
		Name:        orgId,
		Slug:        orgId,
		OwnerUserId: ownerId,
		IsActive:    true,
	}
	e.store.orgs[orgId] = o
	e.store.members = append(e.store.members, &model.OrganizationMember{
		OrgId: orgId, UserId: ownerId, Role: model.OrgRoleOwner, IsActive: true,
		JoinedAt: time.Now(),
	})
	return o
}

// seedMember adds an active membership row.
func (e *testEnv) seedMember(orgId, userId, role string) *model.OrganizationMember {
	m := &model.OrganizationMember{
		OrgId: orgId, UserId: userId, Role: role, IsActive: true,
		JoinedAt: time.Now(),
	}
	e.store.members = append(e.store.members, m)
	return m
}
