package perm

import (
	"testing"

	"github.com/minija-farm/minija/internal/engine/model"
	"github.com/stretchr/testify/assert"
)

func member(role string, active bool) *model.OrganizationMember {
	return &model.OrganizationMember{OrgId: "org-1", UserId: "user-1", Role: role, IsActive: active}
}

func TestRoleChecks(t *testing.T) {
	tests := []struct {
		name     string
		m        *model.OrganizationMember
		isMember bool
		isAdmin  bool
		isOwner  bool
	}{
		{"owner", member(model.OrgRoleOwner, true), true, true, true},
		{"admin", member(model.OrgRoleAdmin, true), true, true, false},
		{"worker", member(model.OrgRoleWorker, true), true, false, false},
		{"inactive owner", member(model.OrgRoleOwner, false), false, false, false},
		{"inactive worker", member(model.OrgRoleWorker, false), false, false, false},
		{"unknown role", member("superuser", true), false, false, false},
		{"nil membership", nil, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isMember, IsMember(tt.m), "IsMember")
			assert.Equal(t, tt.isAdmin, IsAdmin(tt.m), "IsAdmin")
			assert.Equal(t, tt.isOwner, IsOwner(tt.m), "IsOwner")
		})
	}
}

func TestAtLeast(t *testing.T) {
	assert.True(t, AtLeast(member(model.OrgRoleOwner, true), model.OrgRoleAdmin))
	assert.True(t, AtLeast(member(model.OrgRoleAdmin, true), model.OrgRoleWorker))
	assert.False(t, AtLeast(member(model.OrgRoleWorker, true), model.OrgRoleAdmin))
	assert.False(t, AtLeast(member(model.OrgRoleAdmin, false), model.OrgRoleWorker))
}
