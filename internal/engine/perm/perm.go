// Package perm is the single place organization role checks live. Call
// sites express intent (IsAdmin) instead of comparing role strings.
package perm

import "github.com/minija-farm/minija/internal/engine/model"

// roleRank orders roles owner > admin > worker. Unknown roles rank below
// every member role.
func roleRank(role string) int {
	switch role {
	case model.OrgRoleOwner:
		return 3
	case model.OrgRoleAdmin:
		return 2
	case model.OrgRoleWorker:
		return 1
	}
	return 0
}

// IsMember reports whether the membership confers any capability at all.
func IsMember(m *model.OrganizationMember) bool {
	return m != nil && m.IsActive && roleRank(m.Role) > 0
}

// IsAdmin reports whether the membership allows managing members and
// invitations.
func IsAdmin(m *model.OrganizationMember) bool {
	return m != nil && m.IsActive && roleRank(m.Role) >= roleRank(model.OrgRoleAdmin)
}

// IsOwner reports whether the membership is the organization owner's.
func IsOwner(m *model.OrganizationMember) bool {
	return m != nil && m.IsActive && m.Role == model.OrgRoleOwner
}

// AtLeast reports whether the membership's role ranks at or above want.
func AtLeast(m *model.OrganizationMember, want string) bool {
	return m != nil && m.IsActive && roleRank(m.Role) >= roleRank(want)
}
