package repo

import "github.com/google/wire"

// ProviderSet provides the repository layer.
var ProviderSet = wire.NewSet(
	NewUserRepo,
	NewOrganizationRepo,
	NewOrganizationMemberRepo,
	NewOrganizationInvitationRepo,
)
