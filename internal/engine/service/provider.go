package service

import "github.com/google/wire"

// ProviderSet provides the service layer.
var ProviderSet = wire.NewSet(
	NewVerificationService,
	NewOrganizationService,
	NewUserService,
)
