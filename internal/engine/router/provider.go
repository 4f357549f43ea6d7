package router

import "github.com/google/wire"

// ProviderSet provides the router.
var ProviderSet = wire.NewSet(NewRouter)
