package consts

// Redis key prefixes.
const (
	UserInfoKey  = "minija:user:info:"
	UserTokenKey = "minija:user:token:"
)
