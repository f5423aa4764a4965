package utils

// Keys under which per-session location state is persisted.
const (
	SessionKeyPrefix   = "session:"
	SelectedCityKey    = "selectedCity"
	UserPincodeKey     = "userPincode"
	LocationStateKey   = "location"
	CatalogCachePrefix = "catalog:"
)

// Gin context keys.
const (
	ContextSessionID = "sessionID"
	ContextUserID    = "userID"
)

// SessionHeader carries the browse session id between client and server.
const SessionHeader = "X-Session-ID"
