package contextkeys

type contextKey string

const (
	UserIDKey      contextKey = "UserID"
	PrincipalKey   contextKey = "Principal"
	ScopeFilterKey contextKey = "ScopeFilter"
)
