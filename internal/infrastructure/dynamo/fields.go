package dynamo

// DynamoDB attribute names used in update expressions.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldSessionID = "session_id"
	fieldIsAdmin   = "is_admin"
	fieldEmail     = "email"
	fieldToken     = "token"
	fieldExpiresAt = "expires_at"
	fieldUpdatedAt = "updated_at"
)
