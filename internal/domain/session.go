package domain

import "time"

// AdminSession is the persisted session flag of one browser session.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type AdminSession struct {
	SessionID  string     `json:"id" dynamodbav:"session_id"`
	IsAdmin    bool       `json:"is_admin" dynamodbav:"is_admin"`
	Email      string     `json:"email,omitempty" dynamodbav:"email"`
	Token      string     `json:"-" dynamodbav:"token,omitempty"` // issued by the Authentication Service, if any
	VerifiedAt *time.Time `json:"verified_at,omitempty" dynamodbav:"verified_at"`
	ExpiresAt  int64      `json:"expires_at" dynamodbav:"expires_at"`
	CreatedAt  time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// Expired reports whether the record's TTL has passed at now.
// DynamoDB deletes expired items lazily, so readers must check too.
func (s *AdminSession) Expired(now time.Time) bool {
	return s.ExpiresAt != 0 && s.ExpiresAt <= now.Unix()
}
