package sessions

import "time"

// Session links an opaque browser token to a user id. Nothing else about the
// user is stored; the user is reloaded from the user store on each request.
type Session struct {
	ID        string    `bson:"_id,omitempty" json:"-"`
	Token     string    `bson:"token" json:"token"`
	UserID    string    `bson:"userId" json:"userId"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
