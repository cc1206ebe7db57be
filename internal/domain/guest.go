package domain

import "time"

// GuestSession is an ephemeral, unauthenticated identity token scoped by IP
// and expiry. Creation is rate-limited per source IP.
type GuestSession struct {
	ID        int64     `json:"id"`
	Token     string    `json:"token"`
	IP        string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *GuestSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type GuestStartResponse struct {
	Success      bool      `json:"success"`
	SessionToken string    `json:"sessionToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}
