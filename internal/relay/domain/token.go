package domain

import "time"

// IssuedToken is what the token endpoint hands back to a client.
type IssuedToken struct {
	Token     string        `json:"token"`
	ExpiresIn time.Duration `json:"-"`
}

// ExpiresInSeconds is the wire form of ExpiresIn.
func (t IssuedToken) ExpiresInSeconds() int64 {
	return int64(t.ExpiresIn / time.Second)
}
