package domain

import "time"

// Claims is the verified content of an access token.
type Claims struct {
	Subject   string    `json:"sub"`
	TokenID   string    `json:"jti"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// IssuedToken is returned by a successful login.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}
