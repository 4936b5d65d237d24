package models

import "github.com/golang-jwt/jwt/v5"

// UserClaims are the bearer-session claims. TokenVersion lets the server
// invalidate all outstanding sessions for a user by bumping the counter.
type UserClaims struct {
	jwt.RegisteredClaims
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	TokenVersion int    `json:"token_version"`
}
