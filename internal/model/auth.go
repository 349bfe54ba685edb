package model

import "time"

// Identity is the caller resolved from the session cookie.
type Identity struct {
	ExternalUserID string
	Email          string
	Name           string
}

type AuthMeResponse struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
}

type AuthSessionResponse struct {
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expiresAt"`
}
