package model

import "time"

// MembershipRecord links one external identity to one billing subscriber.
type MembershipRecord struct {
	ExternalUserID      string
	SubscriberID        string
	Email               string
	LastPaymentAt       *time.Time
	MembershipExpiresAt *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type LinkResult string

const (
	LinkLinked   LinkResult = "linked"
	LinkConflict LinkResult = "conflict"
)

type LinkInput struct {
	ExternalUserID string
	SubscriberID   string
	Email          string
	PaymentAt      *time.Time
	ExpiresAt      *time.Time
}

type CheckoutCompleteRequest struct {
	SessionID string `json:"sessionId"`
}

type MembershipTokenRequest struct {
	Token string `json:"token"`
}

type MembershipTokenResponse struct {
	Status       string    `json:"status"`
	Token        string    `json:"token,omitempty"`
	SubscriberID string    `json:"subscriberId,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt,omitempty"`
}
