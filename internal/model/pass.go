package model

import "time"

const PassSourceStripe = "stripe"

// MeteredPass is a consumable credit grant. Rows stay after reaching zero.
type MeteredPass struct {
	ID                  string     `json:"id"`
	OwnerExternalUserID string     `json:"-"`
	PlanCode            string     `json:"planCode"`
	RemainingUses       int        `json:"remainingUses"`
	GrantedUses         int        `json:"grantedUses"`
	ExpiresAt           *time.Time `json:"expiresAt,omitempty"`
	Source              string     `json:"source"`
	SourceRef           string     `json:"-"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

type GrantInput struct {
	OwnerExternalUserID string
	PlanCode            string
	Credits             int
	Source              string
	SourceRef           string
	ExpiresAt           *time.Time
}

const (
	ConsumeReasonExhausted = "exhausted"
	ConsumeReasonContended = "contended"
)

type ConsumeResult struct {
	OK        bool
	PassID    string
	Remaining int
	Reason    string
}

type CreditSummary struct {
	TotalRemaining int           `json:"totalRemaining"`
	Passes         []MeteredPass `json:"passes"`
}
