package model

import "net/http"

// DenialReason is the denial class reported to clients.
type DenialReason string

const (
	DenialNotAuthenticated  DenialReason = "not-authenticated"
	DenialMissingToken      DenialReason = "missing-token"
	DenialMembershipInvalid DenialReason = "membership-invalid"
	DenialCreditsExhausted  DenialReason = "credits-exhausted"
)

// Sub-reasons of DenialMembershipInvalid.
const (
	SubReasonInvalidToken = "invalid-token"
	SubReasonLinkMismatch = "link-mismatch"
	SubReasonInactive     = "inactive"
)

// Entitlement tells which grant allowed the request.
type Entitlement string

const (
	EntitlementSubscription Entitlement = "subscription"
	EntitlementMeteredPass  Entitlement = "metered-pass"
)

// AccessRequest carries the per-request inputs of the access gate.
type AccessRequest struct {
	ExternalUserID string
	Token          string
}

// AccessDecision is computed per request and never persisted.
type AccessDecision struct {
	Allowed       bool
	SubscriberID  string
	Entitlement   Entitlement
	RemainingUses *int

	Reason     DenialReason
	SubReason  string
	HTTPStatus int
	Message    string
}

func Allow(subscriberID string) AccessDecision {
	return AccessDecision{
		Allowed:      true,
		SubscriberID: subscriberID,
		Entitlement:  EntitlementSubscription,
		HTTPStatus:   http.StatusOK,
	}
}

func AllowMetered(remaining int) AccessDecision {
	return AccessDecision{
		Allowed:       true,
		Entitlement:   EntitlementMeteredPass,
		RemainingUses: &remaining,
		HTTPStatus:    http.StatusOK,
	}
}

func Deny(reason DenialReason, subReason string) AccessDecision {
	d := AccessDecision{Reason: reason, SubReason: subReason}
	switch {
	case reason == DenialNotAuthenticated:
		d.HTTPStatus = http.StatusUnauthorized
		d.Message = "Please sign in to use this feature."
	case reason == DenialMissingToken:
		d.HTTPStatus = http.StatusUnauthorized
		d.Message = "No membership found on this device. Sync your membership or purchase a plan."
	case reason == DenialCreditsExhausted:
		d.HTTPStatus = http.StatusPaymentRequired
		d.Message = "You have no concierge credits left. Purchase a pass to continue."
	case subReason == SubReasonLinkMismatch:
		d.HTTPStatus = http.StatusForbidden
		d.Message = "This membership is linked to a different account. Contact support if this is unexpected."
	case subReason == SubReasonInactive:
		d.HTTPStatus = http.StatusPaymentRequired
		d.Message = "Your subscription is not active. Renew your membership to continue."
	default:
		d.HTTPStatus = http.StatusUnauthorized
		d.Message = "Your membership session has expired. Sync your membership to continue."
	}
	return d
}

type MembershipStatusResponse struct {
	Allowed      bool           `json:"allowed"`
	SubscriberID string         `json:"subscriberId,omitempty"`
	Reason       DenialReason   `json:"reason,omitempty"`
	SubReason    string         `json:"subReason,omitempty"`
	Message      string         `json:"message,omitempty"`
	Credits      *CreditSummary `json:"credits,omitempty"`
}
