package model

import "time"

// BillingEvent is the set of Stripe webhook events the service understands.
type BillingEvent interface {
	EventID() string
	EventType() string
}

type eventMeta struct {
	ID   string
	Type string
}

func (e eventMeta) EventID() string   { return e.ID }
func (e eventMeta) EventType() string { return e.Type }

// SubscriptionCreatedEvent - customer.subscription.created
type SubscriptionCreatedEvent struct {
	eventMeta
	SubscriberID string
	PaymentAt    time.Time
	ExpiresAt    time.Time
}

// InvoicePaidEvent - invoice.paid / invoice.payment_succeeded
type InvoicePaidEvent struct {
	eventMeta
	SubscriberID string
	PaymentAt    time.Time
	ExpiresAt    time.Time
}

// CheckoutCompletedEvent - checkout.session.completed
type CheckoutCompletedEvent struct {
	eventMeta
	Session CheckoutSession
}

// UnknownEvent is any other event type; it is acknowledged and ignored.
type UnknownEvent struct {
	eventMeta
}

func NewSubscriptionCreatedEvent(id, typ, subscriberID string, paymentAt, expiresAt time.Time) SubscriptionCreatedEvent {
	return SubscriptionCreatedEvent{eventMeta: eventMeta{ID: id, Type: typ}, SubscriberID: subscriberID, PaymentAt: paymentAt, ExpiresAt: expiresAt}
}

func NewInvoicePaidEvent(id, typ, subscriberID string, paymentAt, expiresAt time.Time) InvoicePaidEvent {
	return InvoicePaidEvent{eventMeta: eventMeta{ID: id, Type: typ}, SubscriberID: subscriberID, PaymentAt: paymentAt, ExpiresAt: expiresAt}
}

func NewCheckoutCompletedEvent(id, typ string, session CheckoutSession) CheckoutCompletedEvent {
	return CheckoutCompletedEvent{eventMeta: eventMeta{ID: id, Type: typ}, Session: session}
}

func NewUnknownEvent(id, typ string) UnknownEvent {
	return UnknownEvent{eventMeta: eventMeta{ID: id, Type: typ}}
}

// CheckoutSession is the subset of a Stripe Checkout Session the service reads.
type CheckoutSession struct {
	ID                string
	Mode              string
	Status            string
	PaymentStatus     string
	SubscriberID      string
	ClientReferenceID string
	Email             string
	PlanCode          string
	CreatedAt         time.Time
	PeriodEnd         *time.Time
}

const (
	CheckoutModeSubscription = "subscription"
	CheckoutModePayment      = "payment"
)

// Paid reports whether the session completed with money collected.
func (s CheckoutSession) Paid() bool {
	return s.Status == "complete" && (s.PaymentStatus == "paid" || s.PaymentStatus == "no_payment_required")
}

type CreateCheckoutInput struct {
	Kind           string
	ExternalUserID string
	Email          string
}

type CheckoutRequest struct {
	Kind string `json:"kind"`
}

type CheckoutResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

type BillingWebhookResponse struct {
	Status    string `json:"status"`
	EventType string `json:"eventType,omitempty"`
}

// CheckoutParams is what the billing client needs to open a hosted checkout page.
type CheckoutParams struct {
	Mode              string
	PriceID           string
	ClientReferenceID string
	CustomerEmail     string
	PlanCode          string
	SuccessURL        string
	CancelURL         string
}
