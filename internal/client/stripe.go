// Stripe billing client
//
// Env:
//   - STRIPE_SECRET_KEY: API key (sk_...)
//   - STRIPE_WEBHOOK_SECRET: endpoint signing secret (whsec_...)
//   - BILLING_TIMEOUT: per-call timeout (default 10s)
//
// Only the calls the membership flow needs are wrapped: subscription status lookup,
// checkout session create/get, and webhook event parsing.

package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/localtrip/backend/internal/config"
	"github.com/localtrip/backend/internal/metrics"
	"github.com/localtrip/backend/internal/model"
	"github.com/stripe/stripe-go/v76"
	stripeclient "github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

var (
	ErrNotFound         = errors.New("billing object not found")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

const (
	eventSubscriptionCreated = "customer.subscription.created"
	eventInvoicePaid         = "invoice.paid"
	eventInvoicePaymentOK    = "invoice.payment_succeeded"
	eventCheckoutCompleted   = "checkout.session.completed"

	metadataPlanCode = "plan_code"
)

type StripeClient struct {
	api           *stripeclient.API
	webhookSecret string
	metrics       *metrics.Registry
}

func NewStripeClient(cfg config.StripeConfig, reg *metrics.Registry) *StripeClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	api := &stripeclient.API{}
	api.Init(cfg.SecretKey, stripe.NewBackends(&http.Client{Timeout: timeout}))

	return &StripeClient{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		metrics:       reg,
	}
}

// ListSubscriptionStatuses returns the status of every subscription of the customer,
// canceled ones included.
func (c *StripeClient) ListSubscriptionStatuses(ctx context.Context, subscriberID string) (statuses []string, err error) {
	started := time.Now()
	defer func() { c.metrics.ObserveBillingCall("subscriptions.list", err, started) }()

	params := &stripe.SubscriptionListParams{
		Customer: stripe.String(subscriberID),
		Status:   stripe.String("all"),
	}
	params.Context = ctx

	iter := c.api.Subscriptions.List(params)
	for iter.Next() {
		statuses = append(statuses, string(iter.Subscription().Status))
	}
	if err = iter.Err(); err != nil {
		return nil, classifyStripeError(err)
	}
	return statuses, nil
}

// GetCheckoutSession fetches a session with its subscription expanded so the period end
// is available for the membership record.
func (c *StripeClient) GetCheckoutSession(ctx context.Context, sessionID string) (session *model.CheckoutSession, err error) {
	started := time.Now()
	defer func() { c.metrics.ObserveBillingCall("checkout.sessions.get", err, started) }()

	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("subscription")

	s, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, classifyStripeError(err)
	}
	out := toCheckoutSession(s)
	return &out, nil
}

func (c *StripeClient) CreateCheckoutSession(ctx context.Context, in model.CheckoutParams) (sessionID, url string, err error) {
	started := time.Now()
	defer func() { c.metrics.ObserveBillingCall("checkout.sessions.new", err, started) }()

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(in.Mode),
		SuccessURL:        stripe.String(in.SuccessURL),
		CancelURL:         stripe.String(in.CancelURL),
		ClientReferenceID: stripe.String(in.ClientReferenceID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(in.PriceID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	if in.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(in.CustomerEmail)
	}
	if in.PlanCode != "" {
		params.AddMetadata(metadataPlanCode, in.PlanCode)
	}
	params.Context = ctx

	s, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return "", "", classifyStripeError(err)
	}
	return s.ID, s.URL, nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes the event into the
// variants the service handles. Anything else becomes model.UnknownEvent.
func (c *StripeClient) ParseWebhook(payload []byte, signature string) (model.BillingEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return decodeEvent(event)
}

func decodeEvent(event stripe.Event) (model.BillingEvent, error) {
	eventType := string(event.Type)
	if event.Data == nil {
		return model.NewUnknownEvent(event.ID, eventType), nil
	}
	created := time.Unix(event.Created, 0).UTC()

	switch eventType {
	case eventSubscriptionCreated:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("failed to decode subscription: %w", err)
		}
		paymentAt := created
		if sub.CurrentPeriodStart > 0 {
			paymentAt = time.Unix(sub.CurrentPeriodStart, 0).UTC()
		}
		return model.NewSubscriptionCreatedEvent(event.ID, eventType, customerID(sub.Customer), paymentAt,
			time.Unix(sub.CurrentPeriodEnd, 0).UTC()), nil

	case eventInvoicePaid, eventInvoicePaymentOK:
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("failed to decode invoice: %w", err)
		}
		paymentAt := created
		if inv.StatusTransitions != nil && inv.StatusTransitions.PaidAt > 0 {
			paymentAt = time.Unix(inv.StatusTransitions.PaidAt, 0).UTC()
		}
		return model.NewInvoicePaidEvent(event.ID, eventType, customerID(inv.Customer), paymentAt,
			invoicePeriodEnd(&inv)), nil

	case eventCheckoutCompleted:
		var s stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("failed to decode checkout session: %w", err)
		}
		return model.NewCheckoutCompletedEvent(event.ID, eventType, toCheckoutSession(&s)), nil

	default:
		return model.NewUnknownEvent(event.ID, eventType), nil
	}
}

// invoicePeriodEnd prefers the line item period, which covers the billed service
// window. The invoice-level period_end lags one cycle behind for subscriptions.
func invoicePeriodEnd(inv *stripe.Invoice) time.Time {
	var end int64
	if inv.Lines != nil {
		for _, line := range inv.Lines.Data {
			if line != nil && line.Period != nil && line.Period.End > end {
				end = line.Period.End
			}
		}
	}
	if end == 0 {
		end = inv.PeriodEnd
	}
	return time.Unix(end, 0).UTC()
}

func toCheckoutSession(s *stripe.CheckoutSession) model.CheckoutSession {
	out := model.CheckoutSession{
		ID:                s.ID,
		Mode:              string(s.Mode),
		Status:            string(s.Status),
		PaymentStatus:     string(s.PaymentStatus),
		SubscriberID:      customerID(s.Customer),
		ClientReferenceID: s.ClientReferenceID,
		Email:             s.CustomerEmail,
		PlanCode:          s.Metadata[metadataPlanCode],
		CreatedAt:         time.Unix(s.Created, 0).UTC(),
	}
	if s.CustomerDetails != nil && s.CustomerDetails.Email != "" {
		out.Email = s.CustomerDetails.Email
	}
	if s.Subscription != nil && s.Subscription.CurrentPeriodEnd > 0 {
		periodEnd := time.Unix(s.Subscription.CurrentPeriodEnd, 0).UTC()
		out.PeriodEnd = &periodEnd
	}
	return out
}

func customerID(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}

func classifyStripeError(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) &&
		(stripeErr.HTTPStatusCode == http.StatusNotFound || stripeErr.Code == stripe.ErrorCodeResourceMissing) {
		return fmt.Errorf("%w: %s", ErrNotFound, stripeErr.Msg)
	}
	return err
}
