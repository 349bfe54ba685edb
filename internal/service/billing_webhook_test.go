package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/localtrip/backend/internal/client"
	"github.com/localtrip/backend/internal/config"
	"github.com/localtrip/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeParser struct {
	event model.BillingEvent
	err   error
}

func (f fakeParser) ParseWebhook(payload []byte, signature string) (model.BillingEvent, error) {
	return f.event, f.err
}

type fakeEventRepo struct {
	mu       sync.Mutex
	claimed  map[string]bool
	released []string
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{claimed: map[string]bool{}}
}

func (f *fakeEventRepo) ClaimWebhookEvent(ctx context.Context, eventID, eventType string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.claimed[eventID] {
		return false, nil
	}
	f.claimed[eventID] = true
	return true, nil
}

func (f *fakeEventRepo) ReleaseWebhookEvent(ctx context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.claimed, eventID)
	f.released = append(f.released, eventID)
	return nil
}

type renewCall struct {
	subscriberID string
	expiresAt    time.Time
}

type fakeRenewer struct {
	calls []renewCall
	err   error
}

func (f *fakeRenewer) RenewPeriod(ctx context.Context, subscriberID string, paymentAt, expiresAt time.Time) error {
	f.calls = append(f.calls, renewCall{subscriberID: subscriberID, expiresAt: expiresAt})
	return f.err
}

type fakeGranter struct {
	grants []model.GrantInput
	err    error
}

func (f *fakeGranter) Grant(ctx context.Context, in model.GrantInput) (*model.MeteredPass, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	f.grants = append(f.grants, in)
	return &model.MeteredPass{ID: "p1", RemainingUses: in.Credits}, true, nil
}

var testPassConfig = config.PassConfig{PlanCode: "concierge-10", Credits: 10, ValidDays: 90}

type webhookFixture struct {
	events   *fakeEventRepo
	renewer  *fakeRenewer
	granter  *fakeGranter
	notifier *fakeNotifier
}

func newWebhookFixture() *webhookFixture {
	return &webhookFixture{
		events:   newFakeEventRepo(),
		renewer:  &fakeRenewer{},
		granter:  &fakeGranter{},
		notifier: &fakeNotifier{},
	}
}

func (fx *webhookFixture) service(parser webhookParser) *BillingWebhookService {
	return NewBillingWebhookService(parser, fx.events, fx.renewer, fx.granter, testPassConfig, fx.notifier, nil, nil)
}

func paidPassSession() model.CheckoutSession {
	return model.CheckoutSession{
		ID:                "cs_1",
		Mode:              model.CheckoutModePayment,
		Status:            "complete",
		PaymentStatus:     "paid",
		ClientReferenceID: "user-a",
		PlanCode:          "concierge-10",
		CreatedAt:         time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestWebhookInvalidSignatureHasNoSideEffects(t *testing.T) {
	fx := newWebhookFixture()
	svc := fx.service(fakeParser{err: fmt.Errorf("%w: bad", client.ErrInvalidSignature)})

	_, err := svc.Handle(context.Background(), []byte(`{}`), "t=1,v1=00")
	assert.ErrorIs(t, err, ErrInvalidSignature)
	assert.Empty(t, fx.events.claimed)
	assert.Empty(t, fx.renewer.calls)
	assert.Empty(t, fx.granter.grants)
}

func TestWebhookInvoicePaidRenews(t *testing.T) {
	fx := newWebhookFixture()
	expires := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	svc := fx.service(fakeParser{event: model.NewInvoicePaidEvent("evt_1", "invoice.paid", "cus_1", expires.AddDate(0, -1, 0), expires)})

	resp, err := svc.Handle(context.Background(), nil, "sig")
	require.NoError(t, err)
	assert.Equal(t, WebhookStatusProcessed, resp.Status)
	require.Len(t, fx.renewer.calls, 1)
	assert.Equal(t, "cus_1", fx.renewer.calls[0].subscriberID)
	assert.True(t, fx.renewer.calls[0].expiresAt.Equal(expires))
}

func TestWebhookSubscriptionCreatedRenews(t *testing.T) {
	fx := newWebhookFixture()
	svc := fx.service(fakeParser{event: model.NewSubscriptionCreatedEvent("evt_2", "customer.subscription.created", "cus_2", time.Now(), time.Now().Add(720*time.Hour))})

	_, err := svc.Handle(context.Background(), nil, "sig")
	require.NoError(t, err)
	require.Len(t, fx.renewer.calls, 1)
	assert.Equal(t, "cus_2", fx.renewer.calls[0].subscriberID)
}

func TestWebhookPassCheckoutGrantsFromCatalog(t *testing.T) {
	fx := newWebhookFixture()
	session := paidPassSession()
	svc := fx.service(fakeParser{event: model.NewCheckoutCompletedEvent("evt_3", "checkout.session.completed", session)})

	resp, err := svc.Handle(context.Background(), nil, "sig")
	require.NoError(t, err)
	assert.Equal(t, WebhookStatusProcessed, resp.Status)

	require.Len(t, fx.granter.grants, 1)
	grant := fx.granter.grants[0]
	assert.Equal(t, "user-a", grant.OwnerExternalUserID)
	assert.Equal(t, 10, grant.Credits)
	assert.Equal(t, model.PassSourceStripe, grant.Source)
	assert.Equal(t, "cs_1", grant.SourceRef)
	require.NotNil(t, grant.ExpiresAt)
	assert.True(t, grant.ExpiresAt.Equal(session.CreatedAt.AddDate(0, 0, 90)))
}

func TestWebhookDuplicateDeliveryIsNoop(t *testing.T) {
	fx := newWebhookFixture()
	svc := fx.service(fakeParser{event: model.NewCheckoutCompletedEvent("evt_3", "checkout.session.completed", paidPassSession())})

	first, err := svc.Handle(context.Background(), nil, "sig")
	require.NoError(t, err)
	assert.Equal(t, WebhookStatusProcessed, first.Status)

	second, err := svc.Handle(context.Background(), nil, "sig")
	require.NoError(t, err)
	assert.Equal(t, WebhookStatusDuplicate, second.Status)
	assert.Len(t, fx.granter.grants, 1)
}

func TestWebhookIgnoresUnpaidAndSubscriptionCheckouts(t *testing.T) {
	unpaid := paidPassSession()
	unpaid.PaymentStatus = "unpaid"
	subscription := paidPassSession()
	subscription.Mode = model.CheckoutModeSubscription
	unowned := paidPassSession()
	unowned.ClientReferenceID = ""
	otherPlan := paidPassSession()
	otherPlan.PlanCode = "concierge-50"

	for name, session := range map[string]model.CheckoutSession{
		"unpaid":       unpaid,
		"subscription": subscription,
		"unowned":      unowned,
		"other plan":   otherPlan,
	} {
		t.Run(name, func(t *testing.T) {
			fx := newWebhookFixture()
			svc := fx.service(fakeParser{event: model.NewCheckoutCompletedEvent("evt_"+name, "checkout.session.completed", session)})

			resp, err := svc.Handle(context.Background(), nil, "sig")
			require.NoError(t, err)
			assert.Equal(t, WebhookStatusIgnored, resp.Status)
			assert.Empty(t, fx.granter.grants)
		})
	}
}

func TestWebhookUnknownEventIgnored(t *testing.T) {
	fx := newWebhookFixture()
	svc := fx.service(fakeParser{event: model.NewUnknownEvent("evt_9", "customer.updated")})

	resp, err := svc.Handle(context.Background(), nil, "sig")
	require.NoError(t, err)
	assert.Equal(t, WebhookStatusIgnored, resp.Status)
	assert.Empty(t, fx.events.claimed)
}

func TestWebhookFailureReleasesClaim(t *testing.T) {
	fx := newWebhookFixture()
	fx.granter.err = errors.New("db down")
	svc := fx.service(fakeParser{event: model.NewCheckoutCompletedEvent("evt_3", "checkout.session.completed", paidPassSession())})

	_, err := svc.Handle(context.Background(), nil, "sig")
	require.Error(t, err)
	assert.Equal(t, []string{"evt_3"}, fx.events.released)
	assert.NotEmpty(t, fx.notifier.messages)

	fx.granter.err = nil
	resp, err := svc.Handle(context.Background(), nil, "sig")
	require.NoError(t, err)
	assert.Equal(t, WebhookStatusProcessed, resp.Status)
	assert.Len(t, fx.granter.grants, 1)
}
