package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/localtrip/backend/internal/client"
	"github.com/localtrip/backend/internal/config"
	"github.com/localtrip/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCheckoutBilling struct {
	session   *model.CheckoutSession
	getErr    error
	createErr error
	created   []model.CheckoutParams
}

func (f *fakeCheckoutBilling) CreateCheckoutSession(ctx context.Context, in model.CheckoutParams) (string, string, error) {
	if f.createErr != nil {
		return "", "", f.createErr
	}
	f.created = append(f.created, in)
	return "cs_new", "https://checkout.stripe.com/c/pay/cs_new", nil
}

func (f *fakeCheckoutBilling) GetCheckoutSession(ctx context.Context, sessionID string) (*model.CheckoutSession, error) {
	return f.session, f.getErr
}

var testStripeConfig = config.StripeConfig{
	SubscriptionPriceID: "price_sub",
	PassPriceID:         "price_pass",
	SuccessURL:          "https://localtrip.example/ok",
	CancelURL:           "https://localtrip.example/cancel",
}

func newCheckoutFixture(billing *fakeCheckoutBilling) (*CheckoutService, *MembershipDirectory, *TokenCodec) {
	dir := NewMembershipDirectory(newFakeMembershipRepo(), nil, nil)
	codec := NewTokenCodec("token-secret")
	svc := NewCheckoutService(billing, dir, codec, testStripeConfig, testPassConfig, time.Hour, nil)
	return svc, dir, codec
}

func paidSubscriptionSession() *model.CheckoutSession {
	periodEnd := time.Now().Add(30 * 24 * time.Hour)
	return &model.CheckoutSession{
		ID:                "cs_sub",
		Mode:              model.CheckoutModeSubscription,
		Status:            "complete",
		PaymentStatus:     "paid",
		SubscriberID:      "cus_1",
		ClientReferenceID: "user-a",
		Email:             "a@example.com",
		CreatedAt:         time.Now(),
		PeriodEnd:         &periodEnd,
	}
}

func TestCreateCheckoutKinds(t *testing.T) {
	billing := &fakeCheckoutBilling{}
	svc, _, _ := newCheckoutFixture(billing)

	resp, err := svc.CreateCheckout(context.Background(), model.CreateCheckoutInput{Kind: "pass", ExternalUserID: "user-a"})
	require.NoError(t, err)
	assert.Equal(t, "cs_new", resp.SessionID)

	_, err = svc.CreateCheckout(context.Background(), model.CreateCheckoutInput{Kind: "subscription", ExternalUserID: "user-a"})
	require.NoError(t, err)

	require.Len(t, billing.created, 2)
	assert.Equal(t, model.CheckoutModePayment, billing.created[0].Mode)
	assert.Equal(t, "price_pass", billing.created[0].PriceID)
	assert.Equal(t, "concierge-10", billing.created[0].PlanCode)
	assert.Equal(t, "user-a", billing.created[0].ClientReferenceID)
	assert.Equal(t, model.CheckoutModeSubscription, billing.created[1].Mode)

	_, err = svc.CreateCheckout(context.Background(), model.CreateCheckoutInput{Kind: "lifetime", ExternalUserID: "user-a"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateCheckoutProviderError(t *testing.T) {
	svc, _, _ := newCheckoutFixture(&fakeCheckoutBilling{createErr: errors.New("503")})
	_, err := svc.CreateCheckout(context.Background(), model.CreateCheckoutInput{Kind: "pass", ExternalUserID: "user-a"})
	assert.ErrorIs(t, err, ErrBillingUnavailable)
}

func TestCompleteCheckoutLinksAndIssuesToken(t *testing.T) {
	svc, dir, codec := newCheckoutFixture(&fakeCheckoutBilling{session: paidSubscriptionSession()})

	issued, err := svc.CompleteCheckout(context.Background(), "user-a", "cs_sub")
	require.NoError(t, err)
	assert.Equal(t, "cus_1", issued.SubscriberID)

	sub, ok := codec.Verify(issued.Token)
	require.True(t, ok)
	assert.Equal(t, "cus_1", sub)

	rec, err := dir.FindByExternalUser(context.Background(), "user-a")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "a@example.com", rec.Email)
	assert.NotNil(t, rec.MembershipExpiresAt)
}

func TestCompleteCheckoutConflict(t *testing.T) {
	billing := &fakeCheckoutBilling{session: paidSubscriptionSession()}
	svc, _, _ := newCheckoutFixture(billing)

	_, err := svc.CompleteCheckout(context.Background(), "user-a", "cs_sub")
	require.NoError(t, err)

	billing.session.ClientReferenceID = "user-b"
	_, err = svc.CompleteCheckout(context.Background(), "user-b", "cs_sub")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCompleteCheckoutRejections(t *testing.T) {
	unpaid := paidSubscriptionSession()
	unpaid.PaymentStatus = "unpaid"
	payment := paidSubscriptionSession()
	payment.Mode = model.CheckoutModePayment

	tests := []struct {
		name    string
		billing *fakeCheckoutBilling
		user    string
		want    error
	}{
		{name: "unpaid", billing: &fakeCheckoutBilling{session: unpaid}, user: "user-a", want: ErrPaymentIncomplete},
		{name: "payment mode", billing: &fakeCheckoutBilling{session: payment}, user: "user-a", want: ErrInvalidInput},
		{name: "someone else's session", billing: &fakeCheckoutBilling{session: paidSubscriptionSession()}, user: "user-z", want: ErrForbidden},
		{name: "not found", billing: &fakeCheckoutBilling{getErr: fmt.Errorf("%w: cs", client.ErrNotFound)}, user: "user-a", want: ErrNotFound},
		{name: "provider down", billing: &fakeCheckoutBilling{getErr: errors.New("timeout")}, user: "user-a", want: ErrBillingUnavailable},
		{name: "anonymous", billing: &fakeCheckoutBilling{session: paidSubscriptionSession()}, user: "", want: ErrUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newCheckoutFixture(tt.billing)
			_, err := svc.CompleteCheckout(context.Background(), tt.user, "cs_sub")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSync(t *testing.T) {
	svc, _, codec := newCheckoutFixture(&fakeCheckoutBilling{session: paidSubscriptionSession()})

	_, err := svc.Sync(context.Background(), "user-a")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.CompleteCheckout(context.Background(), "user-a", "cs_sub")
	require.NoError(t, err)

	issued, err := svc.Sync(context.Background(), "user-a")
	require.NoError(t, err)
	sub, ok := codec.Verify(issued.Token)
	require.True(t, ok)
	assert.Equal(t, "cus_1", sub)
}

func TestAcceptToken(t *testing.T) {
	svc, _, codec := newCheckoutFixture(&fakeCheckoutBilling{session: paidSubscriptionSession()})
	_, err := svc.CompleteCheckout(context.Background(), "user-a", "cs_sub")
	require.NoError(t, err)

	token, _, err := codec.Issue("cus_1", time.Hour)
	require.NoError(t, err)

	accepted, err := svc.AcceptToken(context.Background(), "user-a", token)
	require.NoError(t, err)
	assert.Equal(t, "cus_1", accepted.SubscriberID)

	_, err = svc.AcceptToken(context.Background(), "user-b", token)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.AcceptToken(context.Background(), "user-a", "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)
}
