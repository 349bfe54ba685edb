package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/localtrip/backend/internal/client"
	"github.com/localtrip/backend/internal/config"
	"github.com/localtrip/backend/internal/model"
	"go.uber.org/zap"
)

const (
	CheckoutKindSubscription = "subscription"
	CheckoutKindPass         = "pass"
)

// checkoutBilling - billing provider interface
type checkoutBilling interface {
	CreateCheckoutSession(ctx context.Context, in model.CheckoutParams) (string, string, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*model.CheckoutSession, error)
}

type membershipLinker interface {
	Link(ctx context.Context, in model.LinkInput) (model.LinkResult, error)
	FindByExternalUser(ctx context.Context, externalUserID string) (*model.MembershipRecord, error)
	FindBySubscriber(ctx context.Context, subscriberID string) (*model.MembershipRecord, error)
}

type tokenIssuer interface {
	Issue(subscriberID string, ttl time.Duration) (string, time.Time, error)
	Verify(token string) (string, bool)
}

// IssuedToken is a freshly minted (or accepted) membership token.
type IssuedToken struct {
	Token        string
	SubscriberID string
	ExpiresAt    time.Time
}

// CheckoutService runs the purchase side of membership: hosted checkout creation,
// linking a completed subscription checkout, and token (re)issuance.
type CheckoutService struct {
	billing  checkoutBilling
	members  membershipLinker
	tokens   tokenIssuer
	stripe   config.StripeConfig
	pass     config.PassConfig
	tokenTTL time.Duration
	logger   *zap.Logger
}

func NewCheckoutService(billing checkoutBilling, members membershipLinker, tokens tokenIssuer, stripeCfg config.StripeConfig, passCfg config.PassConfig, tokenTTL time.Duration, logger *zap.Logger) *CheckoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutService{
		billing:  billing,
		members:  members,
		tokens:   tokens,
		stripe:   stripeCfg,
		pass:     passCfg,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
}

func (s *CheckoutService) TokenTTL() time.Duration {
	return s.tokenTTL
}

func (s *CheckoutService) CreateCheckout(ctx context.Context, in model.CreateCheckoutInput) (*model.CheckoutResponse, error) {
	if strings.TrimSpace(in.ExternalUserID) == "" {
		return nil, ErrUnauthorized
	}

	params := model.CheckoutParams{
		ClientReferenceID: in.ExternalUserID,
		CustomerEmail:     in.Email,
		SuccessURL:        s.stripe.SuccessURL,
		CancelURL:         s.stripe.CancelURL,
	}
	switch strings.TrimSpace(in.Kind) {
	case CheckoutKindSubscription, "":
		params.Mode = model.CheckoutModeSubscription
		params.PriceID = s.stripe.SubscriptionPriceID
	case CheckoutKindPass:
		params.Mode = model.CheckoutModePayment
		params.PriceID = s.stripe.PassPriceID
		params.PlanCode = s.pass.PlanCode
	default:
		return nil, fmt.Errorf("%w: unknown checkout kind %q", ErrInvalidInput, in.Kind)
	}
	if params.PriceID == "" {
		return nil, fmt.Errorf("%w: price id for %s checkout is not set", ErrMisconfigured, params.Mode)
	}

	sessionID, url, err := s.billing.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBillingUnavailable, err)
	}

	s.logger.Info("checkout session created",
		zap.String("external_user_id", in.ExternalUserID),
		zap.String("session_id", sessionID),
		zap.String("mode", params.Mode),
	)
	return &model.CheckoutResponse{Status: "created", SessionID: sessionID, URL: url}, nil
}

// CompleteCheckout links the caller to the subscriber of a finished subscription
// checkout and issues a membership token for it.
func (s *CheckoutService) CompleteCheckout(ctx context.Context, externalUserID, sessionID string) (*IssuedToken, error) {
	externalUserID = strings.TrimSpace(externalUserID)
	sessionID = strings.TrimSpace(sessionID)
	if externalUserID == "" {
		return nil, ErrUnauthorized
	}
	if sessionID == "" {
		return nil, fmt.Errorf("%w: sessionId is required", ErrInvalidInput)
	}

	session, err := s.billing.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return nil, fmt.Errorf("%w: checkout session", ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %w", ErrBillingUnavailable, err)
	}

	if session.Mode != model.CheckoutModeSubscription {
		return nil, fmt.Errorf("%w: not a subscription checkout", ErrInvalidInput)
	}
	if !session.Paid() || session.SubscriberID == "" {
		return nil, ErrPaymentIncomplete
	}
	if session.ClientReferenceID != "" && session.ClientReferenceID != externalUserID {
		s.logger.Warn("checkout completed by another identity",
			zap.String("session_id", session.ID),
			zap.String("external_user_id", externalUserID),
		)
		return nil, fmt.Errorf("%w: checkout belongs to another account", ErrForbidden)
	}

	paymentAt := session.CreatedAt
	result, err := s.members.Link(ctx, model.LinkInput{
		ExternalUserID: externalUserID,
		SubscriberID:   session.SubscriberID,
		Email:          session.Email,
		PaymentAt:      &paymentAt,
		ExpiresAt:      session.PeriodEnd,
	})
	if err != nil {
		return nil, err
	}
	if result == model.LinkConflict {
		return nil, fmt.Errorf("%w: subscription is linked to another account", ErrConflict)
	}

	return s.issue(session.SubscriberID)
}

// Sync reissues a token from the caller's directory record.
func (s *CheckoutService) Sync(ctx context.Context, externalUserID string) (*IssuedToken, error) {
	if strings.TrimSpace(externalUserID) == "" {
		return nil, ErrUnauthorized
	}
	record, err := s.members.FindByExternalUser(ctx, externalUserID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%w: no membership for this account", ErrNotFound)
	}
	return s.issue(record.SubscriberID)
}

// AcceptToken validates a token presented from another browsing context so it can be
// stored as this context's cookie.
func (s *CheckoutService) AcceptToken(ctx context.Context, externalUserID, token string) (*IssuedToken, error) {
	if strings.TrimSpace(externalUserID) == "" {
		return nil, ErrUnauthorized
	}
	subscriberID, ok := s.tokens.Verify(token)
	if !ok {
		return nil, fmt.Errorf("%w: invalid membership token", ErrUnauthorized)
	}
	record, err := s.members.FindBySubscriber(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	if record != nil && record.ExternalUserID != externalUserID {
		return nil, fmt.Errorf("%w: subscription is linked to another account", ErrConflict)
	}
	return &IssuedToken{Token: strings.TrimSpace(token), SubscriberID: subscriberID}, nil
}

func (s *CheckoutService) issue(subscriberID string) (*IssuedToken, error) {
	token, expiresAt, err := s.tokens.Issue(subscriberID, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &IssuedToken{Token: token, SubscriberID: subscriberID, ExpiresAt: expiresAt}, nil
}
