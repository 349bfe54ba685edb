package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/localtrip/backend/internal/client"
	"github.com/localtrip/backend/internal/config"
	"github.com/localtrip/backend/internal/metrics"
	"github.com/localtrip/backend/internal/model"
	"go.uber.org/zap"
)

const (
	WebhookStatusProcessed = "processed"
	WebhookStatusDuplicate = "duplicate"
	WebhookStatusIgnored   = "ignored"
)

type webhookParser interface {
	ParseWebhook(payload []byte, signature string) (model.BillingEvent, error)
}

// webhookEventRepo - DB interface
type webhookEventRepo interface {
	ClaimWebhookEvent(ctx context.Context, eventID, eventType string) (bool, error)
	ReleaseWebhookEvent(ctx context.Context, eventID string) error
}

type periodRenewer interface {
	RenewPeriod(ctx context.Context, subscriberID string, paymentAt, expiresAt time.Time) error
}

type creditGranter interface {
	Grant(ctx context.Context, in model.GrantInput) (*model.MeteredPass, bool, error)
}

// BillingWebhookService applies Stripe events to the directory and the ledger. Each
// event id is processed at most once; a failed event is released for redelivery.
type BillingWebhookService struct {
	parser   webhookParser
	events   webhookEventRepo
	members  periodRenewer
	credits  creditGranter
	pass     config.PassConfig
	notifier opsNotifier
	metrics  *metrics.Registry
	logger   *zap.Logger
}

func NewBillingWebhookService(parser webhookParser, events webhookEventRepo, members periodRenewer, credits creditGranter, pass config.PassConfig, notifier opsNotifier, reg *metrics.Registry, logger *zap.Logger) *BillingWebhookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillingWebhookService{
		parser:   parser,
		events:   events,
		members:  members,
		credits:  credits,
		pass:     pass,
		notifier: notifier,
		metrics:  reg,
		logger:   logger,
	}
}

// Handle verifies, deduplicates and dispatches one webhook delivery. Signature failures
// return ErrInvalidSignature before anything is written.
func (s *BillingWebhookService) Handle(ctx context.Context, payload []byte, signature string) (*model.BillingWebhookResponse, error) {
	event, err := s.parser.ParseWebhook(payload, signature)
	if err != nil {
		if errors.Is(err, client.ErrInvalidSignature) {
			s.metrics.RecordWebhookEvent("unknown", "invalid_signature")
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		s.metrics.RecordWebhookEvent("unknown", "malformed")
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	eventType := event.EventType()
	if _, ok := event.(model.UnknownEvent); ok {
		s.metrics.RecordWebhookEvent(eventType, WebhookStatusIgnored)
		return &model.BillingWebhookResponse{Status: WebhookStatusIgnored, EventType: eventType}, nil
	}

	claimed, err := s.events.ClaimWebhookEvent(ctx, event.EventID(), eventType)
	if err != nil {
		return nil, fmt.Errorf("claim webhook event: %w", err)
	}
	if !claimed {
		s.logger.Info("duplicate billing event skipped",
			zap.String("event_id", event.EventID()),
			zap.String("event_type", eventType),
		)
		s.metrics.RecordWebhookEvent(eventType, WebhookStatusDuplicate)
		return &model.BillingWebhookResponse{Status: WebhookStatusDuplicate, EventType: eventType}, nil
	}

	status, err := s.dispatch(ctx, event)
	if err != nil {
		if releaseErr := s.events.ReleaseWebhookEvent(ctx, event.EventID()); releaseErr != nil {
			s.logger.Error("failed to release webhook event", zap.String("event_id", event.EventID()), zap.Error(releaseErr))
		}
		s.logger.Error("billing event processing failed",
			zap.String("event_id", event.EventID()),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		s.metrics.RecordWebhookEvent(eventType, "failed")
		s.notify(ctx, "Billing webhook failed", fmt.Sprintf("event %s (%s): %v", event.EventID(), eventType, err))
		return nil, err
	}

	s.metrics.RecordWebhookEvent(eventType, status)
	return &model.BillingWebhookResponse{Status: status, EventType: eventType}, nil
}

func (s *BillingWebhookService) dispatch(ctx context.Context, event model.BillingEvent) (string, error) {
	switch e := event.(type) {
	case model.SubscriptionCreatedEvent:
		return s.renew(ctx, e.EventID(), e.SubscriberID, e.PaymentAt, e.ExpiresAt)
	case model.InvoicePaidEvent:
		return s.renew(ctx, e.EventID(), e.SubscriberID, e.PaymentAt, e.ExpiresAt)
	case model.CheckoutCompletedEvent:
		return s.grantPass(ctx, e)
	default:
		return WebhookStatusIgnored, nil
	}
}

func (s *BillingWebhookService) renew(ctx context.Context, eventID, subscriberID string, paymentAt, expiresAt time.Time) (string, error) {
	if subscriberID == "" || expiresAt.Unix() <= 0 {
		s.logger.Warn("billing event without subscriber or period", zap.String("event_id", eventID))
		return WebhookStatusIgnored, nil
	}
	if err := s.members.RenewPeriod(ctx, subscriberID, paymentAt, expiresAt); err != nil {
		return "", fmt.Errorf("renew period: %w", err)
	}
	return WebhookStatusProcessed, nil
}

func (s *BillingWebhookService) grantPass(ctx context.Context, e model.CheckoutCompletedEvent) (string, error) {
	session := e.Session
	if session.Mode != model.CheckoutModePayment || !session.Paid() {
		return WebhookStatusIgnored, nil
	}
	if session.ClientReferenceID == "" {
		s.logger.Warn("paid pass checkout without client reference", zap.String("session_id", session.ID))
		s.notify(ctx, "Unowned pass purchase", fmt.Sprintf("checkout session %s has no client_reference_id; grant it manually", session.ID))
		return WebhookStatusIgnored, nil
	}
	if session.PlanCode != "" && session.PlanCode != s.pass.PlanCode {
		s.logger.Warn("pass checkout for unknown plan",
			zap.String("session_id", session.ID),
			zap.String("plan_code", session.PlanCode),
		)
		s.notify(ctx, "Unknown pass plan", fmt.Sprintf("checkout session %s bought plan %q which is not configured", session.ID, session.PlanCode))
		return WebhookStatusIgnored, nil
	}

	var expiresAt *time.Time
	if s.pass.ValidDays > 0 {
		// anchored on the session so a redelivery computes the same expiry
		exp := session.CreatedAt.AddDate(0, 0, s.pass.ValidDays)
		expiresAt = &exp
	}

	_, _, err := s.credits.Grant(ctx, model.GrantInput{
		OwnerExternalUserID: session.ClientReferenceID,
		PlanCode:            s.pass.PlanCode,
		Credits:             s.pass.Credits,
		Source:              model.PassSourceStripe,
		SourceRef:           session.ID,
		ExpiresAt:           expiresAt,
	})
	if err != nil {
		return "", fmt.Errorf("grant pass: %w", err)
	}
	return WebhookStatusProcessed, nil
}

func (s *BillingWebhookService) notify(ctx context.Context, title, text string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, title, text); err != nil {
		s.logger.Warn("ops notification failed", zap.Error(err))
	}
}
