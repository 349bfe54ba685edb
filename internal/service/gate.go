package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/localtrip/backend/internal/metrics"
	"github.com/localtrip/backend/internal/model"
	"go.uber.org/zap"
)

type tokenVerifier interface {
	Verify(token string) (string, bool)
}

type activeChecker interface {
	CheckActive(ctx context.Context, subscriberID string) (bool, error)
}

type membershipFinder interface {
	FindBySubscriber(ctx context.Context, subscriberID string) (*model.MembershipRecord, error)
}

type creditConsumer interface {
	ConsumeOne(ctx context.Context, owner string) (model.ConsumeResult, error)
}

// AccessGate decides per request whether a caller may use a paid feature. Nothing is
// cached; every decision re-verifies the token and asks the billing provider.
type AccessGate struct {
	tokens  tokenVerifier
	billing activeChecker
	members membershipFinder
	credits creditConsumer
	metrics *metrics.Registry
	logger  *zap.Logger
}

func NewAccessGate(tokens tokenVerifier, billing activeChecker, members membershipFinder, credits creditConsumer, reg *metrics.Registry, logger *zap.Logger) *AccessGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccessGate{
		tokens:  tokens,
		billing: billing,
		members: members,
		credits: credits,
		metrics: reg,
		logger:  logger,
	}
}

// Authorize checks subscription access. Denials come back as decisions; errors are
// reserved for billing or store failures.
func (g *AccessGate) Authorize(ctx context.Context, req model.AccessRequest) (model.AccessDecision, error) {
	decision, err := g.authorize(ctx, req)
	if err != nil {
		return model.AccessDecision{}, err
	}
	g.record(decision)
	return decision, nil
}

// AuthorizeMetered falls back to a metered credit when subscription access is denied
// for a reason a pass can cover.
func (g *AccessGate) AuthorizeMetered(ctx context.Context, req model.AccessRequest) (model.AccessDecision, error) {
	decision, err := g.authorize(ctx, req)
	if err != nil {
		return model.AccessDecision{}, err
	}
	if decision.Allowed || decision.Reason == model.DenialNotAuthenticated || decision.SubReason == model.SubReasonLinkMismatch {
		g.record(decision)
		return decision, nil
	}

	result, err := g.credits.ConsumeOne(ctx, req.ExternalUserID)
	if err != nil {
		g.metrics.RecordCreditConsumption("error")
		return model.AccessDecision{}, fmt.Errorf("consume credit: %w", err)
	}

	switch {
	case result.OK:
		g.metrics.RecordCreditConsumption("ok")
		decision = model.AllowMetered(result.Remaining)
		g.logger.Info("metered access granted",
			zap.String("external_user_id", req.ExternalUserID),
			zap.String("pass_id", result.PassID),
			zap.Int("remaining", result.Remaining),
		)
	case result.Reason == model.ConsumeReasonContended:
		g.metrics.RecordCreditConsumption(model.ConsumeReasonContended)
		return model.AccessDecision{}, ErrConsumeContended
	default:
		g.metrics.RecordCreditConsumption(model.ConsumeReasonExhausted)
		decision = model.Deny(model.DenialCreditsExhausted, "")
	}

	g.record(decision)
	return decision, nil
}

func (g *AccessGate) authorize(ctx context.Context, req model.AccessRequest) (model.AccessDecision, error) {
	externalUserID := strings.TrimSpace(req.ExternalUserID)
	if externalUserID == "" {
		return model.Deny(model.DenialNotAuthenticated, ""), nil
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return model.Deny(model.DenialMissingToken, ""), nil
	}

	subscriberID, ok := g.tokens.Verify(token)
	if !ok {
		return model.Deny(model.DenialMembershipInvalid, model.SubReasonInvalidToken), nil
	}

	record, err := g.members.FindBySubscriber(ctx, subscriberID)
	if err != nil {
		return model.AccessDecision{}, fmt.Errorf("find membership: %w", err)
	}
	if record != nil && record.ExternalUserID != externalUserID {
		g.logger.Warn("membership token presented by another identity",
			zap.String("subscriber_id", subscriberID),
			zap.String("external_user_id", externalUserID),
		)
		return model.Deny(model.DenialMembershipInvalid, model.SubReasonLinkMismatch), nil
	}

	active, err := g.billing.CheckActive(ctx, subscriberID)
	if err != nil {
		return model.AccessDecision{}, err
	}
	if !active {
		return model.Deny(model.DenialMembershipInvalid, model.SubReasonInactive), nil
	}
	return model.Allow(subscriberID), nil
}

func (g *AccessGate) record(decision model.AccessDecision) {
	reason := string(decision.Reason)
	if decision.SubReason != "" {
		reason += "/" + decision.SubReason
	}
	g.metrics.RecordAccessDecision(decision.Allowed, reason, string(decision.Entitlement))
}
