package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/localtrip/backend/internal/client"
	"go.uber.org/zap"
)

const defaultBillingTimeout = 10 * time.Second

// past_due stays entitled so card-retry windows do not cut off paying users.
var activeSubscriptionStatuses = map[string]struct{}{
	"active":   {},
	"trialing": {},
	"past_due": {},
}

// subscriptionLister - billing provider interface
type subscriptionLister interface {
	ListSubscriptionStatuses(ctx context.Context, subscriberID string) ([]string, error)
}

// SubscriptionVerifier asks the billing provider whether a subscriber is paying.
// Results are never cached so a cancellation takes effect on the next request.
type SubscriptionVerifier struct {
	billing subscriptionLister
	timeout time.Duration
	logger  *zap.Logger
}

func NewSubscriptionVerifier(billing subscriptionLister, timeout time.Duration, logger *zap.Logger) *SubscriptionVerifier {
	if timeout <= 0 {
		timeout = defaultBillingTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriptionVerifier{billing: billing, timeout: timeout, logger: logger}
}

// CheckActive reports whether any subscription of subscriberID is active, trialing or
// past_due. An unknown customer is inactive. Other provider failures (timeouts included)
// return ErrBillingUnavailable, never false.
func (v *SubscriptionVerifier) CheckActive(ctx context.Context, subscriberID string) (bool, error) {
	if strings.TrimSpace(subscriberID) == "" {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	statuses, err := v.billing.ListSubscriptionStatuses(ctx, subscriberID)
	if errors.Is(err, client.ErrNotFound) {
		// deleted customer
		v.logger.Info("subscriber not found at billing provider", zap.String("subscriber_id", subscriberID))
		return false, nil
	}
	if err != nil {
		v.logger.Error("subscription lookup failed",
			zap.String("subscriber_id", subscriberID),
			zap.Error(err),
		)
		return false, fmt.Errorf("%w: %w", ErrBillingUnavailable, err)
	}

	for _, status := range statuses {
		if _, ok := activeSubscriptionStatuses[status]; ok {
			return true, nil
		}
	}
	return false, nil
}
