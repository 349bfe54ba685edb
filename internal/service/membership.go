package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/localtrip/backend/internal/db"
	"github.com/localtrip/backend/internal/model"
	"go.uber.org/zap"
)

// membershipRepo - DB interface
type membershipRepo interface {
	GetMembershipBySubscriber(ctx context.Context, subscriberID string) (*model.MembershipRecord, error)
	GetMembershipByExternalUser(ctx context.Context, externalUserID string) (*model.MembershipRecord, error)
	UpsertMembership(ctx context.Context, in model.LinkInput) error
	UpdateMembershipPeriod(ctx context.Context, subscriberID string, paymentAt, expiresAt time.Time) (bool, error)
}

// opsNotifier - optional operator channel (Slack)
type opsNotifier interface {
	Notify(ctx context.Context, title, text string) error
}

// MembershipDirectory maps external identities to billing subscribers. A subscriber
// belongs to whoever linked it first.
type MembershipDirectory struct {
	repo     membershipRepo
	notifier opsNotifier
	logger   *zap.Logger
}

func NewMembershipDirectory(repo membershipRepo, notifier opsNotifier, logger *zap.Logger) *MembershipDirectory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MembershipDirectory{repo: repo, notifier: notifier, logger: logger}
}

// Link binds in.SubscriberID to in.ExternalUserID. A subscriber already bound to a
// different identity yields LinkConflict and nothing is written.
func (d *MembershipDirectory) Link(ctx context.Context, in model.LinkInput) (model.LinkResult, error) {
	in.ExternalUserID = strings.TrimSpace(in.ExternalUserID)
	in.SubscriberID = strings.TrimSpace(in.SubscriberID)
	if in.ExternalUserID == "" || in.SubscriberID == "" {
		return "", ErrInvalidInput
	}

	existing, err := d.repo.GetMembershipBySubscriber(ctx, in.SubscriberID)
	if err != nil && !db.IsNoRows(err) {
		return "", err
	}
	if err == nil && existing.ExternalUserID != in.ExternalUserID {
		d.reportConflict(ctx, in, existing.ExternalUserID)
		return model.LinkConflict, nil
	}

	if err := d.repo.UpsertMembership(ctx, in); err != nil {
		// a concurrent Link for the same subscriber won the unique index
		if isUniqueViolation(err) {
			d.reportConflict(ctx, in, "")
			return model.LinkConflict, nil
		}
		return "", err
	}

	d.logger.Info("membership linked",
		zap.String("external_user_id", in.ExternalUserID),
		zap.String("subscriber_id", in.SubscriberID),
	)
	return model.LinkLinked, nil
}

// RenewPeriod updates the payment period of an existing record. Records are only
// created by Link, so an unknown subscriber is logged and ignored.
func (d *MembershipDirectory) RenewPeriod(ctx context.Context, subscriberID string, paymentAt, expiresAt time.Time) error {
	if strings.TrimSpace(subscriberID) == "" {
		return ErrInvalidInput
	}
	updated, err := d.repo.UpdateMembershipPeriod(ctx, subscriberID, paymentAt, expiresAt)
	if err != nil {
		return err
	}
	if !updated {
		d.logger.Warn("renewal for unlinked or newer membership ignored",
			zap.String("subscriber_id", subscriberID),
			zap.Time("expires_at", expiresAt),
		)
	}
	return nil
}

func (d *MembershipDirectory) FindByExternalUser(ctx context.Context, externalUserID string) (*model.MembershipRecord, error) {
	record, err := d.repo.GetMembershipByExternalUser(ctx, externalUserID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func (d *MembershipDirectory) FindBySubscriber(ctx context.Context, subscriberID string) (*model.MembershipRecord, error) {
	record, err := d.repo.GetMembershipBySubscriber(ctx, subscriberID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func (d *MembershipDirectory) reportConflict(ctx context.Context, in model.LinkInput, boundTo string) {
	d.logger.Warn("membership link conflict",
		zap.String("subscriber_id", in.SubscriberID),
		zap.String("claimed_by", in.ExternalUserID),
		zap.String("bound_to", boundTo),
	)
	if d.notifier == nil {
		return
	}
	text := fmt.Sprintf("subscriber %s is already linked; claim by %s rejected", in.SubscriberID, in.ExternalUserID)
	if err := d.notifier.Notify(ctx, "Membership link conflict", text); err != nil {
		d.logger.Warn("ops notification failed", zap.Error(err))
	}
}
