package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/localtrip/backend/internal/model"
	"go.uber.org/zap"
)

const maxConsumeAttempts = 3

// ErrConsumeContended reports that every candidate pass was drained by concurrent
// consumers while this call was retrying. Callers may retry the request.
var ErrConsumeContended = errors.New("credit consumption contended")

// passRepo - DB interface
type passRepo interface {
	InsertMeteredPass(ctx context.Context, pass model.MeteredPass) (*model.MeteredPass, bool, error)
	ListConsumablePasses(ctx context.Context, owner string, now time.Time) ([]model.MeteredPass, error)
	DecrementPassUses(ctx context.Context, passID string, now time.Time) (int, bool, error)
}

// CreditLedger grants and consumes metered credits. Consumption relies on a guarded
// decrement in the store, so the balance can never go negative.
type CreditLedger struct {
	repo   passRepo
	logger *zap.Logger
	now    func() time.Time
}

func NewCreditLedger(repo passRepo, logger *zap.Logger) *CreditLedger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreditLedger{repo: repo, logger: logger, now: time.Now}
}

// Grant creates a pass with in.Credits uses. Grants carrying a SourceRef are
// idempotent: replaying one returns the stored pass with created=false.
func (l *CreditLedger) Grant(ctx context.Context, in model.GrantInput) (*model.MeteredPass, bool, error) {
	in.OwnerExternalUserID = strings.TrimSpace(in.OwnerExternalUserID)
	if in.OwnerExternalUserID == "" || in.Credits <= 0 || strings.TrimSpace(in.Source) == "" {
		return nil, false, ErrInvalidInput
	}

	now := l.now()
	pass, created, err := l.repo.InsertMeteredPass(ctx, model.MeteredPass{
		ID:                  uuid.NewString(),
		OwnerExternalUserID: in.OwnerExternalUserID,
		PlanCode:            in.PlanCode,
		RemainingUses:       in.Credits,
		GrantedUses:         in.Credits,
		ExpiresAt:           in.ExpiresAt,
		Source:              in.Source,
		SourceRef:           strings.TrimSpace(in.SourceRef),
		CreatedAt:           now,
		UpdatedAt:           now,
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		l.logger.Info("metered pass granted",
			zap.String("pass_id", pass.ID),
			zap.String("owner", in.OwnerExternalUserID),
			zap.String("plan_code", in.PlanCode),
			zap.Int("credits", in.Credits),
		)
	} else {
		l.logger.Info("metered pass grant replayed",
			zap.String("pass_id", pass.ID),
			zap.String("source_ref", in.SourceRef),
		)
	}
	return pass, created, nil
}

// ConsumeOne takes one credit from the earliest-expiring eligible pass. A lost race
// on the chosen pass reselects, up to maxConsumeAttempts times.
func (l *CreditLedger) ConsumeOne(ctx context.Context, owner string) (model.ConsumeResult, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return model.ConsumeResult{}, ErrInvalidInput
	}

	for attempt := 1; attempt <= maxConsumeAttempts; attempt++ {
		now := l.now()
		passes, err := l.repo.ListConsumablePasses(ctx, owner, now)
		if err != nil {
			return model.ConsumeResult{}, err
		}
		if len(passes) == 0 {
			return model.ConsumeResult{OK: false, Reason: model.ConsumeReasonExhausted}, nil
		}

		for _, pass := range passes {
			_, ok, err := l.repo.DecrementPassUses(ctx, pass.ID, now)
			if err != nil {
				return model.ConsumeResult{}, err
			}
			if !ok {
				continue
			}

			total, err := l.totalRemaining(ctx, owner)
			if err != nil {
				return model.ConsumeResult{}, err
			}
			return model.ConsumeResult{OK: true, PassID: pass.ID, Remaining: total}, nil
		}

		l.logger.Debug("credit consume lost race, reselecting",
			zap.String("owner", owner),
			zap.Int("attempt", attempt),
		)
	}

	l.logger.Warn("credit consume contended", zap.String("owner", owner))
	return model.ConsumeResult{OK: false, Reason: model.ConsumeReasonContended}, nil
}

// Summary lists eligible passes in consumption order with their combined balance.
func (l *CreditLedger) Summary(ctx context.Context, owner string) (model.CreditSummary, error) {
	passes, err := l.repo.ListConsumablePasses(ctx, owner, l.now())
	if err != nil {
		return model.CreditSummary{}, err
	}
	summary := model.CreditSummary{Passes: passes}
	if summary.Passes == nil {
		summary.Passes = []model.MeteredPass{}
	}
	for _, pass := range passes {
		summary.TotalRemaining += pass.RemainingUses
	}
	return summary, nil
}

func (l *CreditLedger) totalRemaining(ctx context.Context, owner string) (int, error) {
	summary, err := l.Summary(ctx, owner)
	if err != nil {
		return 0, err
	}
	return summary.TotalRemaining, nil
}
