package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/localtrip/backend/internal/client"
	"github.com/localtrip/backend/internal/model"
	"github.com/localtrip/backend/internal/template"
	"go.uber.org/zap"
)

const (
	maxChatMessageRunes = 2000
	maxChatTags         = 10
	chatSpotLimit       = 5
	defaultLocale       = "en"
)

var (
	ErrInvalidChatRequest = errors.New("invalid chat request")
	ErrAIUnavailable      = errors.New("ai provider unavailable")
)

// AccessDeniedError carries a gate denial out of a feature service.
type AccessDeniedError struct {
	Decision model.AccessDecision
}

func (e *AccessDeniedError) Error() string {
	if e.Decision.SubReason != "" {
		return fmt.Sprintf("access denied: %s/%s", e.Decision.Reason, e.Decision.SubReason)
	}
	return fmt.Sprintf("access denied: %s", e.Decision.Reason)
}

type meteredAuthorizer interface {
	AuthorizeMetered(ctx context.Context, req model.AccessRequest) (model.AccessDecision, error)
}

type spotSearcher interface {
	SearchSpots(ctx context.Context, query model.SpotQuery) ([]model.Spot, error)
}

type textGenerator interface {
	IsConfigured() bool
	GenerateText(ctx context.Context, systemPrompt, prompt string) (string, error)
}

// ChatService answers concierge questions. Each answered question costs one metered
// credit unless the caller holds an active subscription.
type ChatService struct {
	gate    meteredAuthorizer
	content spotSearcher
	ai      textGenerator
	logger  *zap.Logger
}

func NewChatService(gate meteredAuthorizer, content spotSearcher, ai textGenerator, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{gate: gate, content: content, ai: ai, logger: logger}
}

// NormalizeChatRequest trims and validates a chat request. Handlers call it before the
// gate so a malformed body never costs a credit.
func NormalizeChatRequest(req model.ChatRequest) (model.ChatRequest, error) {
	req.Message = strings.TrimSpace(req.Message)
	req.ConversationID = strings.TrimSpace(req.ConversationID)
	req.Locale = strings.TrimSpace(req.Locale)

	if req.Message == "" {
		return req, fmt.Errorf("%w: message is required", ErrInvalidChatRequest)
	}
	if utf8.RuneCountInString(req.Message) > maxChatMessageRunes {
		return req, fmt.Errorf("%w: message exceeds %d characters", ErrInvalidChatRequest, maxChatMessageRunes)
	}
	if len(req.Tags) > maxChatTags {
		return req, fmt.Errorf("%w: at most %d tags", ErrInvalidChatRequest, maxChatTags)
	}
	if req.Locale == "" {
		req.Locale = defaultLocale
	}

	tags := make([]string, 0, len(req.Tags))
	for _, tag := range req.Tags {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	req.Tags = tags
	return req, nil
}

func (s *ChatService) Chat(ctx context.Context, access model.AccessRequest, req model.ChatRequest) (*model.ChatResponse, error) {
	req, err := NormalizeChatRequest(req)
	if err != nil {
		return nil, err
	}
	if s.ai == nil || !s.ai.IsConfigured() {
		return nil, fmt.Errorf("%w: %w", ErrAIUnavailable, client.ErrAINotConfigured)
	}

	decision, err := s.gate.AuthorizeMetered(ctx, access)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &AccessDeniedError{Decision: decision}
	}

	spots := s.searchSpots(ctx, model.SpotQuery{Locale: req.Locale, Tags: req.Tags, Limit: chatSpotLimit})

	data := template.RequestDataFromChat(req)
	answer, err := s.ai.GenerateText(ctx,
		template.RenderPrompt(template.ConciergeSystemPrompt, &data, nil, nil),
		template.RenderPrompt(template.ConciergeUserPrompt, &data, nil, spots),
	)
	if err != nil {
		// the credit stays consumed; refunds are handled by support
		s.logger.Error("concierge generation failed",
			zap.String("external_user_id", access.ExternalUserID),
			zap.String("entitlement", string(decision.Entitlement)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrAIUnavailable, err)
	}

	used := make([]string, 0, len(spots))
	for _, spot := range spots {
		used = append(used, spot.Slug)
	}

	return &model.ChatResponse{
		Status:         "success",
		Answer:         answer,
		ConversationID: req.ConversationID,
		SpotsUsed:      used,
		RemainingUses:  decision.RemainingUses,
	}, nil
}

func (s *ChatService) searchSpots(ctx context.Context, query model.SpotQuery) []model.Spot {
	if s.content == nil {
		return nil
	}
	spots, err := s.content.SearchSpots(ctx, query)
	if err != nil {
		s.logger.Warn("content lookup failed, answering without spots", zap.Error(err))
		return nil
	}
	return spots
}
