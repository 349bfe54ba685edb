package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/localtrip/backend/internal/client"
	"github.com/localtrip/backend/internal/model"
	"github.com/localtrip/backend/internal/template"
	"go.uber.org/zap"
)

const (
	maxItineraryDays     = 7
	itinerarySpotLimit   = 12
	maxItineraryInterest = 10
)

type subscriptionAuthorizer interface {
	Authorize(ctx context.Context, req model.AccessRequest) (model.AccessDecision, error)
}

type jsonGenerator interface {
	IsConfigured() bool
	GenerateJSON(ctx context.Context, systemPrompt, prompt string) (string, error)
}

// ItineraryService builds multi-day plans. Subscribers only; passes do not cover it.
type ItineraryService struct {
	gate    subscriptionAuthorizer
	content spotSearcher
	ai      jsonGenerator
	logger  *zap.Logger
}

func NewItineraryService(gate subscriptionAuthorizer, content spotSearcher, ai jsonGenerator, logger *zap.Logger) *ItineraryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItineraryService{gate: gate, content: content, ai: ai, logger: logger}
}

func NormalizeItineraryRequest(req model.ItineraryRequest) (model.ItineraryRequest, error) {
	req.City = strings.TrimSpace(req.City)
	req.Locale = strings.TrimSpace(req.Locale)
	if req.City == "" {
		return req, fmt.Errorf("%w: city is required", ErrInvalidInput)
	}
	if req.Days < 1 || req.Days > maxItineraryDays {
		return req, fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidInput, maxItineraryDays)
	}
	if len(req.Interests) > maxItineraryInterest {
		return req, fmt.Errorf("%w: at most %d interests", ErrInvalidInput, maxItineraryInterest)
	}
	if req.Locale == "" {
		req.Locale = defaultLocale
	}
	return req, nil
}

func (s *ItineraryService) Generate(ctx context.Context, access model.AccessRequest, req model.ItineraryRequest) (*model.ItineraryResponse, error) {
	req, err := NormalizeItineraryRequest(req)
	if err != nil {
		return nil, err
	}
	if s.ai == nil || !s.ai.IsConfigured() {
		return nil, fmt.Errorf("%w: %w", ErrAIUnavailable, client.ErrAINotConfigured)
	}

	decision, err := s.gate.Authorize(ctx, access)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, &AccessDeniedError{Decision: decision}
	}

	var spots []model.Spot
	if s.content != nil {
		spots, err = s.content.SearchSpots(ctx, model.SpotQuery{
			Locale: req.Locale,
			City:   req.City,
			Tags:   req.Interests,
			Limit:  itinerarySpotLimit,
		})
		if err != nil {
			s.logger.Warn("content lookup failed, planning without spots", zap.Error(err))
			spots = nil
		}
	}

	requestData := template.RequestData{Locale: req.Locale}
	trip := template.TripDataFromItinerary(req)
	raw, err := s.ai.GenerateJSON(ctx,
		template.RenderPrompt(template.ItinerarySystemPrompt, &requestData, nil, nil),
		template.RenderPrompt(template.ItineraryUserPrompt, &requestData, &trip, spots),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAIUnavailable, err)
	}

	itinerary, err := parseItinerary(raw)
	if err != nil {
		s.logger.Warn("unparseable itinerary from model", zap.Error(err), zap.Int("bytes", len(raw)))
		return nil, fmt.Errorf("%w: %w", ErrAIUnavailable, err)
	}
	return &model.ItineraryResponse{Status: "success", Itinerary: itinerary}, nil
}

func parseItinerary(raw string) (model.Itinerary, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var itinerary model.Itinerary
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &itinerary); err != nil {
		return model.Itinerary{}, fmt.Errorf("decode itinerary: %w", err)
	}
	if len(itinerary.Days) == 0 {
		return model.Itinerary{}, fmt.Errorf("itinerary has no days")
	}
	for i := range itinerary.Days {
		if itinerary.Days[i].Day == 0 {
			itinerary.Days[i].Day = i + 1
		}
		if itinerary.Days[i].Items == nil {
			itinerary.Days[i].Items = []model.ItineraryItem{}
		}
	}
	return itinerary, nil
}
