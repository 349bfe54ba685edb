package template

import (
	"testing"

	"github.com/localtrip/backend/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestRenderPromptChat(t *testing.T) {
	req := RequestDataFromChat(model.ChatRequest{Message: "Where to eat ramen?", Locale: "en", Tags: []string{"food"}})
	spots := []model.Spot{
		{Slug: "menya-a", Name: "Menya A", Area: "Shinjuku", Summary: "Rich tonkotsu", AccessNotes: "3 min from exit B"},
		{Name: "Soba B"},
	}

	got := RenderPrompt(ConciergeUserPrompt, &req, nil, spots)

	assert.Contains(t, got, "- Menya A [menya-a] (Shinjuku): Rich tonkotsu Access: 3 min from exit B\n- Soba B")
	assert.Contains(t, got, "Traveller interests: food")
	assert.Contains(t, got, "Question: Where to eat ramen?")
	assert.NotContains(t, got, "{{")
}

func TestRenderPromptItinerary(t *testing.T) {
	trip := TripDataFromItinerary(model.ItineraryRequest{City: "Kyoto", Days: 2})

	got := RenderPrompt(ItineraryUserPrompt, nil, &trip, nil)

	assert.Contains(t, got, "Plan 2 day(s) in Kyoto.")
	assert.Contains(t, got, "Interests: none")
	assert.Contains(t, got, "- (none available)")
}

func TestRenderPromptNilData(t *testing.T) {
	got := RenderPrompt("[{{request.message}}|{{trip.city}}]", nil, nil, nil)
	assert.Equal(t, "[|]", got)
}
