// Package template renders the concierge prompts.
//
// Supported variables:
//
//	{{request.message}}, {{request.locale}}, {{request.tags}}
//
//	{{trip.city}}, {{trip.days}}, {{trip.interests}}
//
//	{{spots}} (one bullet per spot: name, area, summary, access notes)
package template

import (
	"strconv"
	"strings"

	"github.com/localtrip/backend/internal/model"
)

const (
	ConciergeSystemPrompt = `You are the LocalTrip concierge. Answer in the language of locale {{request.locale}}.
Recommend only places listed under "Known spots" unless the traveller asks for something general.
Keep answers short and practical: how to get there, best time, what to order or see.`

	ConciergeUserPrompt = `Known spots:
{{spots}}

Traveller interests: {{request.tags}}
Question: {{request.message}}`

	ItinerarySystemPrompt = `You are the LocalTrip itinerary planner. Reply with JSON only, in the language of locale {{request.locale}}.
Schema: {"title": string, "days": [{"day": int, "theme": string, "items": [{"time": "HH:MM", "title": string, "description": string, "spotSlug": string}]}]}
Use a spotSlug from the known spots when an item visits one, otherwise leave it empty.`

	ItineraryUserPrompt = `Plan {{trip.days}} day(s) in {{trip.city}}.
Interests: {{trip.interests}}
Known spots:
{{spots}}`
)

// RequestData - caller-supplied fields shared by both prompts
type RequestData struct {
	Message string
	Locale  string
	Tags    []string
}

// TripData - itinerary parameters
type TripData struct {
	City      string
	Days      int
	Interests []string
}

// RequestDataFromChat - build RequestData from a chat request
func RequestDataFromChat(req model.ChatRequest) RequestData {
	return RequestData{Message: req.Message, Locale: req.Locale, Tags: req.Tags}
}

// TripDataFromItinerary - build TripData from an itinerary request
func TripDataFromItinerary(req model.ItineraryRequest) TripData {
	return TripData{City: req.City, Days: req.Days, Interests: req.Interests}
}

// RenderPrompt - substitute variables in tmpl.
//
// request and trip may be nil; their variables then render as empty strings.
func RenderPrompt(tmpl string, request *RequestData, trip *TripData, spots []model.Spot) string {
	pairs := make([]string, 0, 14)

	if request != nil {
		pairs = append(pairs,
			"{{request.message}}", request.Message,
			"{{request.locale}}", request.Locale,
			"{{request.tags}}", joinOrNone(request.Tags),
		)
	} else {
		pairs = append(pairs,
			"{{request.message}}", "",
			"{{request.locale}}", "",
			"{{request.tags}}", "",
		)
	}

	if trip != nil {
		pairs = append(pairs,
			"{{trip.city}}", trip.City,
			"{{trip.days}}", strconv.Itoa(trip.Days),
			"{{trip.interests}}", joinOrNone(trip.Interests),
		)
	} else {
		pairs = append(pairs,
			"{{trip.city}}", "",
			"{{trip.days}}", "",
			"{{trip.interests}}", "",
		)
	}

	pairs = append(pairs, "{{spots}}", formatSpots(spots))

	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func formatSpots(spots []model.Spot) string {
	if len(spots) == 0 {
		return "- (none available)"
	}
	var b strings.Builder
	for i, spot := range spots {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(spot.Name)
		if spot.Slug != "" {
			b.WriteString(" [" + spot.Slug + "]")
		}
		if spot.Area != "" {
			b.WriteString(" (" + spot.Area + ")")
		}
		if spot.Summary != "" {
			b.WriteString(": " + spot.Summary)
		}
		if spot.AccessNotes != "" {
			b.WriteString(" Access: " + spot.AccessNotes)
		}
	}
	return b.String()
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}
