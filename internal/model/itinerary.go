package model

type ItineraryRequest struct {
	City      string   `json:"city"`
	Days      int      `json:"days"`
	Locale    string   `json:"locale"`
	Interests []string `json:"interests"`
}

type ItineraryItem struct {
	Time        string `json:"time"`
	Title       string `json:"title"`
	Description string `json:"description"`
	SpotSlug    string `json:"spotSlug,omitempty"`
}

type ItineraryDay struct {
	Day   int             `json:"day"`
	Theme string          `json:"theme"`
	Items []ItineraryItem `json:"items"`
}

type Itinerary struct {
	Title string         `json:"title"`
	Days  []ItineraryDay `json:"days"`
}

type ItineraryResponse struct {
	Status    string    `json:"status"`
	Itinerary Itinerary `json:"itinerary"`
}
