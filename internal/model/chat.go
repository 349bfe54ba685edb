package model

type ChatRequest struct {
	Message        string   `json:"message"`
	ConversationID string   `json:"conversationId"`
	Locale         string   `json:"locale"`
	Tags           []string `json:"tags"`
}

type ChatResponse struct {
	Status         string   `json:"status"`
	Answer         string   `json:"answer"`
	ConversationID string   `json:"conversationId,omitempty"`
	SpotsUsed      []string `json:"spotsUsed,omitempty"`
	RemainingUses  *int     `json:"remainingUses,omitempty"`
}
