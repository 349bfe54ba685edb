package model

type ErrorResponse struct {
	Error     string       `json:"error"`
	Reason    DenialReason `json:"reason,omitempty"`
	SubReason string       `json:"subReason,omitempty"`
	Message   string       `json:"message,omitempty"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type RootResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type CreditsResponse struct {
	Status  string        `json:"status"`
	Credits CreditSummary `json:"credits"`
}
