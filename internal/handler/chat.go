package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/localtrip/backend/internal/model"
	"github.com/localtrip/backend/internal/service"
)

type chatService interface {
	Chat(ctx context.Context, access model.AccessRequest, req model.ChatRequest) (*model.ChatResponse, error)
}

type itineraryService interface {
	Generate(ctx context.Context, access model.AccessRequest, req model.ItineraryRequest) (*model.ItineraryResponse, error)
}

type ChatHandler struct {
	svc        chatService
	itinerary  itineraryService
	cookieName string
}

func NewChatHandler(svc chatService, itinerary itineraryService, cookieName string) *ChatHandler {
	return &ChatHandler{svc: svc, itinerary: itinerary, cookieName: cookieName}
}

// Chat godoc
// @Summary Ask the AI concierge
// @Description Costs one metered credit unless the caller has an active subscription.
// @Tags concierge
// @Accept json
// @Produce json
// @Param request body model.ChatRequest true "Question"
// @Success 200 {object} model.ChatResponse
// @Failure 400,401,402,403,409,429,502 {object} model.ErrorResponse
// @Router /api/v1/concierge/chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}
	req, err := service.NormalizeChatRequest(req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	resp, err := h.svc.Chat(c.Request.Context(), accessRequest(c, h.cookieName), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Itinerary godoc
// @Summary Generate a trip itinerary
// @Description Subscribers only.
// @Tags concierge
// @Accept json
// @Produce json
// @Param request body model.ItineraryRequest true "Trip parameters"
// @Success 200 {object} model.ItineraryResponse
// @Failure 400,401,402,403,429,502 {object} model.ErrorResponse
// @Router /api/v1/concierge/itinerary [post]
func (h *ChatHandler) Itinerary(c *gin.Context) {
	var req model.ItineraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}
	req, err := service.NormalizeItineraryRequest(req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	resp, err := h.itinerary.Generate(c.Request.Context(), accessRequest(c, h.cookieName), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
