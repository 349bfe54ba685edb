package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/localtrip/backend/internal/model"
	"github.com/localtrip/backend/internal/service"
)

// invoice events embed every line item, so allow well past the usual few KB.
const maxWebhookBodyBytes = 512 << 10

// billingWebhookService - service interface
type billingWebhookService interface {
	Handle(ctx context.Context, payload []byte, signature string) (*model.BillingWebhookResponse, error)
}

type BillingWebhookHandler struct {
	svc billingWebhookService
}

func NewBillingWebhookHandler(svc billingWebhookService) *BillingWebhookHandler {
	return &BillingWebhookHandler{svc: svc}
}

// Receive godoc
// @Summary Stripe webhook receiver
// @Description Verifies the Stripe-Signature header over the raw body before anything else.
// @Tags billing
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Stripe signature"
// @Success 200 {object} model.BillingWebhookResponse
// @Failure 400,500 {object} model.ErrorResponse
// @Router /api/v1/billing/webhook [post]
func (h *BillingWebhookHandler) Receive(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes+1))
	if err != nil || len(payload) > maxWebhookBodyBytes {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid payload"})
		return
	}

	resp, err := h.svc.Handle(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidSignature) || errors.Is(err, service.ErrInvalidInput) {
			writeServiceError(c, err)
			return
		}
		// non-2xx makes Stripe redeliver
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "processing failed"})
		return
	}
	c.JSON(http.StatusOK, resp)
}
