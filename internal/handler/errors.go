package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/localtrip/backend/internal/model"
	"github.com/localtrip/backend/internal/service"
)

func writeDenied(c *gin.Context, decision model.AccessDecision) {
	status := decision.HTTPStatus
	if status == 0 {
		status = http.StatusForbidden
	}
	c.JSON(status, model.ErrorResponse{
		Error:     "access denied",
		Reason:    decision.Reason,
		SubReason: decision.SubReason,
		Message:   decision.Message,
	})
}

// writeServiceError maps service errors to status codes. Details of 5xx causes stay in
// the logs.
func writeServiceError(c *gin.Context, err error) {
	_ = c.Error(err)

	var denied *service.AccessDeniedError
	if errors.As(err, &denied) {
		writeDenied(c, denied.Decision)
		return
	}

	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidChatRequest),
		errors.Is(err, service.ErrInvalidSignature):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request", Message: err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "unauthorized"})
	case errors.Is(err, service.ErrPaymentIncomplete):
		c.JSON(http.StatusPaymentRequired, model.ErrorResponse{Error: "payment incomplete", Message: "Checkout has not been paid yet."})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, model.ErrorResponse{Error: "forbidden"})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusForbidden, model.ErrorResponse{
			Error:     "conflict",
			Reason:    model.DenialMembershipInvalid,
			SubReason: model.SubReasonLinkMismatch,
			Message:   model.Deny(model.DenialMembershipInvalid, model.SubReasonLinkMismatch).Message,
		})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "not found"})
	case errors.Is(err, service.ErrConsumeContended):
		c.JSON(http.StatusConflict, model.ErrorResponse{Error: "contended", Message: "Please retry your request."})
	case errors.Is(err, service.ErrBillingUnavailable):
		c.JSON(http.StatusBadGateway, model.ErrorResponse{Error: "billing unavailable", Message: "Membership could not be verified right now. Please try again."})
	case errors.Is(err, service.ErrAIUnavailable):
		c.JSON(http.StatusBadGateway, model.ErrorResponse{Error: "ai unavailable", Message: "The concierge is unavailable right now. Please try again."})
	default:
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "server error"})
	}
}
