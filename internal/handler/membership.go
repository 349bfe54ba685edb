package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/localtrip/backend/internal/model"
	"github.com/localtrip/backend/internal/service"
)

// checkoutService - purchase flow interface
type checkoutService interface {
	CreateCheckout(ctx context.Context, in model.CreateCheckoutInput) (*model.CheckoutResponse, error)
	CompleteCheckout(ctx context.Context, externalUserID, sessionID string) (*service.IssuedToken, error)
	Sync(ctx context.Context, externalUserID string) (*service.IssuedToken, error)
	AcceptToken(ctx context.Context, externalUserID, token string) (*service.IssuedToken, error)
}

// accessAuthorizer - access gate interface
type accessAuthorizer interface {
	Authorize(ctx context.Context, req model.AccessRequest) (model.AccessDecision, error)
}

// creditReader - ledger read interface
type creditReader interface {
	Summary(ctx context.Context, owner string) (model.CreditSummary, error)
}

// MembershipHandler serves checkout, token transport, status and credits.
type MembershipHandler struct {
	checkout checkoutService
	gate     accessAuthorizer
	credits  creditReader
	cookie   service.CookieConfig
}

func NewMembershipHandler(checkout checkoutService, gate accessAuthorizer, credits creditReader, cookie service.CookieConfig) *MembershipHandler {
	return &MembershipHandler{checkout: checkout, gate: gate, credits: credits, cookie: cookie}
}

// CreateCheckout godoc
// @Summary Create a Stripe checkout session
// @Tags billing
// @Accept json
// @Produce json
// @Param request body model.CheckoutRequest true "subscription or pass"
// @Success 200 {object} model.CheckoutResponse
// @Failure 400,401,502 {object} model.ErrorResponse
// @Router /api/v1/billing/checkout [post]
func (h *MembershipHandler) CreateCheckout(c *gin.Context) {
	var req model.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}

	in := model.CreateCheckoutInput{Kind: req.Kind, ExternalUserID: externalUserID(c)}
	if identity := GetIdentity(c); identity != nil {
		in.Email = identity.Email
	}
	resp, err := h.checkout.CreateCheckout(c.Request.Context(), in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CompleteCheckout godoc
// @Summary Link a completed subscription checkout
// @Description Links the caller to the checkout's subscriber and sets the membership cookie.
// @Tags membership
// @Accept json
// @Produce json
// @Param request body model.CheckoutCompleteRequest true "Checkout session id"
// @Success 200 {object} model.MembershipTokenResponse
// @Failure 400,401,402,403,404,502 {object} model.ErrorResponse
// @Router /api/v1/membership/checkout/complete [post]
func (h *MembershipHandler) CompleteCheckout(c *gin.Context) {
	var req model.CheckoutCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}

	issued, err := h.checkout.CompleteCheckout(c.Request.Context(), externalUserID(c), req.SessionID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	h.respondWithToken(c, issued, "linked")
}

// Sync godoc
// @Summary Reissue the membership token for the signed-in user
// @Tags membership
// @Produce json
// @Success 200 {object} model.MembershipTokenResponse
// @Failure 401,404 {object} model.ErrorResponse
// @Router /api/v1/membership/sync [post]
func (h *MembershipHandler) Sync(c *gin.Context) {
	issued, err := h.checkout.Sync(c.Request.Context(), externalUserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	h.respondWithToken(c, issued, "synced")
}

// AcceptToken godoc
// @Summary Store a membership token as this browser's cookie
// @Tags membership
// @Accept json
// @Produce json
// @Param request body model.MembershipTokenRequest true "Membership token"
// @Success 200 {object} model.MembershipTokenResponse
// @Failure 400,401,403 {object} model.ErrorResponse
// @Router /api/v1/membership/token [post]
func (h *MembershipHandler) AcceptToken(c *gin.Context) {
	var req model.MembershipTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}

	issued, err := h.checkout.AcceptToken(c.Request.Context(), externalUserID(c), req.Token)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	h.setTokenCookie(c, issued.Token, h.cookie.MaxAge)
	c.JSON(http.StatusOK, model.MembershipTokenResponse{Status: "stored", SubscriberID: issued.SubscriberID})
}

// ClearToken godoc
// @Summary Clear the membership cookie
// @Tags membership
// @Produce json
// @Success 200 {object} model.StatusResponse
// @Router /api/v1/membership/token [delete]
func (h *MembershipHandler) ClearToken(c *gin.Context) {
	h.setTokenCookie(c, "", -1)
	c.JSON(http.StatusOK, model.StatusResponse{Status: "cleared"})
}

// Status godoc
// @Summary Membership status
// @Description Gate decision for the presented token plus the caller's credit balance.
// @Tags membership
// @Produce json
// @Success 200 {object} model.MembershipStatusResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/v1/membership/status [get]
func (h *MembershipHandler) Status(c *gin.Context) {
	access := accessRequest(c, h.cookie.Name)
	decision, err := h.gate.Authorize(c.Request.Context(), access)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	resp := model.MembershipStatusResponse{
		Allowed:      decision.Allowed,
		SubscriberID: decision.SubscriberID,
		Reason:       decision.Reason,
		SubReason:    decision.SubReason,
		Message:      decision.Message,
	}
	if access.ExternalUserID != "" {
		summary, err := h.credits.Summary(c.Request.Context(), access.ExternalUserID)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		resp.Credits = &summary
	}
	c.JSON(http.StatusOK, resp)
}

// Credits godoc
// @Summary Remaining metered credits
// @Tags membership
// @Produce json
// @Success 200 {object} model.CreditsResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/credits [get]
func (h *MembershipHandler) Credits(c *gin.Context) {
	summary, err := h.credits.Summary(c.Request.Context(), externalUserID(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.CreditsResponse{Status: "success", Credits: summary})
}

func (h *MembershipHandler) respondWithToken(c *gin.Context, issued *service.IssuedToken, status string) {
	h.setTokenCookie(c, issued.Token, h.cookie.MaxAge)
	c.JSON(http.StatusOK, model.MembershipTokenResponse{
		Status:       status,
		Token:        issued.Token,
		SubscriberID: issued.SubscriberID,
		ExpiresAt:    issued.ExpiresAt,
	})
}

func (h *MembershipHandler) setTokenCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(h.cookie.SameSite)
	c.SetCookie(h.cookie.Name, token, maxAge, h.cookie.Path, h.cookie.Domain, h.cookie.Secure, true)
}
