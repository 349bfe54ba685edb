package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/localtrip/backend/internal/model"
	"github.com/localtrip/backend/internal/service"
	"go.uber.org/zap"
)

const (
	oauthStateCookie = "lt_oauth_state"
	oauthNonceCookie = "lt_oauth_nonce"
)

type AuthHandler struct {
	svc          *service.AuthService
	postLoginURL string
	logger       *zap.Logger
}

func NewAuthHandler(svc *service.AuthService, postLoginURL string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, postLoginURL: postLoginURL, logger: logger}
}

// Login godoc
// @Summary Start OIDC login
// @Description Sets state/nonce cookies and redirects to the identity provider.
// @Tags auth
// @Success 302
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/auth/login [get]
func (h *AuthHandler) Login(c *gin.Context) {
	start, err := h.svc.StartLogin(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to start login", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "login unavailable"})
		return
	}

	maxAge := int(h.svc.OAuthStateTTL().Seconds())
	h.setCookie(c, oauthStateCookie, start.State, maxAge)
	h.setCookie(c, oauthNonceCookie, start.Nonce, maxAge)
	c.Redirect(http.StatusFound, start.URL)
}

// Callback godoc
// @Summary OIDC callback
// @Description Verifies the provider response, sets the session cookie (lt_session) and redirects to the site.
// @Tags auth
// @Param code query string true "Authorization code"
// @Param state query string true "OAuth state"
// @Success 302
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/auth/callback [get]
func (h *AuthHandler) Callback(c *gin.Context) {
	expectedState, _ := c.Cookie(oauthStateCookie)
	expectedNonce, _ := c.Cookie(oauthNonceCookie)
	h.setCookie(c, oauthStateCookie, "", -1)
	h.setCookie(c, oauthNonceCookie, "", -1)

	session, _, err := h.svc.CompleteLogin(c.Request.Context(), c.Query("code"), c.Query("state"), expectedState, expectedNonce)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	cfg := h.svc.CookieConfig()
	h.setCookie(c, cfg.Name, session, cfg.MaxAge)
	c.Redirect(http.StatusFound, h.postLoginURL)
}

// Logout godoc
// @Summary Logout
// @Description Clears the session cookie.
// @Tags auth
// @Produce json
// @Success 200 {object} model.StatusResponse
// @Router /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setCookie(c, h.svc.CookieConfig().Name, "", -1)
	c.JSON(http.StatusOK, model.StatusResponse{Status: "logged_out"})
}

// Me godoc
// @Summary Get current user
// @Tags auth
// @Produce json
// @Success 200 {object} model.AuthMeResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	identity := GetIdentity(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, model.AuthMeResponse{
		UserID: identity.ExternalUserID,
		Email:  identity.Email,
		Name:   identity.Name,
	})
}

func (h *AuthHandler) setCookie(c *gin.Context, name, value string, maxAge int) {
	cfg := h.svc.CookieConfig()
	c.SetSameSite(cfg.SameSite)
	c.SetCookie(name, value, maxAge, cfg.Path, cfg.Domain, cfg.Secure, true)
}
