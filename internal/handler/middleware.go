package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/localtrip/backend/internal/model"
	"github.com/localtrip/backend/internal/service"
	"go.uber.org/zap"
)

const (
	identityKey          = "identity"
	sessionHeader        = "X-Session-Token"
	membershipHeader     = "X-Membership-Token"
	defaultRetryAfterSec = 60
)

// sessionParser - identity source interface
type sessionParser interface {
	ParseSession(tokenStr string) (*model.Identity, error)
	CookieConfig() service.CookieConfig
}

// rateLimiter - rate limit backend interface
type rateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Window() time.Duration
}

// IdentityMiddleware resolves the caller from the session cookie or header.
// Anonymous requests pass through; gated handlers decide what to do with them.
func IdentityMiddleware(sessions sessionParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(sessions.CookieConfig().Name)
		if token == "" {
			token = strings.TrimSpace(c.GetHeader(sessionHeader))
		}
		if token != "" {
			if identity, err := sessions.ParseSession(token); err == nil {
				c.Set(identityKey, identity)
			}
		}
		c.Next()
	}
}

// RequireIdentity aborts with 401 when IdentityMiddleware found no caller.
func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		if GetIdentity(c) == nil {
			denied := model.Deny(model.DenialNotAuthenticated, "")
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
				Error:   "unauthorized",
				Reason:  denied.Reason,
				Message: denied.Message,
			})
			return
		}
		c.Next()
	}
}

func GetIdentity(c *gin.Context) *model.Identity {
	if value, ok := c.Get(identityKey); ok {
		if identity, ok := value.(*model.Identity); ok {
			return identity
		}
	}
	return nil
}

func externalUserID(c *gin.Context) string {
	if identity := GetIdentity(c); identity != nil {
		return identity.ExternalUserID
	}
	return ""
}

// RateLimitMiddleware caps AI requests per caller (or per client IP when anonymous).
// A limiter outage lets traffic through.
func RateLimitMiddleware(limiter rateLimiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		key := "ip:" + c.ClientIP()
		if id := externalUserID(c); id != "" {
			key = "user:" + id
		}

		allowed, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warn("rate limiter unavailable", zap.String("key", key), zap.Error(err))
		}
		if !allowed {
			retryAfter := int(limiter.Window().Seconds())
			if retryAfter <= 0 {
				retryAfter = defaultRetryAfterSec
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, model.ErrorResponse{
				Error:   "rate limited",
				Message: "Too many requests. Please wait a moment and try again.",
			})
			return
		}
		c.Next()
	}
}

// RequestLogger writes one structured line per request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

func CORSMiddleware(allowedOrigins []string, allowCredentials bool) gin.HandlerFunc {
	originMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		originMap[trimmed] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := originMap[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				if allowCredentials {
					c.Header("Access-Control-Allow-Credentials", "true")
				}
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Membership-Token, X-Session-Token")
				c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// extractMembershipToken reads the membership token: Bearer header, then
// X-Membership-Token, then the membership cookie.
func extractMembershipToken(c *gin.Context, cookieName string) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		if token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")); token != "" {
			return token
		}
	}
	if token := strings.TrimSpace(c.GetHeader(membershipHeader)); token != "" {
		return token
	}
	if token, err := c.Cookie(cookieName); err == nil {
		return strings.TrimSpace(token)
	}
	return ""
}

func accessRequest(c *gin.Context, cookieName string) model.AccessRequest {
	return model.AccessRequest{
		ExternalUserID: externalUserID(c),
		Token:          extractMembershipToken(c, cookieName),
	}
}
