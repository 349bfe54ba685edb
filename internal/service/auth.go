package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/localtrip/backend/internal/config"
	"github.com/localtrip/backend/internal/model"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	sessionIssuer       = "localtrip/session"
	sessionKeyPurpose   = "localtrip session v1"
	oauthStateCookieTTL = 10 * time.Minute
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrMisconfigured      = errors.New("config invalid")
	ErrBillingUnavailable = errors.New("billing provider unavailable")
	ErrPaymentIncomplete  = errors.New("payment incomplete")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
)

type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
	MaxAge   int
}

// NewCookieConfig builds an HTTP-only cookie setting from the shared cookie flags.
func NewCookieConfig(name string, ttl time.Duration, cfg config.CookieConfig) (CookieConfig, error) {
	secure, err := parseBool(cfg.Secure, true)
	if err != nil {
		return CookieConfig{}, fmt.Errorf("%w: invalid AUTH_COOKIE_SECURE", ErrMisconfigured)
	}
	sameSite, err := parseSameSite(cfg.SameSite)
	if err != nil {
		return CookieConfig{}, fmt.Errorf("%w: invalid AUTH_COOKIE_SAMESITE", ErrMisconfigured)
	}
	if sameSite == http.SameSiteNoneMode && !secure {
		return CookieConfig{}, fmt.Errorf("%w: SameSite=None requires Secure cookie", ErrMisconfigured)
	}
	return CookieConfig{
		Name:     name,
		Path:     "/",
		Domain:   cfg.Domain,
		Secure:   secure,
		SameSite: sameSite,
		MaxAge:   int(ttl.Seconds()),
	}, nil
}

// OAuthStart is what the login handler needs to redirect to the identity provider.
type OAuthStart struct {
	URL   string
	State string
	Nonce string
}

// AuthService resolves callers to external identities. The login flow itself is
// delegated to the OIDC provider; this service only verifies its ID token and keeps
// the resulting subject in a signed session cookie.
type AuthService struct {
	oidcCfg    config.OIDCConfig
	sessionKey []byte
	sessionTTL time.Duration
	cookieCfg  CookieConfig
	logger     *zap.Logger
	now        func() time.Time

	providerMu sync.Mutex
	provider   *oidc.Provider
}

type sessionClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func NewAuthService(oidcCfg config.OIDCConfig, sessionCfg config.SessionConfig, cookieCfg config.CookieConfig, logger *zap.Logger) (*AuthService, error) {
	if sessionCfg.Secret == "" {
		return nil, fmt.Errorf("%w: SESSION_SECRET is required", ErrMisconfigured)
	}
	if sessionCfg.TTL <= 0 {
		return nil, fmt.Errorf("%w: invalid SESSION_TTL", ErrMisconfigured)
	}
	cookie, err := NewCookieConfig(sessionCfg.CookieName, sessionCfg.TTL, cookieCfg)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AuthService{
		oidcCfg:    oidcCfg,
		sessionKey: deriveKey(sessionCfg.Secret, sessionKeyPurpose),
		sessionTTL: sessionCfg.TTL,
		cookieCfg:  cookie,
		logger:     logger,
		now:        time.Now,
	}, nil
}

func (s *AuthService) CookieConfig() CookieConfig {
	return s.cookieCfg
}

// StartLogin builds the provider authorization URL with fresh state and nonce values.
func (s *AuthService) StartLogin(ctx context.Context) (*OAuthStart, error) {
	oauthCfg, _, err := s.oauthConfig(ctx)
	if err != nil {
		return nil, err
	}
	state := uuid.NewString()
	nonce := uuid.NewString()
	return &OAuthStart{
		URL:   oauthCfg.AuthCodeURL(state, oidc.Nonce(nonce)),
		State: state,
		Nonce: nonce,
	}, nil
}

// CompleteLogin exchanges the authorization code and returns a session token for the
// verified subject.
func (s *AuthService) CompleteLogin(ctx context.Context, code, state, expectedState, expectedNonce string) (string, time.Time, error) {
	if code == "" || state == "" || state != expectedState {
		return "", time.Time{}, ErrUnauthorized
	}
	if expectedNonce == "" {
		return "", time.Time{}, fmt.Errorf("%w: missing login nonce", ErrUnauthorized)
	}

	oauthCfg, verifier, err := s.oauthConfig(ctx)
	if err != nil {
		return "", time.Time{}, err
	}

	oauthToken, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		s.logger.Warn("oauth code exchange failed", zap.Error(err))
		return "", time.Time{}, ErrUnauthorized
	}

	rawIDToken, ok := oauthToken.Extra("id_token").(string)
	if !ok {
		return "", time.Time{}, ErrUnauthorized
	}

	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		s.logger.Warn("id token verification failed", zap.Error(err))
		return "", time.Time{}, ErrUnauthorized
	}

	var claims struct {
		Nonce string `json:"nonce"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return "", time.Time{}, ErrUnauthorized
	}
	if claims.Nonce != expectedNonce {
		return "", time.Time{}, ErrUnauthorized
	}

	return s.IssueSession(model.Identity{
		ExternalUserID: idToken.Subject,
		Email:          claims.Email,
		Name:           claims.Name,
	})
}

func (s *AuthService) IssueSession(identity model.Identity) (string, time.Time, error) {
	if strings.TrimSpace(identity.ExternalUserID) == "" {
		return "", time.Time{}, ErrInvalidInput
	}
	now := s.now()
	expiresAt := now.Add(s.sessionTTL)
	claims := sessionClaims{
		Email: identity.Email,
		Name:  identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   identity.ExternalUserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.sessionKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *AuthService) ParseSession(tokenStr string) (*model.Identity, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return s.sessionKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, ErrUnauthorized
	}

	return &model.Identity{
		ExternalUserID: claims.Subject,
		Email:          claims.Email,
		Name:           claims.Name,
	}, nil
}

// OAuthStateTTL is the lifetime of the state/nonce cookies set during login.
func (s *AuthService) OAuthStateTTL() time.Duration {
	return oauthStateCookieTTL
}

func (s *AuthService) oauthConfig(ctx context.Context) (*oauth2.Config, *oidc.IDTokenVerifier, error) {
	if s.oidcCfg.Issuer == "" || s.oidcCfg.ClientID == "" || s.oidcCfg.RedirectURL == "" {
		return nil, nil, fmt.Errorf("%w: OIDC_ISSUER/OIDC_CLIENT_ID/OIDC_REDIRECT_URL are required", ErrMisconfigured)
	}

	s.providerMu.Lock()
	defer s.providerMu.Unlock()
	if s.provider == nil {
		provider, err := oidc.NewProvider(ctx, s.oidcCfg.Issuer)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create OIDC provider: %w", err)
		}
		s.provider = provider
	}

	oauthCfg := &oauth2.Config{
		ClientID:     s.oidcCfg.ClientID,
		ClientSecret: s.oidcCfg.ClientSecret,
		Endpoint:     s.provider.Endpoint(),
		RedirectURL:  s.oidcCfg.RedirectURL,
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}
	verifier := s.provider.Verifier(&oidc.Config{ClientID: s.oidcCfg.ClientID})
	return oauthCfg, verifier, nil
}

func parseBool(value string, fallback bool) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, err
	}
	return parsed, nil
}

func parseSameSite(value string) (http.SameSite, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return http.SameSiteLaxMode, nil
	}
	switch value {
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	case "none":
		return http.SameSiteNoneMode, nil
	default:
		return 0, ErrInvalidInput
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
