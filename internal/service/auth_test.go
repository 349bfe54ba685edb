package service

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/localtrip/backend/internal/config"
	"github.com/localtrip/backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	svc, err := NewAuthService(
		config.OIDCConfig{},
		config.SessionConfig{Secret: "session-secret", TTL: time.Hour, CookieName: "lt_session"},
		config.CookieConfig{Secure: "true", SameSite: "lax"},
		nil,
	)
	require.NoError(t, err)
	return svc
}

func TestSessionRoundTrip(t *testing.T) {
	svc := newTestAuthService(t)

	token, expiresAt, err := svc.IssueSession(model.Identity{ExternalUserID: "google-123", Email: "a@example.com", Name: "A"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	identity, err := svc.ParseSession(token)
	require.NoError(t, err)
	assert.Equal(t, "google-123", identity.ExternalUserID)
	assert.Equal(t, "a@example.com", identity.Email)
}

func TestSessionRejections(t *testing.T) {
	svc := newTestAuthService(t)
	token, _, err := svc.IssueSession(model.Identity{ExternalUserID: "google-123"})
	require.NoError(t, err)

	_, err = svc.ParseSession(token + "x")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = svc.ParseSession("")
	assert.ErrorIs(t, err, ErrUnauthorized)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ParseSession(token)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, _, err = svc.IssueSession(model.Identity{ExternalUserID: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSessionNotAcceptedAsMembershipToken(t *testing.T) {
	svc := newTestAuthService(t)
	session, _, err := svc.IssueSession(model.Identity{ExternalUserID: "cus_1"})
	require.NoError(t, err)

	_, ok := NewTokenCodec("session-secret").Verify(session)
	assert.False(t, ok)
}

func TestNewAuthServiceConfig(t *testing.T) {
	_, err := NewAuthService(config.OIDCConfig{}, config.SessionConfig{TTL: time.Hour}, config.CookieConfig{}, nil)
	assert.ErrorIs(t, err, ErrMisconfigured)

	_, err = NewAuthService(config.OIDCConfig{}, config.SessionConfig{Secret: "s", TTL: time.Hour}, config.CookieConfig{Secure: "false", SameSite: "none"}, nil)
	assert.ErrorIs(t, err, ErrMisconfigured)

	svc := newTestAuthService(t)
	cookie := svc.CookieConfig()
	assert.Equal(t, "lt_session", cookie.Name)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.True(t, cookie.Secure)
	assert.Equal(t, 3600, cookie.MaxAge)
}

func TestStartLoginRequiresOIDCConfig(t *testing.T) {
	svc := newTestAuthService(t)
	_, err := svc.StartLogin(t.Context())
	assert.ErrorIs(t, err, ErrMisconfigured)
}

type fakeOIDCProvider struct {
	server *httptest.Server
	key    *rsa.PrivateKey
	nonce  string
}

func newFakeOIDCProvider(t *testing.T) *fakeOIDCProvider {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	p := &fakeOIDCProvider{key: key}

	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, map[string]any{
			"issuer":                                p.server.URL,
			"authorization_endpoint":                p.server.URL + "/auth",
			"token_endpoint":                        p.server.URL + "/token",
			"jwks_uri":                              p.server.URL + "/keys",
			"id_token_signing_alg_values_supported": []string{"RS256"},
		})
	})
	mux.HandleFunc("/keys", func(w http.ResponseWriter, r *http.Request) {
		writeTestJSON(w, map[string]any{"keys": []map[string]string{{
			"kty": "RSA",
			"alg": "RS256",
			"use": "sig",
			"kid": "test-key",
			"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}}})
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		claims := jwt.MapClaims{
			"iss":   p.server.URL,
			"sub":   "google-123",
			"aud":   "client-1",
			"iat":   now.Unix(),
			"exp":   now.Add(time.Hour).Unix(),
			"email": "a@example.com",
			"name":  "A",
		}
		if p.nonce != "" {
			claims["nonce"] = p.nonce
		}
		idToken := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
		idToken.Header["kid"] = "test-key"
		signed, err := idToken.SignedString(key)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeTestJSON(w, map[string]any{
			"access_token": "access-1",
			"token_type":   "Bearer",
			"expires_in":   3600,
			"id_token":     signed,
		})
	})
	p.server = httptest.NewServer(mux)
	t.Cleanup(p.server.Close)
	return p
}

func writeTestJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func TestCompleteLogin(t *testing.T) {
	tests := []struct {
		name          string
		tokenNonce    string
		state         string
		expectedState string
		expectedNonce string
		wantErr       bool
	}{
		{name: "valid", tokenNonce: "nonce-1", state: "state-1", expectedState: "state-1", expectedNonce: "nonce-1"},
		{name: "state mismatch", tokenNonce: "nonce-1", state: "state-1", expectedState: "state-2", expectedNonce: "nonce-1", wantErr: true},
		{name: "missing state cookie", tokenNonce: "nonce-1", state: "state-1", expectedState: "", expectedNonce: "nonce-1", wantErr: true},
		{name: "nonce mismatch", tokenNonce: "nonce-other", state: "state-1", expectedState: "state-1", expectedNonce: "nonce-1", wantErr: true},
		{name: "missing nonce cookie and claim", tokenNonce: "", state: "state-1", expectedState: "state-1", expectedNonce: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := newFakeOIDCProvider(t)
			provider.nonce = tt.tokenNonce
			svc, err := NewAuthService(
				config.OIDCConfig{Issuer: provider.server.URL, ClientID: "client-1", ClientSecret: "secret", RedirectURL: "http://localhost/callback"},
				config.SessionConfig{Secret: "session-secret", TTL: time.Hour, CookieName: "lt_session"},
				config.CookieConfig{Secure: "true", SameSite: "lax"},
				nil,
			)
			require.NoError(t, err)

			session, _, err := svc.CompleteLogin(t.Context(), "code-1", tt.state, tt.expectedState, tt.expectedNonce)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnauthorized)
				assert.Empty(t, session)
				return
			}
			require.NoError(t, err)
			identity, err := svc.ParseSession(session)
			require.NoError(t, err)
			assert.Equal(t, "google-123", identity.ExternalUserID)
			assert.Equal(t, "a@example.com", identity.Email)
		})
	}
}
