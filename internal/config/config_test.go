package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MEMBERSHIP_TOKEN_SECRET", "token-secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://localtrip.example, ,https://ja.localtrip.example")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"https://localtrip.example", "https://ja.localtrip.example"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "token-secret", cfg.Membership.TokenSecret)
	assert.Equal(t, 90*24*time.Hour, cfg.Membership.TokenTTL)
	assert.Equal(t, "lt_membership", cfg.Membership.CookieName)
	assert.Equal(t, 10*time.Second, cfg.Stripe.Timeout)
	assert.Equal(t, 10, cfg.Pass.Credits)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Membership: MembershipConfig{TokenSecret: "a", TokenTTL: time.Hour},
		Session:    SessionConfig{Secret: "b", TTL: time.Hour},
		Stripe:     StripeConfig{SecretKey: "sk_test", WebhookSecret: "whsec"},
		Pass:       PassConfig{Credits: 10},
	}
	require.NoError(t, valid.Validate())

	missing := valid
	missing.Membership.TokenSecret = ""
	missing.Stripe.WebhookSecret = ""
	err := missing.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MEMBERSHIP_TOKEN_SECRET")
	assert.Contains(t, err.Error(), "STRIPE_WEBHOOK_SECRET")

	noCredits := valid
	noCredits.Pass.Credits = 0
	assert.Error(t, noCredits.Validate())
}
