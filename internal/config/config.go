package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Log        LogConfig
	Postgres   PostgresConfig
	Membership MembershipConfig
	Session    SessionConfig
	Cookie     CookieConfig
	OIDC       OIDCConfig
	Stripe     StripeConfig
	Pass       PassConfig
	AI         AIConfig
	Content    ContentConfig
	RateLimit  RateLimitConfig
	Slack      SlackConfig
}

type ServerConfig struct {
	Port               string
	CORSAllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

type PostgresConfig struct {
	DatabaseURL string
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
}

type MembershipConfig struct {
	TokenSecret string
	TokenTTL    time.Duration
	CookieName  string
}

type SessionConfig struct {
	Secret     string
	TTL        time.Duration
	CookieName string
}

// CookieConfig holds the flags shared by the membership and session cookies.
type CookieConfig struct {
	Secure   string
	SameSite string
	Domain   string
}

type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	PostLoginURL string
}

type StripeConfig struct {
	SecretKey           string
	WebhookSecret       string
	SubscriptionPriceID string
	PassPriceID         string
	Timeout             time.Duration
	SuccessURL          string
	CancelURL           string
}

// PassConfig describes the single metered plan sold as a one-time payment.
type PassConfig struct {
	PlanCode  string
	Credits   int
	ValidDays int
}

type AIConfig struct {
	APIKey string
	Model  string
}

type ContentConfig struct {
	BaseURL string
	APIKey  string
}

type RateLimitConfig struct {
	RedisURL string
	Limit    int
	Window   time.Duration
}

type SlackConfig struct {
	BotToken  string
	ChannelID string
}

// Load reads .env (when present) and the process environment.
func Load() Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return Config{
		Server: ServerConfig{
			Port:               v.GetString("APP_PORT"),
			CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Postgres: PostgresConfig{
			DatabaseURL: v.GetString("DATABASE_URL"),
			Host:        v.GetString("PGHOST"),
			Port:        v.GetString("PGPORT"),
			User:        v.GetString("PGUSER"),
			Password:    v.GetString("PGPASSWORD"),
			Database:    v.GetString("PGDATABASE"),
			SSLMode:     v.GetString("PGSSLMODE"),
		},
		Membership: MembershipConfig{
			TokenSecret: v.GetString("MEMBERSHIP_TOKEN_SECRET"),
			TokenTTL:    v.GetDuration("MEMBERSHIP_TOKEN_TTL"),
			CookieName:  v.GetString("MEMBERSHIP_COOKIE_NAME"),
		},
		Session: SessionConfig{
			Secret:     v.GetString("SESSION_SECRET"),
			TTL:        v.GetDuration("SESSION_TTL"),
			CookieName: v.GetString("SESSION_COOKIE_NAME"),
		},
		Cookie: CookieConfig{
			Secure:   v.GetString("AUTH_COOKIE_SECURE"),
			SameSite: v.GetString("AUTH_COOKIE_SAMESITE"),
			Domain:   v.GetString("AUTH_COOKIE_DOMAIN"),
		},
		OIDC: OIDCConfig{
			Issuer:       v.GetString("OIDC_ISSUER"),
			ClientID:     v.GetString("OIDC_CLIENT_ID"),
			ClientSecret: v.GetString("OIDC_CLIENT_SECRET"),
			RedirectURL:  v.GetString("OIDC_REDIRECT_URL"),
			PostLoginURL: v.GetString("OIDC_POST_LOGIN_URL"),
		},
		Stripe: StripeConfig{
			SecretKey:           v.GetString("STRIPE_SECRET_KEY"),
			WebhookSecret:       v.GetString("STRIPE_WEBHOOK_SECRET"),
			SubscriptionPriceID: v.GetString("STRIPE_SUBSCRIPTION_PRICE_ID"),
			PassPriceID:         v.GetString("STRIPE_PASS_PRICE_ID"),
			Timeout:             v.GetDuration("BILLING_TIMEOUT"),
			SuccessURL:          v.GetString("CHECKOUT_SUCCESS_URL"),
			CancelURL:           v.GetString("CHECKOUT_CANCEL_URL"),
		},
		Pass: PassConfig{
			PlanCode:  v.GetString("PASS_PLAN_CODE"),
			Credits:   v.GetInt("PASS_CREDITS"),
			ValidDays: v.GetInt("PASS_VALID_DAYS"),
		},
		AI: AIConfig{
			APIKey: v.GetString("AI_API_KEY"),
			Model:  v.GetString("AI_MODEL"),
		},
		Content: ContentConfig{
			BaseURL: v.GetString("CONTENT_API_URL"),
			APIKey:  v.GetString("CONTENT_API_KEY"),
		},
		RateLimit: RateLimitConfig{
			RedisURL: v.GetString("REDIS_URL"),
			Limit:    v.GetInt("AI_RATE_LIMIT"),
			Window:   v.GetDuration("AI_RATE_WINDOW"),
		},
		Slack: SlackConfig{
			BotToken:  v.GetString("SLACK_BOT_TOKEN"),
			ChannelID: v.GetString("SLACK_CHANNEL_ID"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("PGHOST", "localhost")
	v.SetDefault("PGPORT", "5432")
	v.SetDefault("PGSSLMODE", "disable")
	v.SetDefault("MEMBERSHIP_TOKEN_TTL", "2160h")
	v.SetDefault("MEMBERSHIP_COOKIE_NAME", "lt_membership")
	v.SetDefault("SESSION_TTL", "720h")
	v.SetDefault("SESSION_COOKIE_NAME", "lt_session")
	v.SetDefault("AUTH_COOKIE_SAMESITE", "lax")
	v.SetDefault("OIDC_ISSUER", "https://accounts.google.com")
	v.SetDefault("OIDC_POST_LOGIN_URL", "http://localhost:3000/")
	v.SetDefault("BILLING_TIMEOUT", "10s")
	v.SetDefault("CHECKOUT_SUCCESS_URL", "http://localhost:3000/membership/success?session_id={CHECKOUT_SESSION_ID}")
	v.SetDefault("CHECKOUT_CANCEL_URL", "http://localhost:3000/membership")
	v.SetDefault("PASS_PLAN_CODE", "concierge-10")
	v.SetDefault("PASS_CREDITS", 10)
	v.SetDefault("PASS_VALID_DAYS", 90)
	v.SetDefault("AI_MODEL", "gemini-2.0-flash")
	v.SetDefault("AI_RATE_LIMIT", 20)
	v.SetDefault("AI_RATE_WINDOW", "1m")
}

// Validate reports the secrets the service cannot run without.
func (c Config) Validate() error {
	var missing []string
	if c.Membership.TokenSecret == "" {
		missing = append(missing, "MEMBERSHIP_TOKEN_SECRET")
	}
	if c.Session.Secret == "" {
		missing = append(missing, "SESSION_SECRET")
	}
	if c.Stripe.SecretKey == "" {
		missing = append(missing, "STRIPE_SECRET_KEY")
	}
	if c.Stripe.WebhookSecret == "" {
		missing = append(missing, "STRIPE_WEBHOOK_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required env: %s", strings.Join(missing, ", "))
	}
	if c.Membership.TokenTTL <= 0 || c.Session.TTL <= 0 {
		return errors.New("MEMBERSHIP_TOKEN_TTL and SESSION_TTL must be positive")
	}
	if c.Pass.Credits <= 0 {
		return errors.New("PASS_CREDITS must be positive")
	}
	return nil
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
