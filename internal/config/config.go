package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/localweb/auth-front/internal/log"
)

// devSigningKey is used when no signing key is configured in dev mode.
// Cookies minted with it are worthless outside a local session.
const devSigningKey = "auth-front-insecure-dev-key"

// ProviderCredentials holds one provider's OAuth app registration. Providers
// document their credentials under different names (client id vs app id,
// client secret vs app secret), so both spellings are accepted and resolved
// through ID and Secret.
type ProviderCredentials struct {
	ClientID     string `env:"CLIENT_ID"`
	AppID        string `env:"APP_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	AppSecret    string `env:"APP_SECRET"`
	Issuer       string `env:"ISSUER" validate:"omitempty,url"`
}

// ID returns the client identifier, preferring the clientId spelling
func (p ProviderCredentials) ID() string {
	if p.ClientID != "" {
		return p.ClientID
	}
	return p.AppID
}

// Secret returns the client secret, preferring the clientSecret spelling
func (p ProviderCredentials) Secret() string {
	if p.ClientSecret != "" {
		return p.ClientSecret
	}
	return p.AppSecret
}

// Configured reports whether both halves of the credential pair are present
func (p ProviderCredentials) Configured() bool {
	return p.ID() != "" && p.Secret() != ""
}

// Config is the emulator's ambient configuration, populated from the
// environment (and an optional .env file in the working directory).
type Config struct {
	Host        string `env:"AUTH_FRONT_HOST" envDefault:"localhost" validate:"required,hostname"`
	Port        int    `env:"AUTH_FRONT_PORT" envDefault:"4280" validate:"gte=1,lte=65535"`
	Environment string `env:"AUTH_FRONT_ENV" envDefault:"production" validate:"oneof=dev development production"`
	SigningKey  string `env:"AUTH_FRONT_SIGNING_KEY"`

	// RolesSource is the path on the emulator's own API surface that can
	// supply extra roles for an authenticated principal. Empty disables
	// role augmentation.
	RolesSource string `env:"AUTH_FRONT_ROLES_SOURCE" validate:"omitempty,startswith=/"`

	GitHub   ProviderCredentials `envPrefix:"GITHUB_"`
	Google   ProviderCredentials `envPrefix:"GOOGLE_"`
	AAD      ProviderCredentials `envPrefix:"AAD_"`
	Twitter  ProviderCredentials `envPrefix:"TWITTER_"`
	Facebook ProviderCredentials `envPrefix:"FACEBOOK_"`
}

// Load reads configuration from the environment. A .env file is merged in
// first when present; real environment variables win over file entries.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.LogDebugWithFields("config", "Loaded .env file", nil)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.SigningKey == "" {
		if !cfg.IsDev() {
			return nil, fmt.Errorf("AUTH_FRONT_SIGNING_KEY is required outside dev mode")
		}
		log.LogWarnWithFields("config", "No signing key configured, using insecure dev key", nil)
		cfg.SigningKey = devSigningKey
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// IsDev reports whether the emulator runs with relaxed security settings
func (c *Config) IsDev() bool {
	env := strings.ToLower(c.Environment)
	return env == "development" || env == "dev"
}

// Addr is the host:port the emulator listens on and advertises in redirect URIs
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// BaseURL is the emulator's externally visible origin
func (c *Config) BaseURL() string {
	return "http://" + c.Addr()
}

// SecureCookies reports whether issued cookies carry the Secure attribute
func (c *Config) SecureCookies() bool {
	return !c.IsDev()
}

// Provider returns the credentials registered for a provider identifier
func (c *Config) Provider(id string) (ProviderCredentials, bool) {
	switch id {
	case "github":
		return c.GitHub, true
	case "google":
		return c.Google, true
	case "aad":
		return c.AAD, true
	case "twitter":
		return c.Twitter, true
	case "facebook":
		return c.Facebook, true
	default:
		return ProviderCredentials{}, false
	}
}
