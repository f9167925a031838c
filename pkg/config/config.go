package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Configuration keys. Each key can be set from its environment variable or,
// for the keys exposed by the CLI, from a command line flag.
const (
	KeyPort               = "port"
	KeyProvider           = "provider"
	KeyAccountID          = "account-id"
	KeyAccessKeyID        = "access-key-id"
	KeySecretAccessKey    = "secret-access-key"
	KeyEndpoint           = "endpoint"
	KeyBucket             = "bucket"
	KeyPublicURL          = "public-url"
	KeyManifestKey        = "manifest-key"
	KeyManifestCategories = "manifest-categories"
	KeyCacheTTL           = "cache-ttl"
	KeyRelayURL           = "relay-url"
	KeyRelayAccessKey     = "relay-access-key"
	KeyViewsDir           = "views-dir"
	KeySiteName           = "site-name"
	KeyTrustedProxies     = "trusted-proxies"
)

// Storage providers
const (
	ProviderR2  = "r2"
	ProviderGCS = "gcs"
)

var envBindings = map[string]string{
	KeyPort:               "PORT",
	KeyProvider:           "STORAGE_PROVIDER",
	KeyAccountID:          "R2_ACCOUNT_ID",
	KeyAccessKeyID:        "R2_ACCESS_KEY_ID",
	KeySecretAccessKey:    "R2_SECRET_ACCESS_KEY",
	KeyEndpoint:           "R2_ENDPOINT",
	KeyBucket:             "BUCKET_NAME",
	KeyPublicURL:          "PUBLIC_BASE_URL",
	KeyManifestKey:        "MANIFEST_KEY",
	KeyManifestCategories: "MANIFEST_CATEGORIES",
	KeyCacheTTL:           "CACHE_TTL",
	KeyRelayURL:           "CONTACT_RELAY_URL",
	KeyRelayAccessKey:     "CONTACT_RELAY_ACCESS_KEY",
	KeyViewsDir:           "VIEWS_DIR",
	KeySiteName:           "SITE_NAME",
	KeyTrustedProxies:     "TRUSTED_PROXIES",
}

// Config holds all configuration for the application
type Config struct {
	Port               string
	Provider           string
	AccountID          string
	AccessKeyID        string
	SecretAccessKey    string
	Endpoint           string
	BucketName         string
	PublicBaseURL      string
	ManifestKey        string
	ManifestCategories []string
	CacheTTL           time.Duration
	RelayURL           string
	RelayAccessKey     string
	ViewsDir           string
	SiteName           string
	// TrustedProxies lists the peer addresses or CIDR ranges whose
	// X-Real-IP and X-Forwarded-For headers are believed.
	TrustedProxies     []string
}

// ErrAccountIDNotSet is returned when the R2_ACCOUNT_ID environment variable is not set
var ErrAccountIDNotSet = errors.New("R2_ACCOUNT_ID environment variable not set")

// ErrAccessKeyNotSet is returned when the R2_ACCESS_KEY_ID environment variable is not set
var ErrAccessKeyNotSet = errors.New("R2_ACCESS_KEY_ID environment variable not set")

// ErrSecretKeyNotSet is returned when the R2_SECRET_ACCESS_KEY environment variable is not set
var ErrSecretKeyNotSet = errors.New("R2_SECRET_ACCESS_KEY environment variable not set")

// ErrBucketNameNotSet is returned when the BUCKET_NAME environment variable is not set
var ErrBucketNameNotSet = errors.New("BUCKET_NAME environment variable not set")

// ErrUnknownProvider is returned when STORAGE_PROVIDER names an unsupported backend
var ErrUnknownProvider = errors.New("unknown storage provider")

// NewViper returns a viper instance with defaults and environment bindings applied
func NewViper() *viper.Viper {
	v := viper.New()
	for key, env := range envBindings {
		// BindEnv only fails when called without a key
		_ = v.BindEnv(key, env)
	}

	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyProvider, ProviderR2)
	v.SetDefault(KeyBucket, "martinavisuals")
	v.SetDefault(KeyPublicURL, "https://pub-1600d09c709b4e389d3bb0a876a3906d.r2.dev")
	v.SetDefault(KeyManifestKey, "manifest.json")
	v.SetDefault(KeyManifestCategories, "portraits,editorial,events,graduation,bts")
	v.SetDefault(KeyCacheTTL, "60s")
	v.SetDefault(KeyRelayURL, "https://api.web3forms.com/submit")
	v.SetDefault(KeyViewsDir, "./views")
	v.SetDefault(KeySiteName, "Martina Visuals")

	return v
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return FromViper(NewViper())
}

// FromViper builds a Config from an already populated viper instance
func FromViper(v *viper.Viper) (*Config, error) {
	provider := strings.ToLower(strings.TrimSpace(v.GetString(KeyProvider)))
	if provider != ProviderR2 && provider != ProviderGCS {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}

	port := v.GetString(KeyPort)
	if port == "" {
		port = "8080"
	}

	return &Config{
		Port:               port,
		Provider:           provider,
		AccountID:          v.GetString(KeyAccountID),
		AccessKeyID:        v.GetString(KeyAccessKeyID),
		SecretAccessKey:    v.GetString(KeySecretAccessKey),
		Endpoint:           v.GetString(KeyEndpoint),
		BucketName:         v.GetString(KeyBucket),
		PublicBaseURL:      strings.TrimSuffix(v.GetString(KeyPublicURL), "/"),
		ManifestKey:        strings.TrimPrefix(v.GetString(KeyManifestKey), "/"),
		ManifestCategories: splitList(v.GetString(KeyManifestCategories)),
		CacheTTL:           v.GetDuration(KeyCacheTTL),
		RelayURL:           v.GetString(KeyRelayURL),
		RelayAccessKey:     v.GetString(KeyRelayAccessKey),
		ViewsDir:           v.GetString(KeyViewsDir),
		SiteName:           v.GetString(KeySiteName),
		TrustedProxies:     splitList(v.GetString(KeyTrustedProxies)),
	}, nil
}

// ValidateCredentials checks everything needed to talk to the storage API.
// GCS uses application default credentials so only the bucket is required.
func (c *Config) ValidateCredentials() error {
	if c.Provider == ProviderR2 {
		if c.AccountID == "" {
			return ErrAccountIDNotSet
		}
		if c.AccessKeyID == "" {
			return ErrAccessKeyNotSet
		}
		if c.SecretAccessKey == "" {
			return ErrSecretKeyNotSet
		}
	}
	if c.BucketName == "" {
		return ErrBucketNameNotSet
	}
	return nil
}

// R2Endpoint returns the S3 API endpoint for the configured account
func (c *Config) R2Endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", c.AccountID)
}

// ManifestURL returns the public URL of the manifest object
func (c *Config) ManifestURL() string {
	return c.PublicBaseURL + "/" + c.ManifestKey
}

// ServerAddress returns the server address with port
func (c *Config) ServerAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// PrintServerStartMessage prints a message when the server starts
func (c *Config) PrintServerStartMessage() {
	fmt.Printf("Starting server at port %s\n", c.Port)
	fmt.Printf("Site URL: http://localhost:%s/\n", c.Port)
	fmt.Printf("Categories API: http://localhost:%s/api/categories\n", c.Port)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.Trim(strings.TrimSpace(part), "/")
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
