package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/DR-Danke/Kompass-sub005/internal/secrets"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App          AppConfig
	Database     DatabaseConfig
	FreightRates FreightRatesConfig
	FX           FXConfig
	Auth         AuthConfig
	Share        ShareConfig
	Storage      StorageConfig
	Secrets      SecretsConfig
	Logging      LoggingConfig
	Server       ServerConfig
	CORS         CORSConfig
	Security     SecurityConfig
	RateLimit    RateLimitConfig
	Jobs         JobsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// FreightRatesConfig holds configuration for the MS SQL Server freight
// rates warehouse. The connection is optional and read-only; when it is
// disabled or unreachable the engine falls back to manually entered
// national cost figures.
type FreightRatesConfig struct {
	// Enabled controls whether the freight rates connection is attempted
	Enabled bool
	// URL is the connection URL in format host:port/database (from FREIGHT-RATES-URL secret)
	URL string
	// User is the database username (from FREIGHT-RATES-USERNAME secret)
	User string
	// Password is the database password (from FREIGHT-RATES-PASSWORD secret)
	Password string
	// MaxOpenConns is the maximum number of open connections to the database
	MaxOpenConns int
	// MaxIdleConns is the maximum number of connections in the idle connection pool
	MaxIdleConns int
	// ConnMaxLifetime is the maximum amount of time a connection may be reused (seconds)
	ConnMaxLifetime int
	// QueryTimeout is the default timeout for lookups (seconds)
	QueryTimeout int
}

// FXConfig holds configuration for the exchange rate provider
type FXConfig struct {
	// ProviderURL is the base URL of the external rate service. Empty
	// disables remote lookups; callers must then supply a rate.
	ProviderURL string
	// APIKey authenticates against the rate provider (from FX-API-KEY secret)
	APIKey string
	// Timeout bounds a single rate lookup (seconds)
	Timeout int
	// CacheTTL is how long a fetched rate is reused (seconds)
	CacheTTL int
	// BaseCurrency and QuoteCurrency name the pair fetched by default
	BaseCurrency  string
	QuoteCurrency string
}

// AuthConfig holds JWT authentication configuration
type AuthConfig struct {
	// Issuer and Audience are enforced on incoming tokens
	Issuer   string
	Audience string
	// Secret is the HMAC signing key (from JWT-SIGNING-KEY secret)
	Secret string
	// TokenTTL is the lifetime of issued access tokens (minutes)
	TokenTTL int
	// Disabled skips auth entirely; only honored outside production
	Disabled bool
}

// ShareConfig holds configuration for public share links
type ShareConfig struct {
	// BaseURL is prepended to issued share paths, e.g. https://app.example.com
	BaseURL string
	// Secret signs share tokens; independent from the auth secret so
	// revoking one does not invalidate the other (from SHARE-SIGNING-KEY secret)
	Secret string
	// DefaultExpiryDays applies when the request does not specify one
	DefaultExpiryDays int
	// MaxExpiryDays caps requested expiries
	MaxExpiryDays int
}

type StorageConfig struct {
	Mode                  string
	LocalBasePath         string
	CloudConnectionString string
	CloudContainer        string
	MaxUploadSizeMB       int64
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	// "auto" uses environment in development, vault in staging/production
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	// AllowedOrigins is a list of allowed origins for CORS requests
	// Use "*" to allow all origins (not recommended for production)
	AllowedOrigins []string
	// AllowedMethods is a list of allowed HTTP methods
	AllowedMethods []string
	// AllowedHeaders is a list of allowed request headers
	AllowedHeaders []string
	// ExposedHeaders is a list of headers exposed to the client
	ExposedHeaders []string
	// AllowCredentials indicates whether credentials are allowed
	AllowCredentials bool
	// MaxAge is the max age (in seconds) for preflight cache
	MaxAge int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	// EnableHSTS enables HTTP Strict Transport Security header
	EnableHSTS bool
	// HSTSMaxAge is the max age for HSTS in seconds (default: 31536000 = 1 year)
	HSTSMaxAge int
	// HSTSIncludeSubdomains includes subdomains in HSTS
	HSTSIncludeSubdomains bool
	// HSTSPreload enables HSTS preload
	HSTSPreload bool
	// ContentSecurityPolicy sets the Content-Security-Policy header
	ContentSecurityPolicy string
	// FrameOptions sets the X-Frame-Options header (DENY, SAMEORIGIN, or empty to disable)
	FrameOptions string
	// ContentTypeNosniff enables X-Content-Type-Options: nosniff
	ContentTypeNosniff bool
	// XSSProtection sets the X-XSS-Protection header
	XSSProtection string
	// ReferrerPolicy sets the Referrer-Policy header
	ReferrerPolicy string
	// PermissionsPolicy sets the Permissions-Policy header
	PermissionsPolicy string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	// Enabled enables rate limiting
	Enabled bool
	// RequestsPerMinute is the default rate limit for unauthenticated requests (per IP)
	RequestsPerMinute int
	// RequestsPerMinuteAuth is the rate limit for authenticated requests (per user)
	RequestsPerMinuteAuth int
	// RequestsPerMinuteShare is the rate limit for public share link reads (per IP)
	RequestsPerMinuteShare int
	// BurstSize is the maximum burst size allowed
	BurstSize int
	// WhitelistIPs is a list of IPs that bypass rate limiting
	WhitelistIPs []string
	// WhitelistPaths is a list of paths that bypass rate limiting (e.g., /health)
	WhitelistPaths []string
}

// JobsConfig holds background job scheduling configuration
type JobsConfig struct {
	// Enabled enables the in-process scheduler
	Enabled bool
	// ExpirySweepSchedule is a cron expression for the quotation expiry
	// sweep. Reads still expire lazily; the sweep only keeps listings
	// and reports current between reads.
	ExpirySweepSchedule string
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (f *FreightRatesConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(f.ConnMaxLifetime) * time.Second
}

// QueryTimeoutDuration returns query timeout as duration
func (f *FreightRatesConfig) QueryTimeoutDuration() time.Duration {
	return time.Duration(f.QueryTimeout) * time.Second
}

// TimeoutDuration returns the rate lookup timeout as duration
func (f *FXConfig) TimeoutDuration() time.Duration {
	return time.Duration(f.Timeout) * time.Second
}

// CacheTTLDuration returns the rate cache TTL as duration
func (f *FXConfig) CacheTTLDuration() time.Duration {
	return time.Duration(f.CacheTTL) * time.Second
}

// TokenTTLDuration returns token lifetime as duration
func (a *AuthConfig) TokenTTLDuration() time.Duration {
	return time.Duration(a.TokenTTL) * time.Minute
}

// Load loads configuration from file and environment variables
// This is a basic load that doesn't fetch secrets from vault
// Use LoadWithSecrets for full secret resolution
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read from config file
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Load auth and share secrets from environment if not in config
	if cfg.Auth.Secret == "" {
		cfg.Auth.Secret = v.GetString("JWT_SIGNING_KEY")
	}
	if cfg.Share.Secret == "" {
		cfg.Share.Secret = v.GetString("SHARE_SIGNING_KEY")
	}
	if cfg.FX.APIKey == "" {
		cfg.FX.APIKey = v.GetString("FX_API_KEY")
	}

	// Load Azure Key Vault name from environment if not in config
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	// Check for FREIGHTRATES_ENABLED env var override
	if v.GetBool("FREIGHTRATES_ENABLED") {
		cfg.FreightRates.Enabled = true
	}

	// NOTE: Freight rates warehouse credentials are ONLY loaded from
	// Azure Key Vault, never from environment variables.
	// See LoadWithSecrets() for credential loading.

	return &cfg, nil
}

// LoadWithSecrets loads configuration and resolves secrets from the configured source
// In development (or when secrets.source = "environment"), secrets come from env vars
// In staging/production (or when secrets.source = "vault"), secrets come from Azure Key Vault
//
// Key Vault is used when BOTH conditions are met:
// 1. USE_AZURE_KEY_VAULT environment variable is set to "true"
// 2. Environment is "staging" or "production"
//
// EXCEPTION: Freight rates warehouse credentials are ALWAYS loaded from Key Vault when:
// - FREIGHTRATES_ENABLED=true AND
// - AZURE_KEY_VAULT_NAME is configured
// This allows freight rate lookups in any environment while keeping credentials secure.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	// First load basic config
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	// Check if Azure Key Vault should be used for main secrets
	// Requires both USE_AZURE_KEY_VAULT=true AND environment is staging/production
	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	// Freight rates credentials are loaded from Key Vault regardless of
	// environment when the feature is enabled and Key Vault is configured
	if cfg.FreightRates.Enabled && cfg.Secrets.KeyVaultName != "" {
		if err := loadFreightRatesSecrets(ctx, cfg, logger); err != nil {
			logger.Warn("Failed to load freight rates secrets from Key Vault",
				zap.Error(err),
				zap.String("environment", cfg.App.Environment),
			)
			// Don't fail startup - the freight rates source is optional
		}
	}

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for main secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables for main secrets",
			zap.String("environment", cfg.App.Environment),
			zap.Bool("use_key_vault", useKeyVault),
		)
		return cfg, nil
	}

	// Validate Key Vault name is provided
	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	logger.Info("Azure Key Vault enabled for secrets",
		zap.String("environment", cfg.App.Environment),
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)

	// Determine secret source - force vault when USE_AZURE_KEY_VAULT is true
	source := secrets.SourceVault

	// For vault source, initialize the provider
	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       source,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider (USE_AZURE_KEY_VAULT=true requires valid vault): %w", err)
	}

	// Verify vault is enabled (should always be true at this point)
	if !provider.IsVaultEnabled() {
		return nil, fmt.Errorf("vault provider not enabled despite USE_AZURE_KEY_VAULT=true")
	}

	// Load secrets from vault
	logger.Info("Loading secrets from Azure Key Vault")

	// Database secrets from Key Vault
	// Host, User, Password come from vault; Port and Database name are environment-specific
	if host, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-HOST", "DATABASE_HOST"); err == nil && host != "" {
		cfg.Database.Host = host
	}
	// Database name from DEFAULT_DATABASE env var (not in vault - varies per environment)
	if defaultDB := os.Getenv("DEFAULT_DATABASE"); defaultDB != "" {
		cfg.Database.Name = defaultDB
		logger.Info("Using DEFAULT_DATABASE environment variable for database name",
			zap.String("database", defaultDB),
		)
	}
	if user, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-USER", "DATABASE_USER"); err == nil && user != "" {
		cfg.Database.User = user
	}
	if password, err := provider.GetSecretOrEnv(ctx, "POSTGRES-MAIN-PASSWORD", "DATABASE_PASSWORD"); err == nil && password != "" {
		cfg.Database.Password = password
	}
	// SSL mode from env var (Azure PostgreSQL requires "require")
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}

	// Signing keys
	if secret, err := provider.GetSecretOrEnv(ctx, "JWT-SIGNING-KEY", "JWT_SIGNING_KEY"); err == nil && secret != "" {
		cfg.Auth.Secret = secret
	}
	if secret, err := provider.GetSecretOrEnv(ctx, "SHARE-SIGNING-KEY", "SHARE_SIGNING_KEY"); err == nil && secret != "" {
		cfg.Share.Secret = secret
	}

	// Exchange rate provider key
	if apiKey, err := provider.GetSecretOrEnv(ctx, "FX-API-KEY", "FX_API_KEY"); err == nil && apiKey != "" {
		cfg.FX.APIKey = apiKey
	}

	// Storage connection string (for cloud storage)
	if connStr, err := provider.GetSecretOrEnv(ctx, "storage-connection-string", "STORAGE_CLOUDCONNECTIONSTRING"); err == nil && connStr != "" {
		cfg.Storage.CloudConnectionString = connStr
	}

	// Note: Freight rates secrets are already loaded earlier in LoadWithSecrets
	// via loadFreightRatesSecrets() regardless of environment

	logger.Info("Secrets loaded from vault successfully")
	return cfg, nil
}

// loadFreightRatesSecrets loads freight rates warehouse credentials from Azure Key Vault
// This is called regardless of environment when FREIGHTRATES_ENABLED=true
// Warehouse credentials ONLY come from Key Vault, never from environment variables
func loadFreightRatesSecrets(ctx context.Context, cfg *Config, logger *zap.Logger) error {
	logger.Info("Loading freight rates secrets from Key Vault",
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
		zap.String("environment", cfg.App.Environment),
	)

	// Initialize a vault-only provider for freight rates secrets
	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vault client for freight rates: %w", err)
	}

	// Load credentials from Key Vault only (no env var fallback)
	url, err := provider.GetSecret(ctx, "FREIGHT-RATES-URL")
	if err != nil {
		return fmt.Errorf("failed to get FREIGHT-RATES-URL from Key Vault: %w", err)
	}
	cfg.FreightRates.URL = url

	user, err := provider.GetSecret(ctx, "FREIGHT-RATES-USERNAME")
	if err != nil {
		return fmt.Errorf("failed to get FREIGHT-RATES-USERNAME from Key Vault: %w", err)
	}
	cfg.FreightRates.User = user

	password, err := provider.GetSecret(ctx, "FREIGHT-RATES-PASSWORD")
	if err != nil {
		return fmt.Errorf("failed to get FREIGHT-RATES-PASSWORD from Key Vault: %w", err)
	}
	cfg.FreightRates.Password = password

	logger.Info("Freight rates credentials loaded from Key Vault successfully")
	return nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Kompass Quotation API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "kompass")
	v.SetDefault("database.user", "kompass_user")
	v.SetDefault("database.password", "kompass_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)

	// Freight rates warehouse defaults (MS SQL Server - optional, read-only)
	v.SetDefault("freightRates.enabled", false) // Disabled by default
	v.SetDefault("freightRates.maxOpenConns", 10)
	v.SetDefault("freightRates.maxIdleConns", 2)
	v.SetDefault("freightRates.connMaxLifetime", 300) // 5 minutes
	v.SetDefault("freightRates.queryTimeout", 5)      // lookups must fail fast

	// Exchange rate provider defaults
	v.SetDefault("fx.providerUrl", "")
	v.SetDefault("fx.timeout", 3) // seconds; calculation fails fast on a slow provider
	v.SetDefault("fx.cacheTtl", 900)
	v.SetDefault("fx.baseCurrency", "USD")
	v.SetDefault("fx.quoteCurrency", "COP")

	// Auth defaults
	v.SetDefault("auth.issuer", "kompass-api")
	v.SetDefault("auth.audience", "kompass-app")
	v.SetDefault("auth.tokenTtl", 480) // 8 hours
	v.SetDefault("auth.disabled", false)

	// Share link defaults
	v.SetDefault("share.baseUrl", "http://localhost:8080")
	v.SetDefault("share.defaultExpiryDays", 30)
	v.SetDefault("share.maxExpiryDays", 90)

	// Secrets defaults
	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300) // 5 minutes

	// Storage defaults
	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./storage")
	v.SetDefault("storage.maxUploadSizeMB", 50)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server defaults
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	// CORS defaults - restrictive by default
	// In development, you may want to override with specific origins
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300) // 5 minutes

	// Security header defaults - secure by default
	v.SetDefault("security.enableHSTS", false)    // Disabled by default, enable in production with HTTPS
	v.SetDefault("security.hstsMaxAge", 31536000) // 1 year
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.xssProtection", "1; mode=block")
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 60)       // unauthenticated, per IP
	v.SetDefault("rateLimit.requestsPerMinuteAuth", 120)  // authenticated, per user
	v.SetDefault("rateLimit.requestsPerMinuteShare", 30)  // public share reads, per IP
	v.SetDefault("rateLimit.burstSize", 10)               // Allow burst of 10 requests
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready"})

	// Job defaults
	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.expirySweepSchedule", "15 2 * * *") // daily at 02:15
}
