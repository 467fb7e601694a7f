package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	Database DatabaseConfig
	Mongo    MongoConfig
	Auth     AuthConfig
	SSO      SSOConfig
	Notify   NotifyConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	TrustedProxies []string // CIDR ranges whose X-Forwarded-For is honoured
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
}

// StoreConfig selects the user document store backend.
type StoreConfig struct {
	Driver  string
	Timeout time.Duration // per repository call
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type MongoConfig struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

type AuthConfig struct {
	JWTSecret         string
	AccessTokenExpiry time.Duration
	APIKey            string // optional; guards mutating /users routes when set

	TimingDelayBaseMs    int
	TimingDelayRandomMs  int
	TimingDelayOnSuccess bool

	LoginRateLimit  int
	LoginRateWindow time.Duration
}

type SSOConfig struct {
	ClientID         string
	ClientSecret     string
	RedirectURL      string
	Issuer           string
	Scopes           []string
	PostLoginPath    string
	TokenTTL         time.Duration
	MaxUsernameTries int
	CookieHashKey    string
	CookieEncryptKey string
	CookieDomain     string
	CookieSecure     bool
	CookieSameSite   string
}

// Enabled reports whether Google SSO is configured.
func (c SSOConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type NotifyConfig struct {
	AWSRegion      string
	SNSTopicARN    string
	EmailFrom      string
	EmailTo        string
	QueueSize      int
	Workers        int
	PublishTimeout time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	env := getEnv("ENV", "development")

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(env),
			TrustedProxies: splitList(getEnv("TRUSTED_PROXIES", "")),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Store: StoreConfig{
			Driver:  strings.ToLower(getEnv("STORE_DRIVER", DriverPostgres)),
			Timeout: getEnvAsDuration("STORE_TIMEOUT", 5*time.Second),
		},
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "teamup"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Mongo: MongoConfig{
			URI:            getEnv("MONGO_URI", ""),
			Database:       getEnv("MONGO_DATABASE", "TeamUp"),
			Collection:     getEnv("MONGO_COLLECTION", "Users"),
			ConnectTimeout: getEnvAsDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:            jwtSecret,
			AccessTokenExpiry:    getEnvAsDuration("ACCESS_TOKEN_EXPIRY", 60*time.Minute),
			APIKey:               getEnv("API_KEY", ""),
			TimingDelayBaseMs:    getEnvAsInt("TIMING_DELAY_BASE_MS", 500),
			TimingDelayRandomMs:  getEnvAsInt("TIMING_DELAY_RANDOM_MS", 100),
			TimingDelayOnSuccess: getEnvAsBool("TIMING_DELAY_ON_SUCCESS", false),
			LoginRateLimit:       getEnvAsInt("LOGIN_RATE_LIMIT", 5),
			LoginRateWindow:      getEnvAsDuration("LOGIN_RATE_WINDOW", 1*time.Minute),
		},
		SSO: SSOConfig{
			ClientID:         getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret:     getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:      getEnv("SSO_REDIRECT_URL", "http://localhost:8080/auth/callback"),
			Issuer:           getEnv("SSO_ISSUER", "https://accounts.google.com"),
			Scopes:           splitList(getEnv("SSO_SCOPES", "openid,email,profile")),
			PostLoginPath:    getEnv("SSO_POST_LOGIN_PATH", "/google-sso-token"),
			TokenTTL:         getEnvAsDuration("SSO_TOKEN_TTL", 60*time.Minute),
			MaxUsernameTries: getEnvAsInt("SSO_MAX_USERNAME_ATTEMPTS", 10),
			CookieHashKey:    getEnv("SSO_COOKIE_HASH_KEY", ""),
			CookieEncryptKey: getEnv("SSO_COOKIE_ENCRYPT_KEY", ""),
			CookieDomain:     getEnv("COOKIE_DOMAIN", ""),
			CookieSecure:     getEnvAsBool("COOKIE_SECURE", env == "production"),
			CookieSameSite:   getEnv("COOKIE_SAMESITE", "lax"),
		},
		Notify: NotifyConfig{
			AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
			SNSTopicARN:    getEnv("SNS_TOPIC_ARN", ""),
			EmailFrom:      getEnv("NOTIFY_EMAIL_FROM", ""),
			EmailTo:        getEnv("NOTIFY_EMAIL_TO", ""),
			QueueSize:      getEnvAsInt("NOTIFY_QUEUE_SIZE", 256),
			Workers:        getEnvAsInt("NOTIFY_WORKERS", 2),
			PublishTimeout: getEnvAsDuration("NOTIFY_TIMEOUT", 5*time.Second),
		},
	}

	if err := cfg.validateStore(); err != nil {
		return nil, err
	}

	// Validate JWT secret strength
	if err := validateJWTSecret(jwtSecret, env); err != nil {
		return nil, err
	}

	if cfg.SSO.Enabled() {
		if err := validateCookieKeys(cfg.SSO); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (c *Config) validateStore() error {
	switch c.Store.Driver {
	case DriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case DriverMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("MONGO_URI is required when STORE_DRIVER=mongo")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q (want %s or %s)", c.Store.Driver, DriverPostgres, DriverMongo)
	}

	if c.Store.Timeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	return nil
}

// validateJWTSecret enforces minimum security standards for JWT secret
func validateJWTSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

// validateCookieKeys checks the keys used to sign and encrypt the SSO state
// and PKCE cookies. securecookie accepts 16, 24 or 32 byte AES keys.
func validateCookieKeys(sso SSOConfig) error {
	if len(sso.CookieHashKey) < 32 {
		return fmt.Errorf("SSO_COOKIE_HASH_KEY must be at least 32 characters when SSO is enabled")
	}
	switch len(sso.CookieEncryptKey) {
	case 16, 24, 32:
		return nil
	default:
		return fmt.Errorf("SSO_COOKIE_ENCRYPT_KEY must be 16, 24 or 32 characters (got %d)", len(sso.CookieEncryptKey))
	}
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		return splitList(getEnv("ALLOWED_ORIGINS", ""))
	}

	// Development: allow localhost variants
	return []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:8080",
		"http://127.0.0.1:5173",
	}
}
