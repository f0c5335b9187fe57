package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all the configuration for the application.
type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"production"`
	HTTPServer `yaml:"http_server"`
	Log        `yaml:"log"`
	Database   `yaml:"database"`
	Mongo      `yaml:"mongo"`
	Redis      `yaml:"redis"`
	Clicks     `yaml:"clicks"`
	RateLimit  `yaml:"rate_limit"`
	Auth       `yaml:"auth"`
	Payment    `yaml:"payment"`
	Storage    `yaml:"storage"`
	Placements `yaml:"placements"`
	Launches   `yaml:"launches"`
	Scheduler  `yaml:"scheduler"`
}

// HTTPServer holds HTTP listener settings.
type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"30s"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`
}

// Log holds logger output settings. An empty File logs to stdout only.
type Log struct {
	File       string `yaml:"file" env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"LOG_MAX_SIZE_MB" env-default:"100"`
	MaxBackups int    `yaml:"max_backups" env:"LOG_MAX_BACKUPS" env-default:"5"`
	MaxAgeDays int    `yaml:"max_age_days" env:"LOG_MAX_AGE_DAYS" env-default:"28"`
}

// Database holds PostgreSQL connection settings.
type Database struct {
	Host            string        `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int           `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User            string        `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password        string        `yaml:"password" env:"DB_PASSWORD"`
	DBName          string        `yaml:"dbname" env:"DB_NAME" env-default:"launchpad"`
	SSLMode         string        `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	Timezone        string        `yaml:"timezone" env:"DB_TIMEZONE" env-default:"UTC"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"50"`
	ConnMaxLifetime string        `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	AutoMigrate     bool          `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"true"`
	SeedData        bool          `yaml:"seed_data" env:"DB_SEED_DATA" env-default:"true"`
	LogQueries      bool          `yaml:"log_queries" env:"DB_LOG_QUERIES" env-default:"false"`
	SlowQuery       time.Duration `yaml:"slow_query" env:"DB_SLOW_QUERY" env-default:"200ms"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" env:"DB_CONNECT_TIMEOUT" env-default:"5s"`
}

// DSN returns the key/value connection string understood by pgx.
func (d *Database) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.DBName, d.Port, d.SSLMode, d.Timezone)
}

// Mongo holds document store settings used by the mongo click backend.
type Mongo struct {
	URI            string        `yaml:"uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	Database       string        `yaml:"database" env:"MONGO_DATABASE" env-default:"launchpad"`
	MaxPoolSize    uint64        `yaml:"max_pool_size" env:"MONGO_MAX_POOL_SIZE" env-default:"100"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"MONGO_CONNECT_TIMEOUT" env-default:"10s"`
}

// Redis holds the shared cache settings used by the redis rate-limit store.
type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	PoolSize int    `yaml:"pool_size" env:"REDIS_POOL_SIZE" env-default:"20"`
}

// Clicks selects the counter store backend: postgres, mongo or memory.
type Clicks struct {
	Backend string `yaml:"backend" env:"CLICKS_BACKEND" env-default:"postgres"`
}

// RateLimit holds per-route-group fixed window limits.
type RateLimit struct {
	Enabled       bool          `yaml:"enabled" env:"RATE_LIMIT_ENABLED" env-default:"true"`
	Backend       string        `yaml:"backend" env:"RATE_LIMIT_BACKEND" env-default:"memory"`
	Window        time.Duration `yaml:"window" env:"RATE_LIMIT_WINDOW" env-default:"1m"`
	MutationLimit int           `yaml:"mutation_limit" env:"RATE_LIMIT_MUTATIONS" env-default:"30"`
	ClickLimit    int           `yaml:"click_limit" env:"RATE_LIMIT_CLICKS" env-default:"60"`
	AuthLimit     int           `yaml:"auth_limit" env:"RATE_LIMIT_AUTH" env-default:"10"`
	KeyPrefix     string        `yaml:"key_prefix" env:"RATE_LIMIT_KEY_PREFIX" env-default:"rl:"`
}

// Auth holds token and identity provider settings.
type Auth struct {
	JWTSecret            string        `yaml:"jwt_secret" env:"JWT_SECRET" env-default:"change-me"`
	AccessTokenDuration  time.Duration `yaml:"access_token_duration" env:"JWT_ACCESS_TTL" env-default:"15m"`
	RefreshTokenDuration time.Duration `yaml:"refresh_token_duration" env:"JWT_REFRESH_TTL" env-default:"168h"`
	Issuer               string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"Launchpad-Backend"`
	AdminEmails          []string      `yaml:"admin_emails" env:"ADMIN_EMAILS" env-separator:","`
	Google               GoogleOAuth   `yaml:"google"`
}

// GoogleOAuth holds Google sign-in credentials. Empty ClientID disables the flow.
type GoogleOAuth struct {
	ClientID     string `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
	RedirectURL  string `yaml:"redirect_url" env:"GOOGLE_REDIRECT_URL" env-default:"http://localhost:8080/api/auth/google/callback"`
	FrontendURL  string `yaml:"frontend_url" env:"FRONTEND_URL" env-default:"http://localhost:3000"`
}

// Payment holds Stripe settings.
type Payment struct {
	StripeSecretKey     string `yaml:"stripe_secret_key" env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `yaml:"stripe_webhook_secret" env:"STRIPE_WEBHOOK_SECRET"`
	Currency            string `yaml:"currency" env:"PAYMENT_CURRENCY" env-default:"usd"`
	SuccessURL          string `yaml:"success_url" env:"PAYMENT_SUCCESS_URL" env-default:"http://localhost:8080/api/placements/success?session_id={CHECKOUT_SESSION_ID}"`
	CancelURL           string `yaml:"cancel_url" env:"PAYMENT_CANCEL_URL" env-default:"http://localhost:3000/placements?canceled=1"`
	DashboardURL        string `yaml:"dashboard_url" env:"PAYMENT_DASHBOARD_URL" env-default:"http://localhost:3000/dashboard/placements"`
	TestMode            bool   `yaml:"test_mode" env:"PAYMENT_TEST_MODE" env-default:"false"`
}

// Storage holds S3-compatible object storage settings.
type Storage struct {
	Endpoint      string `yaml:"endpoint" env:"S3_ENDPOINT" env-default:"localhost:9000"`
	AccessKey     string `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey     string `yaml:"secret_key" env:"S3_SECRET_KEY"`
	Bucket        string `yaml:"bucket" env:"S3_BUCKET" env-default:"launchpad"`
	UseSSL        bool   `yaml:"use_ssl" env:"S3_USE_SSL" env-default:"false"`
	PublicBaseURL string `yaml:"public_base_url" env:"S3_PUBLIC_BASE_URL" env-default:"http://localhost:9000/launchpad"`
}

// Placements holds slot pricing in whole currency units.
type Placements struct {
	HeroBasePrice    int64 `yaml:"hero_base_price" env:"PLACEMENT_HERO_PRICE" env-default:"599"`
	SidebarBasePrice int64 `yaml:"sidebar_base_price" env:"PLACEMENT_SIDEBAR_PRICE" env-default:"299"`
}

// Launches holds catalog settings.
type Launches struct {
	SlugSuffixLength int `yaml:"slug_suffix_length" env:"SLUG_SUFFIX_LENGTH" env-default:"4"`
	ClaimKeyLength   int `yaml:"claim_key_length" env:"CLAIM_KEY_LENGTH" env-default:"24"`
}

// Scheduler holds background job intervals.
type Scheduler struct {
	RateLimitSweepInterval  time.Duration `yaml:"rate_limit_sweep_interval" env:"SCHEDULER_SWEEP_INTERVAL" env-default:"1m"`
	PlacementExpiryInterval time.Duration `yaml:"placement_expiry_interval" env:"SCHEDULER_EXPIRY_INTERVAL" env-default:"10m"`
	RetryAttempts           int           `yaml:"retry_attempts" env:"SCHEDULER_RETRY_ATTEMPTS" env-default:"3"`
	RetryDelay              time.Duration `yaml:"retry_delay" env:"SCHEDULER_RETRY_DELAY" env-default:"1s"`
}

// IsAdmin reports whether email belongs to a configured administrator.
func (a *Auth) IsAdmin(email string) bool {
	for _, admin := range a.AdminEmails {
		if admin == email {
			return true
		}
	}
	return false
}

// MustLoad loads the application configuration.
func MustLoad() *Config {
	// Try to load .env file (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment variables")
	}

	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/local.yml"
	}

	if _, err := os.Stat(configPath); err == nil {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			log.Fatalf("cannot read config: %s", err)
		}
	} else {
		log.Println("Config file not found, using environment variables only")
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("cannot read config from environment: %s", err)
		}
	}

	return &cfg
}
