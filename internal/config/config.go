package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-reminder/internal/pkg/worktime"
	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	App          AppConfig
	SMTP         SMTPConfig
	SMS          SMSConfig
	Scheduler    SchedulerConfig
	Notification NotificationConfig
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
}

// RedisConfig is optional. An empty Addr keeps job locking in-process.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	Timezone    string
	FrontendURL string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

type SMSConfig struct {
	AccountSID  string
	AuthToken   string
	FromNumber  string
	CountryCode string
	MinDigits   int
}

// SchedulerConfig drives the reminder jobs. Daily specs use standard 5-field
// cron syntax evaluated in App.Timezone.
type SchedulerConfig struct {
	Enabled          bool
	CheckinInterval  time.Duration
	CheckinWindow    time.Duration
	CheckoutInterval time.Duration
	OvertimeSpec     string
	AbsenceSpec      string
	BackfillSpec     string
	JobLockTTL       time.Duration
}

type NotificationConfig struct {
	BatchSize     int
	FlushInterval time.Duration
	WorkerCount   int
	QueueSize     int
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, using process environment")
	}

	config := &Config{}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:        getEnv("DB_HOST", "localhost"),
		Port:        dbPort,
		User:        getEnv("DB_USER", "postgres"),
		Password:    getEnv("DB_PASSWORD", ""),
		Name:        getEnv("DB_NAME", "attendance_reminder"),
		SSLMode:     getEnv("DB_SSL_MODE", "disable"),
		AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
	}

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Username: getEnv("REDIS_USER", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
	}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Timezone:    getEnv("APP_TIMEZONE", "Asia/Jakarta"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	config.SMTP = SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     smtpPort,
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "no-reply@localhost"),
		FromName: getEnv("SMTP_FROM_NAME", "Attendance"),
	}

	config.SMS = SMSConfig{
		AccountSID:  getEnv("SMS_ACCOUNT_SID", ""),
		AuthToken:   getEnv("SMS_AUTH_TOKEN", ""),
		FromNumber:  getEnv("SMS_FROM_NUMBER", ""),
		CountryCode: getEnv("SMS_COUNTRY_CODE", "62"),
		MinDigits:   getEnvAsInt("SMS_MIN_DIGITS", 10),
	}

	config.Scheduler = SchedulerConfig{
		Enabled:          getEnvAsBool("SCHEDULER_ENABLED", true),
		CheckinInterval:  getEnvAsDuration("SCHEDULER_CHECKIN_INTERVAL", time.Minute),
		CheckinWindow:    getEnvAsDuration("SCHEDULER_CHECKIN_WINDOW", 30*time.Minute),
		CheckoutInterval: getEnvAsDuration("SCHEDULER_CHECKOUT_INTERVAL", time.Minute),
		OvertimeSpec:     getEnv("SCHEDULER_OVERTIME_SPEC", "50 23 * * *"),
		AbsenceSpec:      getEnv("SCHEDULER_ABSENCE_SPEC", "55 23 * * *"),
		BackfillSpec:     getEnv("SCHEDULER_BACKFILL_SPEC", "30 0 * * *"),
		JobLockTTL:       getEnvAsDuration("SCHEDULER_JOB_LOCK_TTL", 10*time.Minute),
	}

	config.Notification = NotificationConfig{
		BatchSize:     getEnvAsInt("NOTIFICATION_BATCH_SIZE", 100),
		FlushInterval: getEnvAsDuration("NOTIFICATION_FLUSH_INTERVAL", 5*time.Second),
		WorkerCount:   getEnvAsInt("NOTIFICATION_WORKERS", 2),
		QueueSize:     getEnvAsInt("NOTIFICATION_QUEUE_SIZE", 1000),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.App.Timezone, err)
	}
	if c.Scheduler.CheckinInterval <= 0 || c.Scheduler.CheckoutInterval <= 0 {
		return fmt.Errorf("scheduler intervals must be positive")
	}
	// Each pre-checkout window must see at least one tick, even when a tick is late or skipped.
	if c.Scheduler.CheckoutInterval >= worktime.PreCheckoutLead {
		return fmt.Errorf("SCHEDULER_CHECKOUT_INTERVAL must be shorter than %s", worktime.PreCheckoutLead)
	}
	if c.SMS.MinDigits <= 0 {
		return fmt.Errorf("SMS_MIN_DIGITS must be positive")
	}
	return nil
}

// IsProduction gates side effects that cost money, such as SMS.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Env, "production")
}

// Location returns the organizational timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if val, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return val
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if val, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return val
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if val, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return val
	}
	return fallback
}
