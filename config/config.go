package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string   `mapstructure:"APP_PORT"`
	Env               string   `mapstructure:"ENV"`
	LogLevel          string   `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int      `mapstructure:"MAX_REQUESTS_PER_MIN"`
	CORSOrigins       []string `mapstructure:"CORS_ORIGINS"`

	// MongoDB configuration.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisOTPDB    int    `mapstructure:"REDIS_OTP_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Google Maps and reCAPTCHA.
	GoogleAPIKey    string `mapstructure:"GOOGLE_API_KEY"`
	MapsRegion      string `mapstructure:"MAPS_REGION"`
	RecaptchaSecret string `mapstructure:"RECAPTCHA_SECRET"`

	// Back-office notifications.
	FirebaseCredentialsPath string `mapstructure:"FIREBASE_CREDENTIALS_PATH"`
	AdminTopic              string `mapstructure:"ADMIN_TOPIC"`
	AdminPhone              string `mapstructure:"ADMIN_PHONE"`
	AdminEmail              string `mapstructure:"ADMIN_EMAIL"`

	// SMS gateway (Twilio-compatible Messages API).
	SMSGatewayURL string `mapstructure:"SMS_GATEWAY_URL"`
	SMSAccountSID string `mapstructure:"SMS_ACCOUNT_SID"`
	SMSAuthToken  string `mapstructure:"SMS_AUTH_TOKEN"`
	SMSFrom       string `mapstructure:"SMS_FROM"`

	// Outgoing mail.
	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`

	// Dialogue.
	ScriptPath      string        `mapstructure:"SCRIPT_PATH"`
	Timezone        string        `mapstructure:"TIMEZONE"`
	SessionTTL      time.Duration `mapstructure:"SESSION_TTL"`
	ProviderTimeout time.Duration `mapstructure:"PROVIDER_TIMEOUT"`
	SlotCapacity    int           `mapstructure:"SLOT_CAPACITY"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("CORS_ORIGINS", []string{"*"})
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "vtcland")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_OTP_DB", 2)
	viper.SetDefault("REDIS_QUEUE_DB", 3)
	viper.SetDefault("GOOGLE_API_KEY", "")
	viper.SetDefault("MAPS_REGION", "fr")
	viper.SetDefault("RECAPTCHA_SECRET", "")
	viper.SetDefault("FIREBASE_CREDENTIALS_PATH", "")
	viper.SetDefault("ADMIN_TOPIC", "admin_notifications")
	viper.SetDefault("ADMIN_PHONE", "")
	viper.SetDefault("ADMIN_EMAIL", "")
	viper.SetDefault("SMS_GATEWAY_URL", "https://api.twilio.com/2010-04-01")
	viper.SetDefault("SMS_ACCOUNT_SID", "")
	viper.SetDefault("SMS_AUTH_TOKEN", "")
	viper.SetDefault("SMS_FROM", "")
	viper.SetDefault("SMTP_HOST", "")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USER", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("SCRIPT_PATH", "")
	viper.SetDefault("TIMEZONE", "Europe/Paris")
	viper.SetDefault("SESSION_TTL", 30*time.Minute)
	viper.SetDefault("PROVIDER_TIMEOUT", 10*time.Second)
	viper.SetDefault("SLOT_CAPACITY", 0)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Location returns the time zone used to compare booking dates with today.
func Location() *time.Location {
	loc, err := time.LoadLocation(AppConfig.Timezone)
	if err != nil {
		log.Printf("Unknown TIMEZONE %q, falling back to UTC", AppConfig.Timezone)
		return time.UTC
	}
	return loc
}
