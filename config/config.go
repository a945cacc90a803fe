package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	JWTKey    string
	JWTTTL    time.Duration
	SaltRound int

	DBDriver   string // postgres, mysql, sqlite
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string

	OTPTTL            time.Duration
	OTPMaxAttempts    int
	OTPResendCooldown time.Duration

	MailProvider   string // sendgrid, smtp, console
	EmailSender    string
	EmailFromName  string
	SendGridAPIKey string
	SMTPHost       string
	SMTPPort       string
	SMTPPassword   string

	PaymentProvider      string // flutterwave, midtrans, mock
	PaymentCurrency      string
	FlutterwaveBaseURL   string
	FlutterwaveSecretKey string
	MidtransServerKey    string
	MidtransProduction   bool
	PendingPaymentTTL    time.Duration

	FrontendURL   string
	AllowOrigins  string
	UploadDir     string
	CronLocation  string
	EnableCronJob bool
}

// OTPConfig is the slice of configuration handed to the OTP manager.
type OTPConfig struct {
	TTL            time.Duration
	MaxAttempts    int
	ResendCooldown time.Duration
}

// MailConfig is the slice of configuration handed to the mail delivery component.
type MailConfig struct {
	Provider       string
	Sender         string
	FromName       string
	SendGridAPIKey string
	SMTPHost       string
	SMTPPort       string
	SMTPPassword   string
}

// PaymentConfig is the slice of configuration handed to payment gateways.
type PaymentConfig struct {
	Provider             string
	Currency             string
	FrontendURL          string
	FlutterwaveBaseURL   string
	FlutterwaveSecretKey string
	MidtransServerKey    string
	MidtransProduction   bool
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "3000"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		JWTTTL:    getEnvDuration("JWT_TTL", 24*time.Hour),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		DBDriver:   strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "lms"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		OTPTTL:            getEnvDuration("OTP_TTL", 10*time.Minute),
		OTPMaxAttempts:    getEnvInt("OTP_MAX_ATTEMPTS", 3),
		OTPResendCooldown: getEnvDuration("OTP_RESEND_COOLDOWN", time.Minute),

		MailProvider:   strings.ToLower(getEnv("MAIL_PROVIDER", "console")),
		EmailSender:    getEnv("EMAIL_SENDER", "no-reply@lms.local"),
		EmailFromName:  getEnv("EMAIL_FROM_NAME", "LMS"),
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		SMTPHost:       getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:       getEnv("SMTP_PORT", "587"),
		SMTPPassword:   getEnv("SMTP_PASSWORD", ""),

		PaymentProvider:      strings.ToLower(getEnv("PAYMENT_PROVIDER", "mock")),
		PaymentCurrency:      getEnv("PAYMENT_CURRENCY", "NGN"),
		FlutterwaveBaseURL:   getEnv("FLUTTERWAVE_BASE_URL", "https://api.flutterwave.com/v3"),
		FlutterwaveSecretKey: getEnv("FLUTTERWAVE_SECRET_KEY", ""),
		MidtransServerKey:    getEnv("MIDTRANS_SERVER_KEY", ""),
		MidtransProduction:   getEnvBool("MIDTRANS_PRODUCTION", false),
		PendingPaymentTTL:    getEnvDuration("PENDING_PAYMENT_TTL", 24*time.Hour),

		FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:5173"),
		AllowOrigins:  getEnv("ALLOW_ORIGINS", "*"),
		UploadDir:     getEnv("UPLOAD_DIR", "uploads"),
		CronLocation:  getEnv("CRON_LOCATION", "UTC"),
		EnableCronJob: getEnvBool("ENABLE_CRON", true),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.PaymentProvider == "flutterwave" && AppConfig.FlutterwaveSecretKey == "" {
		log.Println("Warning: FLUTTERWAVE_SECRET_KEY is empty, payment initiation will fail.")
	}
}

func (c *Config) OTPConfig() OTPConfig {
	return OTPConfig{
		TTL:            c.OTPTTL,
		MaxAttempts:    c.OTPMaxAttempts,
		ResendCooldown: c.OTPResendCooldown,
	}
}

func (c *Config) MailConfig() MailConfig {
	return MailConfig{
		Provider:       c.MailProvider,
		Sender:         c.EmailSender,
		FromName:       c.EmailFromName,
		SendGridAPIKey: c.SendGridAPIKey,
		SMTPHost:       c.SMTPHost,
		SMTPPort:       c.SMTPPort,
		SMTPPassword:   c.SMTPPassword,
	}
}

func (c *Config) PaymentConfig() PaymentConfig {
	return PaymentConfig{
		Provider:             c.PaymentProvider,
		Currency:             c.PaymentCurrency,
		FrontendURL:          c.FrontendURL,
		FlutterwaveBaseURL:   c.FlutterwaveBaseURL,
		FlutterwaveSecretKey: c.FlutterwaveSecretKey,
		MidtransServerKey:    c.MidtransServerKey,
		MidtransProduction:   c.MidtransProduction,
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to bool: %v", key, err)
		return defaultValue
	}
	return boolValue
}

// getEnvDuration accepts Go duration strings ("10m", "24h")
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to duration: %v", key, err)
		return defaultValue
	}
	return d
}
