package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Port    int    `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	Issuer     string `yaml:"issuer"`
	AccessTTL  string `yaml:"access_ttl"`
	RefreshTTL string `yaml:"refresh_ttl"`
}

type VerificationConfig struct {
	CodeLength       int    `yaml:"code_length"`
	SubscriberDigits int    `yaml:"subscriber_digits"`
	CountryCode      string `yaml:"country_code"`
	AttemptTimeout   string `yaml:"attempt_timeout"`
	MaxAttempts      int    `yaml:"max_attempts"`
	RetryBackoff     string `yaml:"retry_backoff"`
	ResendWindow     string `yaml:"resend_window"`
}

type TwilioConfig struct {
	AccountSID       string `yaml:"account_sid"`
	AuthToken        string `yaml:"auth_token"`
	VerifyServiceSID string `yaml:"verify_service_sid"`
}

type ConfigFile struct {
	App          AppConfig          `yaml:"app"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	JWT          JWTConfig          `yaml:"jwt"`
	Verification VerificationConfig `yaml:"verification"`
	Twilio       TwilioConfig       `yaml:"twilio"`
}

type Config struct {
	Port                string
	GinMode             string
	DSN                 string
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	JWTSecret           string
	JWTIssuer           string
	AccessTTL           time.Duration
	RefreshTTL          time.Duration
	OTPCodeLength       int
	OTPSubscriberDigits int
	OTPCountryCode      string
	OTPAttemptTimeout   time.Duration
	OTPMaxAttempts      int
	OTPRetryBackoff     time.Duration
	OTPResendWindow     time.Duration
	TwilioSID           string
	TwilioToken         string
	TwilioVerifySID     string
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func Load() (*Config, error) {
	configFile, err := loadConfigFile(env("CONFIG_PATH", "config/config.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	accTTL, err := time.ParseDuration(configFile.JWT.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT access TTL: %w", err)
	}

	refTTL, err := time.ParseDuration(configFile.JWT.RefreshTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT refresh TTL: %w", err)
	}

	attemptTimeout, err := time.ParseDuration(configFile.Verification.AttemptTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid verification attempt timeout: %w", err)
	}

	retryBackoff, err := time.ParseDuration(configFile.Verification.RetryBackoff)
	if err != nil {
		return nil, fmt.Errorf("invalid verification retry backoff: %w", err)
	}

	resendWindow, err := time.ParseDuration(configFile.Verification.ResendWindow)
	if err != nil {
		return nil, fmt.Errorf("invalid verification resend window: %w", err)
	}

	return &Config{
		Port:                fmt.Sprintf("%d", configFile.App.Port),
		GinMode:             configFile.App.GinMode,
		DSN:                 env("DATABASE_DSN", configFile.Database.DSN),
		RedisAddr:           env("REDIS_ADDR", configFile.Redis.Addr),
		RedisPassword:       env("REDIS_PASSWORD", configFile.Redis.Password),
		RedisDB:             configFile.Redis.DB,
		JWTSecret:           env("JWT_SECRET", configFile.JWT.Secret),
		JWTIssuer:           configFile.JWT.Issuer,
		AccessTTL:           accTTL,
		RefreshTTL:          refTTL,
		OTPCodeLength:       configFile.Verification.CodeLength,
		OTPSubscriberDigits: configFile.Verification.SubscriberDigits,
		OTPCountryCode:      configFile.Verification.CountryCode,
		OTPAttemptTimeout:   attemptTimeout,
		OTPMaxAttempts:      configFile.Verification.MaxAttempts,
		OTPRetryBackoff:     retryBackoff,
		OTPResendWindow:     resendWindow,
		TwilioSID:           env("TWILIO_ACCOUNT_SID", configFile.Twilio.AccountSID),
		TwilioToken:         env("TWILIO_AUTH_TOKEN", configFile.Twilio.AuthToken),
		TwilioVerifySID:     env("TWILIO_VERIFY_SERVICE_SID", configFile.Twilio.VerifyServiceSID),
	}, nil
}

func loadConfigFile(path string) (*ConfigFile, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(bytes, &config); err != nil {
		return nil, fmt.Errorf("could not parse config yaml: %w", err)
	}

	return &config, nil
}
