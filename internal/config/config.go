package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Config holds all environment-driven settings.
type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"development"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	JWTSecret   string `envconfig:"JWT_SECRET" required:"true"`

	// Single canonical CORS boundary config.
	AllowedOrigin    string `envconfig:"ALLOWED_ORIGIN" default:"*"`
	AllowCredentials bool   `envconfig:"ALLOW_CREDENTIALS" default:"true"`

	// Object storage for pet images.
	S3URL       string `envconfig:"S3_URL" required:"true"`
	S3Bucket    string `envconfig:"S3_BUCKET" required:"true"`
	S3Region    string `envconfig:"S3_REGION" required:"true"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY" required:"true"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY" required:"true"`

	// Payment gateway credentials. Both empty means billing is not
	// configured and order creation fails closed.
	RazorpayKeyID     string `envconfig:"RAZORPAY_KEY_ID" default:""`
	RazorpayKeySecret string `envconfig:"RAZORPAY_KEY_SECRET" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// BillingConfigured reports whether payment credentials are present.
func (c *Config) BillingConfigured() bool {
	return c.RazorpayKeyID != "" && c.RazorpayKeySecret != ""
}
