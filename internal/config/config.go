// Package config provides environment-variable-first configuration loading
// with optional YAML file fallback, validated once at startup. All settings
// flow into components explicitly at construction; there is no ambient
// global configuration.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// defaultMaxMessageSize is 25 MB in bytes.
const defaultMaxMessageSize = 26214400

// addressRe is the basic local@domain shape required of configured
// addresses and reporter identities.
var addressRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Config holds the complete application configuration.
type Config struct {
	Security  SecurityConfig `yaml:"security"`
	Intake    IntakeConfig   `yaml:"intake"`
	Gmail     GmailConfig    `yaml:"gmail"`
	Provider  string         `yaml:"provider"`
	SES       SESConfig      `yaml:"ses"`
	Extractor string         `yaml:"extractor"`
	TLS       TLSConfig      `yaml:"tls"`
	Logging   LoggingConfig  `yaml:"logging"`
}

// SecurityConfig holds report routing settings.
type SecurityConfig struct {
	// Email is the security team address that receives all reports.
	Email string `yaml:"email"`
	// PhishingPrefix and InvestigationPrefix are prepended to report
	// subjects depending on the report kind.
	PhishingPrefix      string `yaml:"phishing_prefix"`
	InvestigationPrefix string `yaml:"investigation_prefix"`
	// Reporter is the acting user's identity for one-shot submissions.
	// Intake submissions use the SMTP envelope sender instead.
	Reporter string `yaml:"reporter"`
}

// IntakeConfig holds the SMTP intake listener settings.
type IntakeConfig struct {
	Listen   string `yaml:"listen"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// PhishingAddress and InvestigationAddress are the intake recipients
	// that select the report kind.
	PhishingAddress      string `yaml:"phishing_address"`
	InvestigationAddress string `yaml:"investigation_address"`
	MaxMessageSize       int64  `yaml:"max_message_size"`
}

// GmailConfig holds OAuth2 credentials for the mailbox retrieval tiers.
type GmailConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RefreshToken string `yaml:"refresh_token"`
}

// SESConfig holds AWS SES delivery configuration.
type SESConfig struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Sender          string `yaml:"sender"`
}

// TLSConfig holds TLS certificate file paths for the intake listener.
type TLSConfig struct {
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load loads configuration from environment variables with sensible defaults.
// Environment variables always take precedence.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnvVars()
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file as the base layer,
// then overrides with environment variables. Returns an error if the
// specified file path does not exist.
func LoadFromFile(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Environment variables always override YAML values
	cfg.applyEnvVars()

	return cfg, nil
}

// Validate checks the configuration once at startup. A bad security
// address or prefix would silently misroute every report, so startup is
// the place to fail.
func (c *Config) Validate() error {
	if !addressRe.MatchString(c.Security.Email) {
		return fmt.Errorf("security.email %q is not a valid email address", c.Security.Email)
	}
	if c.Security.PhishingPrefix == "" || c.Security.InvestigationPrefix == "" {
		return fmt.Errorf("subject prefixes must not be empty")
	}
	if c.Security.Reporter != "" && !addressRe.MatchString(c.Security.Reporter) {
		return fmt.Errorf("security.reporter %q is not a valid email address", c.Security.Reporter)
	}
	switch c.Extractor {
	case "regex", "mime":
	default:
		return fmt.Errorf("unknown extractor %q (want regex or mime)", c.Extractor)
	}
	switch c.Provider {
	case "", "ses", "stdout":
	default:
		return fmt.Errorf("unknown provider %q (want ses or stdout)", c.Provider)
	}
	return nil
}

// GmailConfigured returns true if all three Gmail credentials are set.
func (c *Config) GmailConfigured() bool {
	return c.Gmail.ClientID != "" &&
		c.Gmail.ClientSecret != "" &&
		c.Gmail.RefreshToken != ""
}

// SESConfigured returns true if the SES region and sender are set.
func (c *Config) SESConfigured() bool {
	return c.SES.Region != "" && c.SES.Sender != ""
}

// AuthEnabled returns true if both intake username and password are set.
func (c *Config) AuthEnabled() bool {
	return c.Intake.Username != "" && c.Intake.Password != ""
}

// applyDefaults sets sensible default values for all configuration fields.
func (c *Config) applyDefaults() {
	c.Security.PhishingPrefix = "[PHISHING]"
	c.Security.InvestigationPrefix = "[INVESTIGATION]"
	c.Intake.Listen = ":2525"
	c.Intake.PhishingAddress = "phishing@localhost"
	c.Intake.InvestigationAddress = "investigation@localhost"
	c.Intake.MaxMessageSize = defaultMaxMessageSize
	c.Extractor = "regex"
	c.Logging.Level = "info"
}

// applyEnvVars overrides configuration with environment variable values.
// Only non-empty environment variables override existing values.
func (c *Config) applyEnvVars() {
	if v := os.Getenv("SAMURAI_SECURITY_EMAIL"); v != "" {
		c.Security.Email = v
	}
	if v := os.Getenv("SAMURAI_PHISHING_PREFIX"); v != "" {
		c.Security.PhishingPrefix = v
	}
	if v := os.Getenv("SAMURAI_INVESTIGATION_PREFIX"); v != "" {
		c.Security.InvestigationPrefix = v
	}
	if v := os.Getenv("SAMURAI_REPORTER"); v != "" {
		c.Security.Reporter = v
	}

	if v := os.Getenv("SAMURAI_INTAKE_LISTEN"); v != "" {
		c.Intake.Listen = v
	}
	if v := os.Getenv("SAMURAI_INTAKE_USERNAME"); v != "" {
		c.Intake.Username = v
	}
	if v := os.Getenv("SAMURAI_INTAKE_PASSWORD"); v != "" {
		c.Intake.Password = v
	}
	if v := os.Getenv("SAMURAI_INTAKE_PHISHING_ADDRESS"); v != "" {
		c.Intake.PhishingAddress = v
	}
	if v := os.Getenv("SAMURAI_INTAKE_INVESTIGATION_ADDRESS"); v != "" {
		c.Intake.InvestigationAddress = v
	}
	if v := os.Getenv("SAMURAI_INTAKE_MAX_MESSAGE_SIZE"); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Intake.MaxMessageSize = size
		}
	}

	if v := os.Getenv("GMAIL_CLIENT_ID"); v != "" {
		c.Gmail.ClientID = v
	}
	if v := os.Getenv("GMAIL_CLIENT_SECRET"); v != "" {
		c.Gmail.ClientSecret = v
	}
	if v := os.Getenv("GMAIL_REFRESH_TOKEN"); v != "" {
		c.Gmail.RefreshToken = v
	}

	if v := os.Getenv("PROVIDER"); v != "" {
		c.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("SES_REGION"); v != "" {
		c.SES.Region = v
	}
	if v := os.Getenv("SES_ACCESS_KEY_ID"); v != "" {
		c.SES.AccessKeyID = v
	}
	if v := os.Getenv("SES_SECRET_ACCESS_KEY"); v != "" {
		c.SES.SecretAccessKey = v
	}
	if v := os.Getenv("SES_SENDER"); v != "" {
		c.SES.Sender = v
	}

	if v := os.Getenv("SAMURAI_EXTRACTOR"); v != "" {
		c.Extractor = strings.ToLower(v)
	}

	if v := os.Getenv("TLS_CERT_FILE"); v != "" {
		c.TLS.CertFile = v
	}
	if v := os.Getenv("TLS_KEY_FILE"); v != "" {
		c.TLS.KeyFile = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
}
