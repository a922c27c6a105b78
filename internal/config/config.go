package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Mail     MailConfig     `mapstructure:"mail"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains the token lifecycle settings: the RSA key pair used to
// sign access tokens and the three expiry windows. The access token TTL is
// independent of, and much shorter than, the refresh token TTL.
type AuthConfig struct {
	Issuer                string        `mapstructure:"issuer"                  validate:"required"`
	PrivateKeyPath        string        `mapstructure:"private_key_path"        validate:"required"`
	PublicKeyPath         string        `mapstructure:"public_key_path"         validate:"required"`
	AccessTokenTTL        time.Duration `mapstructure:"access_token_ttl"        validate:"required"`
	CertificationTokenTTL time.Duration `mapstructure:"certification_token_ttl" validate:"required"`
	RefreshTokenTTL       time.Duration `mapstructure:"refresh_token_ttl"       validate:"required"`
}

// MailConfig contains the SMTP transport and certification mail settings.
// UIBaseURL is the origin the certification link points at.
type MailConfig struct {
	Host         string `mapstructure:"host"          validate:"required"`
	Port         int    `mapstructure:"port"          validate:"required,gt=0,lt=65536"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	From         string `mapstructure:"from"          validate:"required"`
	TemplatePath string `mapstructure:"template_path" validate:"required"`
	UIBaseURL    string `mapstructure:"ui_base_url"   validate:"required,url"`
	DevMode      bool   `mapstructure:"dev_mode"`
}
