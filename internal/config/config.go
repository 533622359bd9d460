package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultConfigPath = "config.toml"
	DefaultHTTPAddr   = ":8080"

	DefaultPGHost     = "127.0.0.1"
	DefaultPGPort     = 5432
	DefaultPGUser     = "postgres"
	DefaultPGDatabase = "zapdesk"
	DefaultPGSSLMode  = "disable"

	DefaultNATSURL        = "nats://127.0.0.1:4222"
	DefaultCredsBucket    = "wa_sessions"
	DefaultJWTExpiresIn   = "24h"
	DefaultMediaRoot      = "data/media"
	DefaultReconnectMax   = 5
	DefaultReconnectInit  = 2000
	DefaultReconnectCeil  = 60000
	DefaultQRRetries      = 3
	DefaultConnectTimeout = 25
)

type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Admin    AdminConfig    `toml:"admin"`
	Auth     AuthConfig     `toml:"auth"`
	Postgres PostgresConfig `toml:"postgres"`
	NATS     NATSConfig     `toml:"nats"`
	Session  SessionConfig  `toml:"session"`
	Media    MediaConfig    `toml:"media"`
	Sweep    SweepConfig    `toml:"sweep"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type AdminConfig struct {
	Email        string `toml:"email"`
	PasswordHash string `toml:"password_hash"`
}

type AuthConfig struct {
	JWTSecret    string `toml:"jwt_secret"`
	JWTExpiresIn string `toml:"jwt_expires_in"`
}

type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

type NATSConfig struct {
	URL         string `toml:"url"`
	CredsBucket string `toml:"creds_bucket"`
}

// SessionConfig tunes connection supervision against the messaging network.
type SessionConfig struct {
	MaxReconnectionAttempts int `toml:"max_reconnection_attempts"`
	InitialReconnectDelayMS int `toml:"initial_reconnect_delay_ms"`
	MaxReconnectDelayMS     int `toml:"max_reconnect_delay_ms"`
	MaxQRRetries            int `toml:"max_qr_retries"`
	ConnectTimeoutSeconds   int `toml:"connect_timeout_seconds"`
}

func (c SessionConfig) InitialReconnectDelay() time.Duration {
	return time.Duration(c.InitialReconnectDelayMS) * time.Millisecond
}

func (c SessionConfig) MaxReconnectDelay() time.Duration {
	return time.Duration(c.MaxReconnectDelayMS) * time.Millisecond
}

func (c SessionConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSeconds) * time.Second
}

type MediaConfig struct {
	Root string `toml:"root"`
}

// SweepConfig drives the cron housekeeping jobs.
type SweepConfig struct {
	TicketCloseSpec string `toml:"ticket_close_spec"`
	QRStaleSpec     string `toml:"qr_stale_spec"`
}

func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Auth: AuthConfig{
			JWTExpiresIn: DefaultJWTExpiresIn,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
		NATS: NATSConfig{
			URL:         DefaultNATSURL,
			CredsBucket: DefaultCredsBucket,
		},
		Session: SessionConfig{
			MaxReconnectionAttempts: DefaultReconnectMax,
			InitialReconnectDelayMS: DefaultReconnectInit,
			MaxReconnectDelayMS:     DefaultReconnectCeil,
			MaxQRRetries:            DefaultQRRetries,
			ConnectTimeoutSeconds:   DefaultConnectTimeout,
		},
		Media: MediaConfig{
			Root: DefaultMediaRoot,
		},
		Sweep: SweepConfig{
			TicketCloseSpec: "*/5 * * * *",
			QRStaleSpec:     "*/10 * * * *",
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
