package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/loykin/folderedit/internal/logger"
)

// EnvPrefix prefixes environment overrides, e.g. FOLDEREDIT_CLIENT_URL.
const EnvPrefix = "FOLDEREDIT"

// Config represents the top-level TOML structure.
type Config struct {
	Log       logger.Config   `toml:"log" mapstructure:"log"`
	Store     StoreConfig     `toml:"store" mapstructure:"store"`
	Server    ServerConfig    `toml:"server" mapstructure:"server"`
	Client    ClientConfig    `toml:"client" mapstructure:"client"`
	Cipher    CipherConfig    `toml:"cipher" mapstructure:"cipher"`
	Guard     GuardConfig     `toml:"guard" mapstructure:"guard"`
	Analytics AnalyticsConfig `toml:"analytics" mapstructure:"analytics"`
}

type StoreConfig struct {
	DSN string `toml:"dsn" mapstructure:"dsn"`
}

type ServerConfig struct {
	Listen        string     `toml:"listen" mapstructure:"listen"`
	Engine        string     `toml:"engine" mapstructure:"engine"` // gin or echo
	RateLimit     float64    `toml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst     int        `toml:"rate_burst" mapstructure:"rate_burst"`
	TLSMinVersion string     `toml:"tls_min_version" mapstructure:"tls_min_version"`
	TLSMaxVersion string     `toml:"tls_max_version" mapstructure:"tls_max_version"`
	TLS           *TLSConfig `toml:"tls" mapstructure:"tls"`
}

type TLSConfig struct {
	Enabled      bool        `toml:"enabled" mapstructure:"enabled"`
	CertFile     string      `toml:"cert_file" mapstructure:"cert_file"`
	KeyFile      string      `toml:"key_file" mapstructure:"key_file"`
	Dir          string      `toml:"dir" mapstructure:"dir"`
	AutoGenerate bool        `toml:"auto_generate" mapstructure:"auto_generate"`
	AutoGen      *AutoGenTLS `toml:"auto_gen" mapstructure:"auto_gen"`
}

type AutoGenTLS struct {
	CommonName   string   `toml:"common_name" mapstructure:"common_name"`
	Organization string   `toml:"organization" mapstructure:"organization"`
	DNSNames     []string `toml:"dns_names" mapstructure:"dns_names"`
	IPAddresses  []string `toml:"ip_addresses" mapstructure:"ip_addresses"`
	ValidDays    int      `toml:"valid_days" mapstructure:"valid_days"`
}

type ClientConfig struct {
	URL        string        `toml:"url" mapstructure:"url"`
	Timeout    time.Duration `toml:"timeout" mapstructure:"timeout"`
	CACert     string        `toml:"ca_cert" mapstructure:"ca_cert"`
	ClientCert string        `toml:"client_cert" mapstructure:"client_cert"`
	ClientKey  string        `toml:"client_key" mapstructure:"client_key"`
	ServerName string        `toml:"server_name" mapstructure:"server_name"`
	SkipVerify bool          `toml:"skip_verify" mapstructure:"skip_verify"`
}

// CipherConfig holds the secret used to seal folder names.
// KeyFile wins over Key when both are set.
type CipherConfig struct {
	Key     string `toml:"key" mapstructure:"key"`
	KeyFile string `toml:"key_file" mapstructure:"key_file"`
}

// GuardConfig controls debouncing. Window must be positive; debouncing cannot be
// turned off, only shortened.
type GuardConfig struct {
	Window time.Duration `toml:"window" mapstructure:"window"`
	Delete bool          `toml:"delete" mapstructure:"delete"`
}

type AnalyticsConfig struct {
	Source string   `toml:"source" mapstructure:"source"`
	Sinks  []string `toml:"sinks" mapstructure:"sinks"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Log:       logger.Config{Level: "info", Format: "text"},
		Store:     StoreConfig{DSN: "memory://"},
		Server:    ServerConfig{Listen: "127.0.0.1:8080", Engine: "gin", RateLimit: 20, RateBurst: 40},
		Client:    ClientConfig{URL: "http://127.0.0.1:8080/api", Timeout: 10 * time.Second},
		Guard:     GuardConfig{Window: time.Second},
		Analytics: AnalyticsConfig{Source: "folderedit"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("store.dsn", d.Store.DSN)
	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("server.engine", d.Server.Engine)
	v.SetDefault("server.rate_limit", d.Server.RateLimit)
	v.SetDefault("server.rate_burst", d.Server.RateBurst)
	v.SetDefault("client.url", d.Client.URL)
	v.SetDefault("client.timeout", d.Client.Timeout)
	v.SetDefault("guard.window", d.Guard.Window)
	v.SetDefault("guard.delete", d.Guard.Delete)
	v.SetDefault("analytics.source", d.Analytics.Source)
	// registered so env overrides are seen by Unmarshal
	v.SetDefault("cipher.key", "")
	v.SetDefault("cipher.key_file", "")
}

// Load reads path (TOML) and applies FOLDEREDIT_* environment overrides.
// An empty path yields defaults plus environment.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	switch strings.ToLower(c.Server.Engine) {
	case "", "gin", "echo":
	default:
		return fmt.Errorf("server.engine must be gin or echo, got %q", c.Server.Engine)
	}
	if c.Guard.Window <= 0 {
		return errors.New("guard.window must be positive")
	}
	if c.Server.RateLimit < 0 || c.Server.RateBurst < 0 {
		return errors.New("server rate limits must not be negative")
	}
	if c.Server.TLS != nil && c.Server.TLS.Enabled {
		t := c.Server.TLS
		if (t.CertFile == "") != (t.KeyFile == "") {
			return errors.New("server.tls requires both cert_file and key_file")
		}
		if t.CertFile == "" && t.Dir == "" {
			return errors.New("server.tls enabled but neither cert files nor dir set")
		}
	}
	return nil
}

// CipherSecret returns the configured secret, reading KeyFile when set.
func (c CipherConfig) CipherSecret() (string, error) {
	if c.KeyFile != "" {
		// Mitigate G304: sanitize user-provided path by cleaning it before use.
		b, err := os.ReadFile(filepath.Clean(c.KeyFile))
		if err != nil {
			return "", fmt.Errorf("read cipher key file: %w", err)
		}
		if s := strings.TrimSpace(string(b)); s != "" {
			return s, nil
		}
		return "", errors.New("cipher key file is empty")
	}
	if c.Key == "" {
		return "", errors.New("cipher key not configured (set cipher.key or FOLDEREDIT_CIPHER_KEY)")
	}
	return c.Key, nil
}
