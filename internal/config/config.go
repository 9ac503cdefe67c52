// Package config loads process configuration from the environment, per the
// broker's env-var contract: HOSTNAME, APPNAME, SERVICES, SECRETS,
// CONFIGFILE, STORAGE and friends.
package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment-derived settings for one process lifetime.
type Config struct {
	Hostname          string `env:"HOSTNAME,required"`
	AppName           string `env:"APPNAME,required"`
	DisplayName       string `env:"DISPLAYNAME"`
	Services          string `env:"SERVICES"` // comma-separated filter, empty means all
	Secrets           string `env:"SECRETS"`  // file path or base64:<...>
	SecretsPassphrase string `env:"SECRETS_PASSPHRASE"`
	ConfigFile        string `env:"CONFIGFILE"`
	Storage           string `env:"STORAGE"` // path, or file://<path>?pathmapped=true
	PrivacyPolicyURL  string `env:"PRIVACY_POLICY_URL"`

	ListenAddr   string `env:"LISTEN_ADDR" envDefault:":8080"`
	Env          string `env:"ENV" envDefault:"production"` // "DEV" enables verbose route/request logging
	WellKnownDir string `env:"WELLKNOWN_DIR"`                // ACME challenge directory, served verbatim under /.well-known/
}

// Load reads a .env file if present (ignoring its absence), then parses the
// process environment into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// DisplayNameOrDefault returns DisplayName, falling back to AppName when
// unset.
func (c *Config) DisplayNameOrDefault() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.AppName
}

// ServiceFilter returns the SERVICES allow-list as a set, or nil when unset
// (meaning: every catalog entry is enabled).
func (c *Config) ServiceFilter() map[string]struct{} {
	if c.Services == "" {
		return nil
	}
	out := make(map[string]struct{})
	for _, id := range strings.Split(c.Services, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			out[id] = struct{}{}
		}
	}
	return out
}

// StorageDir resolves the STORAGE env var to a local directory path, or
// returns ok=false when storage is not configured — in which case the
// broker operates in V2-only (stateless) mode.
//
// Accepted forms: a bare filesystem path, or file://<path>?pathmapped=true.
// The pathmapped query flag is accepted for compatibility with the source
// config but has no effect here: the store always maps one file per keyId
// under the resolved directory.
func (c *Config) StorageDir() (dir string, ok bool, err error) {
	if c.Storage == "" {
		return "", false, nil
	}
	if !strings.HasPrefix(c.Storage, "file://") {
		return c.Storage, true, nil
	}

	u, err := url.Parse(c.Storage)
	if err != nil {
		return "", false, fmt.Errorf("parsing STORAGE url: %w", err)
	}
	path := u.Path
	if path == "" {
		path = u.Opaque
	}
	if path == "" {
		return "", false, fmt.Errorf("STORAGE url %q has no path", c.Storage)
	}
	return path, true, nil
}
