package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// API routing modes
const (
	ModeDirect = "direct"
	ModeProxy  = "proxy"
)

const DefaultProxyPath = "/api/proxy?path="

type Config struct {
	Logging struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"logging"`
	Vault struct {
		Passphrase            string        `yaml:"passphrase"`
		SessionTimeoutMinutes int           `yaml:"session_timeout_minutes"`
		SweepInterval         time.Duration `yaml:"sweep_interval"`
		Iterations            int           `yaml:"iterations"`
	} `yaml:"vault"`
	Store struct {
		Path      string `yaml:"path"`
		Session   string `yaml:"session"`
		Ephemeral bool   `yaml:"ephemeral"`
	} `yaml:"store"`
	Tracker struct {
		Domain         string `yaml:"domain"`
		Mode           string `yaml:"mode"`
		ProxyURL       string `yaml:"proxy_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"tracker"`
}

func defaultConfig() Config {
	var c Config
	c.Logging.Level = "warn"
	c.Logging.Pretty = true
	c.Vault.SessionTimeoutMinutes = 60
	c.Vault.SweepInterval = 5 * time.Minute
	c.Vault.Iterations = 100000
	c.Store.Path = ".sprintdeck"
	c.Store.Session = "default"
	c.Tracker.Mode = ModeDirect
	c.Tracker.TimeoutSeconds = 15
	return c
}

// Path returns the config file location: SPRINTDECK_CONFIG, or the
// per-user default.
func Path() string {
	if path := os.Getenv("SPRINTDECK_CONFIG"); path != "" {
		return path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "sprintdeck", "config.yaml")
}

// Load reads defaults, then the config file if present, then environment overrides
func Load() (Config, error) {
	c := defaultConfig()

	if path := Path(); path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return c, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return c, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	if err := applyEnv(&c); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func applyEnv(c *Config) error {
	if v := os.Getenv("SPRINTDECK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SPRINTDECK_LOG_PRETTY"); v != "" {
		c.Logging.Pretty = v == "1" || v == "true"
	}
	// Secrets only from env or keyring, never from flags
	if v := os.Getenv("SPRINTDECK_ENCRYPTION_KEY"); v != "" {
		c.Vault.Passphrase = v
	}
	if v := os.Getenv("SPRINTDECK_SESSION_TIMEOUT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SPRINTDECK_SESSION_TIMEOUT: %w", err)
		}
		c.Vault.SessionTimeoutMinutes = n
	}
	if v := os.Getenv("SPRINTDECK_SWEEP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SPRINTDECK_SWEEP_INTERVAL: %w", err)
		}
		c.Vault.SweepInterval = d
	}
	if v := os.Getenv("SPRINTDECK_STORE"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("SPRINTDECK_SESSION"); v != "" {
		c.Store.Session = v
	}
	if v := os.Getenv("SPRINTDECK_DOMAIN"); v != "" {
		c.Tracker.Domain = v
	}
	if v := os.Getenv("SPRINTDECK_API_MODE"); v != "" {
		c.Tracker.Mode = strings.ToLower(v)
	}
	if v := os.Getenv("SPRINTDECK_PROXY_URL"); v != "" {
		c.Tracker.ProxyURL = v
	}
	return nil
}

// Validate checks the configuration for values the program cannot run with
func (c Config) Validate() error {
	if c.Vault.SessionTimeoutMinutes <= 0 {
		return fmt.Errorf("session timeout must be positive, got %d", c.Vault.SessionTimeoutMinutes)
	}
	if c.Vault.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", c.Vault.SweepInterval)
	}
	if c.Store.Path == "" && !c.Store.Ephemeral {
		return fmt.Errorf("store path must not be empty")
	}
	switch c.Tracker.Mode {
	case ModeDirect:
	case ModeProxy:
		if c.Tracker.ProxyURL == "" {
			return fmt.Errorf("proxy mode requires a proxy url")
		}
		if _, err := url.ParseRequestURI(c.Tracker.ProxyURL); err != nil {
			return fmt.Errorf("invalid proxy url: %w", err)
		}
	default:
		return fmt.Errorf("unknown api mode %q (want %s or %s)", c.Tracker.Mode, ModeDirect, ModeProxy)
	}
	if c.Tracker.Domain != "" {
		if err := ValidateDomain(c.Tracker.Domain); err != nil {
			return err
		}
	}
	return nil
}

// SessionTimeout returns the vault session timeout as a duration
func (c Config) SessionTimeout() time.Duration {
	return time.Duration(c.Vault.SessionTimeoutMinutes) * time.Minute
}

// ValidateDomain checks that domain is an absolute http(s) URL
func ValidateDomain(domain string) error {
	u, err := url.Parse(domain)
	if err != nil {
		return fmt.Errorf("invalid domain: %w", err)
	}
	if (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return fmt.Errorf("invalid domain %q: want an absolute URL such as https://yourcompany.atlassian.net", domain)
	}
	return nil
}
