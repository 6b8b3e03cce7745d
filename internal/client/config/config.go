package config

import "time"

// Config holds runtime settings for the Lentik CLI.
//
// Fields:
//   - ServerURL: base URL of the Lentik HTTP API (http or https).
//   - UserName: account to log in as; prompted for when empty.
//   - CookieName: name of the credential cookie the server sets on login.
//   - PingInterval: how often an application ping is sent on open sockets.
//   - Args: positional arguments left after flags (the command and its operands).
type Config struct {
	ServerURL    string
	UserName     string
	CookieName   string
	PingInterval time.Duration
	Args         []string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8000"
	c.CookieName = "lentik_token"
	c.PingInterval = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags. Later sources take precedence
// over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
