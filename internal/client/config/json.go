package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/lentik/internal/flagx"
	"github.com/dmitrijs2005/lentik/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "30s" or as integer nanoseconds.
type JsonConfig struct {
	ServerURL    string         `json:"server_url"`
	UserName     string         `json:"username"`
	CookieName   string         `json:"cookie_name"`
	PingInterval timex.Duration `json:"ping_interval"`
}

// parseJson overlays cfg with the non-empty values of the JSON file named by
// -c or -config. Without either flag it does nothing.
func parseJson(cfg *Config) error {
	path := flagx.ConfigFilePath(os.Args[1:])
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.UserName != "" {
		cfg.UserName = jc.UserName
	}
	if jc.CookieName != "" {
		cfg.CookieName = jc.CookieName
	}
	if jc.PingInterval.Duration > 0 {
		cfg.PingInterval = jc.PingInterval.Duration
	}
	return nil
}
