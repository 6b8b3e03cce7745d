package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/lentik/internal/flagx"
	"github.com/dmitrijs2005/lentik/internal/timex"
)

// JsonConfig is the on-disk shape of the optional configuration file.
// Durations use timex.Duration so "720h" and integer nanoseconds both work.
// Zero values mean "not set" and leave the current value in place.
type JsonConfig struct {
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC string         `json:"endpoint_addr_grpc"`
	DatabaseDSN      string         `json:"database_dsn"`
	SecretKey        string         `json:"secret_key"`
	AuthStrategy     string         `json:"auth_strategy"`
	CredentialTTL    timex.Duration `json:"credential_ttl"`
	CookieName       string         `json:"cookie_name"`
	SecureCookie     *bool          `json:"secure_cookie"`
	AllowedOrigins   []string       `json:"allowed_origins"`
	MaxFrameSize     int64          `json:"max_frame_size"`
	InviteTTL        timex.Duration `json:"invite_ttl"`
	BcryptCost       int            `json:"bcrypt_cost"`
	LogLevel         string         `json:"log_level"`
	S3RootUser       string         `json:"s3_root_user"`
	S3RootPassword   string         `json:"s3_root_password"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
}

// parseJson loads the file named by -c / -config (if any) and overlays its
// non-zero values onto config. An unreadable or malformed file panics, the
// same as a bad flag.
func parseJson(config *Config) {
	path := flagx.ConfigFilePath(os.Args[1:])
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.AuthStrategy, c.AuthStrategy)
	setString(&config.CookieName, c.CookieName)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.CredentialTTL.Duration > 0 {
		config.CredentialTTL = c.CredentialTTL.Duration
	}
	if c.InviteTTL.Duration > 0 {
		config.InviteTTL = c.InviteTTL.Duration
	}
	if c.SecureCookie != nil {
		config.SecureCookie = *c.SecureCookie
	}
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.MaxFrameSize > 0 {
		config.MaxFrameSize = c.MaxFrameSize
	}
	if c.BcryptCost > 0 {
		config.BcryptCost = c.BcryptCost
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
