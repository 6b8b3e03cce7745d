package config

import (
	"strings"

	"github.com/spf13/viper"
)

// parseEnv overlays LENTIK_* variables onto config. Values come from the
// process environment and, when present, from envFile; real environment
// variables win over the file. A missing file is ignored.
func parseEnv(config *Config, envFile string) error {
	v := viper.New()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		_ = v.ReadInConfig()
	}

	v.AutomaticEnv()

	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}

	str("LENTIK_HTTP_ADDR", &config.EndpointAddrHTTP)
	str("LENTIK_GRPC_ADDR", &config.EndpointAddrGRPC)
	str("LENTIK_DATABASE_URL", &config.DatabaseDSN)
	str("LENTIK_SECRET_KEY", &config.SecretKey)
	str("LENTIK_AUTH_STRATEGY", &config.AuthStrategy)
	str("LENTIK_COOKIE_NAME", &config.CookieName)
	str("LENTIK_LOG_LEVEL", &config.LogLevel)
	str("LENTIK_S3_USER", &config.S3RootUser)
	str("LENTIK_S3_PASSWORD", &config.S3RootPassword)
	str("LENTIK_S3_BUCKET", &config.S3Bucket)
	str("LENTIK_S3_REGION", &config.S3Region)
	str("LENTIK_S3_ENDPOINT", &config.S3BaseEndpoint)

	if v.IsSet("LENTIK_CREDENTIAL_TTL") {
		config.CredentialTTL = v.GetDuration("LENTIK_CREDENTIAL_TTL")
	}
	if v.IsSet("LENTIK_INVITE_TTL") {
		config.InviteTTL = v.GetDuration("LENTIK_INVITE_TTL")
	}
	if v.IsSet("LENTIK_SECURE_COOKIE") {
		config.SecureCookie = v.GetBool("LENTIK_SECURE_COOKIE")
	}
	if v.IsSet("LENTIK_MAX_FRAME_SIZE") {
		config.MaxFrameSize = v.GetInt64("LENTIK_MAX_FRAME_SIZE")
	}
	if v.IsSet("LENTIK_BCRYPT_COST") {
		config.BcryptCost = v.GetInt("LENTIK_BCRYPT_COST")
	}
	if v.IsSet("LENTIK_ALLOWED_ORIGINS") {
		config.AllowedOrigins = splitList(v.GetString("LENTIK_ALLOWED_ORIGINS"))
	}

	return nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
