package config

import (
	"flag"
	"os"
	"strings"

	"github.com/dmitrijs2005/lentik/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., ":8000")
//	-g string     gRPC health bind address (e.g., ":50051")
//	-d string     PostgreSQL DSN
//	-k string     JWT HMAC secret key
//	-m string     auth strategy: token | session
//	-t duration   credential lifetime (e.g., "720h")
//	-o string     comma separated allowed WebSocket origins
//	-l string     log level
//	-b string     S3 bucket name
//	-e string     S3 base endpoint
//
// os.Args is filtered first so flags meant for other layers (like -c) never
// trip the parser.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-k", "-m", "-t", "-o", "-l", "-b", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to serve HTTP")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port to serve gRPC health")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "k", config.SecretKey, "secret key")
	fs.StringVar(&config.AuthStrategy, "m", config.AuthStrategy, "auth strategy (token|session)")
	fs.DurationVar(&config.CredentialTTL, "t", config.CredentialTTL, "credential lifetime")
	origins := fs.String("o", strings.Join(config.AllowedOrigins, ","), "allowed websocket origins")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AllowedOrigins = splitList(*origins)
}
