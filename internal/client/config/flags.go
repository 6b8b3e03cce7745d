package config

import (
	"flag"
	"io"
	"os"
)

// parseFlags reads the CLI flags and keeps the remaining positional
// arguments in cfg.Args.
//
//	-s string     server base URL
//	-u string     username
//	-p duration   application ping interval (e.g. "30s")
//	-c, -config   JSON config file (read by parseJson)
//
// Flags must precede the command: "lentik-cli -s URL -u alice tail <family_id>".
func parseFlags(cfg *Config) error {
	fs := flag.NewFlagSet("lentik-cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerURL, "s", cfg.ServerURL, "server base URL")
	fs.StringVar(&cfg.UserName, "u", cfg.UserName, "username")
	fs.DurationVar(&cfg.PingInterval, "p", cfg.PingInterval, "ping interval")

	// consumed by parseJson
	var ignored string
	fs.StringVar(&ignored, "c", "", "path to JSON config file (short)")
	fs.StringVar(&ignored, "config", "", "path to JSON config file")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}
	cfg.Args = fs.Args()
	return nil
}
