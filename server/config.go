package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the server settings. Values come from the environment
// (optionally a .env file) and can be overridden by flags.
type Config struct {
	Addr             string
	DBPath           string
	ScenarioPath     string
	OperatorPassword string
	PublicURL        string
	AllowedOrigins   []string
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// LoadConfig reads envFile (missing files are fine), the environment and
// then the command line args.
func LoadConfig(envFile string, args []string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	fs := flag.NewFlagSet("spacefield", flag.ContinueOnError)
	cfg := Config{}
	fs.StringVar(&cfg.Addr, "addr", envOr("SPACEFIELD_ADDR", ":8080"), "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db", envOr("SPACEFIELD_DB", "spacefield.db"), "SQLite event log path (empty disables persistence)")
	fs.StringVar(&cfg.ScenarioPath, "scenario", envOr("SPACEFIELD_SCENARIO", ""), "YAML scenario to load at startup")
	fs.StringVar(&cfg.OperatorPassword, "operator-password", envOr("SPACEFIELD_OPERATOR_PASSWORD", ""), "Password required to mint observer tokens")
	fs.StringVar(&cfg.PublicURL, "public-url", envOr("SPACEFIELD_PUBLIC_URL", ""), "Public base URL used in join QR codes")
	origins := fs.String("origins", envOr("SPACEFIELD_ORIGINS", "*"), "Comma separated CORS origins")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	for _, o := range strings.Split(*origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
		}
	}
	return cfg, nil
}
