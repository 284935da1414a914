package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/authgate/internal/flagx"
	"github.com/joho/godotenv"
)

// parseEnv overlays settings from environment variables named after the
// configuration keys with "__" as the section separator (Jwt__Key,
// ConnectionStrings__DefaultConnection, ...). The all-caps spelling
// (JWT__KEY) is accepted as well.
//
// When -e/-env names a dotenv file it is loaded first; variables already
// present in the process environment are not overridden by the file.
func parseEnv(config *Config, args []string) error {
	if envFile := flagx.EnvFileFlags(args); envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	}

	lookupString(&config.Jwt.Key, "Jwt__Key")
	lookupString(&config.Jwt.Issuer, "Jwt__Issuer")
	lookupString(&config.Jwt.Audience, "Jwt__Audience")
	lookupString(&config.DatabaseDSN, "ConnectionStrings__DefaultConnection")
	lookupString(&config.HTTPAddress, "Server__HTTPAddress")
	lookupString(&config.GRPCAddress, "Server__GRPCAddress")
	lookupString(&config.PasswordAlgorithm, "Password__Algorithm")
	lookupString(&config.LogLevel, "Log__Level")

	if v, ok := lookup("Jwt__DurationInMinutes"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("Jwt__DurationInMinutes: %q is not an integer", v)
		}
		config.Jwt.DurationInMinutes = n
	}

	return nil
}

func lookup(name string) (string, bool) {
	if v, ok := os.LookupEnv(name); ok {
		return v, true
	}
	return os.LookupEnv(strings.ToUpper(name))
}

func lookupString(dst *string, name string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}
