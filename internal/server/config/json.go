package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/dmitrijs2005/authgate/internal/flagx"
)

// Minutes is a positive token lifetime that unmarshals from either a JSON
// number (60) or a numeric string ("60"), as appsettings-style files often
// quote every value.
type Minutes int

// UnmarshalJSON implements json.Unmarshaler.
func (m *Minutes) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(s)
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return fmt.Errorf("DurationInMinutes: %q is not an integer", string(b))
	}
	*m = Minutes(n)
	return nil
}

// JsonConfig mirrors the sectioned layout of the configuration file:
//
//	{
//	  "Jwt": {"Key": "...", "Issuer": "...", "Audience": "...", "DurationInMinutes": 60},
//	  "ConnectionStrings": {"DefaultConnection": "postgres://..."},
//	  "Server": {"HTTPAddress": ":8080", "GRPCAddress": ":50051"},
//	  "Password": {"Algorithm": "argon2id"},
//	  "Log": {"Level": "info"}
//	}
//
// It is only a DTO; values are copied into Config, and empty values leave
// the current setting untouched.
type JsonConfig struct {
	Jwt struct {
		Key               string  `json:"Key"`
		Issuer            string  `json:"Issuer"`
		Audience          string  `json:"Audience"`
		DurationInMinutes Minutes `json:"DurationInMinutes"`
	} `json:"Jwt"`
	ConnectionStrings struct {
		DefaultConnection string `json:"DefaultConnection"`
	} `json:"ConnectionStrings"`
	Server struct {
		HTTPAddress string `json:"HTTPAddress"`
		GRPCAddress string `json:"GRPCAddress"`
	} `json:"Server"`
	Password struct {
		Algorithm string `json:"Algorithm"`
	} `json:"Password"`
	Log struct {
		Level string `json:"Level"`
	} `json:"Log"`
}

// parseJson loads configuration values from the JSON file named by the -c
// or -config flag into config. Without the flag nothing is loaded.
func parseJson(config *Config, args []string) error {
	jsonConfigFile := flagx.JsonConfigFlags(args)

	// nothing to load
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", jsonConfigFile, err)
	}

	setString(&config.Jwt.Key, c.Jwt.Key)
	setString(&config.Jwt.Issuer, c.Jwt.Issuer)
	setString(&config.Jwt.Audience, c.Jwt.Audience)
	if c.Jwt.DurationInMinutes != 0 {
		config.Jwt.DurationInMinutes = int(c.Jwt.DurationInMinutes)
	}
	setString(&config.DatabaseDSN, c.ConnectionStrings.DefaultConnection)
	setString(&config.HTTPAddress, c.Server.HTTPAddress)
	setString(&config.GRPCAddress, c.Server.GRPCAddress)
	setString(&config.PasswordAlgorithm, c.Password.Algorithm)
	setString(&config.LogLevel, c.Log.Level)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
