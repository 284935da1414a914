package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/authgate/internal/flagx"
)

// ValueFlags lists the value-taking flags parseFlags owns.
var ValueFlags = []string{"-a", "-g", "-d", "-k", "-i", "-u", "-t", "-p", "-l"}

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-g string   gRPC bind address, empty disables gRPC
//	-d string   PostgreSQL DSN, empty selects the in-memory store
//	-k string   JWT HMAC secret key
//	-i string   JWT issuer
//	-u string   JWT audience
//	-t int      token lifetime, minutes
//	-p string   password algorithm (argon2id | bcrypt)
//	-l string   log level
//
// args is first filtered with flagx.FilterArgs so flags owned by other
// consumers (-c, -e, authctl sub-command flags) never fail the parse.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, ValueFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddress, "a", config.HTTPAddress, "HTTP address and port to run server")
	fs.StringVar(&config.GRPCAddress, "g", config.GRPCAddress, "gRPC address and port, empty to disable")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.Jwt.Key, "k", config.Jwt.Key, "JWT signing key")
	fs.StringVar(&config.Jwt.Issuer, "i", config.Jwt.Issuer, "JWT issuer")
	fs.StringVar(&config.Jwt.Audience, "u", config.Jwt.Audience, "JWT audience")
	fs.IntVar(&config.Jwt.DurationInMinutes, "t", config.Jwt.DurationInMinutes, "token lifetime (in minutes)")
	fs.StringVar(&config.PasswordAlgorithm, "p", config.PasswordAlgorithm, "password hashing algorithm")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	return fs.Parse(args)
}
