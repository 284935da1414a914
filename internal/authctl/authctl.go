// Package authctl implements the authctl operator tool: hashing passwords for
// seeding a user store, checking a password against a stored secret,
// minting tokens and inspecting them with the server's own configuration.
package authctl

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/dmitrijs2005/authgate/internal/flagx"
	"github.com/dmitrijs2005/authgate/internal/server/auth"
	"github.com/dmitrijs2005/authgate/internal/server/config"
	"golang.org/x/term"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

const bcryptPrefix = "$2"

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// now is a test seam for the token clock.
var now = time.Now

const usage = `usage: authctl <command> [flags]

commands:
  hash    [-algorithm argon2id|bcrypt] [-password p]   print a password secret
  verify  -secret s [-password p]                       exit 0 if the password matches
  token   -sub username [config flags]                  issue a token
  inspect [-token] t [config flags]                     validate a token and print its claims

config flags are the server's: -c, -e, -k, -i, -u, -t (and Jwt__* env vars)
`

// App carries the tool's I/O so tests can drive it.
type App struct {
	Stdin  *os.File
	Stdout io.Writer
	Stderr io.Writer
}

func New() *App {
	return &App{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run executes the command named by args[0] and returns the exit code.
func (a *App) Run(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(a.Stderr, usage)
		return ExitUsage
	}

	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case "hash":
		err = a.hash(rest)
	case "verify":
		err = a.verify(rest)
	case "token":
		err = a.token(rest)
	case "inspect":
		err = a.inspect(rest)
	case "help", "-h", "-help", "--help":
		fmt.Fprint(a.Stdout, usage)
		return ExitOK
	default:
		fmt.Fprintf(a.Stderr, "unknown command %q\n\n%s", cmd, usage)
		return ExitUsage
	}

	var usageErr *usageError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &usageErr):
		fmt.Fprintf(a.Stderr, "%v\n\n%s", err, usage)
		return ExitUsage
	default:
		fmt.Fprintln(a.Stderr, err)
		return ExitFailure
	}
}

type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

// parseOwn parses the named string flags out of args, ignoring everything
// else, so the server's config flags can share the command line.
func parseOwn(args []string, names ...string) (map[string]*string, error) {
	allowed := make([]string, 0, len(names))
	for _, n := range names {
		allowed = append(allowed, "-"+n)
	}

	fs := flag.NewFlagSet("authctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	values := make(map[string]*string, len(names))
	for _, n := range names {
		values[n] = fs.String(n, "", n)
	}
	if err := fs.Parse(flagx.FilterArgs(args, allowed)); err != nil {
		return nil, &usageError{msg: err.Error()}
	}
	return values, nil
}

// password returns the -password value or prompts for one without echo.
// The caller wipes the returned slice.
func (a *App) password(flagValue string) ([]byte, error) {
	if flagValue != "" {
		return []byte(flagValue), nil
	}
	fmt.Fprint(a.Stderr, "Enter password: ")
	pw, err := readPassword(int(a.Stdin.Fd()))
	fmt.Fprintln(a.Stderr)
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	if len(pw) == 0 {
		return nil, errors.New("empty password")
	}
	return pw, nil
}

func (a *App) hash(args []string) error {
	f, err := parseOwn(args, "algorithm", "password")
	if err != nil {
		return err
	}

	algorithm := *f["algorithm"]
	if algorithm == "" {
		algorithm = auth.AlgorithmArgon2id
	}
	hasher, err := auth.NewHasher(algorithm)
	if err != nil {
		return &usageError{msg: err.Error()}
	}

	pw, err := a.password(*f["password"])
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	secret, err := hasher.Hash(string(pw))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Stdout, secret)
	return nil
}

// hasherFor picks the algorithm a stored secret was produced with.
func hasherFor(secret string) (auth.Hasher, error) {
	switch {
	case strings.HasPrefix(secret, "$argon2id$"):
		return auth.NewArgon2Hasher(), nil
	case strings.HasPrefix(secret, bcryptPrefix):
		return auth.NewBcryptHasher(0), nil
	}
	return nil, errors.New("unrecognized secret format")
}

var errMismatch = errors.New("password does not match")

func (a *App) verify(args []string) error {
	f, err := parseOwn(args, "secret", "password")
	if err != nil {
		return err
	}
	secret := *f["secret"]
	if secret == "" {
		return &usageError{msg: "verify: -secret is required"}
	}
	hasher, err := hasherFor(secret)
	if err != nil {
		return err
	}

	pw, err := a.password(*f["password"])
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	if !hasher.Verify(secret, string(pw)) {
		return errMismatch
	}
	fmt.Fprintln(a.Stdout, "ok")
	return nil
}

func tokenService(args []string) (*auth.TokenService, error) {
	cfg, err := config.LoadConfig(args)
	if err != nil {
		return nil, err
	}
	return auth.NewTokenService(auth.TokenConfig{
		Key:      []byte(cfg.Jwt.Key),
		Issuer:   cfg.Jwt.Issuer,
		Audience: cfg.Jwt.Audience,
		Duration: cfg.Jwt.Duration(),
	})
}

func (a *App) token(args []string) error {
	f, err := parseOwn(args, "sub")
	if err != nil {
		return err
	}
	sub := *f["sub"]
	if sub == "" {
		return &usageError{msg: "token: -sub is required"}
	}

	ts, err := tokenService(args)
	if err != nil {
		return err
	}
	token, exp, err := ts.Issue(sub, now())
	if err != nil {
		return err
	}

	fmt.Fprintln(a.Stdout, token)
	fmt.Fprintf(a.Stderr, "expires %s\n", exp.UTC().Format(time.RFC3339Nano))
	return nil
}

type inspectOutput struct {
	Subject   string    `json:"sub"`
	Issuer    string    `json:"iss"`
	Audience  []string  `json:"aud"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
	ID        string    `json:"jti,omitempty"`
}

// inspectValueFlags lists every value-taking flag inspect may see, so a
// positional token can follow config flags such as -c cfg.json.
func inspectValueFlags() []string {
	return append([]string{"-token", "-c", "-config", "-e", "-env"}, config.ValueFlags...)
}

func (a *App) inspect(args []string) error {
	f, err := parseOwn(args, "token")
	if err != nil {
		return err
	}
	token := *f["token"]
	if token == "" {
		if pos := flagx.Positional(args, inspectValueFlags()); len(pos) > 0 {
			token = pos[0]
		}
	}
	if token == "" {
		return &usageError{msg: "inspect: a token is required"}
	}

	ts, err := tokenService(args)
	if err != nil {
		return err
	}
	claims, err := ts.Validate(token, now())
	if err != nil {
		return fmt.Errorf("token rejected: %s", auth.ErrorCodeOf(err))
	}

	out := inspectOutput{
		Subject:  claims.Subject,
		Issuer:   claims.Issuer,
		Audience: claims.Audience,
		ID:       claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.UTC()
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.UTC()
	}

	enc := json.NewEncoder(a.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
