package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/apd/v3"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"signproxy/pkg/client"
	"signproxy/pkg/core"
	"signproxy/pkg/signer"
)

func main() {
	app := &cli.App{
		Name:  "signproxy",
		Usage: "Sign and forward calls to an HMAC-authenticated REST API",
		Description: `Builds signed requests against the configured base URL and prints the
normalized outcome as JSON. Credentials are read once from the environment.`,
		Version: core.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "Upstream API base URL",
				EnvVars: []string{"EXCHANGE_BASE_URL"},
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "API key sent in X-API-KEY",
				EnvVars: []string{"EXCHANGE_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "api-secret",
				Usage:   "HMAC signing secret",
				EnvVars: []string{"EXCHANGE_API_SECRET"},
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "Per-call timeout",
				Value:   core.DefaultTimeout,
				EnvVars: []string{"SIGNPROXY_TIMEOUT"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"SIGNPROXY_LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "call",
				Usage: "Send one call and print the normalized result",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "method",
						Usage: "HTTP method (GET, POST, PUT, DELETE)",
						Value: "GET",
					},
					&cli.StringFlag{
						Name:     "path",
						Usage:    "Endpoint path, e.g. /api/v3/account",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:  "param",
						Usage: "Request parameter as key=value (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "signed",
						Usage: "Add timestamp and signature",
					},
				},
				Action: callCommand,
			},
			{
				Name:  "sign",
				Usage: "Print the canonical string and signature for a parameter set",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "param",
						Usage: "Request parameter as key=value (repeatable)",
					},
					&cli.Int64Flag{
						Name:  "timestamp",
						Usage: "Timestamp in milliseconds (default: now)",
					},
				},
				Action: signCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// createClient creates a signing client from CLI context. Without an API key
// the client is public and only serves unsigned calls.
func createClient(c *cli.Context) (*client.Client, error) {
	cfg := core.DefaultConfig(c.String("base-url")).
		WithTimeout(c.Duration("timeout")).
		WithLogLevel(c.String("log-level"))

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if c.String("api-key") == "" && c.String("api-secret") == "" {
		return client.NewPublic(cfg, client.WithLogger(logger))
	}
	cfg.WithCredentials(c.String("api-key"), c.String("api-secret"))
	return client.New(cfg, client.WithLogger(logger))
}

func callCommand(c *cli.Context) error {
	params, err := parseParams(c.StringSlice("param"))
	if err != nil {
		return err
	}

	sc, err := createClient(c)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer sc.Close()

	spec := &core.CallSpec{
		Method:            strings.ToUpper(c.String("method")),
		Path:              c.String("path"),
		Params:            params,
		RequiresSignature: c.Bool("signed"),
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := sc.Call(ctx, spec)
	if err != nil {
		return err
	}

	out, err := sonic.ConfigStd.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(out))

	if !result.OK() {
		return cli.Exit("", exitCode(result))
	}
	return nil
}

func signCommand(c *cli.Context) error {
	secret := c.String("api-secret")
	if secret == "" {
		return core.ErrMissingCredentials
	}

	params, err := parseParams(c.StringSlice("param"))
	if err != nil {
		return err
	}
	if params.Has(core.ParamTimestamp) || params.Has(core.ParamSignature) {
		return core.ErrReservedParam
	}

	ts := c.Int64("timestamp")
	if ts == 0 {
		ts = time.Now().UnixMilli()
	}

	canonical, err := signer.Canonicalize(params.With(core.ParamTimestamp, ts))
	if err != nil {
		return err
	}

	fmt.Printf("canonical: %s\n", canonical)
	fmt.Printf("signature: %s\n", signer.Sign(secret, canonical))
	return nil
}

// parseParams turns key=value pairs into Params. Integers become int64 and
// plain decimals become *apd.Decimal; anything whose rendering would change
// (leading zeros, exponents) stays a string.
func parseParams(pairs []string) (core.Params, error) {
	params := make(core.Params, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid param %q: expected key=value", pair)
		}
		params[key] = parseValue(value)
	}
	return params, nil
}

func parseValue(value string) any {
	if i, err := strconv.ParseInt(value, 10, 64); err == nil && strconv.FormatInt(i, 10) == value {
		return i
	}
	if d, _, err := apd.NewFromString(value); err == nil && d.Form == apd.Finite && d.Text('f') == value {
		return d
	}
	return value
}

// exitCode maps a failed result onto a process exit status.
func exitCode(r *core.Result) int {
	if r.Kind == core.KindTransportError {
		return 2
	}
	return 1
}
