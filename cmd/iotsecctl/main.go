package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/lcalzada-xor/iotsec/internal/app"
	"github.com/lcalzada-xor/iotsec/internal/config"
	"github.com/lcalzada-xor/iotsec/internal/core/domain"
)

var version = "dev"

func main() {
	cliApp := &cli.App{
		Name:    "iotsecctl",
		Usage:   "Ingest scans and correlate device vulnerabilities from the command line",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Usage:   "Path to SQLite database",
				EnvVars: []string{"IOTSEC_DB"},
			},
			&cli.StringFlag{
				Name:    "cve-source",
				Usage:   "Vulnerability source: nvd or local",
				EnvVars: []string{"IOTSEC_CVE_SOURCE"},
			},
			&cli.StringFlag{
				Name:    "cve-db",
				Usage:   "Path to local CVE mirror",
				EnvVars: []string{"IOTSEC_CVE_DB"},
			},
			&cli.StringFlag{
				Name:    "cve-api-key",
				Usage:   "NVD API key",
				EnvVars: []string{"IOTSEC_CVE_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "oui-db",
				Usage:   "Path to OUI registry database",
				EnvVars: []string{"IOTSEC_OUI_DB"},
			},
			&cli.StringFlag{
				Name:    "user",
				Aliases: []string{"u"},
				Value:   "admin",
				Usage:   "Owner `USERNAME` the command acts for",
				EnvVars: []string{"IOTSEC_USER"},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable verbose debug logging",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colorized output",
			},
		},
		Commands: []*cli.Command{
			commandIngest(),
			commandCorrelate(),
			commandLookup(),
			commandAlerts(),
			commandUserAdd(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openApp bootstraps the engine from environment defaults overridden by
// the global flags.
func openApp(c *cli.Context) (*app.Application, error) {
	cfg, err := config.Parse(flag.NewFlagSet("iotsecctl", flag.ContinueOnError), nil)
	if err != nil {
		return nil, err
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("cve-source") {
		cfg.CVESource = c.String("cve-source")
	}
	if c.IsSet("cve-db") {
		cfg.CVEDBPath = c.String("cve-db")
	}
	if c.IsSet("cve-api-key") {
		cfg.CVEAPIKey = c.String("cve-api-key")
	}
	if c.IsSet("oui-db") {
		cfg.OUIDBPath = c.String("oui-db")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	if c.Bool("debug") {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return app.New(cfg, app.WithLogger(logger))
}

func withApp(fn func(ctx context.Context, c *cli.Context, a *app.Application, owner string) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		configureColor(c.Bool("no-color"))

		a, err := openApp(c)
		if err != nil {
			return err
		}
		defer a.Close()

		owner, err := a.Owner(c.Context, c.String("user"))
		if err != nil {
			return err
		}
		return fn(c.Context, c, a, owner)
	}
}

func commandIngest() *cli.Command {
	return &cli.Command{
		Name:      "ingest",
		Aliases:   []string{"i"},
		Usage:     "Store the new devices of a scan output file",
		ArgsUsage: "FILE (- for stdin)",
		Action: withApp(func(ctx context.Context, c *cli.Context, a *app.Application, owner string) error {
			data, err := readInput(c.Args().First())
			if err != nil {
				return err
			}

			saved, err := a.Ingestor.IngestRaw(ctx, owner, data)
			if errors.Is(err, domain.ErrNoDevicesFound) || (err == nil && len(saved) == 0) {
				fmt.Fprintln(c.App.Writer, "no_devices_found")
				return nil
			}
			if err != nil {
				return err
			}
			renderDevices(c.App.Writer, saved)
			return nil
		}),
	}
}

func commandCorrelate() *cli.Command {
	return &cli.Command{
		Name:    "correlate",
		Aliases: []string{"c"},
		Usage:   "Correlate stored devices with known vulnerabilities",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "device",
				Aliases: []string{"d"},
				Usage:   "Restrict to device `ID` (repeatable)",
			},
		},
		Action: withApp(func(ctx context.Context, c *cli.Context, a *app.Application, owner string) error {
			results, err := a.Correlator.CorrelateOwner(ctx, owner, c.StringSlice("device"))
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(c.App.Writer, "no_vulnerabilities_found")
				return nil
			}
			renderResults(c.App.Writer, results)
			return nil
		}),
	}
}

func commandLookup() *cli.Command {
	return &cli.Command{
		Name:      "lookup",
		Aliases:   []string{"l"},
		Usage:     "Show the relevant vulnerabilities of a vendor",
		ArgsUsage: "VENDOR",
		Action: func(c *cli.Context) error {
			configureColor(c.Bool("no-color"))

			a, err := openApp(c)
			if err != nil {
				return err
			}
			defer a.Close()

			vendor := c.Args().First()
			renderVulnerabilities(c.App.Writer, vendor, a.Lookup.Lookup(c.Context, vendor))
			return nil
		},
	}
}

func commandAlerts() *cli.Command {
	return &cli.Command{
		Name:    "alerts",
		Aliases: []string{"a"},
		Usage:   "List stored security alerts, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Value: 50,
				Usage: "Maximum alerts to show (0 for all)",
			},
		},
		Action: withApp(func(ctx context.Context, c *cli.Context, a *app.Application, owner string) error {
			alerts, err := a.Store.ListAlerts(ctx, owner, c.Int("limit"))
			if err != nil {
				return err
			}
			renderAlerts(c.App.Writer, alerts)
			return nil
		}),
	}
}

func commandUserAdd() *cli.Command {
	return &cli.Command{
		Name:  "useradd",
		Usage: "Create an API user",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"IOTSEC_NEW_PASSWORD"}},
			&cli.StringFlag{Name: "role", Value: string(domain.RoleOperator), Usage: "admin, operator or viewer"},
		},
		Action: func(c *cli.Context) error {
			a, err := openApp(c)
			if err != nil {
				return err
			}
			defer a.Close()

			user := domain.User{Username: c.String("username"), Role: domain.Role(c.String("role"))}
			if err := a.AuthService.CreateUser(c.Context, user, c.String("password")); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "created %s (%s)\n", user.Username, user.Role)
			return nil
		},
	}
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
