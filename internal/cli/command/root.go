package command

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/shmap-go/internal/cli/output"
	"github.com/yndnr/shmap-go/internal/config"
	"github.com/yndnr/shmap-go/internal/infra/buildinfo"
	"github.com/yndnr/shmap-go/internal/telemetry/logger"
	"github.com/yndnr/shmap-go/pkg/shmap"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:                 "shmap",
		Usage:                "Inspect and modify a shared-memory key/value store",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			GetCommand(),
			SetCommand(),
			DelCommand(),
			KeysCommand(),
			TTLCommand(),
			GCCommand(),
			ConfigCommand(),
			KeygenCommand(),
			VersionCommand(),
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to a YAML configuration file",
			EnvVars: []string{"SHMAP_CONFIG_FILE"},
		},
		&cli.StringFlag{
			Name:  "dir",
			Usage: "Segment directory (overrides store.dir)",
		},
		&cli.StringFlag{
			Name:    "namespace",
			Aliases: []string{"n"},
			Usage:   "Segment name prefix (overrides store.namespace)",
		},
		&cli.StringFlag{
			Name:  "encryption-key",
			Usage: "Hex encoded 32-byte key (overrides security.encryption_key)",
		},
		&cli.StringFlag{
			Name:  "codec",
			Usage: "Value codec: msgpack, json, gob (overrides store.codec)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Log store activity to stderr",
		},
	}
}

// flagOverrides maps global flags to configuration keys.
var flagOverrides = map[string]string{
	"dir":            "store.dir",
	"namespace":      "store.namespace",
	"encryption-key": "security.encryption_key",
	"codec":          "store.codec",
}

// loadConfig merges the configuration file, environment and explicitly set
// global flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	overrides := make(map[string]any)
	for flag, key := range flagOverrides {
		if c.IsSet(flag) {
			overrides[key] = c.String(flag)
		}
	}
	cfg, err := config.Load(c.String("config"), overrides)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// openStore opens the configured store. The startup sweep is skipped
// unless sweep is set.
func openStore(c *cli.Context, sweep bool) (*shmap.Store, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	opts, err := config.StoreOptions(cfg)
	if err != nil {
		return nil, err
	}

	log, err := cliLogger(c)
	if err != nil {
		return nil, err
	}
	opts = append(opts, shmap.WithLogger(log))
	if !sweep {
		opts = append(opts, shmap.WithoutInitialSweep())
	}

	store, err := shmap.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store, nil
}

// cliLogger writes text logs to stderr, warnings only unless --verbose.
func cliLogger(c *cli.Context) (logger.Logger, error) {
	level := "warn"
	if c.Bool("verbose") {
		level = "debug"
	}
	return logger.New(logger.Config{
		Level:  level,
		Format: "text",
		Output: errWriter(c),
	})
}

// render writes data in the format selected by --output.
func render(c *cli.Context, data any) error {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		return err
	}
	return output.NewFormatter(format).Format(c.App.Writer, data)
}

// tableOutput reports whether --output selects the table format.
func tableOutput(c *cli.Context) bool {
	format, err := output.ParseFormat(c.String("output"))
	return err == nil && format == output.FormatTable
}

func errWriter(c *cli.Context) io.Writer {
	if c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return io.Discard
}

// requireArgs fails unless exactly n positional arguments were given.
func requireArgs(c *cli.Context, n int, usage string) error {
	if c.NArg() != n {
		return fmt.Errorf("usage: %s %s", c.Command.Name, usage)
	}
	return nil
}
