package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/florianilch/llmwire/internal/app"
	"github.com/florianilch/llmwire/internal/config"
	"github.com/florianilch/llmwire/internal/observability"
	"github.com/florianilch/llmwire/internal/provider"
	"github.com/florianilch/llmwire/internal/scenario"
)

// Execute runs the root command with the given context and arguments.
func Execute(ctx context.Context, args []string, version, commit string) error {
	cmd := &cli.Command{
		Name:    "llmwire",
		Usage:   "Build, send and decode streaming requests for OpenAI and Anthropic APIs",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "TOML config file",
				Sources: cli.EnvVars(config.EnvPrefix + "CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
				Value: slog.LevelInfo.String(),
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (text|json|otel|otlp-http|otlp-grpc)",
				Value: "text",
			},
		},
		Commands: []*cli.Command{
			runCommand(),
			dumpCommand(),
			scenariosCommand(),
			authCommand(),
		},
	}

	return cmd.Run(ctx, args)
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Send one scenario to a provider and print the payload, the streamed events and the text",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "provider",
				Aliases:  []string{"p"},
				Usage:    "wire format (openai-api|openai-responses|anthropic)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "scenario",
				Aliases:  []string{"s"},
				Usage:    "scenario name, see 'llmwire scenarios'",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "model override for this run",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "print event data as indented JSON",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "print the payload without sending it",
			},
			colorFlag(),
			imagesDirFlag(),
		},
		Action: withConfig(runAction),
	}
}

func runAction(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	return app.New(cfg).Run(ctx, app.RunOptions{
		Provider: cmd.String("provider"),
		Scenario: cmd.String("scenario"),
		Model:    cmd.String("model"),
		DryRun:   cmd.Bool("dry-run"),
	})
}

func dumpCommand() *cli.Command {
	return &cli.Command{
		Name:  "dump",
		Usage: "Write the payload of every provider and scenario without sending anything",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: "output format (json|yaml)",
				Value: app.FormatJSON,
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "directory receiving <provider>/<scenario>.<format>; stdout when empty",
			},
			imagesDirFlag(),
		},
		Action: withConfig(func(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
			return app.New(cfg).Dump(ctx, app.DumpOptions{
				Format: cmd.String("format"),
				Dir:    cmd.String("out"),
			})
		}),
	}
}

func scenariosCommand() *cli.Command {
	return &cli.Command{
		Name:  "scenarios",
		Usage: "List the scenario catalog",
		Action: func(_ context.Context, cmd *cli.Command) error {
			return listScenarios(cmd.Root().Writer)
		},
	}
}

func listScenarios(w io.Writer) error {
	for _, n := range scenario.Names() {
		line := fmt.Sprintf("%-14s %s", n, scenario.Describe(n))
		if files := scenario.Requires(n); len(files) > 0 {
			line += fmt.Sprintf(" (needs %v)", files)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func colorFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "color",
		Usage: "colorize output (auto|always|never)",
		Value: "auto",
	}
}

func imagesDirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "images-dir",
		Usage: "directory holding " + scenario.TiresImage + " and " + scenario.PlotImage,
	}
}

// configAction is an action that needs the resolved configuration.
type configAction func(ctx context.Context, cmd *cli.Command, cfg *config.Config) error

// withConfig loads the configuration, sets up logging, and runs fn.
func withConfig(fn configAction) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) (err error) {
		cfg, err := loadConfig(cmd, os.Environ)
		if err != nil {
			return &provider.ConfigurationError{Stage: provider.StageCLI, Err: err}
		}

		var level slog.Level
		if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			return err
		}

		shutdown, err := observability.Instrument(ctx, level, cfg.Log.Format)
		if err != nil {
			return fmt.Errorf("failed to set up observability layer: %w", err)
		}
		defer func() {
			// the run context may already be cancelled; flush regardless
			if shutdownErr := shutdown(context.WithoutCancel(ctx)); shutdownErr != nil && err == nil {
				err = fmt.Errorf("shut down logging: %w", shutdownErr)
			}
		}()

		return fn(ctx, cmd, cfg)
	}
}
