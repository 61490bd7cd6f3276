package commands

import (
	"github.com/urfave/cli/v3"

	"github.com/florianilch/llmwire/internal/config"
)

// dotEnvFile is read from the working directory when present.
const dotEnvFile = ".env"

// flagPaths maps flags to the config paths they override.
var flagPaths = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"pretty":     "output.pretty",
	"color":      "output.color",
	"images-dir": "images.dir",
}

// loadConfig resolves the configuration for cmd. Only flags given on the
// command line override the other layers, so their defaults never mask
// values from files or the environment.
func loadConfig(cmd *cli.Command, environ func() []string) (*config.Config, error) {
	overrides := make(map[string]any)
	for flag, path := range flagPaths {
		if !cmd.IsSet(flag) {
			continue
		}
		if flag == "pretty" {
			overrides[path] = cmd.Bool(flag)
			continue
		}
		overrides[path] = cmd.String(flag)
	}

	return config.Load(config.LoadOptions{
		Path:       cmd.String("config"),
		DotEnvPath: dotEnvFile,
		Environ:    environ,
		Overrides:  overrides,
	})
}
