package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every llmwire environment variable.
const EnvPrefix = "LLMWIRE_"

// Config is the resolved configuration of one invocation.
type Config struct {
	Models    ModelsConfig    `koanf:"models"`
	Endpoints EndpointsConfig `koanf:"endpoints"`
	Keys      KeysConfig      `koanf:"keys"`
	Images    ImagesConfig    `koanf:"images"`
	Output    OutputConfig    `koanf:"output"`
	Auth      AuthConfig      `koanf:"auth"`
	Log       LogConfig       `koanf:"log"`
}

// ModelsConfig names the model sent per vendor.
type ModelsConfig struct {
	OpenAI    string `koanf:"openai" validate:"required"`
	Anthropic string `koanf:"anthropic" validate:"required"`
}

// EndpointsConfig holds API base URLs; empty selects the public API.
type EndpointsConfig struct {
	OpenAI    string `koanf:"openai" validate:"omitempty,http_url"`
	Anthropic string `koanf:"anthropic" validate:"omitempty,http_url"`
}

// KeysConfig holds API keys found in files or the environment.
type KeysConfig struct {
	OpenAI    string `koanf:"openai"`
	Anthropic string `koanf:"anthropic"`
}

// ImagesConfig locates the scenario images.
type ImagesConfig struct {
	Dir string `koanf:"dir" validate:"required"`
}

// OutputConfig controls rendering.
type OutputConfig struct {
	Pretty bool   `koanf:"pretty"`
	Color  string `koanf:"color" validate:"oneof=auto always never"`
}

// LogConfig controls diagnostics on stderr.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Format string `koanf:"format" validate:"oneof=text json otel otlp-http otlp-grpc"`
}

// Defaults returns the built-in configuration layer.
func Defaults() map[string]any {
	return map[string]any{
		"models.openai":    "gpt-4o",
		"models.anthropic": "claude-sonnet-4-5-20250929",
		"images.dir":       ".",
		"output.pretty":    false,
		"output.color":     "auto",
		"auth.storage":     string(StorageKeyring),
		"auth.service":     "llmwire",
		"log.level":        "info",
		"log.format":       "text",
	}
}

// LoadOptions locates the configuration sources.
type LoadOptions struct {
	// Path is the TOML config file. Empty skips the file layer; a path that
	// does not exist is an error.
	Path string
	// DotEnvPath is the .env file. A missing file is ignored.
	DotEnvPath string
	// Environ returns the process environment, normally os.Environ.
	Environ func() []string
	// Overrides are flag values keyed by config path, e.g. "output.pretty".
	Overrides map[string]any
}

// Load resolves and validates the configuration.
func Load(opts LoadOptions) (*Config, error) {
	if opts.Environ == nil {
		opts.Environ = os.Environ
	}

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if opts.Path != "" {
		if err := k.Load(file.Provider(opts.Path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", opts.Path, err)
		}
	}

	if opts.DotEnvPath != "" {
		values, err := readDotEnv(opts.DotEnvPath)
		if err != nil {
			return nil, err
		}
		if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
			return nil, fmt.Errorf("load %s: %w", opts.DotEnvPath, err)
		}
	}

	// Conventional key variables first so LLMWIRE_KEYS_* wins over them.
	if err := k.Load(env.Provider(".", env.Opt{
		EnvironFunc: opts.Environ,
		TransformFunc: func(key, value string) (string, any) {
			return vendorKeyPath(key), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:      EnvPrefix,
		EnvironFunc: opts.Environ,
		TransformFunc: func(key, value string) (string, any) {
			return prefixedPath(key), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// readDotEnv reads a .env file into config paths. Unknown variables are dropped.
func readDotEnv(path string) (map[string]any, error) {
	dotenvK := koanf.New(".")
	if err := dotenvK.Load(file.Provider(path), dotenv.Parser()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	values := make(map[string]any)
	for _, key := range slices.Sorted(maps.Keys(dotenvK.All())) {
		raw := dotenvK.String(key)
		if p := vendorKeyPath(key); p != "" {
			values[p] = raw
		}
	}
	// LLMWIRE_ variables override the conventional names within the file too.
	for _, key := range slices.Sorted(maps.Keys(dotenvK.All())) {
		if strings.HasPrefix(key, EnvPrefix) {
			values[prefixedPath(key)] = dotenvK.String(key)
		}
	}
	return values, nil
}

// vendorKeyPath maps OPENAI_API_KEY and ANTHROPIC_API_KEY to their config
// paths and every other variable to "" (ignored).
func vendorKeyPath(key string) string {
	switch key {
	case "OPENAI_API_KEY":
		return "keys.openai"
	case "ANTHROPIC_API_KEY":
		return "keys.anthropic"
	default:
		return ""
	}
}

// prefixedPath maps LLMWIRE_SECTION_KEY to section.key.
func prefixedPath(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}
