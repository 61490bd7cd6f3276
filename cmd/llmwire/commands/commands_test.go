package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/florianilch/llmwire/internal/config"
	"github.com/florianilch/llmwire/internal/provider"
)

// captureConfig runs a command with the run flags and returns the config
// its action resolved.
func captureConfig(t *testing.T, environ []string, args ...string) *config.Config {
	t.Helper()

	var got *config.Config
	cmd := runCommand()
	cmd.Action = func(_ context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd, func() []string { return environ })
		got = cfg
		return err
	}
	root := &cli.Command{
		Name: "llmwire",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config"},
			&cli.StringFlag{Name: "log-level", Value: "info"},
			&cli.StringFlag{Name: "log-format", Value: "text"},
		},
		Commands: []*cli.Command{cmd},
	}

	require.NoError(t, root.Run(context.Background(), append([]string{"llmwire", "run"}, args...)))
	require.NotNil(t, got)
	return got
}

func TestLoadConfigFlagsOverrideEnvironment(t *testing.T) {
	cfg := captureConfig(t,
		[]string{"LLMWIRE_IMAGES_DIR=/from/env", "LLMWIRE_OUTPUT_COLOR=always"},
		"--provider", "anthropic", "--scenario", "simple_chat",
		"--images-dir", "/from/flag", "--pretty", "--log-level", "debug",
	)

	assert.Equal(t, "/from/flag", cfg.Images.Dir)
	assert.True(t, cfg.Output.Pretty)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "always", cfg.Output.Color, "unset flag defaults must not mask the environment")
}

func TestLoadConfigUnsetFlagsKeepDefaults(t *testing.T) {
	cfg := captureConfig(t, nil, "--provider", "openai-api", "--scenario", "tool_call")

	assert.Equal(t, ".", cfg.Images.Dir)
	assert.False(t, cfg.Output.Pretty)
	assert.Equal(t, "auto", cfg.Output.Color)
}

func TestListScenarios(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, listScenarios(&out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[0], "simple_chat "))
	assert.Contains(t, lines[1], "tires.jpeg")
	assert.Contains(t, lines[4], "plot.png")
}

func TestRunRejectsUnknownProvider(t *testing.T) {
	t.Chdir(t.TempDir())

	err := Execute(context.Background(), []string{
		"llmwire", "run", "--provider", "gemini", "--scenario", "simple_chat", "--dry-run",
	}, "test", "none")

	var cfgErr *provider.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, provider.StageCLI, cfgErr.Stage)
}

func TestDumpFailsBeforeWritingOnMissingImages(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	out := filepath.Join(dir, "payloads")

	err := Execute(context.Background(), []string{
		"llmwire", "dump", "--format", "json", "--out", out, "--images-dir", t.TempDir(),
	}, "test", "none")

	// the images directory is empty, so the image scenarios fail before any file is written
	var cfgErr *provider.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, provider.StageImages, cfgErr.Stage)
	assert.NoDirExists(t, out)
}

func TestAuthRefusesEnvStorage(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LLMWIRE_AUTH_STORAGE", "env")

	err := Execute(context.Background(), []string{"llmwire", "auth", "clear", "--provider", "anthropic"}, "test", "none")

	assert.ErrorIs(t, err, config.ErrReadOnlyStorage)
}
