package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/florianilch/llmwire/internal/config"
	"github.com/florianilch/llmwire/internal/provider"
)

// authCommand returns the 'auth' subcommand for managing stored API keys.
func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage API keys in the OS keyring",
		Commands: []*cli.Command{
			authSetCommand(),
			authClearCommand(),
		},
	}
}

func providerFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "provider",
		Aliases:  []string{"p"},
		Usage:    "provider whose vendor key is managed (openai-api|openai-responses|anthropic)",
		Required: true,
	}
}

// authSetCommand returns the 'auth set' subcommand.
func authSetCommand() *cli.Command {
	return &cli.Command{
		Name:   "set",
		Usage:  "Prompt for an API key and save it",
		Flags:  []cli.Flag{providerFlag()},
		Action: withConfig(authSetAction),
	}
}

// authClearCommand returns the 'auth clear' subcommand.
func authClearCommand() *cli.Command {
	return &cli.Command{
		Name:   "clear",
		Usage:  "Remove a saved API key",
		Flags:  []cli.Flag{providerFlag()},
		Action: withConfig(authClearAction),
	}
}

func authSetAction(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	name, store, err := credentialStore(cmd, cfg)
	if err != nil {
		return err
	}

	key, err := readSecureInput(ctx, fmt.Sprintf("Enter %s: ", name.KeyEnv()))
	if err != nil {
		return err
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return &provider.ConfigurationError{Stage: provider.StageAuth, Provider: name, Err: errors.New("API key cannot be empty")}
	}

	if err := store.Write(ctx, name.Vendor(), key); err != nil {
		return fmt.Errorf("failed to save key: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.Root().Writer, "%s key saved to the keyring\n", name.Vendor())
	return nil
}

func authClearAction(ctx context.Context, cmd *cli.Command, cfg *config.Config) error {
	name, store, err := credentialStore(cmd, cfg)
	if err != nil {
		return err
	}

	// an empty write clears the entry
	if err := store.Write(ctx, name.Vendor(), ""); err != nil {
		return fmt.Errorf("failed to clear key: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.Root().Writer, "%s key cleared from the keyring\n", name.Vendor())
	return nil
}

func credentialStore(cmd *cli.Command, cfg *config.Config) (provider.Name, config.CredentialStore, error) {
	name, err := provider.ParseName(cmd.String("provider"))
	if err != nil {
		return "", nil, &provider.ConfigurationError{Stage: provider.StageCLI, Err: err}
	}

	if cfg.Auth.Storage == config.StorageEnv {
		return "", nil, &provider.ConfigurationError{
			Stage:    provider.StageAuth,
			Provider: name,
			Err:      fmt.Errorf("%w: set auth.storage to keyring to save keys", config.ErrReadOnlyStorage),
		}
	}

	store, err := cfg.Auth.NewCredentialStore()
	if err != nil {
		return "", nil, fmt.Errorf("failed to create credential store: %w", err)
	}
	return name, store, nil
}

// readSecureInput reads user input with hidden display and context cancellation support.
// term.ReadPassword has no context support, hence the goroutine. Piped input
// is read as a plain line.
func readSecureInput(ctx context.Context, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	interactive := term.IsTerminal(fd)
	if interactive {
		fmt.Fprint(os.Stderr, prompt)
		defer fmt.Fprintln(os.Stderr)
	}

	type result struct {
		value string
		err   error
	}
	resultCh := make(chan result, 1)

	go func() {
		if interactive {
			inputBytes, err := term.ReadPassword(fd)
			resultCh <- result{value: string(inputBytes), err: err}
			return
		}
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if errors.Is(err, io.EOF) {
			err = nil
		}
		resultCh <- result{value: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-resultCh:
		if res.err != nil {
			return "", fmt.Errorf("failed to read input: %w", res.err)
		}
		return res.value, nil
	}
}
