package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/zalando/go-keyring"
)

// StorageType selects where API keys are persisted.
type StorageType string

const (
	// StorageEnv reads keys from the environment layers only. Read-only.
	StorageEnv StorageType = "env"
	// StorageKeyring falls back to the OS keyring.
	StorageKeyring StorageType = "keyring"
)

// AuthConfig configures API key storage.
type AuthConfig struct {
	Storage StorageType `koanf:"storage" validate:"oneof=env keyring"`
	// Service is the keyring service name.
	Service string `koanf:"service" validate:"required_if=Storage keyring"`
}

// ErrReadOnlyStorage is returned when writing to env storage.
var ErrReadOnlyStorage = errors.New("env storage is read-only")

// CredentialStore persists API keys per vendor ("openai", "anthropic").
type CredentialStore interface {
	// Read returns the stored key, or "" when none is stored.
	Read(ctx context.Context, vendor string) (string, error)
	// Write stores key; an empty key clears the entry.
	Write(ctx context.Context, vendor, key string) error
}

// NewCredentialStore returns the store selected by the config.
func (c AuthConfig) NewCredentialStore() (CredentialStore, error) {
	switch c.Storage {
	case StorageEnv:
		return envStore{}, nil
	case StorageKeyring:
		return keyringStore{service: c.Service}, nil
	default:
		return nil, fmt.Errorf("unsupported credential storage %q", c.Storage)
	}
}

type envStore struct{}

func (envStore) Read(context.Context, string) (string, error) { return "", nil }

func (envStore) Write(context.Context, string, string) error { return ErrReadOnlyStorage }

type keyringStore struct {
	service string
}

func (s keyringStore) Read(ctx context.Context, vendor string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key, err := keyring.Get(s.service, vendor)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s key from keyring: %w", vendor, err)
	}
	return key, nil
}

func (s keyringStore) Write(ctx context.Context, vendor, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		if err := keyring.Delete(s.service, vendor); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("clear %s key in keyring: %w", vendor, err)
		}
		return nil
	}
	if err := keyring.Set(s.service, vendor, key); err != nil {
		return fmt.Errorf("write %s key to keyring: %w", vendor, err)
	}
	return nil
}

// APIKey returns the key for vendor: the environment layers first, then the
// credential store. A failing keyring is logged and treated as empty so the
// caller reports the missing key.
func (c *Config) APIKey(ctx context.Context, vendor string) (string, error) {
	var key string
	switch vendor {
	case "openai":
		key = c.Keys.OpenAI
	case "anthropic":
		key = c.Keys.Anthropic
	default:
		return "", fmt.Errorf("unknown vendor %q", vendor)
	}
	if key != "" {
		return key, nil
	}

	store, err := c.Auth.NewCredentialStore()
	if err != nil {
		return "", err
	}
	key, err = store.Read(ctx, vendor)
	if err != nil {
		slog.WarnContext(ctx, "credential store unavailable", "vendor", vendor, "storage", c.Auth.Storage, "error", err)
		return "", nil
	}
	return key, nil
}

// Model returns the configured model for vendor.
func (c *Config) Model(vendor string) string {
	if vendor == "anthropic" {
		return c.Models.Anthropic
	}
	return c.Models.OpenAI
}

// BaseURL returns the configured API root for vendor, empty for the default.
func (c *Config) BaseURL(vendor string) string {
	if vendor == "anthropic" {
		return c.Endpoints.Anthropic
	}
	return c.Endpoints.OpenAI
}
