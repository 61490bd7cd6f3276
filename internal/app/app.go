package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/florianilch/llmwire/internal/config"
	"github.com/florianilch/llmwire/internal/observability"
	"github.com/florianilch/llmwire/internal/present"
	"github.com/florianilch/llmwire/internal/provider"
	"github.com/florianilch/llmwire/internal/scenario"
	"github.com/florianilch/llmwire/internal/stream"
	"github.com/florianilch/llmwire/internal/transport"
)

// App runs scenarios against the provider APIs.
type App struct {
	cfg       *config.Config
	out       io.Writer
	transport http.RoundTripper
}

// Option configures an App.
type Option func(*App)

// WithOutput redirects the demo output, stdout by default.
func WithOutput(w io.Writer) Option {
	return func(a *App) {
		a.out = w
	}
}

// WithTransport sets the innermost HTTP round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(a *App) {
		a.transport = rt
	}
}

// New creates an App for the resolved configuration.
func New(cfg *config.Config, opts ...Option) *App {
	a := &App{
		cfg:       cfg,
		out:       os.Stdout,
		transport: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RunOptions selects what a run does.
type RunOptions struct {
	Provider string
	Scenario string
	// Model overrides the configured model for the provider's vendor.
	Model string
	// DryRun prints the payload and stops before any network activity.
	DryRun bool
}

// Run builds the payload for one scenario, sends it, and prints the payload,
// every streamed event and the accumulated text. All configuration errors
// are raised before the request is sent.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	name, err := provider.ParseName(opts.Provider)
	if err != nil {
		return &provider.ConfigurationError{Stage: provider.StageCLI, Err: err}
	}
	scenarioName, err := scenario.ParseName(opts.Scenario)
	if err != nil {
		return &provider.ConfigurationError{Stage: provider.StageCLI, Provider: name, Err: err}
	}

	ctx = observability.WithAttrs(ctx, slog.String("provider", string(name)), slog.String("scenario", string(scenarioName)))

	var apiKey string
	if !opts.DryRun {
		apiKey, err = a.cfg.APIKey(ctx, name.Vendor())
		if err != nil {
			return &provider.ConfigurationError{Stage: provider.StageAuth, Provider: name, Err: err}
		}
		if apiKey == "" {
			return &provider.ConfigurationError{
				Stage:    provider.StageAuth,
				Provider: name,
				Err: fmt.Errorf("missing %s: set it in the environment or a .env file, or run 'llmwire auth set --provider %s'",
					name.KeyEnv(), name),
			}
		}
	}

	adapter, payload, err := a.buildPayload(name, scenarioName, opts.Model)
	if err != nil {
		return err
	}
	slog.DebugContext(ctx, "payload built", "model", payload.Model, "bytes", len(payload.Body))

	presenter := present.New(a.out, present.Options{
		Color:  present.ColorMode(a.cfg.Output.Color).Enabled(a.out),
		Pretty: a.cfg.Output.Pretty,
	})
	if err := presenter.Payload(payload, adapter.Endpoint()); err != nil {
		return err
	}
	if opts.DryRun {
		return nil
	}

	sender := transport.New(name, apiKey, transport.WithTransport(a.transport))
	resp, err := sender.Send(ctx, adapter.Endpoint(), payload.Body)
	if err != nil {
		presenter.Failure(err)
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	ctx = observability.WithAttrs(ctx, slog.String("request_id", resp.RequestID))

	presenter.StreamStart()

	acc := stream.NewAccumulator(adapter.Text)
	var events, decodeErrors int
	var finish string
	for ev := range adapter.Decode(resp.Body) {
		events++
		switch e := ev.(type) {
		case stream.DecodeError:
			decodeErrors++
			slog.WarnContext(ctx, "undecodable stream event", "error", e.Err)
		case error:
			slog.WarnContext(ctx, "provider reported an error in the stream", "error", e)
		}
		if reason, ok := stopReason(ev); ok {
			finish = reason
		}
		if msg, ok := milestone(ev); ok {
			slog.DebugContext(ctx, msg, "event", events)
		}
		presenter.Event(ev)
		acc.Add(ev)
	}

	// a cancelled body read surfaces as a decode error; report the cancellation itself
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("stream interrupted: %w", err)
	}

	presenter.Complete(acc.String())
	slog.DebugContext(ctx, "stream complete",
		"events", events,
		"fragments", acc.Fragments(),
		"decode_errors", decodeErrors,
		"stop_reason", finish,
	)
	return nil
}

// buildPayload resolves images, the scenario and the adapter, and builds the payload.
func (a *App) buildPayload(name provider.Name, scenarioName scenario.Name, model string) (provider.Provider, provider.Payload, error) {
	images, err := scenario.LoadImages(a.cfg.Images.Dir, scenario.Requires(scenarioName))
	if err != nil {
		return nil, provider.Payload{}, &provider.ConfigurationError{
			Stage: provider.StageImages, Provider: name, Scenario: string(scenarioName), Err: err,
		}
	}

	s, err := scenario.Build(scenarioName, images)
	if err != nil {
		return nil, provider.Payload{}, &provider.ConfigurationError{
			Stage: provider.StageScenario, Provider: name, Scenario: string(scenarioName), Err: err,
		}
	}

	adapter, err := newProvider(name, a.cfg)
	if err != nil {
		return nil, provider.Payload{}, &provider.ConfigurationError{Stage: provider.StageCLI, Provider: name, Err: err}
	}

	if model == "" {
		model = a.cfg.Model(name.Vendor())
	}
	payload, err := adapter.BuildPayload(s, model)
	if err != nil {
		return nil, provider.Payload{}, err
	}
	return adapter, payload, nil
}
