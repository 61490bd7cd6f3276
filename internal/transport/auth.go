package transport

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/oauth2"

	"github.com/florianilch/llmwire/internal/provider"
	"github.com/florianilch/llmwire/internal/provider/anthropicmessages"
)

// roundTripperFunc adapts a function to http.RoundTripper.
type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// authTransport wraps base with the authentication scheme of the provider's vendor.
func authTransport(p provider.Name, apiKey string, base http.RoundTripper) http.RoundTripper {
	if p.Vendor() == "anthropic" {
		return anthropicKeyTransport(apiKey, base)
	}
	return &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey, TokenType: "Bearer"}),
		Base:   base,
	}
}

func anthropicKeyTransport(apiKey string, base http.RoundTripper) http.RoundTripper {
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		// RoundTrippers must not modify the caller's request
		req = req.Clone(req.Context())
		req.Header.Set("x-api-key", apiKey)
		req.Header.Set("anthropic-version", anthropicmessages.APIVersion)
		return base.RoundTrip(req)
	})
}

// traceContextTransport injects the W3C trace context of the request
// context into the outgoing headers. Without an active span nothing is
// written.
func traceContextTransport(base http.RoundTripper) http.RoundTripper {
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		req = req.Clone(req.Context())
		otel.GetTextMapPropagator().Inject(req.Context(), propagation.HeaderCarrier(req.Header))
		return base.RoundTrip(req)
	})
}
