package app

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/florianilch/llmwire/internal/present"
	"github.com/florianilch/llmwire/internal/provider"
	"github.com/florianilch/llmwire/internal/scenario"
)

// Dump formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// DumpOptions selects the dump output.
type DumpOptions struct {
	// Format is FormatJSON or FormatYAML.
	Format string
	// Dir receives one file per provider and scenario. Empty writes a
	// single document to the output.
	Dir string
}

type dumpEntry struct {
	provider provider.Name
	scenario scenario.Name
	payload  provider.Payload
}

// Dump builds the payload of every provider and scenario without touching
// the network. Output is identical across runs.
func (a *App) Dump(ctx context.Context, opts DumpOptions) error {
	if opts.Format != FormatJSON && opts.Format != FormatYAML {
		return &provider.ConfigurationError{
			Stage: provider.StageCLI,
			Err:   fmt.Errorf("unsupported dump format %q (expected: json, yaml)", opts.Format),
		}
	}

	var entries []dumpEntry
	for _, p := range provider.Names() {
		for _, s := range scenario.Names() {
			entries = append(entries, dumpEntry{provider: p, scenario: s})
		}
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range entries {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			e := &entries[i]
			_, payload, err := a.buildPayload(e.provider, e.scenario, "")
			if err != nil {
				return err
			}
			e.payload = payload
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if opts.Dir == "" {
		doc, err := encodeDump(entries, opts.Format)
		if err != nil {
			return err
		}
		_, err = a.out.Write(doc)
		return err
	}

	for _, e := range entries {
		body, err := encodePayload(e.payload.Body, opts.Format)
		if err != nil {
			return fmt.Errorf("encode %s/%s: %w", e.provider, e.scenario, err)
		}
		path := filepath.Join(opts.Dir, string(e.provider), string(e.scenario)+"."+opts.Format)
		if err := writeFileAtomic(path, body); err != nil {
			return err
		}
		slog.DebugContext(ctx, "payload written", "path", path)
	}
	return nil
}

// encodeDump renders all entries as one document keyed by provider, then scenario.
func encodeDump(entries []dumpEntry, format string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range entries {
		if i == 0 || entries[i-1].provider != e.provider {
			if i > 0 {
				buf.WriteString("},")
			}
			fmt.Fprintf(&buf, "%q:{", e.provider)
		} else {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:", e.scenario)
		buf.Write(e.payload.Body)
	}
	if len(entries) > 0 {
		buf.WriteByte('}')
	}
	buf.WriteByte('}')

	return encodePayload(buf.Bytes(), format)
}

// encodePayload renders a JSON document as indented JSON or block YAML,
// keeping key order.
func encodePayload(body []byte, format string) ([]byte, error) {
	if format == FormatJSON {
		return append(present.PrettyJSON(body), '\n'), nil
	}

	// JSON is valid YAML; decoding into a node keeps key order.
	var node yaml.Node
	if err := yaml.Unmarshal(body, &node); err != nil {
		return nil, fmt.Errorf("convert to yaml: %w", err)
	}
	blockStyle(&node)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// blockStyle clears the flow and quoting styles inherited from JSON.
func blockStyle(node *yaml.Node) {
	switch node.Kind {
	case yaml.MappingNode, yaml.SequenceNode:
		node.Style = 0
	case yaml.ScalarNode:
		if node.Tag == "!!str" {
			node.Style = 0
		}
	}
	for _, child := range node.Content {
		blockStyle(child)
	}
}

// writeFileAtomic writes data next to path and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
