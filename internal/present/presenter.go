package present

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/florianilch/llmwire/internal/provider"
	"github.com/florianilch/llmwire/internal/stream"
)

const ruleWidth = 60

// Options controls rendering.
type Options struct {
	// Color enables ANSI styling and JSON highlighting.
	Color bool
	// Pretty renders event data as indented JSON instead of the raw lines.
	Pretty bool
}

// Presenter writes a run to an output stream.
type Presenter struct {
	w    io.Writer
	opts Options

	payloadHeader lipgloss.Style
	streamHeader  lipgloss.Style
	textHeader    lipgloss.Style
	event         lipgloss.Style
	complete      lipgloss.Style
	failure       lipgloss.Style
}

// New returns a Presenter writing to w.
func New(w io.Writer, opts Options) *Presenter {
	profile := termenv.Ascii
	if opts.Color {
		profile = termenv.ANSI256
	}
	// the profile is forced so piped output stays colored with --color=always
	renderer := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	renderer.SetColorProfile(profile)

	header := renderer.NewStyle().Bold(true)
	return &Presenter{
		w:             w,
		opts:          opts,
		payloadHeader: header.Foreground(lipgloss.Color("12")),
		streamHeader:  header.Foreground(lipgloss.Color("10")),
		textHeader:    header.Foreground(lipgloss.Color("11")),
		event:         renderer.NewStyle().Foreground(lipgloss.Color("14")),
		complete:      renderer.NewStyle().Foreground(lipgloss.Color("10")),
		failure:       renderer.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// Payload prints the request payload under a header naming the provider.
func (p *Presenter) Payload(payload provider.Payload, endpoint string) error {
	rendered, err := RenderPayload(payload.Body)
	if err != nil {
		return err
	}

	p.header(p.payloadHeader, payload.Provider.Title()+" Request Payload")
	p.printf("POST %s\n", endpoint)
	p.printf("%s\n\n", p.highlight(string(rendered)))
	return nil
}

// StreamStart prints the streaming header.
func (p *Presenter) StreamStart() {
	p.header(p.streamHeader, "Streaming Response")
}

// Event prints one stream event.
func (p *Presenter) Event(ev stream.Event) {
	if decErr, ok := ev.(stream.DecodeError); ok {
		p.printf("%s\n", p.style(p.failure, RenderDecodeError(decErr)))
		return
	}
	if !p.opts.Pretty {
		p.printf("%s\n", p.style(p.event, ev.Raw()))
		return
	}
	if name := eventName(ev); name != "" {
		p.printf("%s\n", p.style(p.event, "event: "+name))
	}
	p.printf("%s\n", p.highlight(string(PrettyJSON(ev.Data()))))
}

// Complete prints the end-of-stream marker and, when any text arrived, the
// accumulated text.
func (p *Presenter) Complete(text string) {
	p.printf("\n%s\n\n", p.style(p.complete, "Stream complete."))
	if text == "" {
		return
	}
	p.header(p.textHeader, "Accumulated Text Response")
	p.printf("%s\n", text)
	p.printf("\n%s\n\n", p.style(p.textHeader.UnsetBold(), strings.Repeat("=", ruleWidth)))
}

// Failure prints a fatal error.
func (p *Presenter) Failure(err error) {
	p.printf("%s\n", p.style(p.failure, "Error: "+err.Error()))
}

// RenderDecodeError formats an undecodable frame: the raw text followed by
// the reason.
func RenderDecodeError(e stream.DecodeError) string {
	if e.Raw() == "" {
		return fmt.Sprintf("! stream error: %v", e.Err)
	}
	return fmt.Sprintf("%s\n! decode error: %v", e.Raw(), e.Err)
}

func (p *Presenter) header(style lipgloss.Style, title string) {
	rule := p.style(style, strings.Repeat("=", ruleWidth))
	p.printf("\n%s\n%s\n%s\n", rule, p.style(style, title), rule)
}

// style renders text line by line so multi-line wire data is never padded
// into a block. Without color the text is returned untouched.
func (p *Presenter) style(style lipgloss.Style, text string) string {
	if !p.opts.Color {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = style.Render(line)
	}
	return strings.Join(lines, "\n")
}

func (p *Presenter) highlight(src string) string {
	if !p.opts.Color {
		return src
	}
	var sb strings.Builder
	if err := quick.Highlight(&sb, src, "json", "terminal256", "monokai"); err != nil {
		return src
	}
	return sb.String()
}

func (p *Presenter) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format, args...)
}

func eventName(ev stream.Event) string {
	if named, ok := ev.(interface{ Name() string }); ok {
		return named.Name()
	}
	return ""
}
