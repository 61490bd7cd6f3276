package present

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

const (
	// keepBase64 is how many base64 characters survive truncation.
	keepBase64 = 100
	// minRawBase64 is the length above which a bare base64 string is shortened.
	minRawBase64 = 200
)

var prettyOptions = &pretty.Options{Width: 80, Prefix: "", Indent: "  ", SortKeys: false}

// RenderPayload returns body as indented JSON with long base64 data
// shortened for display. Key order is preserved. Rendering its own output
// again yields the same bytes.
func RenderPayload(body []byte) ([]byte, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("render payload: invalid JSON")
	}
	var buf bytes.Buffer
	truncateValue(&buf, gjson.ParseBytes(body))
	return bytes.TrimRight(pretty.PrettyOptions(buf.Bytes(), prettyOptions), "\n"), nil
}

// PrettyJSON indents a JSON document. Invalid input is returned unchanged.
func PrettyJSON(data []byte) []byte {
	if !gjson.ValidBytes(data) {
		return data
	}
	return bytes.TrimRight(pretty.PrettyOptions(data, prettyOptions), "\n")
}

// truncateValue writes value to buf, shortening base64 strings, and reports
// whether anything was shortened. Strings holding a JSON object or array are
// walked as well, so an image inside a serialized tool result is shortened
// too.
func truncateValue(buf *bytes.Buffer, value gjson.Result) bool {
	changed := false
	switch {
	case value.IsObject(), value.IsArray():
		open, closing := byte('['), byte(']')
		if value.IsObject() {
			open, closing = '{', '}'
		}
		buf.WriteByte(open)
		first := true
		value.ForEach(func(key, val gjson.Result) bool {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if value.IsObject() {
				buf.WriteString(key.Raw)
				buf.WriteByte(':')
			}
			if truncateValue(buf, val) {
				changed = true
			}
			return true
		})
		buf.WriteByte(closing)

	case value.Type == gjson.String:
		if short, ok := truncateString(value.Str); ok {
			buf.Write(quote(short))
			return true
		}
		buf.WriteString(value.Raw)

	default:
		buf.WriteString(value.Raw)
	}
	return changed
}

// truncateString shortens data URI payloads and bare base64 strings.
func truncateString(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	if (strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")) && gjson.Valid(trimmed) {
		var inner bytes.Buffer
		if !truncateValue(&inner, gjson.Parse(trimmed)) {
			return s, false
		}
		return inner.String(), true
	}

	if prefix, data, ok := strings.Cut(s, ";base64,"); ok && strings.HasPrefix(prefix, "data:") {
		if len(data) > keepBase64 && isBase64(data) {
			return fmt.Sprintf("%s;base64,%s... [truncated %d chars]", prefix, data[:keepBase64], len(data)), true
		}
		return s, false
	}

	if len(s) > minRawBase64 && isBase64(s) {
		return fmt.Sprintf("%s... [truncated %d chars]", s[:keepBase64], len(s)), true
	}
	return s, false
}

func isBase64(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '+' || c == '/' || c == '=':
		default:
			return false
		}
	}
	return true
}

// quote encodes s as a JSON string without HTML escaping.
func quote(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}
