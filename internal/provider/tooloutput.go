package provider

import (
	"encoding/json"
	"fmt"

	"github.com/florianilch/llmwire/internal/scenario"
)

// imageToolOutput is the text form of a tool result carrying an image, for
// formats whose tool results only accept text.
type imageToolOutput struct {
	Text        string `json:"text,omitempty"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// ToolOutputText flattens a tool result into a single string. Text items are
// concatenated; a result with one inline image becomes the JSON object
// {"text", "image_base64", "mime_type"}. Remote images and more than one
// image cannot be flattened.
func ToolOutputText(result scenario.ToolResult) (string, error) {
	var (
		text  string
		image *scenario.Image
	)
	for _, c := range result.Content {
		switch c := c.(type) {
		case scenario.Text:
			text += c.Text
		case scenario.Image:
			if c.Encoding() != scenario.EncodingBase64 {
				return "", fmt.Errorf("tool result %s: only inline images are supported", result.CallID)
			}
			if image != nil {
				return "", fmt.Errorf("tool result %s: more than one image", result.CallID)
			}
			image = &c
		default:
			return "", fmt.Errorf("tool result %s: %T", result.CallID, c)
		}
	}

	if image == nil {
		return text, nil
	}
	out, err := json.Marshal(imageToolOutput{Text: text, ImageBase64: image.Data, MimeType: image.MediaType})
	if err != nil {
		return "", fmt.Errorf("tool result %s: %w", result.CallID, err)
	}
	return string(out), nil
}
