package scenario

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// mediaTypes maps the image extensions the catalog understands.
var mediaTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// LoadImage reads an image file and returns it base64 encoded with its media type.
// A missing file and an unreadable file are reported the same way.
func LoadImage(path string) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("image file %s: %w", path, err)
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("image file %s is empty", path)
	}

	return Image{
		MediaType: detectMediaType(data, path),
		Data:      base64.StdEncoding.EncodeToString(data),
	}, nil
}

// LoadImages loads every named file from dir.
func LoadImages(dir string, files []string) (Images, error) {
	images := make(Images, len(files))
	for _, file := range files {
		img, err := LoadImage(filepath.Join(dir, file))
		if err != nil {
			return nil, err
		}
		images[file] = img
	}
	return images, nil
}

// detectMediaType prefers the file extension, then content sniffing, then
// the platform MIME table, falling back to image/jpeg.
func detectMediaType(data []byte, path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if mt, ok := mediaTypes[ext]; ok {
		return mt
	}
	if sniffed := http.DetectContentType(data); strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	if mt := mime.TypeByExtension(ext); strings.HasPrefix(mt, "image/") {
		return mt
	}
	return "image/jpeg"
}
