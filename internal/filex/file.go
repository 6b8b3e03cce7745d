// Package filex reads local media files for upload.
package filex

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// MaxMediaBytes caps what the CLI will read into memory for one upload.
const MaxMediaBytes = 64 << 20

var (
	ErrTooLarge         = errors.New("file too large")
	ErrUnsupportedMedia = errors.New("unsupported media type: only images and videos can be uploaded")
)

// Media is a file loaded for upload.
type Media struct {
	Data        []byte
	ContentType string
	// Kind is the gallery media type, "image" or "video".
	Kind string
}

// ReadMedia loads path and classifies it by content sniffing.
func ReadMedia(path string) (*Media, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxMediaBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) > MaxMediaBytes {
		return nil, fmt.Errorf("%w: %s is over %d MiB", ErrTooLarge, path, MaxMediaBytes>>20)
	}

	ct := http.DetectContentType(data)
	kind, ok := MediaKind(ct)
	if !ok {
		return nil, fmt.Errorf("%w (%s)", ErrUnsupportedMedia, ct)
	}
	return &Media{Data: data, ContentType: ct, Kind: kind}, nil
}

// MediaKind maps a MIME type to a gallery media type.
func MediaKind(contentType string) (string, bool) {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image", true
	case strings.HasPrefix(contentType, "video/"):
		return "video", true
	default:
		return "", false
	}
}
