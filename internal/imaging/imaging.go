package imaging

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrEmpty is returned for a payload without any image data.
	ErrEmpty = errors.New("empty image payload")

	// ErrNotImage is returned when the decoded bytes are not an image.
	ErrNotImage = errors.New("payload is not an image")
)

// Image is a decoded image payload.
type Image struct {
	Data []byte
	MIME string
}

// Decode decodes a base64 image payload and sniffs its MIME type from the
// bytes. The payload is never re-encoded or altered.
func Decode(payload string) (*Image, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, ErrEmpty
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some generators drop the padding.
		var rawErr error
		data, rawErr = base64.RawStdEncoding.DecodeString(payload)
		if rawErr != nil {
			return nil, fmt.Errorf("decoding base64 image: %w", err)
		}
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	detected := mimetype.Detect(data)
	if !isImage(detected) {
		return nil, fmt.Errorf("%w: detected %s", ErrNotImage, detected.String())
	}

	return &Image{Data: data, MIME: detected.String()}, nil
}

// isImage walks the detected type and its parents looking for image/*.
func isImage(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return true
		}
	}
	return false
}
