package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/webp"
)

// Format enum, restricted to what the mobile client is allowed to upload.
type Format string

const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
	WEBP Format = "webp"
)

const (
	// MinSize rejects payloads too small to be a real label photo.
	MinSize = 1024
	// MaxSize mirrors the per-file upload limit enforced at the HTTP layer.
	MaxSize = 10 << 20
)

var ErrInvalidImage = errors.New("invalid image")

// Image is an accepted product-label photo. Immutable once constructed.
type Image struct {
	data   []byte
	format Format
}

func New(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}
	if len(data) < MinSize {
		return nil, fmt.Errorf("%w: payload below %d bytes", ErrInvalidImage, MinSize)
	}
	if len(data) > MaxSize {
		return nil, fmt.Errorf("%w: payload exceeds %d bytes", ErrInvalidImage, MaxSize)
	}

	format, err := detectFormat(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	return &Image{data: data, format: format}, nil
}

// FromBase64 decodes a base64 payload, tolerating a data-URL prefix and
// surrounding whitespace, then applies the same structural checks as New.
func FromBase64(s string) (*Image, error) {
	s = strings.TrimSpace(s)
	if idx := strings.Index(s, ";base64,"); idx != -1 && strings.HasPrefix(s, "data:") {
		s = s[idx+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: not valid base64", ErrInvalidImage)
	}
	return New(data)
}

func (i *Image) Data() []byte {
	return i.data
}

func (i *Image) Format() Format {
	return i.format
}

func (i *Image) MIMEType() string {
	return "image/" + string(i.format)
}

// DataURL renders the image as a data URL suitable for a multimodal
// chat-completion image part.
func (i *Image) DataURL() string {
	return "data:" + i.MIMEType() + ";base64," + base64.StdEncoding.EncodeToString(i.data)
}

func detectFormat(data []byte) (Format, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", err
	}

	switch format {
	case "jpeg":
		return JPEG, nil
	case "png":
		return PNG, nil
	case "webp":
		return WEBP, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}
