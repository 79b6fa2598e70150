package qr

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/xrclskn/biolink/internal/errors"
	_ "golang.org/x/image/webp"
)

const (
	DefaultLogoMaxBytes int64 = 1 << 20
	// MaxLogoDimension bounds logo width and height in pixels. Checked from the
	// image header so an oversized canvas is never allocated.
	MaxLogoDimension = 2048
)

var logoTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// LoadLogo reads an uploaded logo and returns it as a data URI. Files larger
// than maxBytes, images wider or taller than MaxLogoDimension, and anything
// that is not png, jpeg, gif or webp are rejected with LOGO_REJECTED.
func LoadLogo(r io.Reader, maxBytes int64) (string, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultLogoMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read logo: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return "", errors.NewLogoRejectedError("file is larger than " + humanize.IBytes(uint64(maxBytes)))
	}
	if len(data) == 0 {
		return "", errors.NewLogoRejectedError("file is empty")
	}

	mime := http.DetectContentType(data)
	if !logoTypes[mime] {
		return "", errors.NewLogoRejectedError("unsupported type " + mime)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", errors.NewLogoRejectedError("not a readable image")
	}
	if err := checkLogoBounds(cfg); err != nil {
		return "", err
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func decodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("qr: logo is not a data uri")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("qr: malformed data uri")
	}
	mime, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("qr: data uri must be base64")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("qr: decode data uri: %w", err)
	}
	return mime, data, nil
}

func decodeLogo(uri string) (image.Image, error) {
	_, data, err := decodeDataURI(uri)
	if err != nil {
		return nil, err
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("qr: decode logo: %w", err)
	}
	if err := checkLogoBounds(cfg); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("qr: decode logo: %w", err)
	}
	return img, nil
}

func checkLogoBounds(cfg image.Config) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return errors.NewLogoRejectedError("image has no pixels")
	}
	if cfg.Width > MaxLogoDimension || cfg.Height > MaxLogoDimension {
		return errors.NewLogoRejectedError(fmt.Sprintf("image is %dx%d, max %dx%d",
			cfg.Width, cfg.Height, MaxLogoDimension, MaxLogoDimension))
	}
	return nil
}
