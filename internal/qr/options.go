package qr

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

type DotShape string

const (
	DotSquare  DotShape = "square"
	DotDots    DotShape = "dots"
	DotRounded DotShape = "rounded"
)

type CornerShape string

const (
	CornerSquare       CornerShape = "square"
	CornerDot          CornerShape = "dot"
	CornerExtraRounded CornerShape = "extra-rounded"
)

type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatSVG  Format = "svg"
)

// ParseFormat accepts the export format names, with "jpg" as an alias.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "svg":
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("qr: unsupported format %q", s)
	}
}

const (
	DefaultSize      = 300
	DefaultMargin    = 2
	DefaultLogoScale = 0.2
	MinLogoScale     = 0.1
	MaxLogoScale     = 0.3
	MinSize          = 64
	MaxSize          = 2048
)

// Options describe one rendered code. Zero values take the defaults.
type Options struct {
	Data            string
	DotColor        string
	BackgroundColor string
	DotShape        DotShape
	CornerShape     CornerShape
	// CornerColor defaults to DotColor.
	CornerColor string
	// Logo is a data URI, see LoadLogo.
	Logo      string
	LogoScale float64
	Size      int
	Margin    int
}

func DefaultOptions(data string) Options {
	return Options{
		Data:            data,
		DotColor:        "#000000",
		BackgroundColor: "#ffffff",
		DotShape:        DotSquare,
		CornerShape:     CornerSquare,
		LogoScale:       DefaultLogoScale,
		Size:            DefaultSize,
		Margin:          DefaultMargin,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions(o.Data)
	if o.DotColor == "" {
		o.DotColor = def.DotColor
	}
	if o.BackgroundColor == "" {
		o.BackgroundColor = def.BackgroundColor
	}
	if o.DotShape == "" {
		o.DotShape = def.DotShape
	}
	if o.CornerShape == "" {
		o.CornerShape = def.CornerShape
	}
	if o.CornerColor == "" {
		o.CornerColor = o.DotColor
	}
	switch {
	case o.LogoScale == 0:
		o.LogoScale = def.LogoScale
	case o.LogoScale < MinLogoScale:
		o.LogoScale = MinLogoScale
	case o.LogoScale > MaxLogoScale:
		o.LogoScale = MaxLogoScale
	}
	if o.Size == 0 {
		o.Size = def.Size
	}
	if o.Margin < 0 {
		o.Margin = 0
	}
	return o
}

func (o Options) validate() error {
	if o.Data == "" {
		return fmt.Errorf("qr: data is empty")
	}
	switch o.DotShape {
	case DotSquare, DotDots, DotRounded:
	default:
		return fmt.Errorf("qr: unknown dot shape %q", o.DotShape)
	}
	switch o.CornerShape {
	case CornerSquare, CornerDot, CornerExtraRounded:
	default:
		return fmt.Errorf("qr: unknown corner shape %q", o.CornerShape)
	}
	if o.Size < MinSize || o.Size > MaxSize {
		return fmt.Errorf("qr: size %d outside [%d, %d]", o.Size, MinSize, MaxSize)
	}
	for _, c := range []string{o.DotColor, o.BackgroundColor, o.CornerColor} {
		if _, err := parseColor(c); err != nil {
			return err
		}
	}
	return nil
}

// parseColor reads #rgb, #rrggbb and #rrggbbaa.
func parseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("qr: bad color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("qr: bad color %q", s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
