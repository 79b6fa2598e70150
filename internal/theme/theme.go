package theme

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xrclskn/biolink/internal/models"
)

// Overlay is composited above a background image.
type Overlay struct {
	Color   string  `json:"color"`
	Opacity float64 `json:"opacity"`
}

type Button struct {
	Radius string `json:"radius"`
	Color  string `json:"color"`
	Shadow string `json:"shadow"`
}

type Typography struct {
	Color      string `json:"color"`
	FontFamily string `json:"fontFamily"`
}

// Style is the renderable descriptor shared by the live preview and the
// published page.
type Style struct {
	Kind       models.BackgroundType `json:"kind"`
	Background string                `json:"background"`
	Overlay    *Overlay              `json:"overlay,omitempty"`
	Button     Button                `json:"button"`
	Typography Typography            `json:"typography"`
}

type options struct {
	angle    int
	hasAngle bool
}

// Option adjusts a single Compose call.
type Option func(*options)

// WithAngle overrides the stored gradient angle.
func WithAngle(deg int) Option {
	return func(o *options) {
		o.angle = deg
		o.hasAngle = true
	}
}

var shadowPresets = map[string]string{
	"none": "none",
	"sm":   "0 1px 2px rgba(0, 0, 0, 0.05)",
	"md":   "0 4px 6px rgba(0, 0, 0, 0.1)",
	"lg":   "0 10px 15px rgba(0, 0, 0, 0.15)",
	"hard": "4px 4px 0 rgba(0, 0, 0, 1)",
}

var buttonRadii = map[models.ButtonStyle]string{
	models.ButtonRounded: "12px",
	models.ButtonSquare:  "0",
	models.ButtonPill:    "9999px",
}

const fontFallback = "system-ui, -apple-system, sans-serif"

// Compose maps t to its style descriptor. It is deterministic and holds no
// state, so callers re-run it after every theme change. Fields that fail
// Theme.Validate are replaced by defaults so the result is always safe to
// inline as CSS.
func Compose(t models.Theme, opts ...Option) Style {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	t = t.WithDefaults().Sanitize()

	s := Style{
		Kind:   t.BackgroundType,
		Button: composeButton(t),
		Typography: Typography{
			Color:      t.TextColor,
			FontFamily: fontStack(t.FontFamily),
		},
	}

	switch t.BackgroundType {
	case models.BackgroundGradient:
		angle := t.GradientAngle
		if o.hasAngle {
			angle = o.angle
		}
		s.Background = fmt.Sprintf("linear-gradient(%ddeg, %s, %s)", angle, t.GradientStart, t.GradientEnd)
	case models.BackgroundImage:
		s.Background = fmt.Sprintf("url(%q)", t.BackgroundImage)
		s.Overlay = &Overlay{Color: t.BackgroundOverlay, Opacity: t.BackgroundOpacity}
	default:
		s.Background = t.BackgroundColor
	}
	return s
}

func composeButton(t models.Theme) Button {
	shadow, ok := shadowPresets[t.ButtonShadow]
	if !ok {
		shadow = shadowPresets["none"]
	}
	return Button{
		Radius: buttonRadii[t.ButtonStyle],
		Color:  t.ButtonColor,
		Shadow: shadow,
	}
}

func fontStack(family string) string {
	if strings.ContainsAny(family, " ,") && !strings.HasPrefix(family, `"`) {
		family = strconv.Quote(family)
	}
	return family + ", " + fontFallback
}

// ShadowPresets lists the accepted ButtonShadow names in sorted order.
func ShadowPresets() []string {
	out := make([]string, 0, len(shadowPresets))
	for k := range shadowPresets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Declarations renders the page-level CSS custom properties for s. Keys are
// emitted in a fixed order.
func (s Style) Declarations() []Declaration {
	decl := []Declaration{
		{"--page-background", s.Background},
		{"--text-color", s.Typography.Color},
		{"--font-family", s.Typography.FontFamily},
		{"--button-color", s.Button.Color},
		{"--button-radius", s.Button.Radius},
		{"--button-shadow", s.Button.Shadow},
	}
	if s.Overlay != nil {
		decl = append(decl,
			Declaration{"--overlay-color", s.Overlay.Color},
			Declaration{"--overlay-opacity", strconv.FormatFloat(s.Overlay.Opacity, 'f', -1, 64)},
		)
	}
	return decl
}

type Declaration struct {
	Property string
	Value    string
}

// CSS joins the declarations into a single style attribute body.
func (s Style) CSS() string {
	var sb strings.Builder
	for i, d := range s.Declarations() {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(d.Property)
		sb.WriteString(": ")
		sb.WriteString(d.Value)
		sb.WriteString(";")
	}
	return sb.String()
}
