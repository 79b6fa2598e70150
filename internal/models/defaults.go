package models

const (
	DefaultGradientAngle = 135
	DefaultFontFamily    = "Inter"
)

// DefaultTheme returns the theme a brand-new profile starts with.
func DefaultTheme() Theme {
	return Theme{
		BackgroundType:    BackgroundSolid,
		BackgroundColor:   "#ffffff",
		GradientStart:     "#ffffff",
		GradientEnd:       "#e5e7eb",
		GradientAngle:     DefaultGradientAngle,
		BackgroundOpacity: 1,
		BackgroundOverlay: "#000000",
		ButtonStyle:       ButtonRounded,
		ButtonColor:       "#111827",
		ButtonShadow:      "none",
		TextColor:         "#000000",
		FontFamily:        DefaultFontFamily,
	}
}

// DefaultProfile returns an unsaved empty profile.
func DefaultProfile() Profile {
	return Profile{
		Theme:       DefaultTheme(),
		Links:       []LinkItem{},
		SocialLinks: []SocialLinkItem{},
	}
}

// WithDefaults fills empty string fields and unknown enum values from
// DefaultTheme. Numeric fields are only clamped.
func (t Theme) WithDefaults() Theme {
	d := DefaultTheme()
	switch t.BackgroundType {
	case BackgroundSolid, BackgroundGradient, BackgroundImage:
	default:
		t.BackgroundType = d.BackgroundType
	}
	if t.BackgroundColor == "" {
		t.BackgroundColor = d.BackgroundColor
	}
	if t.GradientStart == "" {
		t.GradientStart = d.GradientStart
	}
	if t.GradientEnd == "" {
		t.GradientEnd = d.GradientEnd
	}
	if t.BackgroundOverlay == "" {
		t.BackgroundOverlay = d.BackgroundOverlay
	}
	t.BackgroundOpacity = ClampOpacity(t.BackgroundOpacity)
	switch t.ButtonStyle {
	case ButtonRounded, ButtonSquare, ButtonPill:
	default:
		t.ButtonStyle = d.ButtonStyle
	}
	if t.ButtonColor == "" {
		t.ButtonColor = d.ButtonColor
	}
	if t.ButtonShadow == "" {
		t.ButtonShadow = d.ButtonShadow
	}
	if t.TextColor == "" {
		t.TextColor = d.TextColor
	}
	if t.FontFamily == "" {
		t.FontFamily = d.FontFamily
	}
	return t
}

// ClampOpacity restricts v to [0,1].
func ClampOpacity(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
