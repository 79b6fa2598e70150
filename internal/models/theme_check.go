package models

import (
	"fmt"
	"net/url"
	"regexp"
)

var (
	hexColor   = regexp.MustCompile(`^#([0-9a-fA-F]{3,4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	namedColor = regexp.MustCompile(`^[a-zA-Z]{3,20}$`)
	funcColor  = regexp.MustCompile(`^(rgb|rgba|hsl|hsla)\([0-9.%, /]{1,40}\)$`)
	fontName   = regexp.MustCompile(`^[A-Za-z0-9 _-]{1,64}$`)
	imageRef   = regexp.MustCompile(`^[A-Za-z0-9._~:/?#\[\]@!$&+=%-]{1,2048}$`)
)

// ThemeFieldError reports a theme field whose value cannot be rendered safely.
type ThemeFieldError struct {
	Field string
	Value string
}

func (e *ThemeFieldError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

// IsColor reports whether v is a hex, named or rgb()/hsl() color.
func IsColor(v string) bool {
	return hexColor.MatchString(v) || namedColor.MatchString(v) || funcColor.MatchString(v)
}

func isFontFamily(v string) bool { return fontName.MatchString(v) }

// isImageRef accepts http(s) and relative references without quotes,
// parentheses, semicolons or whitespace.
func isImageRef(v string) bool {
	if !imageRef.MatchString(v) {
		return false
	}
	u, err := url.Parse(v)
	if err != nil {
		return false
	}
	return u.Scheme == "" || u.Scheme == "http" || u.Scheme == "https"
}

type themeField struct {
	name  string
	value *string
	ok    func(string) bool
	def   string
}

func (t *Theme) checkedFields() []themeField {
	d := DefaultTheme()
	return []themeField{
		{"backgroundColor", &t.BackgroundColor, IsColor, d.BackgroundColor},
		{"gradientStart", &t.GradientStart, IsColor, d.GradientStart},
		{"gradientEnd", &t.GradientEnd, IsColor, d.GradientEnd},
		{"backgroundOverlay", &t.BackgroundOverlay, IsColor, d.BackgroundOverlay},
		{"buttonColor", &t.ButtonColor, IsColor, d.ButtonColor},
		{"textColor", &t.TextColor, IsColor, d.TextColor},
		{"fontFamily", &t.FontFamily, isFontFamily, d.FontFamily},
		{"backgroundImage", &t.BackgroundImage, isImageRef, ""},
	}
}

// Validate checks every free-form theme string. Empty values are allowed and
// fall back to defaults.
func (t Theme) Validate() error {
	for _, f := range t.checkedFields() {
		if *f.value != "" && !f.ok(*f.value) {
			return &ThemeFieldError{Field: f.name, Value: *f.value}
		}
	}
	return nil
}

// Sanitize replaces values that fail Validate with their defaults. Used when
// rendering themes that were stored before validation existed.
func (t Theme) Sanitize() Theme {
	for _, f := range t.checkedFields() {
		if *f.value != "" && !f.ok(*f.value) {
			*f.value = f.def
		}
	}
	return t
}
