package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xrclskn/biolink/internal/editor"
	"github.com/xrclskn/biolink/internal/models"
	"github.com/xrclskn/biolink/internal/theme"
)

func newThemeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Change page appearance",
	}

	var v struct {
		bgType, bgColor, gradStart, gradEnd, bgImage, overlay string
		buttonStyle, buttonColor, buttonShadow, text, font    string
		angle                                                 int
		opacity                                               float64
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Update theme fields",
		Long: "Update theme fields. Fields of inactive background types are kept, so switching back restores them.\n" +
			"Shadows: " + strings.Join(theme.ShadowPresets(), ", "),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var p editor.ThemePatch
			f := cmd.Flags()
			str := func(name string, dst **string, val *string) {
				if f.Changed(name) {
					*dst = val
				}
			}
			if f.Changed("background-type") {
				bt := models.BackgroundType(v.bgType)
				p.BackgroundType = &bt
			}
			if f.Changed("button-style") {
				bs := models.ButtonStyle(v.buttonStyle)
				p.ButtonStyle = &bs
			}
			if f.Changed("gradient-angle") {
				p.GradientAngle = &v.angle
			}
			if f.Changed("opacity") {
				p.BackgroundOpacity = &v.opacity
			}
			str("background-color", &p.BackgroundColor, &v.bgColor)
			str("gradient-start", &p.GradientStart, &v.gradStart)
			str("gradient-end", &p.GradientEnd, &v.gradEnd)
			str("background-image", &p.BackgroundImage, &v.bgImage)
			str("overlay", &p.BackgroundOverlay, &v.overlay)
			str("button-color", &p.ButtonColor, &v.buttonColor)
			str("button-shadow", &p.ButtonShadow, &v.buttonShadow)
			str("text-color", &p.TextColor, &v.text)
			str("font", &p.FontFamily, &v.font)

			return a.edit(cmd.Context(), func(st *editor.Store) error {
				if err := st.UpdateTheme(p); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Preview: %s\n", st.Style().CSS())
				return nil
			})
		},
	}

	fl := set.Flags()
	fl.StringVar(&v.bgType, "background-type", "", "solid, gradient or image")
	fl.StringVar(&v.bgColor, "background-color", "", "Solid background color")
	fl.StringVar(&v.gradStart, "gradient-start", "", "Gradient start color")
	fl.StringVar(&v.gradEnd, "gradient-end", "", "Gradient end color")
	fl.IntVar(&v.angle, "gradient-angle", models.DefaultGradientAngle, "Gradient angle in degrees")
	fl.StringVar(&v.bgImage, "background-image", "", "Background image URL")
	fl.Float64Var(&v.opacity, "opacity", 1, "Overlay opacity, clamped to [0,1]")
	fl.StringVar(&v.overlay, "overlay", "", "Overlay color")
	fl.StringVar(&v.buttonStyle, "button-style", "", "rounded, square or pill")
	fl.StringVar(&v.buttonColor, "button-color", "", "Button color")
	fl.StringVar(&v.buttonShadow, "button-shadow", "", "Button shadow preset")
	fl.StringVar(&v.text, "text-color", "", "Text color")
	fl.StringVar(&v.font, "font", "", "Font family")

	cmd.AddCommand(set)
	return cmd
}
