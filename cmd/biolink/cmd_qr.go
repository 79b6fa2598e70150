package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/xrclskn/biolink/internal/qr"
)

func newQRCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qr",
		Short: "QR codes for the published page",
	}

	var v struct {
		data, format, out, logo string
		dot, bg, corner         string
		dotShape, cornerShape   string
		size, margin            int
		logoScale               float64
	}

	export := &cobra.Command{
		Use:   "export",
		Short: "Render a QR code to a file",
		Long:  "Render a QR code to a file. Without --data the code points at the published page of the stored username.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := qr.ParseFormat(v.format)
			if err != nil {
				return err
			}

			data := v.data
			if data == "" {
				e, err := a.open(cmd.Context())
				if err != nil {
					return err
				}
				name := e.Store().Profile().Username
				e.Close()
				if name == "" {
					return fmt.Errorf("profile has no username yet, pass --data")
				}
				data = strings.TrimRight(a.apiURL, "/") + "/u/" + name
			}

			opts := qr.DefaultOptions(data)
			opts.DotColor = v.dot
			opts.BackgroundColor = v.bg
			opts.CornerColor = v.corner
			opts.DotShape = qr.DotShape(v.dotShape)
			opts.CornerShape = qr.CornerShape(v.cornerShape)
			opts.Size = v.size
			opts.Margin = v.margin
			opts.LogoScale = v.logoScale

			if v.logo != "" {
				f, err := os.Open(v.logo)
				if err != nil {
					return err
				}
				uri, err := qr.LoadLogo(f, a.cfg.LogoMaxBytes)
				f.Close()
				if err != nil {
					return err
				}
				opts.Logo = uri
			}

			designer, err := qr.NewDesigner(opts)
			if err != nil {
				return err
			}
			defer designer.Close()

			out, err := designer.Export(format)
			if err != nil {
				return err
			}

			path := v.out
			if path == "" {
				path = "qr." + string(format)
			}
			if err := os.WriteFile(path, out, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Wrote %s (%s) for %s\n", path, humanize.IBytes(uint64(len(out))), data)
			return nil
		},
	}

	fl := export.Flags()
	fl.StringVar(&v.data, "data", "", "Encoded text (default: published page URL)")
	fl.StringVar(&v.format, "format", "png", "png, jpeg or svg")
	fl.StringVarP(&v.out, "output", "o", "", "Output file (default: qr.<format>)")
	fl.StringVar(&v.logo, "logo", "", "Logo image placed in the center")
	fl.StringVar(&v.dot, "dot", "#000000", "Dot color")
	fl.StringVar(&v.bg, "bg", "#ffffff", "Background color")
	fl.StringVar(&v.corner, "corner", "", "Corner color (default: dot color)")
	fl.StringVar(&v.dotShape, "dot-shape", string(qr.DotSquare), "square, dots or rounded")
	fl.StringVar(&v.cornerShape, "corner-shape", string(qr.CornerSquare), "square, dot or extra-rounded")
	fl.IntVar(&v.size, "size", qr.DefaultSize, "Image size in pixels")
	fl.IntVar(&v.margin, "margin", qr.DefaultMargin, "Quiet zone in modules")
	fl.Float64Var(&v.logoScale, "logo-scale", qr.DefaultLogoScale, "Logo size relative to the code")

	cmd.AddCommand(export)
	return cmd
}
