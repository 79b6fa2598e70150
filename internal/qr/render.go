package qr

import (
	"bytes"
	"fmt"
	"html"
	"image"
	"image/jpeg"
	"image/png"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
)

const (
	finderSize  = 7
	dotRadius   = 0.45
	roundRadius = 0.3
	jpegQuality = 92
)

// box is an axis aligned rectangle in module units.
type box struct{ x0, y0, x1, y1 float64 }

func (b box) contains(x, y float64) bool {
	return x >= b.x0 && x < b.x1 && y >= b.y0 && y < b.y1
}

func finderOrigins(n int) [][2]int {
	return [][2]int{{0, 0}, {n - finderSize, 0}, {0, n - finderSize}}
}

// finderLocal maps a point to coordinates inside a finder pattern.
func finderLocal(x, y float64, n int) (float64, float64, bool) {
	for _, o := range finderOrigins(n) {
		fx, fy := x-float64(o[0]), y-float64(o[1])
		if fx >= 0 && fx < finderSize && fy >= 0 && fy < finderSize {
			return fx, fy, true
		}
	}
	return 0, 0, false
}

func inRoundedRect(x, y float64, b box, r float64) bool {
	if !b.contains(x, y) {
		return false
	}
	cx := math.Max(b.x0+r, math.Min(x, b.x1-r))
	cy := math.Max(b.y0+r, math.Min(y, b.y1-r))
	return (x-cx)*(x-cx)+(y-cy)*(y-cy) <= r*r
}

func inShapedBox(shape CornerShape, x, y float64, b box) bool {
	w := b.x1 - b.x0
	switch shape {
	case CornerDot:
		cx, cy, r := b.x0+w/2, b.y0+w/2, w/2
		return (x-cx)*(x-cx)+(y-cy)*(y-cy) <= r*r
	case CornerExtraRounded:
		return inRoundedRect(x, y, b, 0.35*w)
	default:
		return b.contains(x, y)
	}
}

func finderHit(shape CornerShape, x, y float64) bool {
	ring := inShapedBox(shape, x, y, box{0, 0, 7, 7}) && !inShapedBox(shape, x, y, box{1, 1, 6, 6})
	return ring || inShapedBox(shape, x, y, box{2, 2, 5, 5})
}

func dotHit(shape DotShape, u, v float64) bool {
	switch shape {
	case DotDots:
		return (u-0.5)*(u-0.5)+(v-0.5)*(v-0.5) <= dotRadius*dotRadius
	case DotRounded:
		return inRoundedRect(u, v, box{0, 0, 1, 1}, roundRadius)
	default:
		return true
	}
}

// logoBox is the cleared area behind the logo, in module units.
func logoBox(opts Options, n int) box {
	side := opts.LogoScale * float64(n)
	pad := 0.5
	c := float64(n) / 2
	return box{c - side/2 - pad, c - side/2 - pad, c + side/2 + pad, c + side/2 + pad}
}

func renderRaster(opts Options, modules [][]bool, logo image.Image) *image.NRGBA {
	size := opts.Size
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	bg, _ := parseColor(opts.BackgroundColor)
	dot, _ := parseColor(opts.DotColor)
	corner, _ := parseColor(opts.CornerColor)

	n := len(modules)
	margin := float64(opts.Margin)
	unit := float64(size) / (float64(n) + 2*margin)
	hole := logoBox(opts, n)

	for py := 0; py < size; py++ {
		y := (float64(py)+0.5)/unit - margin
		for px := 0; px < size; px++ {
			x := (float64(px)+0.5)/unit - margin
			c := bg
			switch fx, fy, inFinder := finderLocal(x, y, n); {
			case logo != nil && hole.contains(x, y):
			case inFinder:
				if finderHit(opts.CornerShape, fx, fy) {
					c = corner
				}
			case x >= 0 && y >= 0 && x < float64(n) && y < float64(n):
				mx, my := int(x), int(y)
				if modules[my][mx] && dotHit(opts.DotShape, x-float64(mx), y-float64(my)) {
					c = dot
				}
			}
			img.SetNRGBA(px, py, c)
		}
	}

	if logo != nil {
		drawLogo(img, logo, opts, n, unit)
	}
	return img
}

func drawLogo(dst *image.NRGBA, logo image.Image, opts Options, n int, unit float64) {
	side := opts.LogoScale * float64(n) * unit
	lb := logo.Bounds()
	w, h := side, side
	if lb.Dx() > lb.Dy() {
		h = side * float64(lb.Dy()) / float64(lb.Dx())
	} else if lb.Dy() > lb.Dx() {
		w = side * float64(lb.Dx()) / float64(lb.Dy())
	}
	center := float64(opts.Size) / 2
	dr := image.Rect(
		int(math.Round(center-w/2)), int(math.Round(center-h/2)),
		int(math.Round(center+w/2)), int(math.Round(center+h/2)),
	)
	draw.CatmullRom.Scale(dst, dr, logo, lb, draw.Over, nil)
}

func encodeRaster(img *image.NRGBA, format Format) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if format == FormatJPEG {
		// jpeg has no alpha; flatten onto the background first.
		flat := image.NewRGBA(img.Bounds())
		bg := img.At(0, 0)
		draw.Draw(flat, flat.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
		draw.Draw(flat, flat.Bounds(), img, image.Point{}, draw.Over)
		err = jpeg.Encode(&buf, flat, &jpeg.Options{Quality: jpegQuality})
	} else {
		err = png.Encode(&buf, img)
	}
	if err != nil {
		return nil, fmt.Errorf("qr: encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func hexColor(s string) string {
	c, _ := parseColor(s)
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// renderSVG writes modules in row major order so equal options always give
// equal bytes.
func renderSVG(opts Options, modules [][]bool) []byte {
	n := len(modules)
	total := float64(n + 2*opts.Margin)
	hole := logoBox(opts, n)
	hasLogo := opts.Logo != ""
	dot, corner, bg := hexColor(opts.DotColor), hexColor(opts.CornerColor), hexColor(opts.BackgroundColor)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %s %s">`,
		opts.Size, opts.Size, num(total), num(total))
	fmt.Fprintf(&b, `<rect width="%s" height="%s" fill="%s"/>`, num(total), num(total), bg)
	fmt.Fprintf(&b, `<g transform="translate(%d %d)">`, opts.Margin, opts.Margin)

	var path strings.Builder
	if opts.DotShape == DotSquare {
		fmt.Fprintf(&b, `<path fill="%s" d="`, dot)
	} else {
		fmt.Fprintf(&b, `<g fill="%s">`, dot)
	}
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if !modules[y][x] {
				continue
			}
			cx, cy := float64(x)+0.5, float64(y)+0.5
			if _, _, inFinder := finderLocal(cx, cy, n); inFinder {
				continue
			}
			if hasLogo && hole.contains(cx, cy) {
				continue
			}
			switch opts.DotShape {
			case DotDots:
				fmt.Fprintf(&path, `<circle cx="%s" cy="%s" r="%s"/>`, num(cx), num(cy), num(dotRadius))
			case DotRounded:
				fmt.Fprintf(&path, `<rect x="%d" y="%d" width="1" height="1" rx="%s"/>`, x, y, num(roundRadius))
			default:
				fmt.Fprintf(&path, "M%d %dh1v1h-1z", x, y)
			}
		}
	}
	b.WriteString(path.String())
	if opts.DotShape == DotSquare {
		b.WriteString(`"/>`)
	} else {
		b.WriteString(`</g>`)
	}

	for _, o := range finderOrigins(n) {
		ox, oy := float64(o[0]), float64(o[1])
		switch opts.CornerShape {
		case CornerDot:
			fmt.Fprintf(&b, `<circle cx="%s" cy="%s" r="3" fill="none" stroke="%s" stroke-width="1"/>`, num(ox+3.5), num(oy+3.5), corner)
			fmt.Fprintf(&b, `<circle cx="%s" cy="%s" r="1.5" fill="%s"/>`, num(ox+3.5), num(oy+3.5), corner)
		case CornerExtraRounded:
			fmt.Fprintf(&b, `<rect x="%s" y="%s" width="6" height="6" rx="2.1" fill="none" stroke="%s" stroke-width="1"/>`, num(ox+0.5), num(oy+0.5), corner)
			fmt.Fprintf(&b, `<rect x="%s" y="%s" width="3" height="3" rx="1.05" fill="%s"/>`, num(ox+2), num(oy+2), corner)
		default:
			fmt.Fprintf(&b, `<path fill="%s" fill-rule="evenodd" d="M%s %sh7v7h-7zM%s %sh5v5h-5z"/>`, corner, num(ox), num(oy), num(ox+1), num(oy+1))
			fmt.Fprintf(&b, `<rect x="%s" y="%s" width="3" height="3" fill="%s"/>`, num(ox+2), num(oy+2), corner)
		}
	}

	if hasLogo {
		side := opts.LogoScale * float64(n)
		c := float64(n) / 2
		fmt.Fprintf(&b, `<image x="%s" y="%s" width="%s" height="%s" preserveAspectRatio="xMidYMid meet" href="%s"/>`,
			num(c-side/2), num(c-side/2), num(side), num(side), html.EscapeString(opts.Logo))
	}

	b.WriteString(`</g></svg>`)
	return []byte(b.String())
}
