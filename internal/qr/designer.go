package qr

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/skip2/go-qrcode"
	"github.com/xrclskn/biolink/internal/logger"
)

var ErrDisposed = errors.New("qr: designer disposed")

// Surface is the single render target owned by a Designer. Updates mutate it
// in place; Revision grows with every change.
type Surface struct {
	mu       sync.RWMutex
	opts     Options
	modules  [][]bool
	logo     image.Image
	rev      uint64
	encodes  uint64
	disposed bool
}

func (s *Surface) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}

func (s *Surface) Options() Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts
}

// Modules is the side length of the code in modules, without margin.
func (s *Surface) Modules() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.modules)
}

// Designer owns one QR surface for the lifetime of an editing screen.
type Designer struct {
	surface *Surface
	log     *logger.Logger
}

func NewDesigner(opts Options) (*Designer, error) {
	d := &Designer{
		surface: &Surface{},
		log:     logger.Default().WithPrefix("qr"),
	}
	if err := d.Update(opts); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Designer) Surface() (*Surface, error) {
	d.surface.mu.RLock()
	defer d.surface.mu.RUnlock()
	if d.surface.disposed {
		return nil, ErrDisposed
	}
	return d.surface, nil
}

// Update applies opts to the existing surface. The matrix is encoded again
// only when Data changes and the logo is decoded only when it changes.
func (d *Designer) Update(opts Options) error {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return err
	}

	s := d.surface
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return ErrDisposed
	}

	modules := s.modules
	if modules == nil || opts.Data != s.opts.Data {
		code, err := qrcode.New(opts.Data, qrcode.Highest)
		if err != nil {
			return fmt.Errorf("qr: encode: %w", err)
		}
		code.DisableBorder = true
		modules = code.Bitmap()
		s.encodes++
		d.log.Debug("encoded %d bytes into %dx%d modules", len(opts.Data), len(modules), len(modules))
	}

	logo := s.logo
	if opts.Logo != s.opts.Logo {
		logo = nil
		if opts.Logo != "" {
			img, err := decodeLogo(opts.Logo)
			if err != nil {
				return err
			}
			logo = img
		}
	}

	s.opts = opts
	s.modules = modules
	s.logo = logo
	s.rev++
	return nil
}

// SetLogo replaces only the logo of the current options.
func (d *Designer) SetLogo(dataURI string) error {
	d.surface.mu.RLock()
	opts := d.surface.opts
	disposed := d.surface.disposed
	d.surface.mu.RUnlock()
	if disposed {
		return ErrDisposed
	}
	opts.Logo = dataURI
	return d.Update(opts)
}

// Export renders the surface in the requested format.
func (d *Designer) Export(format Format) ([]byte, error) {
	s := d.surface
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.disposed {
		return nil, ErrDisposed
	}
	switch format {
	case FormatSVG:
		return renderSVG(s.opts, s.modules), nil
	case FormatPNG, FormatJPEG:
		return encodeRaster(renderRaster(s.opts, s.modules, s.logo), format)
	default:
		return nil, fmt.Errorf("qr: unsupported format %q", format)
	}
}

// Close releases the surface. Later calls return ErrDisposed.
func (d *Designer) Close() {
	s := d.surface
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposed = true
	s.modules = nil
	s.logo = nil
}
