package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/xrclskn/biolink/internal/errors"
	"github.com/xrclskn/biolink/internal/logger"
	"github.com/xrclskn/biolink/internal/qr"
)

var qrContentTypes = map[qr.Format]string{
	qr.FormatPNG:  "image/png",
	qr.FormatJPEG: "image/jpeg",
	qr.FormatSVG:  "image/svg+xml",
}

func parseQROptions(v url.Values) (qr.Options, qr.Format, error) {
	opts := qr.DefaultOptions(v.Get("data"))
	if opts.Data == "" {
		return opts, "", errors.NewValidationError("data", "cannot be empty")
	}

	format, err := qr.ParseFormat(v.Get("format"))
	if err != nil {
		return opts, "", errors.NewValidationError("format", err.Error())
	}

	if c := v.Get("dot"); c != "" {
		opts.DotColor = c
	}
	if c := v.Get("bg"); c != "" {
		opts.BackgroundColor = c
	}
	if c := v.Get("corner"); c != "" {
		opts.CornerColor = c
	}
	if sh := v.Get("dotShape"); sh != "" {
		opts.DotShape = qr.DotShape(sh)
	}
	if sh := v.Get("cornerShape"); sh != "" {
		opts.CornerShape = qr.CornerShape(sh)
	}
	if raw := v.Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return opts, "", errors.NewValidationError("size", "must be an integer")
		}
		opts.Size = n
	}
	if raw := v.Get("margin"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return opts, "", errors.NewValidationError("margin", "must be an integer")
		}
		opts.Margin = n
	}
	if raw := v.Get("logoScale"); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return opts, "", errors.NewValidationError("logoScale", "must be a number")
		}
		opts.LogoScale = f
	}
	return opts, format, nil
}

// handleQR renders a code from query parameters. POST additionally accepts a
// multipart "logo" file.
func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context()).WithPrefix("qr")

	values := r.URL.Query()
	var logo string
	if r.Method == http.MethodPost {
		limit := s.LogoMaxBytes
		if limit <= 0 {
			limit = qr.DefaultLogoMaxBytes
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit+(64<<10))
		if err := r.ParseMultipartForm(limit); err != nil {
			handleError(w, r, errors.NewLogoRejectedError("upload too large or malformed"))
			return
		}
		for k, vs := range r.MultipartForm.Value {
			for _, v := range vs {
				values.Add(k, v)
			}
		}
		file, _, err := r.FormFile("logo")
		if err == nil {
			defer file.Close()
			logo, err = qr.LoadLogo(file, limit)
			if err != nil {
				handleError(w, r, err)
				return
			}
		}
	}

	opts, format, err := parseQROptions(values)
	if err != nil {
		handleError(w, r, err)
		return
	}
	opts.Logo = logo

	designer, err := qr.NewDesigner(opts)
	if err != nil {
		handleError(w, r, errors.NewValidationError("qr", err.Error()))
		return
	}
	defer designer.Close()

	out, err := designer.Export(format)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Debug("rendered %s qr code: %d bytes", format, len(out))
	w.Header().Set("Content-Type", qrContentTypes[format])
	w.Header().Set("Content-Disposition", `inline; filename="qr.`+string(format)+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}
