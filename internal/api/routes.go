package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	if s.RequestTimeout > 0 {
		r.Use(timeoutMiddleware(s.RequestTimeout))
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Get("/u/{username}", s.handlePublicProfile)
	r.Get("/s/{code}", s.handleShortLink)
	r.Get("/api/qr", s.handleQR)
	r.Post("/api/qr", s.handleQR)

	r.Route("/api/profile", func(r chi.Router) {
		r.Use(requireUser)
		r.Post("/", s.handleSaveProfile)
		r.Put("/", s.handleSaveProfile)
		r.Get("/check-username/{candidate}", s.handleCheckUsername)
		r.Delete("/links/action/{id}", s.handleDeleteSocialLink)
		r.Get("/{userID}", s.handleGetProfile)
	})

	return r
}
