package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xrclskn/biolink/internal/errors"
	"github.com/xrclskn/biolink/internal/logger"
	"github.com/xrclskn/biolink/internal/models"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	userID := chi.URLParam(r, "userID")
	if userID != userFromContext(r.Context()) {
		log.Warn("user %s asked for profile of %s", userFromContext(r.Context()), userID)
		handleError(w, r, errors.NewUnauthorizedError("cannot read another user's profile"))
		return
	}

	resp, err := s.ProfileService.GetProfile(r.Context(), userID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var req models.SaveRequest
	if err := decodeBody(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	resp, err := s.ProfileService.SaveProfile(r.Context(), userFromContext(r.Context()), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleDeleteSocialLink(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.ProfileService.DeleteSocialLink(r.Context(), userFromContext(r.Context()), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCheckUsername(w http.ResponseWriter, r *http.Request) {
	candidate := chi.URLParam(r, "candidate")
	ok, err := s.ProfileService.CheckUsername(r.Context(), userFromContext(r.Context()), candidate)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, models.UsernameAvailability{Available: ok})
}
