package api

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/xrclskn/biolink/internal/theme"
)

// handlePublicProfile renders the published page of a username.
func (s *Server) handlePublicProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.ProfileService.GetPublished(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	style := theme.Compose(p.Theme)
	s.render(w, r, "pages/profile.html", pageData{
		"profile": p,
		"style":   style,
		"css":     template.CSS(style.CSS()),
	})
}

func (s *Server) handleShortLink(w http.ResponseWriter, r *http.Request) {
	target, err := s.ProfileService.ResolveShortCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
