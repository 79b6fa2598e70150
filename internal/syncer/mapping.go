package syncer

import (
	"sort"

	"github.com/xrclskn/biolink/internal/editor"
	"github.com/xrclskn/biolink/internal/logger"
	"github.com/xrclskn/biolink/internal/models"
	"github.com/xrclskn/biolink/internal/ordering"
)

// FromWire maps a fetched profile into the domain model. Malformed settings
// blobs fall back to defaults and are logged, never fatal.
func FromWire(resp models.ProfileResponse, log *logger.Logger) models.Profile {
	if log == nil {
		log = logger.Default().WithPrefix("syncer")
	}

	th, err := models.DecodeTheme(resp.Profile.Settings)
	if err != nil {
		log.Warn("profile %s: bad theme settings, using defaults: %v", resp.Profile.ID, err)
	}
	if err := th.Validate(); err != nil {
		log.Warn("profile %s: %v, using default", resp.Profile.ID, err)
		th = th.Sanitize()
	}

	p := models.Profile{
		ID:          resp.Profile.ID,
		Username:    resp.Profile.Username,
		DisplayName: resp.Profile.DisplayName,
		Title:       resp.Profile.Title,
		Bio:         resp.Profile.Bio,
		AvatarURL:   resp.Profile.AvatarURL,
		Theme:       th,
		Links:       make([]models.LinkItem, 0, len(resp.Links)),
		SocialLinks: make([]models.SocialLinkItem, 0, len(resp.SocialLinks)),
	}

	for _, wl := range resp.Links {
		var settings models.LinkSettings
		if err := wl.Settings.Decode(&settings); err != nil {
			log.Warn("link %s: bad settings, using defaults: %v", wl.ID, err)
			settings = models.LinkSettings{}
		}
		p.Links = append(p.Links, models.LinkItem{
			ID:          wl.ID,
			Label:       wl.Label,
			OriginalURL: wl.OriginalURL,
			ShortURL:    wl.ShortURL,
			Icon:        wl.Icon,
			Order:       wl.Order,
			IsActive:    wl.IsActive,
			Settings:    settings,
		})
	}

	for _, ws := range resp.SocialLinks {
		var settings models.WireSocialSettings
		if err := ws.Settings.Decode(&settings); err != nil {
			log.Warn("social link %s: bad settings, using defaults: %v", ws.ID, err)
			settings = models.WireSocialSettings{}
		}
		p.SocialLinks = append(p.SocialLinks, models.SocialLinkItem{
			ID:          ws.ID,
			Label:       ws.Label,
			OriginalURL: ws.OriginalURL,
			Icon:        ws.Icon,
			Order:       ws.Order,
			IsActive:    socialActive(ws, settings, log),
			Settings:    models.SocialSettings{Color: settings.Color},
		})
	}

	sort.SliceStable(p.Links, func(i, j int) bool { return p.Links[i].Order < p.Links[j].Order })
	sort.SliceStable(p.SocialLinks, func(i, j int) bool { return p.SocialLinks[i].Order < p.SocialLinks[j].Order })
	ordering.Renumber(p.Links, func(l *models.LinkItem, i int) { l.Order = i })
	ordering.Renumber(p.SocialLinks, func(s *models.SocialLinkItem, i int) { s.Order = i })
	return p
}

func socialActive(ws models.WireSocialLink, settings models.WireSocialSettings, log *logger.Logger) bool {
	active, conflict := models.ResolveSocialActive(ws.IsActive, settings.Visible)
	if conflict {
		log.Warn("social link %s: isActive=%t disagrees with settings.visible=%t, using isActive",
			ws.ID, *ws.IsActive, *settings.Visible)
	}
	return active
}

func toWireLink(l models.LinkItem) models.WireLink {
	return models.WireLink{
		ID:          l.ID,
		Label:       l.Label,
		OriginalURL: l.OriginalURL,
		Icon:        l.Icon,
		Order:       l.Order,
		IsActive:    l.IsActive,
		Settings:    models.MustSettingsBlob(l.Settings),
	}
}

// ToWireSocial writes settings.visible from IsActive so both keys agree.
func ToWireSocial(s models.SocialLinkItem) models.WireSocialLink {
	active := s.IsActive
	visible := s.Visible()
	return models.WireSocialLink{
		ID:          s.ID,
		Label:       s.Label,
		OriginalURL: s.OriginalURL,
		Icon:        s.Icon,
		Order:       s.Order,
		IsActive:    &active,
		Settings:    models.MustSettingsBlob(models.WireSocialSettings{Color: s.Settings.Color, Visible: &visible}),
	}
}

// BuildPayload derives the save request for a snapshot: the full theme and
// top level fields, only the changed links, every social link, and the
// deletion and order bookkeeping.
func BuildPayload(snap editor.Snapshot) models.SaveRequest {
	p := snap.Profile
	req := models.SaveRequest{
		Username:       p.Username,
		DisplayName:    p.DisplayName,
		Title:          p.Title,
		Bio:            p.Bio,
		AvatarURL:      p.AvatarURL,
		Settings:       models.EncodeTheme(p.Theme),
		Links:          []models.WireLink{},
		SocialLinks:    make([]models.WireSocialLink, 0, len(p.SocialLinks)),
		RemovedLinkIDs: snap.RemovedLinkIDs,
	}
	for _, l := range p.Links {
		if l.Changed {
			req.Links = append(req.Links, toWireLink(l))
		}
	}
	for _, s := range p.SocialLinks {
		req.SocialLinks = append(req.SocialLinks, ToWireSocial(s))
	}
	if snap.OrderDirty {
		req.LinkOrder = make([]string, 0, len(p.Links))
		for _, l := range p.Links {
			req.LinkOrder = append(req.LinkOrder, l.ID)
		}
	}
	return req
}
