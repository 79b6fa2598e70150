package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xrclskn/biolink/internal/errors"
	"github.com/xrclskn/biolink/internal/logger"
	"github.com/xrclskn/biolink/internal/models"
	"github.com/xrclskn/biolink/internal/repository"
	"github.com/xrclskn/biolink/internal/username"
)

// ProfileService handles profile-related business logic
type ProfileService interface {
	GetProfile(ctx context.Context, userID string) (*models.ProfileResponse, error)
	// GetPublished returns the public view of a profile: active links only.
	GetPublished(ctx context.Context, name string) (*models.Profile, error)
	SaveProfile(ctx context.Context, userID string, req models.SaveRequest) (*models.SaveResponse, error)
	DeleteSocialLink(ctx context.Context, userID, id string) error
	CheckUsername(ctx context.Context, userID, candidate string) (bool, error)
	ResolveShortCode(ctx context.Context, code string) (string, error)
}

type profileService struct {
	profileRepo  repository.ProfileRepository
	shortURLBase string
	now          func() time.Time
}

// NewProfileService creates a new ProfileService. Short URLs are built as
// shortURLBase + "/" + code.
func NewProfileService(profileRepo repository.ProfileRepository, shortURLBase string) ProfileService {
	return &profileService{
		profileRepo:  profileRepo,
		shortURLBase: strings.TrimRight(shortURLBase, "/"),
		now:          time.Now,
	}
}

func (s *profileService) GetProfile(ctx context.Context, userID string) (*models.ProfileResponse, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_service")
	log.Debug("getting profile: user_id=%s", userID)

	p, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		log.Error("failed to get profile: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if p == nil {
		return nil, errors.NewNotFoundError("profile", userID)
	}

	resp := s.toResponse(*p)
	return &resp, nil
}

func (s *profileService) GetPublished(ctx context.Context, name string) (*models.Profile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_service")

	name = username.Normalize(name)
	if username.Validate(name) != nil {
		return nil, errors.NewNotFoundError("profile", name)
	}

	p, err := s.profileRepo.GetByUsername(ctx, name)
	if err != nil {
		log.Error("failed to get published profile: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if p == nil {
		return nil, errors.NewNotFoundError("profile", name)
	}

	out := models.Profile{
		ID:          p.ID,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		Title:       p.Title,
		Bio:         p.Bio,
		AvatarURL:   p.AvatarURL,
		Theme:       p.Theme,
		Links:       []models.LinkItem{},
		SocialLinks: []models.SocialLinkItem{},
	}
	for _, l := range p.Links {
		if !l.IsActive {
			continue
		}
		out.Links = append(out.Links, models.LinkItem{
			ID:          l.ID,
			Label:       l.Label,
			OriginalURL: l.OriginalURL,
			ShortURL:    s.shortURL(l.ShortCode),
			Icon:        l.Icon,
			Order:       len(out.Links),
			IsActive:    true,
			Settings:    l.Settings,
		})
	}
	for _, sl := range p.SocialLinks {
		if !sl.IsActive {
			continue
		}
		out.SocialLinks = append(out.SocialLinks, models.SocialLinkItem{
			ID:          sl.ID,
			Label:       sl.Label,
			OriginalURL: sl.OriginalURL,
			Icon:        sl.Icon,
			Order:       len(out.SocialLinks),
			IsActive:    true,
			Settings:    sl.Settings,
		})
	}
	return &out, nil
}

func (s *profileService) SaveProfile(ctx context.Context, userID string, req models.SaveRequest) (*models.SaveResponse, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_service")
	log.Debug("saving profile: user_id=%s links=%d social=%d removed=%d",
		userID, len(req.Links), len(req.SocialLinks), len(req.RemovedLinkIDs))

	name := username.Normalize(req.Username)
	if name != "" {
		if err := username.Validate(name); err != nil {
			return nil, errors.NewValidationError("username", err.Error())
		}
		owner, err := s.profileRepo.UsernameOwner(ctx, name)
		if err != nil {
			log.Error("failed to check username owner: %v", err)
			return nil, errors.NewInternalError(err)
		}
		if owner != "" && owner != userID {
			log.Info("username %s already owned by another user", name)
			return nil, errors.NewUsernameTakenError(name)
		}
	}

	theme, err := models.DecodeTheme(req.Settings)
	if err != nil {
		return nil, errors.NewValidationError("settings", err.Error())
	}
	if err := theme.Validate(); err != nil {
		if fe, ok := err.(*models.ThemeFieldError); ok {
			return nil, errors.NewValidationError("settings.theme."+fe.Field, "unsupported value")
		}
		return nil, errors.NewValidationError("settings.theme", err.Error())
	}

	existing, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		log.Error("failed to get profile: %v", err)
		return nil, errors.NewInternalError(err)
	}

	ch := repository.ProfileChanges{Create: existing == nil}
	if existing != nil {
		ch.Profile = *existing
	} else {
		ch.Profile = models.StoredProfile{ID: uuid.NewString(), UserID: userID}
	}
	ch.Profile.Username = name
	ch.Profile.DisplayName = req.DisplayName
	ch.Profile.Title = req.Title
	ch.Profile.Bio = req.Bio
	ch.Profile.AvatarURL = req.AvatarURL
	ch.Profile.Theme = theme

	ids := map[string]string{}
	known := map[string]models.StoredLink{}
	if existing != nil {
		for _, l := range existing.Links {
			known[l.ID] = l
		}
	}

	removed := map[string]bool{}
	for _, id := range req.RemovedLinkIDs {
		if _, ok := known[id]; ok && !removed[id] {
			removed[id] = true
			ch.DeleteLinkIDs = append(ch.DeleteLinkIDs, id)
		}
	}

	for _, wl := range req.Links {
		var settings models.LinkSettings
		if err := wl.Settings.Decode(&settings); err != nil {
			return nil, errors.NewValidationError("links.settings", err.Error())
		}
		if removed[wl.ID] {
			continue
		}
		stored := models.StoredLink{
			ID:          wl.ID,
			ProfileID:   ch.Profile.ID,
			Label:       wl.Label,
			OriginalURL: wl.OriginalURL,
			Icon:        wl.Icon,
			Position:    wl.Order,
			IsActive:    wl.IsActive,
			Settings:    settings,
		}
		if prev, ok := known[wl.ID]; ok {
			stored.ShortCode = prev.ShortCode
		} else {
			stored.ID = uuid.NewString()
			stored.ShortCode = newShortCode()
			ids[wl.ID] = stored.ID
		}
		ch.Links = append(ch.Links, stored)
	}

	if req.LinkOrder != nil {
		ch.LinkOrder = make([]string, 0, len(req.LinkOrder))
		for _, id := range req.LinkOrder {
			if assigned, ok := ids[id]; ok {
				id = assigned
			} else if _, ok := known[id]; !ok || removed[id] {
				log.Warn("link order names unknown link %s, skipping", id)
				continue
			}
			ch.LinkOrder = append(ch.LinkOrder, id)
		}
	}

	knownSocial := map[string]bool{}
	if existing != nil {
		for _, sl := range existing.SocialLinks {
			knownSocial[sl.ID] = true
		}
	}
	ch.SocialLinks = make([]models.StoredSocialLink, 0, len(req.SocialLinks))
	for i, ws := range req.SocialLinks {
		var settings models.WireSocialSettings
		if err := ws.Settings.Decode(&settings); err != nil {
			return nil, errors.NewValidationError("socialLinks.settings", err.Error())
		}
		id := ws.ID
		if !knownSocial[id] {
			id = uuid.NewString()
			ids[ws.ID] = id
		}
		active, _ := models.ResolveSocialActive(ws.IsActive, settings.Visible)
		ch.SocialLinks = append(ch.SocialLinks, models.StoredSocialLink{
			ID:          id,
			ProfileID:   ch.Profile.ID,
			Label:       ws.Label,
			OriginalURL: ws.OriginalURL,
			Icon:        ws.Icon,
			Position:    i,
			IsActive:    active,
			Settings:    models.SocialSettings{Color: settings.Color},
		})
	}

	if err := s.profileRepo.Save(ctx, ch); err != nil {
		log.Error("failed to save profile: %v", err)
		return nil, errors.NewInternalError(err)
	}

	saved, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		log.Error("failed to reload profile: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if saved == nil {
		return nil, errors.NewNotFoundError("profile", userID)
	}

	log.Info("profile %s saved: assigned=%d", saved.ID, len(ids))
	return &models.SaveResponse{
		Profile: s.toResponse(*saved),
		IDs:     ids,
		SavedAt: s.now().UTC(),
	}, nil
}

func (s *profileService) DeleteSocialLink(ctx context.Context, userID, id string) error {
	log := logger.FromContext(ctx).WithPrefix("profile_service")
	log.Debug("deleting social link: user_id=%s id=%s", userID, id)

	p, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		log.Error("failed to get profile: %v", err)
		return errors.NewInternalError(err)
	}
	if p == nil {
		return errors.NewNotFoundError("social link", id)
	}

	ok, err := s.profileRepo.DeleteSocialLink(ctx, p.ID, id)
	if err != nil {
		log.Error("failed to delete social link: %v", err)
		return errors.NewInternalError(err)
	}
	if !ok {
		return errors.NewNotFoundError("social link", id)
	}
	return nil
}

// CheckUsername reports whether candidate is free for userID. A name the
// user already holds counts as available; invalid names never are.
func (s *profileService) CheckUsername(ctx context.Context, userID, candidate string) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_service")

	name := username.Normalize(candidate)
	if username.Validate(name) != nil {
		return false, nil
	}

	owner, err := s.profileRepo.UsernameOwner(ctx, name)
	if err != nil {
		log.Error("failed to check username: %v", err)
		return false, errors.NewInternalError(err)
	}
	return owner == "" || owner == userID, nil
}

func (s *profileService) ResolveShortCode(ctx context.Context, code string) (string, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_service")

	l, err := s.profileRepo.LinkByShortCode(ctx, code)
	if err != nil {
		log.Error("failed to resolve short code: %v", err)
		return "", errors.NewInternalError(err)
	}
	if l == nil || !l.IsActive || l.OriginalURL == "" {
		return "", errors.NewNotFoundError("short link", code)
	}
	return l.OriginalURL, nil
}

func (s *profileService) shortURL(code string) string {
	if code == "" {
		return ""
	}
	return s.shortURLBase + "/" + code
}

func (s *profileService) toResponse(p models.StoredProfile) models.ProfileResponse {
	resp := models.ProfileResponse{
		Profile: models.WireProfile{
			ID:          p.ID,
			Username:    p.Username,
			DisplayName: p.DisplayName,
			Title:       p.Title,
			Bio:         p.Bio,
			AvatarURL:   p.AvatarURL,
			Settings:    models.EncodeTheme(p.Theme),
		},
		Links:       make([]models.WireLink, 0, len(p.Links)),
		SocialLinks: make([]models.WireSocialLink, 0, len(p.SocialLinks)),
	}
	for _, l := range p.Links {
		resp.Links = append(resp.Links, models.WireLink{
			ID:          l.ID,
			Label:       l.Label,
			OriginalURL: l.OriginalURL,
			ShortURL:    s.shortURL(l.ShortCode),
			Icon:        l.Icon,
			Order:       l.Position,
			IsActive:    l.IsActive,
			Settings:    models.MustSettingsBlob(l.Settings),
		})
	}
	for _, sl := range p.SocialLinks {
		active := sl.IsActive
		resp.SocialLinks = append(resp.SocialLinks, models.WireSocialLink{
			ID:          sl.ID,
			Label:       sl.Label,
			OriginalURL: sl.OriginalURL,
			Icon:        sl.Icon,
			Order:       sl.Position,
			IsActive:    &active,
			Settings:    models.MustSettingsBlob(models.WireSocialSettings{Color: sl.Settings.Color, Visible: &active}),
		})
	}
	return resp
}

func newShortCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
