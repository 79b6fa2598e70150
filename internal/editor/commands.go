package editor

import (
	"fmt"

	"github.com/xrclskn/biolink/internal/models"
	"github.com/xrclskn/biolink/internal/ordering"
)

// Command is one mutation of the profile aggregate. The set is closed; Store
// applies commands one at a time under its lock.
type Command interface {
	apply(s *Store) error
	Name() string
}

type ProfilePatch struct {
	Username    *string
	DisplayName *string
	Title       *string
	Bio         *string
	AvatarURL   *string
}

type ThemePatch struct {
	BackgroundType    *models.BackgroundType
	BackgroundColor   *string
	GradientStart     *string
	GradientEnd       *string
	GradientAngle     *int
	BackgroundImage   *string
	BackgroundOpacity *float64
	BackgroundOverlay *string
	ButtonStyle       *models.ButtonStyle
	ButtonColor       *string
	ButtonShadow      *string
	TextColor         *string
	FontFamily        *string
}

// LinkPatch shallow-merges into a link; Settings replaces the whole object.
type LinkPatch struct {
	Label       *string
	OriginalURL *string
	Icon        *string
	IsActive    *bool
	Settings    *models.LinkSettings
}

type SocialPatch struct {
	Label       *string
	OriginalURL *string
	Icon        *string
	Color       *string
}

type SetProfile struct{ Patch ProfilePatch }

type SetTheme struct{ Patch ThemePatch }

type AddLink struct{ Template models.LinkItem }

type RemoveLink struct{ ID string }

type UpdateLink struct {
	ID    string
	Patch LinkPatch
}

type ReorderLinks struct{ From, To int }

type ReorderSocialLinks struct{ From, To int }

type ToggleVisibility struct{ ID string }

type AddSocialLink struct{ Template models.SocialLinkItem }

type UpdateSocialLink struct {
	ID    string
	Patch SocialPatch
}

func (SetProfile) Name() string         { return "set_profile" }
func (SetTheme) Name() string           { return "set_theme" }
func (AddLink) Name() string            { return "add_link" }
func (RemoveLink) Name() string         { return "remove_link" }
func (UpdateLink) Name() string         { return "update_link" }
func (ReorderLinks) Name() string       { return "reorder_links" }
func (ReorderSocialLinks) Name() string { return "reorder_social_links" }
func (ToggleVisibility) Name() string   { return "toggle_visibility" }
func (AddSocialLink) Name() string      { return "add_social_link" }
func (UpdateSocialLink) Name() string   { return "update_social_link" }

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func (c SetProfile) apply(s *Store) error {
	p := &s.profile
	set(&p.Username, c.Patch.Username)
	set(&p.DisplayName, c.Patch.DisplayName)
	set(&p.Title, c.Patch.Title)
	set(&p.Bio, c.Patch.Bio)
	set(&p.AvatarURL, c.Patch.AvatarURL)
	return nil
}

func (c SetTheme) apply(s *Store) error {
	next := s.profile.Theme
	t := &next
	if bt := c.Patch.BackgroundType; bt != nil {
		switch *bt {
		case models.BackgroundSolid, models.BackgroundGradient, models.BackgroundImage:
		default:
			return fmt.Errorf("unknown background type %q", *bt)
		}
	}
	if bs := c.Patch.ButtonStyle; bs != nil {
		switch *bs {
		case models.ButtonRounded, models.ButtonSquare, models.ButtonPill:
		default:
			return fmt.Errorf("unknown button style %q", *bs)
		}
	}
	set(&t.BackgroundType, c.Patch.BackgroundType)
	set(&t.BackgroundColor, c.Patch.BackgroundColor)
	set(&t.GradientStart, c.Patch.GradientStart)
	set(&t.GradientEnd, c.Patch.GradientEnd)
	set(&t.GradientAngle, c.Patch.GradientAngle)
	set(&t.BackgroundImage, c.Patch.BackgroundImage)
	if c.Patch.BackgroundOpacity != nil {
		t.BackgroundOpacity = models.ClampOpacity(*c.Patch.BackgroundOpacity)
	}
	set(&t.BackgroundOverlay, c.Patch.BackgroundOverlay)
	set(&t.ButtonStyle, c.Patch.ButtonStyle)
	set(&t.ButtonColor, c.Patch.ButtonColor)
	set(&t.ButtonShadow, c.Patch.ButtonShadow)
	set(&t.TextColor, c.Patch.TextColor)
	set(&t.FontFamily, c.Patch.FontFamily)
	if err := next.Validate(); err != nil {
		return err
	}
	s.profile.Theme = next
	return nil
}

func (c AddLink) apply(s *Store) error {
	link := c.Template
	if !IsPlaceholderID(link.ID) || s.linkIndex(link.ID) >= 0 {
		link.ID = NewPlaceholderID()
	}
	link.ShortURL = ""
	link.Order = len(s.profile.Links)
	link.IsNew = true
	link.Changed = true
	s.profile.Links = append(s.profile.Links, link)
	s.touch(link.ID)
	return nil
}

func (c RemoveLink) apply(s *Store) error {
	i := s.linkIndex(c.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrLinkNotFound, c.ID)
	}
	removed := s.profile.Links[i]
	links := make([]models.LinkItem, 0, len(s.profile.Links)-1)
	links = append(links, s.profile.Links[:i]...)
	links = append(links, s.profile.Links[i+1:]...)
	ordering.Renumber(links, setLinkOrder)
	s.profile.Links = links

	delete(s.revs, removed.ID)
	if !removed.IsNew {
		s.removed[removed.ID] = struct{}{}
	}
	if i < len(links) {
		s.orderRev++
	}
	return nil
}

func (c UpdateLink) apply(s *Store) error {
	i := s.linkIndex(c.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrLinkNotFound, c.ID)
	}
	l := &s.profile.Links[i]
	set(&l.Label, c.Patch.Label)
	set(&l.OriginalURL, c.Patch.OriginalURL)
	set(&l.Icon, c.Patch.Icon)
	set(&l.IsActive, c.Patch.IsActive)
	set(&l.Settings, c.Patch.Settings)
	l.Changed = true
	s.touch(l.ID)
	return nil
}

func (c ReorderLinks) apply(s *Store) error {
	links, moved := ordering.Reorder(s.profile.Links, c.From, c.To, setLinkOrder)
	if moved {
		s.profile.Links = links
		s.orderRev++
	}
	return nil
}

func (c ReorderSocialLinks) apply(s *Store) error {
	social, moved := ordering.Reorder(s.profile.SocialLinks, c.From, c.To, setSocialOrder)
	if moved {
		s.profile.SocialLinks = social
	}
	return nil
}

func (c ToggleVisibility) apply(s *Store) error {
	i := s.socialIndex(c.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrSocialLinkNotFound, c.ID)
	}
	s.profile.SocialLinks[i].IsActive = !s.profile.SocialLinks[i].IsActive
	return nil
}

func (c AddSocialLink) apply(s *Store) error {
	item := c.Template
	if !IsPlaceholderID(item.ID) || s.socialIndex(item.ID) >= 0 {
		item.ID = NewPlaceholderID()
	}
	item.Order = len(s.profile.SocialLinks)
	item.IsNew = true
	s.profile.SocialLinks = append(s.profile.SocialLinks, item)
	return nil
}

func (c UpdateSocialLink) apply(s *Store) error {
	i := s.socialIndex(c.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrSocialLinkNotFound, c.ID)
	}
	item := &s.profile.SocialLinks[i]
	set(&item.Label, c.Patch.Label)
	set(&item.OriginalURL, c.Patch.OriginalURL)
	set(&item.Icon, c.Patch.Icon)
	set(&item.Settings.Color, c.Patch.Color)
	return nil
}

func setLinkOrder(l *models.LinkItem, i int)         { l.Order = i }
func setSocialOrder(s *models.SocialLinkItem, i int) { s.Order = i }
