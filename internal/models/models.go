package models

import "time"

type BackgroundType string

const (
	BackgroundSolid    BackgroundType = "solid"
	BackgroundGradient BackgroundType = "gradient"
	BackgroundImage    BackgroundType = "image"
)

type ButtonStyle string

const (
	ButtonRounded ButtonStyle = "rounded"
	ButtonSquare  ButtonStyle = "square"
	ButtonPill    ButtonStyle = "pill"
)

// Theme is owned by a Profile. Fields for inactive background types are kept
// so switching back restores them.
type Theme struct {
	BackgroundType    BackgroundType `json:"backgroundType"`
	BackgroundColor   string         `json:"backgroundColor"`
	GradientStart     string         `json:"gradientStart"`
	GradientEnd       string         `json:"gradientEnd"`
	GradientAngle     int            `json:"gradientAngle"`
	BackgroundImage   string         `json:"backgroundImage"`
	BackgroundOpacity float64        `json:"backgroundOpacity"`
	BackgroundOverlay string         `json:"backgroundOverlay"`
	ButtonStyle       ButtonStyle    `json:"buttonStyle"`
	ButtonColor       string         `json:"buttonColor"`
	ButtonShadow      string         `json:"buttonShadow"`
	TextColor         string         `json:"textColor"`
	FontFamily        string         `json:"fontFamily"`
}

type LinkSettings struct {
	Color          string `json:"color"`
	IconBackground string `json:"iconBackground"`
	IconColor      string `json:"iconColor"`
}

type LinkItem struct {
	ID          string       `json:"id"`
	Label       string       `json:"label"`
	OriginalURL string       `json:"originalUrl"`
	ShortURL    string       `json:"shortUrl"`
	Icon        string       `json:"icon"`
	Order       int          `json:"order"`
	IsActive    bool         `json:"isActive"`
	Settings    LinkSettings `json:"settings"`

	Changed bool `json:"-"`
	IsNew   bool `json:"-"`
}

type SocialSettings struct {
	Color string `json:"color"`
}

// SocialLinkItem carries a single visibility bit. The wire format's
// settings.visible is projected from IsActive.
type SocialLinkItem struct {
	ID          string         `json:"id"`
	Label       string         `json:"label"`
	OriginalURL string         `json:"originalUrl"`
	Icon        string         `json:"icon"`
	Order       int            `json:"order"`
	IsActive    bool           `json:"isActive"`
	Settings    SocialSettings `json:"settings"`

	IsNew bool `json:"-"`
}

// Visible reports whether the button is shown on the published page.
func (s SocialLinkItem) Visible() bool {
	return s.IsActive
}

type Profile struct {
	ID          string           `json:"id"`
	Username    string           `json:"username"`
	DisplayName string           `json:"displayName"`
	Title       string           `json:"title"`
	Bio         string           `json:"bio"`
	AvatarURL   string           `json:"avatarUrl"`
	Theme       Theme            `json:"theme"`
	Links       []LinkItem       `json:"links"`
	SocialLinks []SocialLinkItem `json:"socialLinks"`
}

// Clone returns a deep copy.
func (p Profile) Clone() Profile {
	out := p
	if p.Links != nil {
		out.Links = append([]LinkItem(nil), p.Links...)
	}
	if p.SocialLinks != nil {
		out.SocialLinks = append([]SocialLinkItem(nil), p.SocialLinks...)
	}
	return out
}

// StoredProfile is the persisted row set for one user.
type StoredProfile struct {
	ID          string
	UserID      string
	Username    string
	DisplayName string
	Title       string
	Bio         string
	AvatarURL   string
	Theme       Theme
	Links       []StoredLink
	SocialLinks []StoredSocialLink
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type StoredLink struct {
	ID          string
	ProfileID   string
	Label       string
	OriginalURL string
	ShortCode   string
	Icon        string
	Position    int
	IsActive    bool
	Settings    LinkSettings
}

type StoredSocialLink struct {
	ID          string
	ProfileID   string
	Label       string
	OriginalURL string
	Icon        string
	Position    int
	IsActive    bool
	Settings    SocialSettings
}
