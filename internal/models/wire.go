package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SettingsBlob is a per-item settings object as it travels over the wire.
// Some rows arrive with the object serialized into a JSON string; both forms
// decode to the same bytes.
type SettingsBlob []byte

func (b *SettingsBlob) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*b = nil
			return nil
		}
		data = []byte(s)
		if !json.Valid(data) {
			return fmt.Errorf("settings: string does not hold valid json")
		}
	}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*b = nil
		return nil
	}
	*b = append((*b)[:0], data...)
	return nil
}

func (b SettingsBlob) MarshalJSON() ([]byte, error) {
	if len(b) == 0 {
		return []byte("{}"), nil
	}
	return []byte(b), nil
}

// Decode unmarshals the blob into v. An empty blob leaves v untouched so
// callers can pre-fill defaults.
func (b SettingsBlob) Decode(v any) error {
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, v)
}

// NewSettingsBlob marshals v into a blob.
func NewSettingsBlob(v any) (SettingsBlob, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return SettingsBlob(data), nil
}

// MustSettingsBlob is NewSettingsBlob for values that always marshal.
func MustSettingsBlob(v any) SettingsBlob {
	b, err := NewSettingsBlob(v)
	if err != nil {
		panic(err)
	}
	return b
}

type WireProfile struct {
	ID          string       `json:"id,omitempty"`
	Username    string       `json:"username"`
	DisplayName string       `json:"displayName"`
	Title       string       `json:"title"`
	Bio         string       `json:"bio"`
	AvatarURL   string       `json:"avatarUrl"`
	Settings    SettingsBlob `json:"settings"`
}

type WireLink struct {
	ID          string       `json:"id"`
	Label       string       `json:"label"`
	OriginalURL string       `json:"originalUrl"`
	ShortURL    string       `json:"shortUrl,omitempty"`
	Icon        string       `json:"icon"`
	Order       int          `json:"order"`
	IsActive    bool         `json:"isActive"`
	Settings    SettingsBlob `json:"settings"`
}

type WireSocialLink struct {
	ID          string       `json:"id"`
	Label       string       `json:"label"`
	OriginalURL string       `json:"originalUrl"`
	Icon        string       `json:"icon"`
	Order       int          `json:"order"`
	IsActive    *bool        `json:"isActive,omitempty"`
	Settings    SettingsBlob `json:"settings"`
}

// WireSocialSettings is the settings object of a social link on the wire.
// Visible mirrors isActive for older readers.
type WireSocialSettings struct {
	Color   string `json:"color"`
	Visible *bool  `json:"visible,omitempty"`
}

type ProfileSettings struct {
	Theme json.RawMessage `json:"theme,omitempty"`
}

type ProfileResponse struct {
	Profile     WireProfile      `json:"profile"`
	Links       []WireLink       `json:"links"`
	SocialLinks []WireSocialLink `json:"socialLinks"`
}

type SaveRequest struct {
	Username       string           `json:"username"`
	DisplayName    string           `json:"displayName"`
	Title          string           `json:"title"`
	Bio            string           `json:"bio"`
	AvatarURL      string           `json:"avatarUrl"`
	Settings       SettingsBlob     `json:"settings"`
	Links          []WireLink       `json:"links"`
	SocialLinks    []WireSocialLink `json:"socialLinks"`
	RemovedLinkIDs []string         `json:"removedLinkIds,omitempty"`
	LinkOrder      []string         `json:"linkOrder,omitempty"`
}

type SaveResponse struct {
	Profile ProfileResponse   `json:"profile"`
	IDs     map[string]string `json:"ids"`
	SavedAt time.Time         `json:"savedAt"`
}

type UsernameAvailability struct {
	Available bool `json:"available"`
}

// DecodeTheme reads the theme out of a profile settings blob. Keys missing
// from the blob keep their DefaultTheme values.
func DecodeTheme(blob SettingsBlob) (Theme, error) {
	t := DefaultTheme()
	var ps ProfileSettings
	if err := blob.Decode(&ps); err != nil {
		return t, fmt.Errorf("decode profile settings: %w", err)
	}
	if len(ps.Theme) == 0 || bytes.Equal(ps.Theme, []byte("null")) {
		return t, nil
	}
	raw := []byte(ps.Theme)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return t, fmt.Errorf("decode theme: %w", err)
		}
		raw = []byte(s)
	}
	if err := json.Unmarshal(raw, &t); err != nil {
		return DefaultTheme(), fmt.Errorf("decode theme: %w", err)
	}
	return t.WithDefaults(), nil
}

// EncodeTheme wraps t into a profile settings blob.
func EncodeTheme(t Theme) SettingsBlob {
	raw, _ := json.Marshal(t)
	return MustSettingsBlob(ProfileSettings{Theme: raw})
}

// ResolveSocialActive picks the visibility of a social link from its two wire
// keys. isActive wins; conflict reports that both were present and disagreed.
// A link carrying neither key is visible.
func ResolveSocialActive(isActive, visible *bool) (active, conflict bool) {
	switch {
	case isActive != nil:
		return *isActive, visible != nil && *visible != *isActive
	case visible != nil:
		return *visible, false
	default:
		return true, false
	}
}
