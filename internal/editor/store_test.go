package editor_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xrclskn/biolink/internal/editor"
	"github.com/xrclskn/biolink/internal/models"
)

func ptr[T any](v T) *T { return &v }

func loadedStore(t *testing.T) *editor.Store {
	t.Helper()
	s := editor.NewStore()
	p := models.DefaultProfile()
	p.ID = "p1"
	p.Username = "creator"
	p.Links = []models.LinkItem{
		{ID: "l1", Label: "One", OriginalURL: "https://one.example", Order: 0, IsActive: true},
		{ID: "l2", Label: "Two", OriginalURL: "https://two.example", Order: 1, IsActive: true},
		{ID: "l3", Label: "Three", OriginalURL: "https://three.example", Order: 2, IsActive: true},
	}
	p.SocialLinks = []models.SocialLinkItem{
		{ID: "s1", Label: "Mail", Icon: "email", Order: 0, IsActive: true},
		{ID: "s2", Label: "Phone", Icon: "phone", Order: 1, IsActive: false},
	}
	require.NoError(t, s.Replace(p))
	return s
}

func changedIDs(p models.Profile) []string {
	var out []string
	for _, l := range p.Links {
		if l.Changed {
			out = append(out, l.ID)
		}
	}
	return out
}

func TestStore_UpdateMergesWithoutRemoving(t *testing.T) {
	s := loadedStore(t)

	require.NoError(t, s.Update(editor.ProfilePatch{Bio: ptr("hello")}))

	p := s.Profile()
	assert.Equal(t, "hello", p.Bio)
	assert.Equal(t, "creator", p.Username)
	assert.Equal(t, "p1", p.ID)
}

func TestStore_ThemeSwitchKeepsInactiveFields(t *testing.T) {
	s := editor.NewStore()
	original := s.Profile().Theme.BackgroundColor

	require.NoError(t, s.UpdateTheme(editor.ThemePatch{BackgroundType: ptr(models.BackgroundGradient)}))
	assert.Equal(t, "linear-gradient(135deg, #ffffff, #e5e7eb)", s.Style().Background)
	require.NoError(t, s.UpdateTheme(editor.ThemePatch{BackgroundType: ptr(models.BackgroundSolid)}))

	assert.Equal(t, original, s.Profile().Theme.BackgroundColor)
	assert.Equal(t, original, s.Style().Background)
}

func TestStore_ThemeRejectsUnknownEnums(t *testing.T) {
	s := editor.NewStore()
	err := s.UpdateTheme(editor.ThemePatch{BackgroundType: ptr(models.BackgroundType("video"))})
	assert.Error(t, err)
	assert.Equal(t, models.BackgroundSolid, s.Profile().Theme.BackgroundType)
}

func TestStore_ThemeRejectsUnsafeValues(t *testing.T) {
	s := editor.NewStore()
	before := s.Profile().Theme

	err := s.UpdateTheme(editor.ThemePatch{
		BackgroundColor: ptr("#000000"),
		FontFamily:      ptr("x;background-image:url(//evil.example/pixel)"),
	})

	var fe *models.ThemeFieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "fontFamily", fe.Field)
	assert.Equal(t, before, s.Profile().Theme, "a rejected patch applies nothing")
}

func TestStore_ThemeClampsOpacity(t *testing.T) {
	s := editor.NewStore()
	require.NoError(t, s.UpdateTheme(editor.ThemePatch{BackgroundOpacity: ptr(1.7)}))
	assert.Equal(t, 1.0, s.Profile().Theme.BackgroundOpacity)
}

func TestStore_AddLink(t *testing.T) {
	s := loadedStore(t)

	id, err := s.AddLink(models.LinkItem{Label: "X", OriginalURL: "https://x.com", ShortURL: "ignored"})
	require.NoError(t, err)

	p := s.Profile()
	require.Len(t, p.Links, 4)
	l := p.Links[3]
	assert.Equal(t, id, l.ID)
	assert.True(t, editor.IsPlaceholderID(id))
	assert.True(t, l.IsNew)
	assert.True(t, l.Changed)
	assert.Equal(t, 3, l.Order)
	assert.Empty(t, l.ShortURL)
}

func TestStore_PlaceholderIDsAreUnique(t *testing.T) {
	s := editor.NewStore()
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		id, err := s.AddLink(models.LinkItem{Label: "x"})
		require.NoError(t, err)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestStore_UpdateLinkMarksOnlyTouched(t *testing.T) {
	s := loadedStore(t)

	require.NoError(t, s.UpdateLink("l2", editor.LinkPatch{Label: ptr("Second")}))
	require.NoError(t, s.UpdateLink("l2", editor.LinkPatch{IsActive: ptr(false)}))
	require.NoError(t, s.UpdateLink("l3", editor.LinkPatch{Settings: &models.LinkSettings{Color: "#f00"}}))

	p := s.Profile()
	assert.Equal(t, []string{"l2", "l3"}, changedIDs(p))
	assert.Equal(t, "Second", p.Links[1].Label)
	assert.False(t, p.Links[1].IsActive)
	assert.Equal(t, "#f00", p.Links[2].Settings.Color)
}

func TestStore_UpdateLinkUnknownID(t *testing.T) {
	s := loadedStore(t)
	assert.ErrorIs(t, s.UpdateLink("nope", editor.LinkPatch{}), editor.ErrLinkNotFound)
}

func TestStore_RemoveLinkRenumbersAndTracksRemoval(t *testing.T) {
	s := loadedStore(t)

	require.NoError(t, s.RemoveLink("l1"))

	p := s.Profile()
	require.Len(t, p.Links, 2)
	assert.Equal(t, "l2", p.Links[0].ID)
	assert.Equal(t, 0, p.Links[0].Order)
	assert.Equal(t, 1, p.Links[1].Order)

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, []string{"l1"}, snap.RemovedLinkIDs)
	assert.True(t, snap.OrderDirty)
}

func TestStore_RemoveNewLinkIsNotTracked(t *testing.T) {
	s := loadedStore(t)
	id, err := s.AddLink(models.LinkItem{Label: "tmp"})
	require.NoError(t, err)

	require.NoError(t, s.RemoveLink(id))

	snap, err := s.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, snap.RemovedLinkIDs)
	assert.False(t, snap.OrderDirty)
	assert.NotContains(t, snap.LinkRevisions, id)
}

func TestStore_ReorderDoesNotMarkChanged(t *testing.T) {
	s := loadedStore(t)

	require.NoError(t, s.ReorderLinks(0, 2))

	p := s.Profile()
	assert.Equal(t, []string{"l2", "l3", "l1"}, []string{p.Links[0].ID, p.Links[1].ID, p.Links[2].ID})
	for i, l := range p.Links {
		assert.Equal(t, i, l.Order)
		assert.False(t, l.Changed)
	}
	snap, _ := s.Snapshot()
	assert.True(t, snap.OrderDirty)
}

func TestStore_ReorderSameIndexIsNoop(t *testing.T) {
	s := loadedStore(t)
	require.NoError(t, s.UpdateLink("l1", editor.LinkPatch{Label: ptr("x")}))

	require.NoError(t, s.ReorderLinks(1, 1))

	assert.Equal(t, []string{"l1"}, changedIDs(s.Profile()))
	snap, _ := s.Snapshot()
	assert.False(t, snap.OrderDirty)
}

func TestStore_ReorderSocialLinks(t *testing.T) {
	s := loadedStore(t)

	require.NoError(t, s.ReorderSocialLinks(1, 0))

	p := s.Profile()
	assert.Equal(t, "s2", p.SocialLinks[0].ID)
	assert.Equal(t, 0, p.SocialLinks[0].Order)
	assert.Equal(t, 1, p.SocialLinks[1].Order)
}

func TestStore_ToggleSocialVisibility(t *testing.T) {
	s := loadedStore(t)

	require.NoError(t, s.ToggleSocialVisibility("s1"))
	require.NoError(t, s.ToggleSocialVisibility("s2"))

	p := s.Profile()
	assert.False(t, p.SocialLinks[0].IsActive)
	assert.False(t, p.SocialLinks[0].Visible())
	assert.True(t, p.SocialLinks[1].IsActive)
	assert.True(t, p.SocialLinks[1].Visible())

	assert.ErrorIs(t, s.ToggleSocialVisibility("missing"), editor.ErrSocialLinkNotFound)
}

func TestStore_AddAndUpdateSocialLink(t *testing.T) {
	s := loadedStore(t)

	id, err := s.AddSocialLink(models.SocialLinkItem{Label: "WhatsApp", Icon: "whatsapp", IsActive: true})
	require.NoError(t, err)
	require.NoError(t, s.UpdateSocialLink(id, editor.SocialPatch{Color: ptr("#25d366")}))

	p := s.Profile()
	require.Len(t, p.SocialLinks, 3)
	assert.True(t, p.SocialLinks[2].IsNew)
	assert.Equal(t, 2, p.SocialLinks[2].Order)
	assert.Equal(t, "#25d366", p.SocialLinks[2].Settings.Color)
}

func TestStore_SubscribeReceivesCopies(t *testing.T) {
	s := loadedStore(t)
	var got []models.Profile
	unsubscribe := s.Subscribe(func(p models.Profile) { got = append(got, p) })

	require.NoError(t, s.Update(editor.ProfilePatch{Title: ptr("Maker")}))
	require.Len(t, got, 1)
	assert.Equal(t, "Maker", got[0].Title)

	got[0].Links[0].Label = "mutated"
	assert.Equal(t, "One", s.Profile().Links[0].Label)

	unsubscribe()
	require.NoError(t, s.Update(editor.ProfilePatch{Title: ptr("Again")}))
	assert.Len(t, got, 1)
}

func TestStore_SubscriberMayApplyCommands(t *testing.T) {
	s := loadedStore(t)
	var titles []string
	s.Subscribe(func(p models.Profile) {
		titles = append(titles, p.Title)
		if p.Title == "First" {
			assert.NoError(t, s.Update(editor.ProfilePatch{Title: ptr("Second")}))
		}
	})

	require.NoError(t, s.Update(editor.ProfilePatch{Title: ptr("First")}))

	assert.Equal(t, []string{"First", "Second"}, titles)
	assert.Equal(t, "Second", s.Profile().Title)
}

func TestStore_ConcurrentChangesDeliverInOrder(t *testing.T) {
	s := loadedStore(t)
	release := make(chan struct{})
	var (
		mu     sync.Mutex
		titles []string
		first  = true
	)
	s.Subscribe(func(p models.Profile) {
		mu.Lock()
		block := first
		first = false
		mu.Unlock()
		if block {
			<-release
		}
		mu.Lock()
		titles = append(titles, p.Title)
		mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, s.Update(editor.ProfilePatch{Title: ptr("Older")}))
	}()
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return !first
	}, 2*time.Second, time.Millisecond)

	// Returns without waiting on the blocked delivery.
	require.NoError(t, s.Update(editor.ProfilePatch{Title: ptr("Newer")}))
	mu.Lock()
	assert.Empty(t, titles)
	mu.Unlock()

	close(release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("delivery never finished")
	}
	assert.Equal(t, []string{"Older", "Newer"}, titles)
}

func TestStore_ClosedRejectsCommands(t *testing.T) {
	s := loadedStore(t)
	s.Close()

	assert.True(t, s.Closed())
	assert.ErrorIs(t, s.Update(editor.ProfilePatch{Bio: ptr("x")}), editor.ErrStoreClosed)
	_, err := s.AddLink(models.LinkItem{})
	assert.ErrorIs(t, err, editor.ErrStoreClosed)
	assert.ErrorIs(t, s.Replace(models.DefaultProfile()), editor.ErrStoreClosed)
	_, err = s.Snapshot()
	assert.ErrorIs(t, err, editor.ErrStoreClosed)
}

func TestStore_ApplyCommandSet(t *testing.T) {
	s := loadedStore(t)

	cmds := []editor.Command{
		editor.SetProfile{Patch: editor.ProfilePatch{DisplayName: ptr("Creator")}},
		editor.SetTheme{Patch: editor.ThemePatch{ButtonStyle: ptr(models.ButtonPill)}},
		editor.UpdateLink{ID: "l1", Patch: editor.LinkPatch{Icon: ptr("globe")}},
		editor.ReorderLinks{From: 2, To: 0},
		editor.ToggleVisibility{ID: "s1"},
		editor.RemoveLink{ID: "l2"},
	}
	for _, c := range cmds {
		require.NoError(t, s.Apply(c), c.Name())
	}

	p := s.Profile()
	assert.Equal(t, "Creator", p.DisplayName)
	assert.Equal(t, models.ButtonPill, p.Theme.ButtonStyle)
	assert.Equal(t, []string{"l3", "l1"}, []string{p.Links[0].ID, p.Links[1].ID})
	assert.Equal(t, "globe", p.Links[1].Icon)
	assert.False(t, p.SocialLinks[0].IsActive)
	assert.Equal(t, "9999px", s.Style().Button.Radius)
}
