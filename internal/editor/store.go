package editor

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/xrclskn/biolink/internal/logger"
	"github.com/xrclskn/biolink/internal/models"
	"github.com/xrclskn/biolink/internal/theme"
)

var (
	ErrStoreClosed        = errors.New("editor: store is closed")
	ErrLinkNotFound       = errors.New("editor: link not found")
	ErrSocialLinkNotFound = errors.New("editor: social link not found")
)

const placeholderPrefix = "tmp_"

// NewPlaceholderID returns a client side id for an item the server has not
// seen yet. UUIDv7 is time ordered, so ids sort by creation.
func NewPlaceholderID() string {
	return placeholderPrefix + uuid.Must(uuid.NewV7()).String()
}

func IsPlaceholderID(id string) bool {
	return strings.HasPrefix(id, placeholderPrefix)
}

// Store owns the single live profile of an edit session.
type Store struct {
	mu        sync.Mutex
	profile   models.Profile
	rev       uint64
	revs      map[string]uint64
	removed   map[string]struct{}
	orderRev  uint64
	syncedRev uint64
	listeners map[int]func(models.Profile)
	nextSub   int
	closed    bool
	log       *logger.Logger

	pending    *models.Profile
	delivering bool
}

// NewStore returns a store holding the default, unsaved profile.
func NewStore() *Store {
	s := &Store{
		listeners: map[int]func(models.Profile){},
		log:       logger.Default().WithPrefix("editor"),
	}
	s.reset(models.DefaultProfile())
	return s
}

func (s *Store) reset(p models.Profile) {
	p = p.Clone()
	if p.Links == nil {
		p.Links = []models.LinkItem{}
	}
	if p.SocialLinks == nil {
		p.SocialLinks = []models.SocialLinkItem{}
	}
	s.profile = p
	s.revs = map[string]uint64{}
	s.removed = map[string]struct{}{}
	s.orderRev = 0
	s.syncedRev = 0
	for _, l := range p.Links {
		if l.Changed {
			s.touch(l.ID)
		}
	}
}

// Apply runs cmd atomically and notifies subscribers on success.
func (s *Store) Apply(cmd Command) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	if err := cmd.apply(s); err != nil {
		s.mu.Unlock()
		s.log.Debug("command %s rejected: %v", cmd.Name(), err)
		return err
	}
	s.notifyLocked()
	return nil
}

// Update shallow-merges top level profile fields.
func (s *Store) Update(p ProfilePatch) error {
	return s.Apply(SetProfile{Patch: p})
}

// UpdateTheme shallow-merges theme fields; fields of inactive background
// types are left alone.
func (s *Store) UpdateTheme(p ThemePatch) error {
	return s.Apply(SetTheme{Patch: p})
}

// AddLink appends a new link and returns its placeholder id.
func (s *Store) AddLink(tpl models.LinkItem) (string, error) {
	tpl.ID = NewPlaceholderID()
	if err := s.Apply(AddLink{Template: tpl}); err != nil {
		return "", err
	}
	return tpl.ID, nil
}

func (s *Store) RemoveLink(id string) error {
	return s.Apply(RemoveLink{ID: id})
}

// UpdateLink merges p into the link and marks it changed.
func (s *Store) UpdateLink(id string, p LinkPatch) error {
	return s.Apply(UpdateLink{ID: id, Patch: p})
}

func (s *Store) ReorderLinks(from, to int) error {
	return s.Apply(ReorderLinks{From: from, To: to})
}

func (s *Store) ReorderSocialLinks(from, to int) error {
	return s.Apply(ReorderSocialLinks{From: from, To: to})
}

func (s *Store) ToggleSocialVisibility(id string) error {
	return s.Apply(ToggleVisibility{ID: id})
}

// AddSocialLink appends a new social link and returns its placeholder id.
func (s *Store) AddSocialLink(tpl models.SocialLinkItem) (string, error) {
	tpl.ID = NewPlaceholderID()
	if err := s.Apply(AddSocialLink{Template: tpl}); err != nil {
		return "", err
	}
	return tpl.ID, nil
}

func (s *Store) UpdateSocialLink(id string, p SocialPatch) error {
	return s.Apply(UpdateSocialLink{ID: id, Patch: p})
}

// Profile returns a copy of the live profile.
func (s *Store) Profile() models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.Clone()
}

// Style is the live preview projection of the current theme.
func (s *Store) Style() theme.Style {
	s.mu.Lock()
	t := s.profile.Theme
	s.mu.Unlock()
	return theme.Compose(t)
}

// Subscribe registers fn for change notifications and returns a function
// that removes it.
func (s *Store) Subscribe(fn func(models.Profile)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Close disposes the store. Later commands fail with ErrStoreClosed and
// late sync results are dropped.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.listeners = map[int]func(models.Profile){}
}

func (s *Store) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Store) touch(id string) {
	s.rev++
	s.revs[id] = s.rev
}

func (s *Store) linkIndex(id string) int {
	for i := range s.profile.Links {
		if s.profile.Links[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) socialIndex(id string) int {
	for i := range s.profile.SocialLinks {
		if s.profile.SocialLinks[i].ID == id {
			return i
		}
	}
	return -1
}

// notifyLocked queues the current profile for subscribers and releases s.mu.
// Deliveries are drained by one goroutine at a time, newest state last.
// A subscriber may call back into the store; its change is delivered after
// the current one returns.
func (s *Store) notifyLocked() {
	snapshot := s.profile.Clone()
	s.pending = &snapshot
	if s.delivering {
		s.mu.Unlock()
		return
	}
	s.delivering = true
	for s.pending != nil {
		next := *s.pending
		s.pending = nil
		fns := s.subscribersLocked()
		s.mu.Unlock()
		for _, fn := range fns {
			fn(next.Clone())
		}
		s.mu.Lock()
	}
	s.delivering = false
	s.mu.Unlock()
}

func (s *Store) subscribersLocked() []func(models.Profile) {
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(models.Profile), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.listeners[id])
	}
	return fns
}
