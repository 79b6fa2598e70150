package editor

import (
	"fmt"
	"sort"

	"github.com/xrclskn/biolink/internal/models"
	"github.com/xrclskn/biolink/internal/ordering"
)

// Snapshot is a consistent copy of the store taken when a save payload is
// built.
type Snapshot struct {
	Profile        models.Profile
	LinkRevisions  map[string]uint64
	RemovedLinkIDs []string
	OrderRev       uint64
	OrderDirty     bool
}

// SyncResult describes what the server accepted for a Snapshot.
type SyncResult struct {
	Sent      Snapshot
	ProfileID string
	// IDs maps placeholder ids to server assigned ids.
	IDs map[string]string
	// ShortURLs is keyed by server id.
	ShortURLs map[string]string
}

func (s *Store) Snapshot() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Snapshot{}, ErrStoreClosed
	}

	revs := make(map[string]uint64, len(s.revs))
	for id, rev := range s.revs {
		revs[id] = rev
	}
	removed := make([]string, 0, len(s.removed))
	for id := range s.removed {
		removed = append(removed, id)
	}
	sort.Strings(removed)

	return Snapshot{
		Profile:        s.profile.Clone(),
		LinkRevisions:  revs,
		RemovedLinkIDs: removed,
		OrderRev:       s.orderRev,
		OrderDirty:     s.orderRev != s.syncedRev,
	}, nil
}

// HasPendingEdits reports whether anything would be sent besides the always
// sent profile fields and theme.
func (s *Store) HasPendingEdits() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.removed) > 0 || s.orderRev != s.syncedRev {
		return true
	}
	for _, l := range s.profile.Links {
		if l.Changed {
			return true
		}
	}
	for _, sl := range s.profile.SocialLinks {
		if sl.IsNew {
			return true
		}
	}
	return false
}

// Replace swaps in a freshly loaded profile and forgets all local tracking.
func (s *Store) Replace(p models.Profile) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	s.reset(p)
	s.notifyLocked()
	return nil
}

// MarkSynced folds a successful save back into the store. Links edited after
// the snapshot keep their changed flag.
func (s *Store) MarkSynced(res SyncResult) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}

	if res.ProfileID != "" {
		s.profile.ID = res.ProfileID
	}

	for i := range s.profile.Links {
		l := &s.profile.Links[i]
		sentRev, sent := res.Sent.LinkRevisions[l.ID]
		if newID, ok := res.IDs[l.ID]; ok && l.IsNew {
			if rev, tracked := s.revs[l.ID]; tracked {
				delete(s.revs, l.ID)
				s.revs[newID] = rev
			}
			l.ID = newID
			l.IsNew = false
		}
		if sent && s.revs[l.ID] == sentRev {
			l.Changed = false
			delete(s.revs, l.ID)
		}
		if u, ok := res.ShortURLs[l.ID]; ok {
			l.ShortURL = u
		}
	}

	// A new link removed while the save was in flight now exists server side.
	for placeholder, newID := range res.IDs {
		if _, wasLink := res.Sent.LinkRevisions[placeholder]; !wasLink {
			continue
		}
		if s.linkIndex(newID) < 0 {
			s.removed[newID] = struct{}{}
		}
	}

	for i := range s.profile.SocialLinks {
		sl := &s.profile.SocialLinks[i]
		if newID, ok := res.IDs[sl.ID]; ok && sl.IsNew {
			sl.ID = newID
			sl.IsNew = false
		}
	}

	for _, id := range res.Sent.RemovedLinkIDs {
		delete(s.removed, id)
	}
	if res.Sent.OrderRev > s.syncedRev {
		s.syncedRev = res.Sent.OrderRev
	}

	s.notifyLocked()
	return nil
}

// RemoveSocialLink removes the item optimistically and returns it with its
// former index so the caller can restore it.
func (s *Store) RemoveSocialLink(id string) (models.SocialLinkItem, int, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return models.SocialLinkItem{}, -1, ErrStoreClosed
	}
	i := s.socialIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return models.SocialLinkItem{}, -1, fmt.Errorf("%w: %s", ErrSocialLinkNotFound, id)
	}
	item := s.profile.SocialLinks[i]
	social := make([]models.SocialLinkItem, 0, len(s.profile.SocialLinks)-1)
	social = append(social, s.profile.SocialLinks[:i]...)
	social = append(social, s.profile.SocialLinks[i+1:]...)
	ordering.Renumber(social, setSocialOrder)
	s.profile.SocialLinks = social
	s.notifyLocked()
	return item, i, nil
}

// RestoreSocialLink puts back an item removed by RemoveSocialLink.
func (s *Store) RestoreSocialLink(item models.SocialLinkItem, index int) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	if s.socialIndex(item.ID) >= 0 {
		s.mu.Unlock()
		return nil
	}
	if index < 0 || index > len(s.profile.SocialLinks) {
		index = len(s.profile.SocialLinks)
	}
	social := make([]models.SocialLinkItem, 0, len(s.profile.SocialLinks)+1)
	social = append(social, s.profile.SocialLinks[:index]...)
	social = append(social, item)
	social = append(social, s.profile.SocialLinks[index:]...)
	ordering.Renumber(social, setSocialOrder)
	s.profile.SocialLinks = social
	s.notifyLocked()
	return nil
}
