package syncer

import (
	"context"
	stderrors "errors"
	"net/http"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sethvargo/go-retry"
	"github.com/xrclskn/biolink/internal/editor"
	"github.com/xrclskn/biolink/internal/errors"
	"github.com/xrclskn/biolink/internal/logger"
	"github.com/xrclskn/biolink/internal/models"
)

const (
	DefaultDeleteAttempts = 3
	DefaultDeleteBackoff  = 200 * time.Millisecond
)

// PendingDelete is a social link removed locally whose backend delete has
// not settled yet.
type PendingDelete struct {
	Item    models.SocialLinkItem
	Index   int
	Started time.Time
}

type Option func(*Engine)

// WithDeleteRetry sets how many times a failed social delete is retried and
// the base of the exponential backoff between attempts.
func WithDeleteRetry(attempts uint64, base time.Duration) Option {
	return func(e *Engine) {
		e.deleteAttempts = attempts
		if base > 0 {
			e.deleteBackoff = base
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// Engine moves the editor store to and from the backend.
type Engine struct {
	store   *editor.Store
	backend Backend
	log     *logger.Logger
	now     func() time.Time

	deleteAttempts uint64
	deleteBackoff  time.Duration

	mu         sync.Mutex
	saving     bool
	lastSynced models.Profile
	lastSaved  time.Time
	pending    map[string]PendingDelete
}

func New(store *editor.Store, backend Backend, opts ...Option) *Engine {
	e := &Engine{
		store:          store,
		backend:        backend,
		log:            logger.Default().WithPrefix("syncer"),
		now:            time.Now,
		deleteAttempts: DefaultDeleteAttempts,
		deleteBackoff:  DefaultDeleteBackoff,
		lastSynced:     store.Profile(),
		pending:        map[string]PendingDelete{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Store() *editor.Store {
	return e.store
}

// Load fetches the persisted profile for userID and replaces the store
// contents. A user without a profile starts from the defaults. On failure
// the store is left as it was.
func (e *Engine) Load(ctx context.Context, userID string) error {
	log := logger.FromContext(ctx).WithPrefix("syncer").WithField("user_id", userID)
	log.Debug("loading profile")

	var p models.Profile
	resp, err := e.backend.GetProfile(ctx, userID)
	switch {
	case errors.HasCode(err, errors.ErrCodeNotFound):
		log.Info("no stored profile, starting from defaults")
		p = models.DefaultProfile()
	case err != nil:
		log.Error("failed to load profile: %v", err)
		return errors.NewLoadFailedError(err)
	default:
		p = FromWire(*resp, log)
	}

	if err := e.store.Replace(p); err != nil {
		log.Debug("dropping loaded profile: %v", err)
		return err
	}

	e.mu.Lock()
	e.lastSynced = e.store.Profile()
	e.lastSaved = time.Time{}
	e.mu.Unlock()

	log.Info("loaded profile %s with %d links and %d social links", p.ID, len(p.Links), len(p.SocialLinks))
	return nil
}

// Save sends the pending edits in one request. Only one save may be in
// flight; a second call fails with SAVE_IN_PROGRESS. A failed save leaves
// every local edit in place.
func (e *Engine) Save(ctx context.Context) (*models.SaveResponse, error) {
	log := logger.FromContext(ctx).WithPrefix("syncer")

	e.mu.Lock()
	if e.saving {
		e.mu.Unlock()
		return nil, errors.NewSaveInProgressError()
	}
	e.saving = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.saving = false
		e.mu.Unlock()
	}()

	snap, err := e.store.Snapshot()
	if err != nil {
		return nil, err
	}
	req := BuildPayload(snap)
	log.Debug("saving profile: links=%d social=%d removed=%d reordered=%t",
		len(req.Links), len(req.SocialLinks), len(req.RemovedLinkIDs), req.LinkOrder != nil)

	resp, err := e.backend.SaveProfile(ctx, req)
	if err != nil {
		log.Error("save failed: %v", err)
		if errors.HasCode(err, errors.ErrCodeUsernameTaken) || errors.HasCode(err, errors.ErrCodeValidation) {
			return nil, err
		}
		return nil, errors.NewSaveFailedError(err)
	}

	res := editor.SyncResult{
		Sent:      snap,
		ProfileID: resp.Profile.Profile.ID,
		IDs:       resp.IDs,
		ShortURLs: make(map[string]string, len(resp.Profile.Links)),
	}
	for _, l := range resp.Profile.Links {
		if l.ShortURL != "" {
			res.ShortURLs[l.ID] = l.ShortURL
		}
	}
	if err := e.store.MarkSynced(res); err != nil {
		log.Debug("dropping save result: %v", err)
		return nil, err
	}

	savedAt := resp.SavedAt
	if savedAt.IsZero() {
		savedAt = e.now()
	}
	e.mu.Lock()
	e.lastSynced = e.store.Profile()
	e.lastSaved = savedAt
	e.mu.Unlock()

	log.Info("saved profile %s (%d new ids)", res.ProfileID, len(res.IDs))
	return resp, nil
}

// LastSaved is a human readable age of the last successful save.
func (e *Engine) LastSaved() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastSaved.IsZero() {
		return "never"
	}
	return humanize.RelTime(e.lastSaved, e.now(), "ago", "from now")
}

func (e *Engine) LastSavedAt() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSaved
}

// LastSynced returns the profile as the backend last acknowledged it.
func (e *Engine) LastSynced() models.Profile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSynced.Clone()
}

// HasUnsavedChanges compares the store with the last acknowledged profile.
func (e *Engine) HasUnsavedChanges() bool {
	if e.store.HasPendingEdits() {
		return true
	}
	cur := e.store.Profile()
	e.mu.Lock()
	last := e.lastSynced
	e.mu.Unlock()

	if cur.Username != last.Username || cur.DisplayName != last.DisplayName ||
		cur.Title != last.Title || cur.Bio != last.Bio || cur.AvatarURL != last.AvatarURL {
		return true
	}
	if cur.Theme != last.Theme {
		return true
	}
	return !slices.Equal(cur.SocialLinks, last.SocialLinks)
}

// DeleteSocialLink removes the item from the store immediately, then deletes
// it on the backend with retries. If every attempt fails the item is put
// back at its old position and DELETE_FAILED is returned.
func (e *Engine) DeleteSocialLink(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("syncer").WithField("social_link_id", id)

	item, index, err := e.store.RemoveSocialLink(id)
	if err != nil {
		return err
	}
	if item.IsNew || editor.IsPlaceholderID(item.ID) {
		log.Debug("social link never saved, removed locally")
		return nil
	}

	e.mu.Lock()
	e.pending[id] = PendingDelete{Item: item, Index: index, Started: e.now()}
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		delete(e.pending, id)
		e.mu.Unlock()
	}()

	backoff := retry.WithMaxRetries(e.deleteAttempts, retry.NewExponential(e.deleteBackoff))
	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := e.backend.DeleteSocialLink(ctx, id)
		switch {
		case err == nil:
			return nil
		case errors.HasCode(err, errors.ErrCodeNotFound):
			log.Debug("social link already gone on backend")
			return nil
		case isPermanent(err):
			return err
		default:
			log.Warn("delete attempt %d failed: %v", attempt, err)
			return retry.RetryableError(err)
		}
	})
	if err != nil {
		log.Error("delete failed after %d attempts, restoring: %v", attempt, err)
		if rerr := e.store.RestoreSocialLink(item, index); rerr != nil {
			log.Debug("could not restore social link: %v", rerr)
		}
		return errors.NewDeleteFailedError(id, err)
	}

	e.mu.Lock()
	e.lastSynced.SocialLinks = slices.DeleteFunc(e.lastSynced.SocialLinks, func(s models.SocialLinkItem) bool {
		return s.ID == id
	})
	for i := range e.lastSynced.SocialLinks {
		e.lastSynced.SocialLinks[i].Order = i
	}
	e.mu.Unlock()

	log.Info("social link deleted")
	return nil
}

// isPermanent reports client errors that a retry cannot fix. Request
// timeouts and rate limiting are retried.
func isPermanent(err error) bool {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	appErr, ok := errors.As(err)
	if !ok {
		return false
	}
	switch appErr.Status {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return false
	}
	return appErr.Status >= 400 && appErr.Status < 500
}

// PendingDeletes lists deletes still in flight, oldest first.
func (e *Engine) PendingDeletes() []PendingDelete {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]PendingDelete, 0, len(e.pending))
	for _, p := range e.pending {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Started.Before(out[j].Started) })
	return out
}

// Close disposes the store; results arriving afterwards are dropped.
func (e *Engine) Close() {
	e.store.Close()
}
