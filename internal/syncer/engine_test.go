package syncer_test

import (
	"context"
	stderrors "errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/xrclskn/biolink/internal/editor"
	"github.com/xrclskn/biolink/internal/errors"
	"github.com/xrclskn/biolink/internal/models"
	"github.com/xrclskn/biolink/internal/syncer"
	"github.com/xrclskn/biolink/internal/testutil/mocks"
)

type EngineTestSuite struct {
	suite.Suite
	ctx     context.Context
	backend *mocks.MockBackend
	store   *editor.Store
	engine  *syncer.Engine
	now     time.Time
}

func (s *EngineTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.backend = new(mocks.MockBackend)
	s.store = editor.NewStore()
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.engine = syncer.New(s.store, s.backend,
		syncer.WithDeleteRetry(2, time.Millisecond),
		syncer.WithClock(func() time.Time { return s.now }),
	)
}

func (s *EngineTestSuite) TearDownTest() {
	s.backend.AssertExpectations(s.T())
}

func (s *EngineTestSuite) loadFixture() {
	s.backend.On("GetProfile", mock.Anything, "u1").Return(fixtureResponse(), nil).Once()
	s.Require().NoError(s.engine.Load(s.ctx, "u1"))
}

func fixtureResponse() *models.ProfileResponse {
	return &models.ProfileResponse{
		Profile: models.WireProfile{
			ID:       "p1",
			Username: "creator",
			Settings: models.EncodeTheme(models.DefaultTheme()),
		},
		Links: []models.WireLink{
			{ID: "l1", Label: "One", OriginalURL: "https://one", ShortURL: "https://s.io/1", Order: 0, IsActive: true},
		},
		SocialLinks: []models.WireSocialLink{
			{ID: "s1", Label: "Mail", Icon: "email", Order: 0, IsActive: boolPtr(true)},
			{ID: "s2", Label: "Phone", Icon: "phone", Order: 1, IsActive: boolPtr(true)},
			{ID: "s3", Label: "Site", Icon: "globe", Order: 2, IsActive: boolPtr(false)},
		},
	}
}

func (s *EngineTestSuite) TestLoad_ReplacesStore() {
	s.loadFixture()

	p := s.store.Profile()
	s.Equal("p1", p.ID)
	s.Len(p.Links, 1)
	s.Len(p.SocialLinks, 3)
	s.False(s.engine.HasUnsavedChanges())
	s.Equal("never", s.engine.LastSaved())
}

func (s *EngineTestSuite) TestLoad_NotFoundStartsFromDefaults() {
	s.backend.On("GetProfile", mock.Anything, "u2").
		Return(nil, errors.NewNotFoundError("profile", "u2")).Once()

	s.Require().NoError(s.engine.Load(s.ctx, "u2"))

	s.Equal(models.DefaultProfile().Theme, s.store.Profile().Theme)
	s.Empty(s.store.Profile().ID)
}

func (s *EngineTestSuite) TestLoad_FailureLeavesStoreUntouched() {
	bio := "draft"
	s.Require().NoError(s.store.Update(editor.ProfilePatch{Bio: &bio}))
	s.backend.On("GetProfile", mock.Anything, "u1").
		Return(nil, stderrors.New("connection refused")).Once()

	err := s.engine.Load(s.ctx, "u1")

	s.True(errors.HasCode(err, errors.ErrCodeLoadFailed))
	s.Equal("draft", s.store.Profile().Bio)
}

func (s *EngineTestSuite) TestLoad_ClosedStoreIgnoresLateResult() {
	s.engine.Close()
	s.backend.On("GetProfile", mock.Anything, "u1").Return(fixtureResponse(), nil).Once()

	err := s.engine.Load(s.ctx, "u1")

	s.ErrorIs(err, editor.ErrStoreClosed)
	s.Empty(s.store.Profile().ID)
}

func (s *EngineTestSuite) TestAddSaveReload() {
	s.loadFixture()
	tmpID, err := s.store.AddLink(models.LinkItem{Label: "X", OriginalURL: "https://x.com", IsActive: true})
	s.Require().NoError(err)

	var sent models.SaveRequest
	saved := &models.SaveResponse{
		Profile: *fixtureResponse(),
		IDs:     map[string]string{tmpID: "l9"},
		SavedAt: s.now.Add(-2 * time.Minute),
	}
	saved.Profile.Links = append(saved.Profile.Links, models.WireLink{
		ID: "l9", Label: "X", OriginalURL: "https://x.com", ShortURL: "https://s.io/9", Order: 1, IsActive: true,
	})
	s.backend.On("SaveProfile", mock.Anything, mock.AnythingOfType("models.SaveRequest")).
		Run(func(args mock.Arguments) { sent = args.Get(1).(models.SaveRequest) }).
		Return(saved, nil).Once()

	_, err = s.engine.Save(s.ctx)
	s.Require().NoError(err)

	s.Require().Len(sent.Links, 1)
	s.Equal(tmpID, sent.Links[0].ID)

	p := s.store.Profile()
	s.Require().Len(p.Links, 2)
	s.Equal("l9", p.Links[1].ID)
	s.Equal("https://s.io/9", p.Links[1].ShortURL)
	s.False(p.Links[1].Changed)
	s.False(p.Links[1].IsNew)
	s.False(s.engine.HasUnsavedChanges())
	s.Equal("2 minutes ago", s.engine.LastSaved())

	s.backend.On("GetProfile", mock.Anything, "u1").Return(&saved.Profile, nil).Once()
	s.Require().NoError(s.engine.Load(s.ctx, "u1"))

	reloaded := s.store.Profile()
	s.Require().Len(reloaded.Links, 2)
	s.Equal(p.Links[1], reloaded.Links[1])
}

func (s *EngineTestSuite) TestSave_FailureKeepsEdits() {
	s.loadFixture()
	label := "Edited"
	s.Require().NoError(s.store.UpdateLink("l1", editor.LinkPatch{Label: &label}))
	s.backend.On("SaveProfile", mock.Anything, mock.Anything).
		Return(nil, errors.New("INTERNAL_ERROR", "boom", http.StatusInternalServerError)).Once()

	_, err := s.engine.Save(s.ctx)

	s.True(errors.HasCode(err, errors.ErrCodeSaveFailed))
	p := s.store.Profile()
	s.Equal("Edited", p.Links[0].Label)
	s.True(p.Links[0].Changed)
	s.True(s.engine.HasUnsavedChanges())
}

func (s *EngineTestSuite) TestSave_UsernameTakenPassesThrough() {
	s.loadFixture()
	s.backend.On("SaveProfile", mock.Anything, mock.Anything).
		Return(nil, errors.NewUsernameTakenError("creator")).Once()

	_, err := s.engine.Save(s.ctx)

	s.True(errors.HasCode(err, errors.ErrCodeUsernameTaken))
}

func (s *EngineTestSuite) TestSave_InFlightGuard() {
	s.loadFixture()
	started := make(chan struct{})
	release := make(chan struct{})
	s.backend.On("SaveProfile", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(&models.SaveResponse{Profile: *fixtureResponse()}, nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := s.engine.Save(s.ctx)
		done <- err
	}()
	<-started

	_, err := s.engine.Save(s.ctx)
	s.True(errors.HasCode(err, errors.ErrCodeSaveInProgress))

	close(release)
	s.NoError(<-done)
}

func (s *EngineTestSuite) TestSave_EditDuringSaveStaysChanged() {
	s.loadFixture()
	first, second := "First", "Second"
	s.Require().NoError(s.store.UpdateLink("l1", editor.LinkPatch{Label: &first}))
	s.backend.On("SaveProfile", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			s.Require().NoError(s.store.UpdateLink("l1", editor.LinkPatch{Label: &second}))
		}).
		Return(&models.SaveResponse{Profile: *fixtureResponse()}, nil).Once()

	_, err := s.engine.Save(s.ctx)
	s.Require().NoError(err)

	l := s.store.Profile().Links[0]
	s.Equal("Second", l.Label)
	s.True(l.Changed)
}

func (s *EngineTestSuite) TestSave_ClearsRemovalsAndOrder() {
	s.loadFixture()
	_, err := s.store.AddLink(models.LinkItem{Label: "two"})
	s.Require().NoError(err)
	s.Require().NoError(s.store.RemoveLink("l1"))
	var sent models.SaveRequest
	s.backend.On("SaveProfile", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(models.SaveRequest) }).
		Return(&models.SaveResponse{Profile: *fixtureResponse()}, nil).Once()

	_, err = s.engine.Save(s.ctx)
	s.Require().NoError(err)

	s.Equal([]string{"l1"}, sent.RemovedLinkIDs)
	snap, err := s.store.Snapshot()
	s.Require().NoError(err)
	s.Empty(snap.RemovedLinkIDs)
	s.False(snap.OrderDirty)
}

func (s *EngineTestSuite) TestHasUnsavedChanges_ThemeEdit() {
	s.loadFixture()
	color := "#000000"
	s.Require().NoError(s.store.UpdateTheme(editor.ThemePatch{BackgroundColor: &color}))

	s.True(s.engine.HasUnsavedChanges())
}

func (s *EngineTestSuite) TestDeleteSocialLink_Success() {
	s.loadFixture()
	s.backend.On("DeleteSocialLink", mock.Anything, "s2").Return(nil).Once()

	s.Require().NoError(s.engine.DeleteSocialLink(s.ctx, "s2"))

	p := s.store.Profile()
	s.Require().Len(p.SocialLinks, 2)
	s.Equal("s3", p.SocialLinks[1].ID)
	s.Equal(1, p.SocialLinks[1].Order)
	s.Empty(s.engine.PendingDeletes())
	s.False(s.engine.HasUnsavedChanges())
}

func (s *EngineTestSuite) TestDeleteSocialLink_NotFoundCountsAsSuccess() {
	s.loadFixture()
	s.backend.On("DeleteSocialLink", mock.Anything, "s1").
		Return(errors.NewNotFoundError("social link", "s1")).Once()

	s.Require().NoError(s.engine.DeleteSocialLink(s.ctx, "s1"))
	s.Len(s.store.Profile().SocialLinks, 2)
}

func (s *EngineTestSuite) TestDeleteSocialLink_RetriesThenSucceeds() {
	s.loadFixture()
	s.backend.On("DeleteSocialLink", mock.Anything, "s1").Return(stderrors.New("timeout")).Once()
	s.backend.On("DeleteSocialLink", mock.Anything, "s1").Return(nil).Once()

	s.Require().NoError(s.engine.DeleteSocialLink(s.ctx, "s1"))
	s.Len(s.store.Profile().SocialLinks, 2)
}

func (s *EngineTestSuite) requireDeleteRetriedAfter(status int) {
	s.loadFixture()
	s.backend.On("DeleteSocialLink", mock.Anything, "s1").
		Return(errors.New(errors.ErrCodeBadRequest, "slow down", status)).Once()
	s.backend.On("DeleteSocialLink", mock.Anything, "s1").Return(nil).Once()

	s.Require().NoError(s.engine.DeleteSocialLink(s.ctx, "s1"))
	s.Len(s.store.Profile().SocialLinks, 2)
	s.backend.AssertNumberOfCalls(s.T(), "DeleteSocialLink", 2)
}

func (s *EngineTestSuite) TestDeleteSocialLink_RateLimitIsRetried() {
	s.requireDeleteRetriedAfter(http.StatusTooManyRequests)
}

func (s *EngineTestSuite) TestDeleteSocialLink_RequestTimeoutIsRetried() {
	s.requireDeleteRetriedAfter(http.StatusRequestTimeout)
}

func (s *EngineTestSuite) TestDeleteSocialLink_RollbackAfterRetries() {
	s.loadFixture()
	s.backend.On("DeleteSocialLink", mock.Anything, "s2").Return(stderrors.New("unreachable")).Times(3)

	err := s.engine.DeleteSocialLink(s.ctx, "s2")

	s.True(errors.HasCode(err, errors.ErrCodeDeleteFailed))
	p := s.store.Profile()
	s.Require().Len(p.SocialLinks, 3)
	s.Equal("s2", p.SocialLinks[1].ID)
	s.Equal(1, p.SocialLinks[1].Order)
	s.Empty(s.engine.PendingDeletes())
}

func (s *EngineTestSuite) TestDeleteSocialLink_PermanentErrorNotRetried() {
	s.loadFixture()
	s.backend.On("DeleteSocialLink", mock.Anything, "s1").
		Return(errors.NewUnauthorizedError("missing user")).Once()

	err := s.engine.DeleteSocialLink(s.ctx, "s1")

	s.True(errors.HasCode(err, errors.ErrCodeDeleteFailed))
	s.Equal("s1", s.store.Profile().SocialLinks[0].ID)
}

func (s *EngineTestSuite) TestDeleteSocialLink_NewItemSkipsBackend() {
	s.loadFixture()
	id, err := s.store.AddSocialLink(models.SocialLinkItem{Label: "New", Icon: "whatsapp"})
	s.Require().NoError(err)

	s.Require().NoError(s.engine.DeleteSocialLink(s.ctx, id))

	s.Len(s.store.Profile().SocialLinks, 3)
	s.backend.AssertNotCalled(s.T(), "DeleteSocialLink", mock.Anything, id)
}

func (s *EngineTestSuite) TestDeleteSocialLink_PendingWhileInFlight() {
	s.loadFixture()
	started := make(chan struct{})
	release := make(chan struct{})
	s.backend.On("DeleteSocialLink", mock.Anything, "s3").
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(nil).Once()

	done := make(chan error, 1)
	go func() { done <- s.engine.DeleteSocialLink(s.ctx, "s3") }()
	<-started

	pending := s.engine.PendingDeletes()
	s.Require().Len(pending, 1)
	s.Equal("s3", pending[0].Item.ID)
	s.Equal(2, pending[0].Index)

	close(release)
	s.NoError(<-done)
	s.Empty(s.engine.PendingDeletes())
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func TestEngine_CheckerUsesBackend(t *testing.T) {
	backend := new(mocks.MockBackend)
	backend.On("CheckUsername", mock.Anything, "creator").Return(true, nil).Once()

	var b syncer.Backend = backend
	ok, err := b.CheckUsername(context.Background(), "creator")

	require.NoError(t, err)
	assert.True(t, ok)
	backend.AssertExpectations(t)
}
