package sqlite_test

import (
	"context"
	"database/sql"
	stderrors "errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/xrclskn/biolink/internal/models"
	"github.com/xrclskn/biolink/internal/repository"
	"github.com/xrclskn/biolink/internal/repository/sqlite"
	"github.com/xrclskn/biolink/internal/testutil"
)

type ProfileRepositorySuite struct {
	suite.Suite
	ctx  context.Context
	db   *sql.DB
	repo repository.ProfileRepository
}

func (s *ProfileRepositorySuite) SetupTest() {
	s.ctx = context.Background()
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewProfileRepository(s.db)
}

func (s *ProfileRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *ProfileRepositorySuite) createProfile(userID, username string) models.StoredProfile {
	theme := models.DefaultTheme()
	theme.BackgroundType = models.BackgroundGradient
	p := models.StoredProfile{
		ID:          "p-" + userID,
		UserID:      userID,
		Username:    username,
		DisplayName: "Display " + userID,
		Theme:       theme,
	}
	err := s.repo.Save(s.ctx, repository.ProfileChanges{
		Profile: p,
		Create:  true,
		Links: []models.StoredLink{
			{ID: "l1-" + userID, Label: "One", OriginalURL: "https://one", ShortCode: "one" + userID, Position: 0, IsActive: true,
				Settings: models.LinkSettings{Color: "#ff0000"}},
			{ID: "l2-" + userID, Label: "Two", OriginalURL: "https://two", ShortCode: "two" + userID, Position: 1, IsActive: false},
		},
		SocialLinks: []models.StoredSocialLink{
			{ID: "s1-" + userID, Label: "Mail", Icon: "email", Position: 0, IsActive: true, Settings: models.SocialSettings{Color: "#000"}},
			{ID: "s2-" + userID, Label: "Phone", Icon: "phone", Position: 1, IsActive: false},
		},
	})
	s.Require().NoError(err)
	return p
}

func (s *ProfileRepositorySuite) TestCreateAndGet() {
	s.createProfile("u1", "creator")

	p, err := s.repo.GetByUserID(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().NotNil(p)

	s.Equal("p-u1", p.ID)
	s.Equal("creator", p.Username)
	s.Equal(models.BackgroundGradient, p.Theme.BackgroundType)
	s.Require().Len(p.Links, 2)
	s.Equal("l1-u1", p.Links[0].ID)
	s.Equal("#ff0000", p.Links[0].Settings.Color)
	s.False(p.Links[1].IsActive)
	s.Require().Len(p.SocialLinks, 2)
	s.Equal("#000", p.SocialLinks[0].Settings.Color)
	s.False(p.CreatedAt.IsZero())

	byName, err := s.repo.GetByUsername(s.ctx, "creator")
	s.Require().NoError(err)
	s.Equal(p.ID, byName.ID)
}

func (s *ProfileRepositorySuite) TestGet_NotFound() {
	p, err := s.repo.GetByUserID(s.ctx, "nobody")
	s.NoError(err)
	s.Nil(p)
}

func (s *ProfileRepositorySuite) TestSave_UpdateDeleteReorder() {
	p := s.createProfile("u1", "creator")
	p.Bio = "hello"

	err := s.repo.Save(s.ctx, repository.ProfileChanges{
		Profile: p,
		Links: []models.StoredLink{
			{ID: "l3-u1", Label: "Three", ShortCode: "threeu1", Position: 2, IsActive: true},
		},
		DeleteLinkIDs: []string{"l1-u1"},
		LinkOrder:     []string{"l3-u1", "l2-u1"},
		SocialLinks: []models.StoredSocialLink{
			{ID: "s2-u1", Label: "Phone", Icon: "phone", Position: 0, IsActive: true},
		},
	})
	s.Require().NoError(err)

	got, err := s.repo.GetByUserID(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal("hello", got.Bio)
	s.Require().Len(got.Links, 2)
	s.Equal("l3-u1", got.Links[0].ID)
	s.Equal(0, got.Links[0].Position)
	s.Equal("l2-u1", got.Links[1].ID)
	s.Equal(1, got.Links[1].Position)
	s.Require().Len(got.SocialLinks, 1)
	s.True(got.SocialLinks[0].IsActive)
}

func (s *ProfileRepositorySuite) TestSave_LinkOfOtherProfileUntouched() {
	s.createProfile("u1", "creator")
	p2 := s.createProfile("u2", "another")

	err := s.repo.Save(s.ctx, repository.ProfileChanges{
		Profile: p2,
		Links:   []models.StoredLink{{ID: "l1-u1", Label: "hijack", ShortCode: "hijack"}},
	})
	s.Require().NoError(err)

	p1, err := s.repo.GetByUserID(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal("One", p1.Links[0].Label)
}

func (s *ProfileRepositorySuite) TestUsernameOwner() {
	s.createProfile("u1", "creator")

	owner, err := s.repo.UsernameOwner(s.ctx, "creator")
	s.Require().NoError(err)
	s.Equal("u1", owner)

	owner, err = s.repo.UsernameOwner(s.ctx, "free_name")
	s.Require().NoError(err)
	s.Empty(owner)
}

func (s *ProfileRepositorySuite) TestEmptyUsernamesDoNotCollide() {
	s.createProfile("u1", "")
	s.createProfile("u2", "")

	p, err := s.repo.GetByUserID(s.ctx, "u2")
	s.Require().NoError(err)
	s.Empty(p.Username)
}

func (s *ProfileRepositorySuite) TestLinkByShortCode() {
	s.createProfile("u1", "creator")

	l, err := s.repo.LinkByShortCode(s.ctx, "twou1")
	s.Require().NoError(err)
	s.Require().NotNil(l)
	s.Equal("https://two", l.OriginalURL)

	l, err = s.repo.LinkByShortCode(s.ctx, "missing")
	s.NoError(err)
	s.Nil(l)
}

func (s *ProfileRepositorySuite) TestDeleteSocialLink() {
	s.createProfile("u1", "creator")

	ok, err := s.repo.DeleteSocialLink(s.ctx, "p-u1", "s1-u1")
	s.Require().NoError(err)
	s.True(ok)

	ok, err = s.repo.DeleteSocialLink(s.ctx, "p-u1", "s1-u1")
	s.Require().NoError(err)
	s.False(ok)

	ok, err = s.repo.DeleteSocialLink(s.ctx, "p-other", "s2-u1")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *ProfileRepositorySuite) TestCascadeOnProfileDelete() {
	s.createProfile("u1", "creator")

	_, err := s.db.ExecContext(s.ctx, `DELETE FROM profiles WHERE id = ?`, "p-u1")
	s.Require().NoError(err)

	var n int
	s.Require().NoError(s.db.QueryRowContext(s.ctx, `SELECT COUNT(*) FROM links`).Scan(&n))
	s.Zero(n)
}

func TestProfileRepositorySuite(t *testing.T) {
	suite.Run(t, new(ProfileRepositorySuite))
}

func TestSave_RollsBackOnLinkFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE profiles SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO links").WillReturnError(stderrors.New("disk full"))
	mock.ExpectRollback()

	repo := sqlite.NewProfileRepository(db)
	err = repo.Save(context.Background(), repository.ProfileChanges{
		Profile: models.StoredProfile{ID: "p1", UserID: "u1"},
		Links:   []models.StoredLink{{ID: "l1", ShortCode: "abc"}},
	})

	assert.EqualError(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByUserID_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM profiles WHERE user_id = ?").
		WithArgs("u1").
		WillReturnError(stderrors.New("connection reset"))

	p, err := sqlite.NewProfileRepository(db).GetByUserID(context.Background(), "u1")

	assert.Nil(t, p)
	assert.EqualError(t, err, "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSocialLink_ExecError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("DELETE FROM social_links WHERE id = \\? AND profile_id = \\?").
		WithArgs("s1", "p1").
		WillReturnError(stderrors.New("locked"))

	ok, err := sqlite.NewProfileRepository(db).DeleteSocialLink(context.Background(), "p1", "s1")

	assert.False(t, ok)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
