package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/xrclskn/biolink/internal/logger"
	"github.com/xrclskn/biolink/internal/models"
	"github.com/xrclskn/biolink/internal/repository"
)

var (
	profileColumns = []string{"id", "user_id", "username", "display_name", "title", "bio", "avatar_url", "theme", "created_at", "updated_at"}
	linkColumns    = []string{"id", "profile_id", "label", "original_url", "short_code", "icon", "position", "is_active", "settings"}
	socialColumns  = []string{"id", "profile_id", "label", "original_url", "icon", "position", "is_active", "settings"}
)

const linkUpsertSuffix = `ON CONFLICT(id) DO UPDATE SET
    label = excluded.label,
    original_url = excluded.original_url,
    icon = excluded.icon,
    position = excluded.position,
    is_active = excluded.is_active,
    settings = excluded.settings,
    updated_at = excluded.updated_at
WHERE links.profile_id = excluded.profile_id`

type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a new ProfileRepository implementation
func NewProfileRepository(db *sql.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*models.StoredProfile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("getting profile: user_id=%s", userID)
	return r.getProfile(ctx, squirrel.Eq{"user_id": userID})
}

func (r *profileRepository) GetByUsername(ctx context.Context, username string) (*models.StoredProfile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("getting profile: username=%s", username)
	return r.getProfile(ctx, squirrel.Eq{"username": username})
}

func (r *profileRepository) getProfile(ctx context.Context, where squirrel.Sqlizer) (*models.StoredProfile, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")

	query, args, err := sqlBuilder.Select(profileColumns...).From("profiles").Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, err
	}

	var (
		p         models.StoredProfile
		username  sql.NullString
		themeJSON string
	)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&p.ID, &p.UserID, &username, &p.DisplayName, &p.Title, &p.Bio, &p.AvatarURL,
		&themeJSON, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("profile not found")
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get profile: %v", err)
		return nil, err
	}
	p.Username = username.String

	p.Theme = models.DefaultTheme()
	if err := decodeJSON(themeJSON, &p.Theme); err != nil {
		log.Warn("profile %s has unreadable theme, using defaults: %v", p.ID, err)
		p.Theme = models.DefaultTheme()
	}
	p.Theme = p.Theme.WithDefaults()

	if p.Links, err = r.listLinks(ctx, p.ID); err != nil {
		return nil, err
	}
	if p.SocialLinks, err = r.listSocialLinks(ctx, p.ID); err != nil {
		return nil, err
	}

	log.Debug("profile %s loaded: links=%d social=%d", p.ID, len(p.Links), len(p.SocialLinks))
	return &p, nil
}

func (r *profileRepository) listLinks(ctx context.Context, profileID string) ([]models.StoredLink, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")

	query, args, err := sqlBuilder.Select(linkColumns...).From("links").
		Where(squirrel.Eq{"profile_id": profileID}).
		OrderBy("position ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list links: %v", err)
		return nil, err
	}
	defer rows.Close()

	links := []models.StoredLink{}
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			log.Error("failed to scan link row: %v", err)
			return nil, err
		}
		links = append(links, *l)
	}
	return links, rows.Err()
}

func (r *profileRepository) listSocialLinks(ctx context.Context, profileID string) ([]models.StoredSocialLink, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")

	query, args, err := sqlBuilder.Select(socialColumns...).From("social_links").
		Where(squirrel.Eq{"profile_id": profileID}).
		OrderBy("position ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list social links: %v", err)
		return nil, err
	}
	defer rows.Close()

	social := []models.StoredSocialLink{}
	for rows.Next() {
		var (
			s        models.StoredSocialLink
			settings string
		)
		if err := rows.Scan(&s.ID, &s.ProfileID, &s.Label, &s.OriginalURL, &s.Icon, &s.Position, &s.IsActive, &settings); err != nil {
			log.Error("failed to scan social link row: %v", err)
			return nil, err
		}
		if err := decodeJSON(settings, &s.Settings); err != nil {
			log.Warn("social link %s has unreadable settings: %v", s.ID, err)
		}
		social = append(social, s)
	}
	return social, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLink(row scanner) (*models.StoredLink, error) {
	var (
		l        models.StoredLink
		settings string
	)
	if err := row.Scan(&l.ID, &l.ProfileID, &l.Label, &l.OriginalURL, &l.ShortCode, &l.Icon, &l.Position, &l.IsActive, &settings); err != nil {
		return nil, err
	}
	if err := decodeJSON(settings, &l.Settings); err != nil {
		l.Settings = models.LinkSettings{}
	}
	return &l, nil
}

// UsernameOwner returns the user id holding username, or "" if it is free.
func (r *profileRepository) UsernameOwner(ctx context.Context, username string) (string, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")

	query, args, err := sqlBuilder.Select("user_id").From("profiles").Where(squirrel.Eq{"username": username}).ToSql()
	if err != nil {
		return "", err
	}
	var owner string
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		log.Error("failed to look up username owner: %v", err)
		return "", err
	}
	return owner, nil
}

func (r *profileRepository) LinkByShortCode(ctx context.Context, code string) (*models.StoredLink, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")

	query, args, err := sqlBuilder.Select(linkColumns...).From("links").Where(squirrel.Eq{"short_code": code}).ToSql()
	if err != nil {
		return nil, err
	}
	l, err := scanLink(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("short code not found: %s", code)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to resolve short code: %v", err)
		return nil, err
	}
	return l, nil
}

func (r *profileRepository) Save(ctx context.Context, ch repository.ProfileChanges) error {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	p := ch.Profile
	log.Debug("saving profile %s: create=%t links=%d deleted=%d reordered=%t social=%d",
		p.ID, ch.Create, len(ch.Links), len(ch.DeleteLinkIDs), ch.LinkOrder != nil, len(ch.SocialLinks))

	themeJSON, err := encodeJSON(p.Theme)
	if err != nil {
		return fmt.Errorf("encode theme: %w", err)
	}
	now := time.Now().UTC()

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		var stmt squirrel.Sqlizer
		if ch.Create {
			stmt = sqlBuilder.Insert("profiles").Columns(profileColumns...).Values(
				p.ID, p.UserID, nullable(p.Username), p.DisplayName, p.Title, p.Bio, p.AvatarURL, themeJSON, now, now,
			)
		} else {
			stmt = sqlBuilder.Update("profiles").SetMap(map[string]any{
				"username":     nullable(p.Username),
				"display_name": p.DisplayName,
				"title":        p.Title,
				"bio":          p.Bio,
				"avatar_url":   p.AvatarURL,
				"theme":        themeJSON,
				"updated_at":   now,
			}).Where(squirrel.Eq{"id": p.ID})
		}
		if _, err := execBuilt(ctx, tx, stmt); err != nil {
			log.Error("failed to write profile row: %v", err)
			return err
		}

		if len(ch.DeleteLinkIDs) > 0 {
			del := sqlBuilder.Delete("links").Where(squirrel.Eq{"profile_id": p.ID, "id": ch.DeleteLinkIDs})
			if _, err := execBuilt(ctx, tx, del); err != nil {
				log.Error("failed to delete links: %v", err)
				return err
			}
		}

		for _, l := range ch.Links {
			settings, err := encodeJSON(l.Settings)
			if err != nil {
				return fmt.Errorf("encode link settings: %w", err)
			}
			ins := sqlBuilder.Insert("links").
				Columns(append(linkColumns, "created_at", "updated_at")...).
				Values(l.ID, p.ID, l.Label, l.OriginalURL, l.ShortCode, l.Icon, l.Position, l.IsActive, settings, now, now).
				Suffix(linkUpsertSuffix)
			if _, err := execBuilt(ctx, tx, ins); err != nil {
				log.Error("failed to upsert link %s: %v", l.ID, err)
				return err
			}
		}

		for i, id := range ch.LinkOrder {
			upd := sqlBuilder.Update("links").Set("position", i).Where(squirrel.Eq{"id": id, "profile_id": p.ID})
			if _, err := execBuilt(ctx, tx, upd); err != nil {
				log.Error("failed to reorder link %s: %v", id, err)
				return err
			}
		}

		if _, err := execBuilt(ctx, tx, sqlBuilder.Delete("social_links").Where(squirrel.Eq{"profile_id": p.ID})); err != nil {
			log.Error("failed to clear social links: %v", err)
			return err
		}
		for _, s := range ch.SocialLinks {
			settings, err := encodeJSON(s.Settings)
			if err != nil {
				return fmt.Errorf("encode social settings: %w", err)
			}
			ins := sqlBuilder.Insert("social_links").
				Columns(socialColumns...).
				Values(s.ID, p.ID, s.Label, s.OriginalURL, s.Icon, s.Position, s.IsActive, settings)
			if _, err := execBuilt(ctx, tx, ins); err != nil {
				log.Error("failed to insert social link %s: %v", s.ID, err)
				return err
			}
		}

		log.Debug("profile %s saved", p.ID)
		return nil
	})
}

func (r *profileRepository) DeleteSocialLink(ctx context.Context, profileID, id string) (bool, error) {
	log := logger.FromContext(ctx).WithPrefix("profile_repo")
	log.Debug("deleting social link: profile_id=%s id=%s", profileID, id)

	query, args, err := sqlBuilder.Delete("social_links").Where(squirrel.Eq{"id": id, "profile_id": profileID}).ToSql()
	if err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to delete social link: %v", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
