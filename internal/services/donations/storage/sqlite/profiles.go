package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/foodshare/internal/services/donations/domain"
	"github.com/louisbranch/foodshare/internal/services/donations/storage"
)

const profileColumns = `id, display_name, phone, role, locale, telegram_chat_id, created_at`

// InsertProfile stores a new profile. Profiles are insert-only; a second
// insert for the same id reports ErrAlreadyExists.
func (s *Store) InsertProfile(ctx context.Context, p domain.Profile) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("profile id is required")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO profiles (`+profileColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.DisplayName, p.Phone, string(p.Role), p.Locale, p.TelegramChatID, toMillis(p.CreatedAt),
	); err != nil {
		return classifyError("insert profile", err)
	}
	return nil
}

// GetProfile loads one profile by id.
func (s *Store) GetProfile(ctx context.Context, profileID string) (domain.Profile, error) {
	if err := s.ready(ctx); err != nil {
		return domain.Profile{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, strings.TrimSpace(profileID))
	p, err := scanProfile(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, storage.ErrNotFound
	}
	if err != nil {
		return domain.Profile{}, classifyError("get profile", err)
	}
	return p, nil
}

// ListProfilesByRole lists every profile holding role, oldest first.
func (s *Store) ListProfilesByRole(ctx context.Context, role domain.Role) ([]domain.Profile, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE role = ? ORDER BY created_at ASC, id ASC`, string(role))
	if err != nil {
		return nil, classifyError("list profiles", err)
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan profile row: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError("iterate profiles", err)
	}
	return profiles, nil
}

func scanProfile(scan func(dest ...any) error) (domain.Profile, error) {
	var (
		p         domain.Profile
		role      string
		createdAt int64
	)
	if err := scan(&p.ID, &p.DisplayName, &p.Phone, &role, &p.Locale, &p.TelegramChatID, &createdAt); err != nil {
		return domain.Profile{}, err
	}
	p.Role = domain.Role(role)
	p.CreatedAt = fromMillis(createdAt)
	return p, nil
}
