package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/theConCreator/OnyxShopbot/model"
)

// Store keeps the ban list and publish times in SQL so they survive restarts.
type Store struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

func NewStore(conn *sql.DB, driver string) (*Store, error) {
	ph, err := placeholders(driver)
	if err != nil {
		return nil, err
	}
	return &Store{db: conn, sb: sq.StatementBuilder.PlaceholderFormat(ph)}, nil
}

// Get returns the stored state, or a zero state when the user has no row yet.
func (s *Store) Get(ctx context.Context, userID int64) (model.AccessState, error) {
	query, args, err := s.sb.
		Select("banned", "last_published_at").
		From("access_state").
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return model.AccessState{}, err
	}

	st := model.AccessState{UserID: userID}
	var banned int
	var last sql.NullInt64
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&banned, &last)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return st, nil
		}
		return st, err
	}

	st.Banned = banned != 0
	if last.Valid {
		st.LastPublishedAt = time.UnixMilli(last.Int64)
	}
	return st, nil
}

func (s *Store) SetBanned(ctx context.Context, userID int64, banned bool) error {
	v := 0
	if banned {
		v = 1
	}
	return s.upsert(ctx, userID, "banned", v)
}

func (s *Store) SetLastPublished(ctx context.Context, userID int64, at time.Time) error {
	return s.upsert(ctx, userID, "last_published_at", at.UnixMilli())
}

func (s *Store) upsert(ctx context.Context, userID int64, column string, value any) error {
	query, args, err := s.sb.
		Insert("access_state").
		Columns("user_id", column).
		Values(userID, value).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET " + column + " = excluded." + column).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}
