package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/erikbos/cinetrack/database/model"
)

// GetUser retrieves a user.
func (s *SqliteRepo) GetUser(ctx context.Context, username string) (user *model.User, err error) {
	const query = `SELECT id,
		username,
		password,
		created,
		lastlogin FROM users WHERE username=? LIMIT 1`
	return sqlScanUser(s.dbReadHandle.QueryRowContext(ctx, query, username))
}

// GetUserByID retrieves a user from the database by their ID.
func (s *SqliteRepo) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	const query = `SELECT id,
		username,
		password,
		created,
		lastlogin FROM users WHERE id=? LIMIT 1`
	return sqlScanUser(s.dbReadHandle.QueryRowContext(ctx, query, userID))
}

func sqlScanUser(row *sql.Row) (*model.User, error) {
	var user model.User
	var created, lastLogin sql.NullTime
	if err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Password,
		&created,
		&lastLogin); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	user.Created = created.Time
	user.LastLogin = lastLogin.Time
	return &user, nil
}

// UpsertUser upserts a user into the database.
func (s *SqliteRepo) UpsertUser(ctx context.Context, user *model.User) error {
	const query = `INSERT INTO users (id, username, password, created, lastlogin) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			username = excluded.username,
			password = excluded.password,
			lastlogin = excluded.lastlogin`
	_, err := s.dbWriteHandle.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Password,
		user.Created.UTC(),
		user.LastLogin.UTC())
	return err
}

// DeleteUser deletes a user, favorites, history and ratings are removed by cascade.
func (s *SqliteRepo) DeleteUser(ctx context.Context, userID string) error {
	res, err := s.dbWriteHandle.ExecContext(ctx, `DELETE FROM users WHERE id=?`, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrUserNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for token, t := range s.accessTokenCache {
		if t.UserID == userID {
			delete(s.accessTokenCache, token)
		}
	}
	return nil
}
