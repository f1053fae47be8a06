package sqlite

import (
	"context"
	"time"

	"github.com/erikbos/cinetrack/database/model"
	"github.com/erikbos/cinetrack/idhash"
)

// CreateAccessToken creates new token.
func (s *SqliteRepo) CreateAccessToken(ctx context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	t := &model.AccessToken{
		Token:    idhash.NewRandomID(),
		UserID:   userID,
		Created:  now,
		LastUsed: now,
	}
	// Store accesstoken in database
	if err := s.storeToken(ctx, *t); err != nil {
		return "", err
	}

	// Store accesstoken in memory
	s.accessTokenCache[t.Token] = t

	return t.Token, nil
}

// GetAccessToken returns accesstoken details based upon tokenid.
func (s *SqliteRepo) GetAccessToken(ctx context.Context, token string) (*model.AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Try our in-memory store first
	if at, ok := s.accessTokenCache[token]; ok {
		// Update token timestamp so we can keep track of in-use tokens
		at.LastUsed = s.now()
		return at, nil
	}

	// try database
	var t model.AccessToken
	sqlerr := s.dbReadHandle.GetContext(ctx, &t,
		"SELECT userid, token, created, lastused FROM accesstokens WHERE token=? LIMIT 1", token)
	if sqlerr == nil {
		t.LastUsed = s.now()
		s.accessTokenCache[token] = &t
		return &t, nil
	}

	return nil, model.ErrNotFound
}

// accessTokenBackgroundJob writes changed accesstokens to database.
func (s *SqliteRepo) accessTokenBackgroundJob(ctx context.Context, interval time.Duration) {
	s.mu.Lock()
	s.accessTokenCacheSyncTime = s.now()
	s.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.writeChangedAccessTokensToDB(ctx); err != nil {
				s.log.Error().Err(err).Msg("cannot write access tokens to db")
			}
		}
	}
}

// writeChangedAccessTokensToDB writes updated access tokens to db to persist last use date.
func (s *SqliteRepo) writeChangedAccessTokensToDB(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, value := range s.accessTokenCache {
		if value.LastUsed.After(s.accessTokenCacheSyncTime) {
			if err := s.storeToken(ctx, *value); err != nil {
				return err
			}
		}
	}
	s.accessTokenCacheSyncTime = s.now()
	return nil
}

// storeToken stores an access token in the database
func (s *SqliteRepo) storeToken(ctx context.Context, t model.AccessToken) error {
	if s.dbWriteHandle == nil {
		return model.ErrNoDbHandle
	}
	_, err := s.dbWriteHandle.NamedExecContext(ctx, `INSERT OR REPLACE INTO accesstokens (userid, token, created, lastused)
		VALUES (:userid, :token, :created, :lastused)`,
		map[string]any{
			"userid":   t.UserID,
			"token":    t.Token,
			"created":  t.Created.UTC(),
			"lastused": t.LastUsed.UTC(),
		})
	return err
}
