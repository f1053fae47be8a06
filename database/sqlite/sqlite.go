package sqlite

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/erikbos/cinetrack/database/model"
)

type SqliteRepo struct {
	// Read db handle
	dbReadHandle *sqlx.DB
	// Handle specfically for writes
	dbWriteHandle *sqlx.DB
	// in-memory access token store, last used times are written to the database periodically.
	accessTokenCache map[string]*model.AccessToken
	// last time the access token cache was synced to the database
	accessTokenCacheSyncTime time.Time
	// mutex to protect access to in-memory stores
	mu  sync.Mutex
	log zerolog.Logger
	// now returns the current time, replaceable in tests.
	now func() time.Time
}

// ConfigFile holds configuration options
type ConfigFile struct {
	Filename string `yaml:"filename"`
}

// New initializes a sqlite database and creates schema if necssary.
func New(o *ConfigFile, logger zerolog.Logger) (*SqliteRepo, error) {
	if o == nil || o.Filename == "" {
		return nil, model.ErrNoConfiguration
	}

	// foreign keys must be enabled per connection, otherwise cascade deletes won't happen.
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", o.Filename)

	dbHandle, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	dbHandle.SetMaxOpenConns(max(4, runtime.NumCPU()))

	writeDB, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		dbHandle.Close()
		return nil, err
	}
	// sqlite needs to have a single writer
	writeDB.SetMaxOpenConns(1)

	log := logger.With().Str("component", "sqlite").Logger()
	if err := dbInitSchema(writeDB, log); err != nil {
		dbHandle.Close()
		writeDB.Close()
		return nil, err
	}

	d := &SqliteRepo{
		dbReadHandle:     dbHandle,
		dbWriteHandle:    writeDB,
		accessTokenCache: make(map[string]*model.AccessToken),
		log:              log,
		now:              func() time.Time { return time.Now().UTC() },
	}
	return d, nil
}

// StartBackgroundJobs starts background jobs for the database repository.
// these jobs handle periodic syncing of in-memory caches to the database.
func (s *SqliteRepo) StartBackgroundJobs(ctx context.Context) {
	syncInterval := 10 * time.Second

	go s.accessTokenBackgroundJob(ctx, syncInterval)
}

// Close closes both database handles.
func (s *SqliteRepo) Close() error {
	rerr := s.dbReadHandle.Close()
	if err := s.dbWriteHandle.Close(); err != nil {
		return err
	}
	return rerr
}
