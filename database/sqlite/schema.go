package sqlite

import (
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

func dbInitSchema(d *sqlx.DB, log zerolog.Logger) error {
	schema := []string{
		// This is needed to improve concurrent reads and writes.
		`PRAGMA journal_mode = WAL;`,

		`CREATE TABLE IF NOT EXISTS users (
id TEXT NOT NULL PRIMARY KEY,
username TEXT NOT NULL,
password TEXT NOT NULL,
created DATETIME,
lastlogin DATETIME);`,

		`CREATE UNIQUE INDEX IF NOT EXISTS users_name_idx ON users (username);`,

		`CREATE TABLE IF NOT EXISTS accesstokens (
userid TEXT NOT NULL,
token TEXT NOT NULL,
created DATETIME,
lastused DATETIME,
FOREIGN KEY (userid) REFERENCES users(id) ON DELETE CASCADE);`,

		`CREATE UNIQUE INDEX IF NOT EXISTS accesstokens_idx ON accesstokens (userid, token);`,

		`CREATE TABLE IF NOT EXISTS movies (
id TEXT NOT NULL PRIMARY KEY,
title TEXT NOT NULL,
description TEXT NOT NULL DEFAULT '',
duration INTEGER NOT NULL CHECK (duration > 0),
year INTEGER NOT NULL DEFAULT 0,
poster TEXT NOT NULL DEFAULT '',
streamurl TEXT NOT NULL,
created DATETIME NOT NULL);`,

		`CREATE INDEX IF NOT EXISTS movies_title_idx ON movies (title);`,

		`CREATE TABLE IF NOT EXISTS genres (
id TEXT NOT NULL PRIMARY KEY,
name TEXT NOT NULL);`,

		`CREATE UNIQUE INDEX IF NOT EXISTS genres_name_idx ON genres (name);`,

		`CREATE TABLE IF NOT EXISTS movie_genres (
movieid TEXT NOT NULL,
genreid TEXT NOT NULL,
PRIMARY KEY (movieid, genreid),
FOREIGN KEY (movieid) REFERENCES movies(id) ON DELETE CASCADE,
FOREIGN KEY (genreid) REFERENCES genres(id) ON DELETE CASCADE);`,

		`CREATE TABLE IF NOT EXISTS favorites (
userid TEXT NOT NULL,
movieid TEXT NOT NULL,
created DATETIME NOT NULL,
PRIMARY KEY (userid, movieid),
FOREIGN KEY (userid) REFERENCES users(id) ON DELETE CASCADE,
FOREIGN KEY (movieid) REFERENCES movies(id) ON DELETE CASCADE);`,

		`CREATE TABLE IF NOT EXISTS watchhistory (
userid TEXT NOT NULL,
movieid TEXT NOT NULL,
position INTEGER NOT NULL DEFAULT 0 CHECK (position >= 0),
completed BOOLEAN NOT NULL DEFAULT 0,
lastwatched DATETIME NOT NULL,
PRIMARY KEY (userid, movieid),
FOREIGN KEY (userid) REFERENCES users(id) ON DELETE CASCADE,
FOREIGN KEY (movieid) REFERENCES movies(id) ON DELETE CASCADE);`,

		`CREATE INDEX IF NOT EXISTS watchhistory_movie_idx ON watchhistory (movieid);`,

		`CREATE TABLE IF NOT EXISTS ratings (
userid TEXT NOT NULL,
movieid TEXT NOT NULL,
score INTEGER NOT NULL CHECK (score BETWEEN 1 AND 5),
review TEXT NOT NULL DEFAULT '',
created DATETIME NOT NULL,
modified DATETIME NOT NULL,
PRIMARY KEY (userid, movieid),
FOREIGN KEY (userid) REFERENCES users(id) ON DELETE CASCADE,
FOREIGN KEY (movieid) REFERENCES movies(id) ON DELETE CASCADE);`,

		`CREATE INDEX IF NOT EXISTS ratings_movie_idx ON ratings (movieid);`,
	}

	for _, query := range schema {
		if _, err := d.Exec(query); err != nil {
			log.Error().Err(err).Msg("dbInitSchema")
			return err
		}
	}
	return nil
}
