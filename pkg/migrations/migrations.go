package migrations

import (
	devenv "animfilms-backend/dev/env"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

func wrapOpenDB(err error) error {
	return fmt.Errorf("open db: %w", err)
}

// IsRemote reports whether the connection string points at a libsql server
// rather than a local sqlite file.
func IsRemote(conn string) bool {
	u, err := url.Parse(conn)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "libsql", "http", "https", "ws", "wss":
		return true
	}
	return false
}

// OpenDB opens a database from a connection string.
//
//   - `libsql://`, `http(s)://` and `ws(s)://` urls are opened with the libsql client,
//     authToken is appended to the url if it doesn't carry one already.
//   - anything else is a sqlite file path (optionally prefixed with `file:` or `<dev_state>`),
//     or `:memory:`.
func OpenDB(conn, authToken string) (*sql.DB, error) {
	if conn == "" {
		return nil, wrapOpenDB(fmt.Errorf("a connection string was not specified"))
	}

	if IsRemote(conn) {
		dsn, err := withAuthToken(conn, authToken)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
		db, err := sql.Open("libsql", dsn)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
		return db, nil
	}

	path, err := devenv.ResolvePath(strings.TrimPrefix(conn, "file:"))
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	if path != ":memory:" {
		err = os.MkdirAll(filepath.Dir(path), 0777)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrapOpenDB(err)
	}

	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	// (for :memory: it also keeps every query on the same in-memory database)
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		return nil, wrapOpenDB(err)
	}

	return db, nil
}

func withAuthToken(conn, authToken string) (string, error) {
	if authToken == "" {
		return conn, nil
	}
	u, err := url.Parse(conn)
	if err != nil {
		return "", err
	}
	query := u.Query()
	if query.Get("authToken") != "" {
		return conn, nil
	}
	query.Set("authToken", authToken)
	u.RawQuery = query.Encode()
	return u.String(), nil
}

func wrapOpenAndMigrate(err error) error {
	return fmt.Errorf("open and migrate db: %w", err)
}

// OpenAndMigrateDB opens the database and applies schema, the schema is expected
// to only contain idempotent `create ... if not exists` statements.
func OpenAndMigrateDB(schema, conn, authToken string) (*sql.DB, error) {
	db, err := OpenDB(conn, authToken)
	if err != nil {
		return nil, wrapOpenAndMigrate(err)
	}
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		// statements are executed one by one, not every driver accepts batches
		_, err = db.Exec(stmt)
		if err != nil {
			db.Close()
			return nil, wrapOpenAndMigrate(err)
		}
	}
	return db, nil
}
