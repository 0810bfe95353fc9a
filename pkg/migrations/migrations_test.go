package migrations

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSchema = `create table if not exists kv (
	k text primary key,
	v text not null
);`

func TestIsRemote(t *testing.T) {
	require.True(t, IsRemote("libsql://films-org.turso.io"))
	require.True(t, IsRemote("http://127.0.0.1:8080"))
	require.True(t, IsRemote("wss://db.example.com"))
	require.False(t, IsRemote("films.db"))
	require.False(t, IsRemote("file:films.db"))
	require.False(t, IsRemote(":memory:"))
	require.False(t, IsRemote("<dev_state>/films.db"))
}

func TestWithAuthToken(t *testing.T) {
	dsn, err := withAuthToken("libsql://films.turso.io", "secret")
	require.NoError(t, err)
	require.Equal(t, "libsql://films.turso.io?authToken=secret", dsn)

	dsn, err = withAuthToken("libsql://films.turso.io?authToken=mine", "secret")
	require.NoError(t, err)
	require.Equal(t, "libsql://films.turso.io?authToken=mine", dsn)

	dsn, err = withAuthToken("http://127.0.0.1:8080", "")
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:8080", dsn)
}

func TestOpenAndMigrateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "films.db")

	db, err := OpenAndMigrateDB(testSchema, path, "")
	require.NoError(t, err)
	_, err = db.Exec("insert into kv (k, v) values ('a', 'b')")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// migrating again must keep existing rows
	db, err = OpenAndMigrateDB(testSchema, "file:"+path, "")
	require.NoError(t, err)
	defer db.Close()

	var v string
	err = db.QueryRow("select v from kv where k = 'a'").Scan(&v)
	require.NoError(t, err)
	require.Equal(t, "b", v)
}

func TestOpenDBRequiresConnection(t *testing.T) {
	_, err := OpenDB("", "")
	require.Error(t, err)
}
