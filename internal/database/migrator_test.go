package database

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingFiles_SortedAndFiltered(t *testing.T) {
	files := fstest.MapFS{
		"010_later.sql":    {Data: []byte("SELECT 1;")},
		"001_first.sql":    {Data: []byte("SELECT 1;")},
		"005_reset_db.sql": {Data: []byte("DROP TABLE users;")},
		"notes.txt":        {Data: []byte("ignored")},
	}

	names, err := PendingFiles(files)

	require.NoError(t, err)
	assert.Equal(t, []string{"001_first.sql", "010_later.sql"}, names)
}

func TestEmbeddedMigrations_ArePresent(t *testing.T) {
	sub, err := fs.Sub(embeddedMigrations, "migrations")
	require.NoError(t, err)

	names, err := PendingFiles(sub)

	require.NoError(t, err)
	assert.Equal(t, []string{"001_core_schema.sql", "002_requests_and_settings.sql"}, names)
}
