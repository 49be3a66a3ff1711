package catalog

import (
	"context"
	"os"
	"testing"

	"rpy-translator/internal/export"
	"rpy-translator/internal/textutil"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestCatalog connects to TEST_DATABASE_URL and gives each test a clean
// table. Tests are skipped when no database is configured.
func openTestCatalog(t *testing.T) (*Catalog, *pgxpool.Pool) {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	c := New(pool, 2)
	require.NoError(t, c.EnsureSchema(ctx))
	_, err = pool.Exec(ctx, `DELETE FROM script_units WHERE file LIKE 'catalog_test/%'`)
	require.NoError(t, err)
	return c, pool
}

func unit(line int, original, current string) export.Unit {
	return export.Unit{
		File:     "catalog_test/script.rpy",
		Line:     line,
		Type:     "dialogue",
		Context:  "label",
		Original: original,
		Current:  current,
		Hash:     textutil.Hash(original),
	}
}

func TestCatalog_SyncAndEdits(t *testing.T) {
	c, pool := openTestCatalog(t)
	ctx := context.Background()
	file := "catalog_test/script.rpy"

	require.NoError(t, c.Sync(ctx, file, []export.Unit{
		unit(2, "Hello", "Hello"),
		unit(3, "Bye", "Bye"),
		unit(5, "Later", "Later"),
	}))

	edits, err := c.Edits(ctx, file)
	require.NoError(t, err)
	assert.Empty(t, edits)

	_, err = pool.Exec(ctx, `UPDATE script_units SET current_text = 'Merhaba' WHERE file = $1 AND line_index = 1`, file)
	require.NoError(t, err)

	// Cached until the next sync.
	edits, err = c.Edits(ctx, file)
	require.NoError(t, err)
	assert.Empty(t, edits)

	// Re-syncing the same source keeps the edit and prunes line 5.
	require.NoError(t, c.Sync(ctx, file, []export.Unit{
		unit(2, "Hello", "Hello"),
		unit(3, "Bye", "Bye"),
	}))
	edits, err = c.Edits(ctx, file)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{1: "Merhaba"}, edits)

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM script_units WHERE file = $1`, file).Scan(&count))
	assert.Equal(t, 2, count)

	// A changed source line drops the stale edit.
	require.NoError(t, c.Sync(ctx, file, []export.Unit{
		unit(2, "Hello there", "Hello there"),
		unit(3, "Bye", "Bye"),
	}))
	edits, err = c.Edits(ctx, file)
	require.NoError(t, err)
	assert.Empty(t, edits)
}

func TestNew_ClampsBatchSize(t *testing.T) {
	c := New(nil, 0)
	assert.Equal(t, 1, c.batchSize)
	assert.NotNil(t, c.memory)
}
