package catalog

import (
	"context"
	"fmt"
	"sync"

	"rpy-translator/internal/export"
	"rpy-translator/internal/worker"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS script_units (
	file           TEXT        NOT NULL,
	line_index     INTEGER     NOT NULL,
	hash           TEXT        NOT NULL,
	item_type      TEXT        NOT NULL,
	context        TEXT        NOT NULL,
	language       TEXT        NOT NULL DEFAULT '',
	original_text  TEXT        NOT NULL,
	extracted_text TEXT        NOT NULL,
	current_text   TEXT        NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (file, line_index)
)`

// upsertSQL keeps an edited current_text as long as the line still holds
// the same source and extracted text; otherwise the edit is discarded.
const upsertSQL = `
INSERT INTO script_units
	(file, line_index, hash, item_type, context, language, original_text, extracted_text, current_text)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
ON CONFLICT (file, line_index) DO UPDATE SET
	current_text = CASE
		WHEN script_units.hash = EXCLUDED.hash AND script_units.extracted_text = EXCLUDED.extracted_text
		THEN script_units.current_text
		ELSE EXCLUDED.current_text
	END,
	hash           = EXCLUDED.hash,
	item_type      = EXCLUDED.item_type,
	context        = EXCLUDED.context,
	language       = EXCLUDED.language,
	original_text  = EXCLUDED.original_text,
	extracted_text = EXCLUDED.extracted_text,
	updated_at     = now()`

const pruneSQL = `DELETE FROM script_units WHERE file = $1 AND NOT (line_index = ANY($2))`

const editsSQL = `
SELECT line_index, current_text
FROM script_units
WHERE file = $1 AND current_text <> extracted_text
ORDER BY line_index`

// Catalog stores extracted units in PostgreSQL so they can be edited outside
// the tool and applied back later. Edits are cached in memory per file.
type Catalog struct {
	pool      *pgxpool.Pool
	batchSize int

	mu     sync.RWMutex
	memory map[string]map[int]string // file → line index → edited text
}

// New creates a catalog backed by pool. Units are written batchSize rows
// per round trip.
func New(pool *pgxpool.Pool, batchSize int) *Catalog {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Catalog{
		pool:      pool,
		batchSize: batchSize,
		memory:    make(map[string]map[int]string),
	}
}

// EnsureSchema creates the units table if needed.
func (c *Catalog) EnsureSchema(ctx context.Context) error {
	if _, err := c.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create script_units: %w", err)
	}
	return nil
}

// Sync makes the stored units of file match units: rows are upserted and
// rows for lines that no longer carry text are removed.
func (c *Catalog) Sync(ctx context.Context, file string, units []export.Unit) error {
	indexes := make([]int32, 0, len(units))
	for _, u := range units {
		indexes = append(indexes, int32(u.Line-1))
	}

	for _, chunk := range worker.Batch(units, c.batchSize) {
		batch := &pgx.Batch{}
		for _, u := range chunk {
			batch.Queue(upsertSQL, file, u.Line-1, u.Hash, u.Type, u.Context, u.Language, u.Original, u.Current)
		}
		if err := c.pool.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("upsert units for %s: %w", file, err)
		}
	}

	if _, err := c.pool.Exec(ctx, pruneSQL, file, indexes); err != nil {
		return fmt.Errorf("prune units for %s: %w", file, err)
	}

	c.mu.Lock()
	delete(c.memory, file)
	c.mu.Unlock()

	log.Debug().Str("file", file).Int("units", len(units)).Msg("Synced units")
	return nil
}

// Edits returns the edited texts stored for file, keyed by line index.
func (c *Catalog) Edits(ctx context.Context, file string) (map[int]string, error) {
	c.mu.RLock()
	if m, ok := c.memory[file]; ok {
		c.mu.RUnlock()
		return m, nil
	}
	c.mu.RUnlock()

	rows, err := c.pool.Query(ctx, editsSQL, file)
	if err != nil {
		return nil, fmt.Errorf("query edits for %s: %w", file, err)
	}
	defer rows.Close()

	edits := make(map[int]string)
	for rows.Next() {
		var (
			line int32
			text string
		)
		if err := rows.Scan(&line, &text); err != nil {
			return nil, fmt.Errorf("scan edit: %w", err)
		}
		edits[int(line)] = text
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read edits for %s: %w", file, err)
	}

	c.mu.Lock()
	c.memory[file] = edits
	c.mu.Unlock()

	return edits, nil
}
