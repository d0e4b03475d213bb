package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
)

// Extractor produces article text from a canonical URL and raw HTML,
// satisfied by internal/extract.
type Extractor interface {
	ExtractArticle(canonicalURL, html string) string
}

// Corpus is the durable article table of §4.4, with change-aware
// upsert and an in-memory per-source saved counter used only for
// observability.
type Corpus struct {
	db        *DB
	extractor Extractor

	mu     sync.Mutex
	saved  map[string]int64
}

// NewCorpus wraps db with the corpus operations. extractor is used to
// turn HTML into article text when the hash has changed.
func NewCorpus(db *DB, extractor Extractor) *Corpus {
	return &Corpus{db: db, extractor: extractor, saved: make(map[string]int64)}
}

// SaveArticleIfChanged implements §4.4's single operation: hash the
// body; if the hash is unchanged, only refresh fetched_at and source;
// otherwise extract and upsert.
func (c *Corpus) SaveArticleIfChanged(ctx context.Context, url, source, html string, now int64) (SaveOutcome, error) {
	sum := sha256.Sum256([]byte(html))
	hash := hex.EncodeToString(sum[:])

	existingHash, err := c.lookupHash(ctx, url)
	if err != nil {
		return SaveUnchanged, err
	}

	if existingHash != "" && existingHash == hash {
		const q = `UPDATE corpus SET fetched_at = $2, source = $3 WHERE url = $1`
		if _, err := c.db.Pool.Exec(ctx, q, url, now, source); err != nil {
			return SaveUnchanged, fmt.Errorf("touch fetched_at for %s: %w", url, err)
		}

		return SaveUnchanged, nil
	}

	text := c.extractor.ExtractArticle(url, html)
	if text == "" {
		return SaveNoText, nil
	}

	const upsert = `
INSERT INTO corpus (url, source, fetched_at, html, text, html_hash)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (url) DO UPDATE
SET source = EXCLUDED.source, fetched_at = EXCLUDED.fetched_at,
    html = EXCLUDED.html, text = EXCLUDED.text, html_hash = EXCLUDED.html_hash
RETURNING (xmax = 0) AS inserted`

	var inserted bool
	if err := c.db.Pool.QueryRow(ctx, upsert, url, source, now, html, text, hash).Scan(&inserted); err != nil {
		return SaveUnchanged, fmt.Errorf("upsert corpus entry for %s: %w", url, err)
	}

	if inserted {
		c.mu.Lock()
		c.saved[source]++
		c.mu.Unlock()
	}

	return SaveWritten, nil
}

func (c *Corpus) lookupHash(ctx context.Context, url string) (string, error) {
	const q = `SELECT html_hash FROM corpus WHERE url = $1`

	var hash string

	err := c.db.Pool.QueryRow(ctx, q, url).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("lookup corpus entry for %s: %w", url, err)
	}

	return hash, nil
}

// SavedCount returns the in-memory saved-document counter for source,
// used only for observability (survives no restart).
func (c *Corpus) SavedCount(source string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.saved[source]
}
