package store

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
)

// ErrEmpty is returned by ClaimNext when the frontier has nothing
// ready to claim.
var ErrEmpty = errors.New("frontier: nothing claimable")

// Frontier is the durable work queue of §4.3: atomic enqueue, claim,
// reschedule, and fail, backed by a single Postgres table.
type Frontier struct {
	db *DB
}

// NewFrontier wraps db with the frontier operations.
func NewFrontier(db *DB) *Frontier {
	return &Frontier{db: db}
}

// Enqueue upserts url keyed by its canonical form. On first insert all
// fields are populated from the arguments; on a repeat enqueue only
// priority is lowered (never raised), matching the "priority may only
// decrease" invariant.
func (f *Frontier) Enqueue(ctx context.Context, url, source string, nextFetchAt int64, priority int, now int64) error {
	const q = `
INSERT INTO frontier (url, source, state, discovered_at, next_fetch_at, priority, tries, processing_at, last_error)
VALUES ($1, $2, 'new', $3, $4, $5, 0, NULL, '')
ON CONFLICT (url) DO UPDATE
SET priority = LEAST(frontier.priority, EXCLUDED.priority)`

	_, err := f.db.Pool.Exec(ctx, q, url, source, now, nextFetchAt, priority)
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", url, err)
	}

	return nil
}

// ClaimNext atomically selects the highest-priority ready entry
// (lowest priority, then earliest next_fetch_at, then earliest
// discovered_at) and flips it to state=processing.
func (f *Frontier) ClaimNext(ctx context.Context, now int64) (FrontierEntry, error) {
	const q = `
UPDATE frontier SET state = 'processing', processing_at = $1
WHERE url = (
	SELECT url FROM frontier
	WHERE state = 'new' AND next_fetch_at <= $1
	ORDER BY priority ASC, next_fetch_at ASC, discovered_at ASC
	LIMIT 1
	FOR UPDATE SKIP LOCKED
)
RETURNING url, source, state, discovered_at, next_fetch_at, priority, tries, processing_at, last_error`

	var (
		e            FrontierEntry
		processingAt *int64
	)

	err := f.db.Pool.QueryRow(ctx, q, now).Scan(
		&e.URL, &e.Source, &e.State, &e.DiscoveredAt, &e.NextFetchAt,
		&e.Priority, &e.Tries, &processingAt, &e.LastError,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FrontierEntry{}, ErrEmpty
		}

		return FrontierEntry{}, fmt.Errorf("claim next: %w", err)
	}

	if processingAt != nil {
		e.ProcessingAt = *processingAt
	}

	return e, nil
}

// Reschedule returns url to state=new with a future next_fetch_at and
// a cleared last_error. The caller picks nextFetchAt using the
// article or non-article revisit interval.
func (f *Frontier) Reschedule(ctx context.Context, url string, nextFetchAt int64) error {
	const q = `UPDATE frontier SET state = 'new', last_error = '', next_fetch_at = $2 WHERE url = $1`

	if _, err := f.db.Pool.Exec(ctx, q, url, nextFetchAt); err != nil {
		return fmt.Errorf("reschedule %s: %w", url, err)
	}

	return nil
}

const maxErrorLen = 4000

// Fail records a failed attempt: state returns to new, tries is
// incremented, and next_fetch_at is pushed to now+backoffSeconds.
func (f *Frontier) Fail(ctx context.Context, url, errMsg string, backoffSeconds, now int64) error {
	errMsg = truncateRunes(errMsg, maxErrorLen)

	const q = `
UPDATE frontier
SET state = 'new', last_error = $2, next_fetch_at = $3, tries = tries + 1
WHERE url = $1`

	if _, err := f.db.Pool.Exec(ctx, q, url, errMsg, now+backoffSeconds); err != nil {
		return fmt.Errorf("fail %s: %w", url, err)
	}

	return nil
}

// truncateRunes truncates s to at most n runes, matching Python's
// code-point-aware s[:n] rather than a byte-index slice that could
// split a multi-byte UTF-8 rune (last_error routinely embeds fetched
// page content, which may be Cyrillic).
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}

	r := []rune(s)

	return string(r[:n])
}
