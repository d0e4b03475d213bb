// Package fetchworker implements the claim-fetch-extract-save-enqueue
// loop each crawler worker runs against the frontier and corpus
// stores.
package fetchworker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/vkarelin/newscrawl/internal/extract"
	"github.com/vkarelin/newscrawl/internal/health"
	"github.com/vkarelin/newscrawl/internal/pacer"
	"github.com/vkarelin/newscrawl/internal/store"
	"github.com/vkarelin/newscrawl/internal/urlkey"
)

const (
	idleSleep         = 200 * time.Millisecond
	connectTimeout    = 5 * time.Second
	transientBackoff  = 60
	maxRetriesBackoff = 3600
)

// Clock abstracts time.Now so tests can control it; production code
// uses realClock.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// FrontierStore is the subset of *store.Frontier the worker loop
// needs, narrowed to an interface so tests can substitute a fake.
type FrontierStore interface {
	ClaimNext(ctx context.Context, now int64) (store.FrontierEntry, error)
	Enqueue(ctx context.Context, url, source string, nextFetchAt int64, priority int, now int64) error
	Reschedule(ctx context.Context, url string, nextFetchAt int64) error
	Fail(ctx context.Context, url, errMsg string, backoffSeconds, now int64) error
}

// CorpusStore is the subset of *store.Corpus the worker loop needs.
type CorpusStore interface {
	SaveArticleIfChanged(ctx context.Context, url, source, html string, now int64) (store.SaveOutcome, error)
}

// Config carries the tunables of §6's logic.* block that the worker
// loop needs.
type Config struct {
	RequestTimeout    time.Duration
	MaxRetries        int
	RecrawlAfter      time.Duration
	NonArticleRefetch time.Duration
	LinksPerPage      int
}

// Worker claims entries from frontier, fetches them, and feeds the
// corpus and frontier back. One Worker owns one *http.Client; workers
// never share a client.
type Worker struct {
	id       string
	frontier FrontierStore
	corpus   CorpusStore
	pacer    *pacer.Pacer
	client   *http.Client
	cfg      Config
	log      zerolog.Logger
	clock    Clock
}

// New builds a worker with its own HTTP client.
func New(id string, frontier FrontierStore, corpus CorpusStore, p *pacer.Pacer, cfg Config, log zerolog.Logger) *Worker {
	return &Worker{
		id:       id,
		frontier: frontier,
		corpus:   corpus,
		pacer:    p,
		cfg:      cfg,
		log:      log.With().Str("worker_id", id).Logger(),
		clock:    realClock{},
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
			},
		},
	}
}

// Run loops claiming and processing frontier entries until ctx is
// canceled. It never returns an error for an individual job failure:
// those are funneled into reschedule/fail. It only returns when ctx
// is done.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		entry, err := w.frontier.ClaimNext(ctx, w.clock.Now().Unix())
		if err != nil {
			if errors.Is(err, store.ErrEmpty) {
				health.ClaimEmptyTotal.Inc()

				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(idleSleep):
				}

				continue
			}

			w.log.Error().Err(err).Msg("claim failed")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(idleSleep):
			}

			continue
		}

		health.ClaimsTotal.Inc()
		w.process(ctx, entry)
	}
}

// process runs one claim→fetch→save→enqueue→reschedule cycle for a
// single claimed entry, translating any failure into a fail-update.
func (w *Worker) process(ctx context.Context, entry store.FrontierEntry) {
	isArticle := urlkey.IsArticle(entry.URL)

	if err := w.pacer.Wait(ctx, entry.URL); err != nil {
		w.log.Warn().Err(err).Str("url", entry.URL).Msg("pacer wait canceled")
		return
	}

	start := w.clock.Now()

	body, err := w.fetch(ctx, entry.URL)

	health.FetchDurationSeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		health.FetchesTotal.WithLabelValues("error").Inc()
		w.fail(ctx, entry, err)

		return
	}

	health.FetchesTotal.WithLabelValues("ok").Inc()

	if isArticle {
		outcome, err := w.corpus.SaveArticleIfChanged(ctx, entry.URL, entry.Source, body, w.clock.Now().Unix())
		if err != nil {
			w.log.Warn().Err(err).Str("url", entry.URL).Msg("save article failed")
		} else {
			health.SavesTotal.WithLabelValues(outcome.String()).Inc()
		}
	}

	w.enqueueLinks(ctx, entry, body)
	w.reschedule(ctx, entry.URL, isArticle)
}

// fetch issues the GET and returns the body as text, or an error
// tagged bad_status for out-of-range responses.
func (w *Worker) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return "", fmt.Errorf("bad_status=%d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body of %s: %w", rawURL, err)
	}

	return string(data), nil
}

func (w *Worker) enqueueLinks(ctx context.Context, entry store.FrontierEntry, body string) {
	base, err := url.Parse(entry.URL)
	if err != nil {
		return
	}

	links := extract.ExtractLinks(base, body, w.cfg.LinksPerPage)
	now := w.clock.Now().Unix()

	for _, link := range links {
		source, ok := urlkey.Publisher(link)
		if !ok {
			continue
		}

		priority := 1
		nextFetchAt := now + int64(w.cfg.NonArticleRefetch.Seconds())

		if urlkey.IsArticle(link) {
			priority = 0
			nextFetchAt = now
		}

		if err := w.frontier.Enqueue(ctx, link, source, nextFetchAt, priority, now); err != nil {
			w.log.Warn().Err(err).Str("url", link).Msg("enqueue link failed")
			continue
		}

		health.LinksEnqueuedTotal.Inc()
	}
}

func (w *Worker) reschedule(ctx context.Context, rawURL string, isArticle bool) {
	interval := w.cfg.NonArticleRefetch
	if isArticle {
		interval = w.cfg.RecrawlAfter
	}

	nextFetchAt := w.clock.Now().Add(interval).Unix()

	if err := w.frontier.Reschedule(ctx, rawURL, nextFetchAt); err != nil {
		w.log.Warn().Err(err).Str("url", rawURL).Msg("reschedule failed")
	}
}

// fail translates a thrown error into a fail-update, choosing the
// one-hour backoff once the retry budget is exhausted.
func (w *Worker) fail(ctx context.Context, entry store.FrontierEntry, cause error) {
	backoff := int64(transientBackoff)
	msg := cause.Error()

	if entry.Tries+1 >= w.cfg.MaxRetries {
		backoff = maxRetriesBackoff
		msg = "max_retries: " + msg
	}

	if err := w.frontier.Fail(ctx, entry.URL, msg, backoff, w.clock.Now().Unix()); err != nil {
		w.log.Warn().Err(err).Str("url", entry.URL).Msg("fail-update itself failed")
	}
}
