package fetchworker

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vkarelin/newscrawl/internal/pacer"
	"github.com/vkarelin/newscrawl/internal/store"
)

type fakeFrontier struct {
	failed       []string
	failBackoffs []int64
	rescheduled  []string
	enqueued     []string
}

func (f *fakeFrontier) ClaimNext(context.Context, int64) (store.FrontierEntry, error) {
	return store.FrontierEntry{}, store.ErrEmpty
}

func (f *fakeFrontier) Enqueue(_ context.Context, url, _ string, _ int64, _ int, _ int64) error {
	f.enqueued = append(f.enqueued, url)
	return nil
}

func (f *fakeFrontier) Reschedule(_ context.Context, url string, _ int64) error {
	f.rescheduled = append(f.rescheduled, url)
	return nil
}

func (f *fakeFrontier) Fail(_ context.Context, url, _ string, backoff, _ int64) error {
	f.failed = append(f.failed, url)
	f.failBackoffs = append(f.failBackoffs, backoff)

	return nil
}

type fakeCorpus struct{ saved int }

func (f *fakeCorpus) SaveArticleIfChanged(context.Context, string, string, string, int64) (store.SaveOutcome, error) {
	f.saved++
	return store.SaveWritten, nil
}

func newTestWorker(frontier FrontierStore, corpus CorpusStore) *Worker {
	return New("test", frontier, corpus, pacer.New(time.Millisecond), Config{
		RequestTimeout:    time.Second,
		MaxRetries:        3,
		RecrawlAfter:      time.Hour,
		NonArticleRefetch: time.Minute,
		LinksPerPage:      10,
	}, zerolog.Nop())
}

func TestFailBackoffBeforeRetriesExhausted(t *testing.T) {
	ff := &fakeFrontier{}
	w := newTestWorker(ff, &fakeCorpus{})

	entry := store.FrontierEntry{URL: "https://lenta.ru/x", Tries: 0}
	w.fail(context.Background(), entry, errors.New("boom"))

	require.Equal(t, []string{"https://lenta.ru/x"}, ff.failed)
	require.Equal(t, []int64{int64(transientBackoff)}, ff.failBackoffs)
}

func TestFailBackoffOnceRetriesExhausted(t *testing.T) {
	ff := &fakeFrontier{}
	w := newTestWorker(ff, &fakeCorpus{})

	entry := store.FrontierEntry{URL: "https://lenta.ru/x", Tries: 2}
	w.fail(context.Background(), entry, errors.New("boom"))

	require.Equal(t, []int64{int64(maxRetriesBackoff)}, ff.failBackoffs)
}

func TestProcessNonArticleReschedulesWithoutSaving(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		rw.Write([]byte(`<html><body><h1>T</h1><article><p>` +
			`this paragraph is definitely over forty characters long` +
			`</p></article></body></html>`))
	}))
	defer server.Close()

	ff := &fakeFrontier{}
	fc := &fakeCorpus{}
	w := newTestWorker(ff, fc)

	entry := store.FrontierEntry{URL: server.URL + "/news/2024/01/05/foo", Source: "lenta.ru"}

	// The URL classifier only recognizes lenta.ru/rbc.ru hosts, so this
	// exercises the non-article path (still fetched, linked, rescheduled).
	w.process(context.Background(), entry)

	require.Len(t, ff.rescheduled, 1)
	require.Equal(t, 0, fc.saved)
}
