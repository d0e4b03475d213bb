package supervisor

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeFrontier struct {
	enqueued []string
}

func (f *fakeFrontier) Enqueue(_ context.Context, url, _ string, _ int64, _ int, _ int64) error {
	f.enqueued = append(f.enqueued, url)
	return nil
}

func TestSeedSkipsUnknownPublishers(t *testing.T) {
	ff := &fakeFrontier{}
	s := New(ff, 1, nil, zerolog.Nop())

	err := s.Seed(context.Background(), []string{
		"https://lenta.ru/",
		"https://example.com/",
		"not a url \x7f",
	})
	require.NoError(t, err)
	require.Equal(t, []string{"https://lenta.ru/"}, ff.enqueued)
}
