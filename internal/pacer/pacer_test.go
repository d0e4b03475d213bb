package pacer

import (
	"context"
	"testing"
	"time"
)

func TestPacerSpacesSameHost(t *testing.T) {
	p := New(50 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()

	if err := p.Wait(ctx, "https://lenta.ru/a"); err != nil {
		t.Fatal(err)
	}

	if err := p.Wait(ctx, "https://lenta.ru/b"); err != nil {
		t.Fatal(err)
	}

	elapsed := time.Since(start)
	if elapsed < 45*time.Millisecond {
		t.Errorf("expected at least ~50ms between same-host requests, got %v", elapsed)
	}
}

func TestPacerDoesNotBlockDifferentHosts(t *testing.T) {
	p := New(time.Second)
	ctx := context.Background()

	start := time.Now()

	if err := p.Wait(ctx, "https://lenta.ru/a"); err != nil {
		t.Fatal(err)
	}

	if err := p.Wait(ctx, "https://rbc.ru/a"); err != nil {
		t.Fatal(err)
	}

	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Errorf("different hosts should not wait on each other, took %v", elapsed)
	}
}
