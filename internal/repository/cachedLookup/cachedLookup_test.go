package cachedLookup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/wildlifemlxy/WWF-Telegram-Bot/internal/domain"
)

type fakeTaxonomy struct {
	url   string
	err   error
	calls int
}

func (f *fakeTaxonomy) FindPhotoURL(ctx context.Context, commonName string) (string, error) {
	f.calls++
	return f.url, f.err
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCacheHitSkipsUpstream(t *testing.T) {
	ctx := context.Background()
	upstream := &fakeTaxonomy{url: "https://static.inaturalist.org/photos/1/medium.jpg"}
	c := NewCachedLookup(upstream, testLogger())

	for i := 0; i < 3; i++ {
		url, err := c.FindPhotoURL(ctx, "Red Fox")
		if err != nil {
			t.Fatalf("FindPhotoURL failed: %v", err)
		}
		if url != upstream.url {
			t.Fatalf("unexpected url %q", url)
		}
	}
	if upstream.calls != 1 {
		t.Fatalf("expected a single upstream call, got %d", upstream.calls)
	}
}

func TestCacheKeyIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	upstream := &fakeTaxonomy{url: "https://example.org/fox.jpg"}
	c := NewCachedLookup(upstream, testLogger())

	c.FindPhotoURL(ctx, "Red Fox")
	c.FindPhotoURL(ctx, "  red fox ")

	if upstream.calls != 1 {
		t.Fatalf("expected a single upstream call, got %d", upstream.calls)
	}
}

func TestErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	upstream := &fakeTaxonomy{err: errors.New("upstream down")}
	c := NewCachedLookup(upstream, testLogger())

	if _, err := c.FindPhotoURL(ctx, "Red Fox"); err == nil {
		t.Fatal("expected an error")
	}
	if _, err := c.FindPhotoURL(ctx, "Red Fox"); err == nil {
		t.Fatal("expected an error")
	}
	if upstream.calls != 2 {
		t.Fatalf("errors must not populate the cache, got %d calls", upstream.calls)
	}
}

func TestNotFoundIsPassedThrough(t *testing.T) {
	ctx := context.Background()
	upstream := &fakeTaxonomy{err: domain.ErrRecordNotFound}
	c := NewCachedLookup(upstream, testLogger())

	_, err := c.FindPhotoURL(ctx, "Chupacabra")
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}
