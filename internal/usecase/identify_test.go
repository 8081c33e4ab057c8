package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/wildlifemlxy/WWF-Telegram-Bot/internal/domain"
)

type fakeBackend struct {
	name       string
	text       string
	err        error
	calls      int
	lastPrompt string
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Generate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	return f.text, f.err
}

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

const validAnswer = `{"commonName": "Red Fox", "scientificName": "Vulpes vulpes"}`

func TestIdentifyFirstBackendWins(t *testing.T) {
	first := &fakeBackend{name: "a", text: validAnswer}
	second := &fakeBackend{name: "b", text: validAnswer}
	taxonomy := &fakeTaxonomy{url: "https://static.inaturalist.org/photos/1/medium.jpg"}

	r := NewResolver([]ModelBackend{first, second}, taxonomy, testLogger())

	result, err := r.Identify(context.Background(), []byte("img"), nil)
	if err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if first.calls != 1 {
		t.Fatalf("expected 1 call to first backend, got %d", first.calls)
	}
	if second.calls != 0 {
		t.Fatalf("expected fallback backend untouched, got %d calls", second.calls)
	}
	if result.CommonName != "Red Fox" || result.ScientificName != "Vulpes vulpes" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.ReferenceImageURL != taxonomy.url {
		t.Fatalf("expected enriched image URL, got %q", result.ReferenceImageURL)
	}
}

func TestIdentifyFallsBackOnBackendError(t *testing.T) {
	first := &fakeBackend{name: "a", err: errors.New("quota exceeded")}
	second := &fakeBackend{name: "b", text: validAnswer}

	r := NewResolver([]ModelBackend{first, second}, &fakeTaxonomy{err: domain.ErrRecordNotFound}, testLogger())

	result, err := r.Identify(context.Background(), []byte("img"), nil)
	if err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if first.calls != 1 || second.calls != 1 {
		t.Fatalf("expected both backends tried, got %d and %d", first.calls, second.calls)
	}
	if result.CommonName != "Red Fox" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestIdentifyAllBackendsFailReturnsLastError(t *testing.T) {
	first := &fakeBackend{name: "a", err: errors.New("timeout")}
	second := &fakeBackend{name: "b", err: errors.New("quota exceeded")}

	r := NewResolver([]ModelBackend{first, second}, &fakeTaxonomy{}, testLogger())

	_, err := r.Identify(context.Background(), []byte("img"), nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if err.Error() != "quota exceeded" {
		t.Fatalf("expected last backend's error, got %q", err.Error())
	}
}

func TestIdentifyEmptyChain(t *testing.T) {
	r := NewResolver(nil, &fakeTaxonomy{}, testLogger())

	_, err := r.Identify(context.Background(), []byte("img"), nil)
	if !errors.Is(err, domain.ErrAllModelsFailed) {
		t.Fatalf("expected ErrAllModelsFailed, got %v", err)
	}
}

func TestIdentifyNullAnswerStopsChain(t *testing.T) {
	first := &fakeBackend{name: "a", text: `{"commonName": null, "scientificName": null}`}
	second := &fakeBackend{name: "b", text: validAnswer}

	r := NewResolver([]ModelBackend{first, second}, &fakeTaxonomy{}, testLogger())

	_, err := r.Identify(context.Background(), []byte("img"), nil)
	if !errors.Is(err, domain.ErrNotIdentifiable) {
		t.Fatalf("expected ErrNotIdentifiable, got %v", err)
	}
	if second.calls != 0 {
		t.Fatalf("a clean null answer must not fall through to the next backend")
	}
}

func TestIdentifyUnparsableAnswer(t *testing.T) {
	backend := &fakeBackend{name: "a", text: "no json here"}

	r := NewResolver([]ModelBackend{backend}, &fakeTaxonomy{}, testLogger())

	_, err := r.Identify(context.Background(), []byte("img"), nil)
	if !errors.Is(err, domain.ErrNotIdentifiable) {
		t.Fatalf("expected ErrNotIdentifiable, got %v", err)
	}
}

func TestIdentifyEnrichmentFailureIsSwallowed(t *testing.T) {
	backend := &fakeBackend{name: "a", text: validAnswer}
	taxonomy := &fakeTaxonomy{err: errors.New("inaturalist down")}

	r := NewResolver([]ModelBackend{backend}, taxonomy, testLogger())

	result, err := r.Identify(context.Background(), []byte("img"), nil)
	if err != nil {
		t.Fatalf("enrichment failure must not fail identification: %v", err)
	}
	if result.ReferenceImageURL != "" {
		t.Fatalf("expected no image URL, got %q", result.ReferenceImageURL)
	}
	if result.CommonName != "Red Fox" || result.ScientificName != "Vulpes vulpes" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestIdentifyThreadsLocationIntoPrompt(t *testing.T) {
	backend := &fakeBackend{name: "a", text: validAnswer}

	r := NewResolver([]ModelBackend{backend}, &fakeTaxonomy{err: domain.ErrRecordNotFound}, testLogger())

	location := "Serengeti, Tanzania"
	if _, err := r.Identify(context.Background(), []byte("img"), &location); err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if !strings.Contains(backend.lastPrompt, location) {
		t.Fatalf("expected location hint in prompt, got:\n%s", backend.lastPrompt)
	}

	backend.lastPrompt = ""
	if _, err := r.Identify(context.Background(), []byte("img"), nil); err != nil {
		t.Fatalf("Identify failed: %v", err)
	}
	if strings.Contains(backend.lastPrompt, location) {
		t.Fatal("nil location must not alter the prompt")
	}
}
