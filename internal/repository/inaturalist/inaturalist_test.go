package inaturalist

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wildlifemlxy/WWF-Telegram-Bot/configs"
	"github.com/wildlifemlxy/WWF-Telegram-Bot/internal/domain"
)

func newTestRepo(handler http.HandlerFunc) (*Repo, *httptest.Server) {
	srv := httptest.NewServer(handler)
	repo := NewRepo(&configs.Config{
		INat: configs.INaturalistConfig{Path: srv.URL + "/"},
	})
	repo.Client = srv.Client()
	return repo, srv
}

func TestFindPhotoURLFirstResult(t *testing.T) {
	repo, srv := newTestRepo(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Red Fox" {
			t.Errorf("unexpected query %q", got)
		}
		if got := r.URL.Query().Get("per_page"); got != "1" {
			t.Errorf("unexpected per_page %q", got)
		}
		w.Write([]byte(`{"results":[{"default_photo":{"medium_url":"https://static.inaturalist.org/photos/1/medium.jpg"}}]}`))
	})
	defer srv.Close()

	url, err := repo.FindPhotoURL(context.Background(), "Red Fox")
	if err != nil {
		t.Fatalf("FindPhotoURL failed: %v", err)
	}
	if url != "https://static.inaturalist.org/photos/1/medium.jpg" {
		t.Fatalf("unexpected url %q", url)
	}
}

func TestFindPhotoURLEmptyResults(t *testing.T) {
	repo, srv := newTestRepo(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	})
	defer srv.Close()

	_, err := repo.FindPhotoURL(context.Background(), "Chupacabra")
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestFindPhotoURLMissingPhoto(t *testing.T) {
	repo, srv := newTestRepo(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"default_photo":null}]}`))
	})
	defer srv.Close()

	_, err := repo.FindPhotoURL(context.Background(), "Red Fox")
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestFindPhotoURLBadStatus(t *testing.T) {
	repo, srv := newTestRepo(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})
	defer srv.Close()

	_, err := repo.FindPhotoURL(context.Background(), "Red Fox")
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatal("transport errors must be distinguishable from not-found")
	}
}
