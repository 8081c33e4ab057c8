package cachedLookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/wildlifemlxy/WWF-Telegram-Bot/internal/domain"
	"github.com/wildlifemlxy/WWF-Telegram-Bot/pkg/prometheus"
)

// CachedLookup decorates a taxonomy repository with an in-memory
// photo-URL cache. Species names repeat a lot across users, and the
// upstream search is the slowest part of a reply.
type CachedLookup struct {
	repo domain.TaxonomyRepository
	log  *slog.Logger

	mu    sync.RWMutex
	cache map[string]string
}

func NewCachedLookup(repo domain.TaxonomyRepository, log *slog.Logger) *CachedLookup {
	return &CachedLookup{
		repo:  repo,
		log:   log,
		cache: make(map[string]string),
	}
}

func (c *CachedLookup) FindPhotoURL(ctx context.Context, commonName string) (string, error) {
	const op = "cachedLookup.FindPhotoURL"
	key := strings.ToLower(strings.TrimSpace(commonName))

	c.mu.RLock()
	url, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		prometheus.CacheOperations.WithLabelValues("hit").Inc()
		return url, nil
	}

	prometheus.CacheOperations.WithLabelValues("miss").Inc()
	url, err := c.repo.FindPhotoURL(ctx, commonName)
	if err != nil {
		if !errors.Is(err, domain.ErrRecordNotFound) {
			prometheus.CacheOperations.WithLabelValues("error").Inc()
			c.log.Warn("taxonomy lookup failed",
				"commonName", commonName,
				"error", err,
			)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	c.mu.Lock()
	c.cache[key] = url
	c.mu.Unlock()
	return url, nil
}
