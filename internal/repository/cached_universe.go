package repository

import (
	"context"
	"encoding/json"
	"time"

	"EquityScout/internal/domain/models"
	domrepo "EquityScout/internal/domain/repository"
	"EquityScout/internal/service/cache"
)

// CachedUniverse wraps a UniverseProvider with a byte-cache so repeat
// screening runs within the TTL skip the listings query. Cache errors fall
// through to the source.
type CachedUniverse struct {
	source domrepo.UniverseProvider
	cache  cache.BytesCache
	ttl    time.Duration
}

func NewCachedUniverse(source domrepo.UniverseProvider, c cache.BytesCache, ttl time.Duration) domrepo.UniverseProvider {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &CachedUniverse{source: source, cache: c, ttl: ttl}
}

func (u *CachedUniverse) Universe(ctx context.Context, market domrepo.Market) ([]models.Listing, error) {
	key := "universe:" + string(market)
	if b, ok, err := u.cache.GetBytes(key); err == nil && ok {
		var listings []models.Listing
		if err := json.Unmarshal(b, &listings); err == nil {
			return listings, nil
		}
	}

	listings, err := u.source.Universe(ctx, market)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(listings); err == nil {
		_ = u.cache.SetBytes(key, b, u.ttl)
	}
	return listings, nil
}
