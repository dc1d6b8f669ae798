package memory

import (
	"time"

	"bookchat-be/internal/dto"

	"github.com/patrickmn/go-cache"
)

// MetadataCache keeps Google Books metadata in-process so repeated chat
// calls for the same book skip the upstream lookup.
type MetadataCache struct {
	cache *cache.Cache
}

func NewMetadataCache() *MetadataCache {
	// Metadata is effectively immutable; 24h expiry with hourly purge keeps
	// the cache bounded without a real invalidation story.
	c := cache.New(24*time.Hour, 1*time.Hour)
	return &MetadataCache{
		cache: c,
	}
}

func (r *MetadataCache) Save(bookId string, meta *dto.BookMetadata) {
	r.cache.Set(bookId, meta, cache.DefaultExpiration)
}

func (r *MetadataCache) Get(bookId string) (*dto.BookMetadata, bool) {
	if x, found := r.cache.Get(bookId); found {
		return x.(*dto.BookMetadata), true
	}
	return nil, false
}

func (r *MetadataCache) Delete(bookId string) {
	r.cache.Delete(bookId)
}
