package memory

import (
	gocache "github.com/patrickmn/go-cache"
)

// ArtifactStore is an in-process memo table. Entries never expire; the
// session decides when to clear them.
type ArtifactStore struct {
	items *gocache.Cache
}

func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{items: gocache.New(gocache.NoExpiration, 0)}
}

func (s *ArtifactStore) Get(key string) (any, bool) {
	return s.items.Get(key)
}

func (s *ArtifactStore) Set(key string, value any) {
	s.items.Set(key, value, gocache.NoExpiration)
}

func (s *ArtifactStore) Delete(key string) {
	s.items.Delete(key)
}
