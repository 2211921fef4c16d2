// Package cache persists resolved albums across sessions. Catalog metadata
// is near-immutable once released, so entries are never expired.
package cache

import (
	"context"

	"liquidshuffle/core/textnorm"
	"liquidshuffle/model"
)

// Store is a persistent key to canonical-album mapping. Get returns
// (nil, nil) on a miss. Put replaces the value under one key without
// touching the rest of the map, so concurrent writers converge.
type Store interface {
	Get(ctx context.Context, key string) (*model.Album, error)
	Put(ctx context.Context, key string, album *model.Album) error
	PutMany(ctx context.Context, entries map[string]*model.Album) error
}

// IDKey derives the cache key for a catalog identifier.
func IDKey(catalogID string) string {
	return "id:" + catalogID
}

// TitleKey derives the cache key for an id-less entry. The artist hint is
// part of the key so two same-titled entries by different artists never
// collide; a hint-less caller falls back to the bare-title form.
func TitleKey(title, artistHint string) string {
	if artistHint == "" {
		return "title:" + textnorm.Normalize(title)
	}
	return "title:" + textnorm.Normalize(title) + "|" + textnorm.Normalize(artistHint)
}
