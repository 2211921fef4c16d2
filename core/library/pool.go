package library

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"liquidshuffle/logger"
	"liquidshuffle/model"
	"liquidshuffle/repository"
)

// fileEntry mirrors one record of a library export file. Field names follow
// the export format, including the spaced catalog id key.
type fileEntry struct {
	Title      string `json:"Title"`
	Artist     string `json:"Artist"`
	CatalogIDs string `json:"Catalog Identifiers - Album"`
	Visible    bool   `json:"Visible"`
}

// Pool holds the candidate library entries the discovery engine samples
// from. It loads from the database when a repository is wired, falling back
// to the JSON export file, and can hot-reload when the file changes.
type Pool struct {
	mu      sync.RWMutex
	entries []model.LibraryEntry

	repo repository.LibraryRepository
	path string
}

// NewPool creates an empty pool. repo may be nil when no database is
// configured; path may be empty when no export file exists.
func NewPool(repo repository.LibraryRepository, path string) *Pool {
	return &Pool{repo: repo, path: path}
}

// Load populates the pool. The database wins when it has entries; the file
// is the fallback and the bootstrap source.
func (p *Pool) Load(ctx context.Context) error {
	if p.repo != nil {
		entries, err := p.repo.All(ctx)
		if err != nil {
			logger.Warn("library load from database failed, trying file",
				logger.ErrorField(err))
		} else if len(entries) > 0 {
			p.swap(entries)
			logger.Info("library loaded from database", logger.Int("entries", len(entries)))
			return nil
		}
	}

	if p.path == "" {
		return fmt.Errorf("no library source configured")
	}
	entries, err := LoadFile(p.path)
	if err != nil {
		return err
	}
	p.swap(entries)
	logger.Info("library loaded from file",
		logger.String("path", p.path),
		logger.Int("entries", len(entries)))
	return nil
}

// Entries returns a copy of the current pool.
func (p *Pool) Entries() []model.LibraryEntry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]model.LibraryEntry, len(p.entries))
	copy(out, p.entries)
	return out
}

// Len reports the current pool size.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

func (p *Pool) swap(entries []model.LibraryEntry) {
	p.mu.Lock()
	p.entries = entries
	p.mu.Unlock()
}

// Watch reloads the pool whenever the export file is rewritten. It blocks
// until ctx is cancelled, so callers run it in a goroutine.
func (p *Pool) Watch(ctx context.Context) error {
	if p.path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create library watcher: %w", err)
	}
	defer watcher.Close()

	// Editors replace files rather than writing in place, so the watch
	// goes on the directory and events are filtered by name.
	dir := filepath.Dir(p.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	target := filepath.Clean(p.path)
	for {
		select {
		case event := <-watcher.Events:
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			entries, err := LoadFile(p.path)
			if err != nil {
				logger.Warn("library reload failed, keeping previous pool",
					logger.String("path", p.path),
					logger.ErrorField(err))
				continue
			}
			p.swap(entries)
			logger.Info("library reloaded",
				logger.String("path", p.path),
				logger.Int("entries", len(entries)))
		case err := <-watcher.Errors:
			logger.Warn("library watcher error", logger.ErrorField(err))
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// LoadFile parses a library export file into pool entries. Records without
// a title are dropped; visibility is preserved so the engine can filter.
func LoadFile(path string) ([]model.LibraryEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read library file: %w", err)
	}

	var raw []fileEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse library file %s: %w", path, err)
	}

	entries := make([]model.LibraryEntry, 0, len(raw))
	for _, rec := range raw {
		if rec.Title == "" {
			continue
		}
		entries = append(entries, model.LibraryEntry{
			Title:      rec.Title,
			Artist:     rec.Artist,
			CatalogIDs: rec.CatalogIDs,
			Visible:    rec.Visible,
		})
	}
	return entries, nil
}
