package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"liquidshuffle/model"
)

// LibraryRepository defines the interface for library entry persistence.
type LibraryRepository interface {
	ReplaceAll(ctx context.Context, entries []model.LibraryEntry) error
	All(ctx context.Context) ([]model.LibraryEntry, error)
	Count(ctx context.Context) (int64, error)
}

// gormLibraryRepository implements LibraryRepository with GORM.
type gormLibraryRepository struct {
	db *gorm.DB
}

// NewGormLibraryRepository creates a GORM-backed library repository.
func NewGormLibraryRepository(db *gorm.DB) LibraryRepository {
	return &gormLibraryRepository{db: db}
}

// ReplaceAll swaps the stored library for the given entries in one
// transaction. An import is always a full snapshot, never a merge.
func (r *gormLibraryRepository) ReplaceAll(ctx context.Context, entries []model.LibraryEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.LibraryEntry{}).Error; err != nil {
			return fmt.Errorf("failed to clear library entries: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(entries, 200).Error; err != nil {
			return fmt.Errorf("failed to insert library entries: %w", err)
		}
		return nil
	})
}

// All returns every stored library entry.
func (r *gormLibraryRepository) All(ctx context.Context) ([]model.LibraryEntry, error) {
	var entries []model.LibraryEntry
	if err := r.db.WithContext(ctx).Order("entry_id").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load library entries: %w", err)
	}
	return entries, nil
}

// Count returns the number of stored library entries.
func (r *gormLibraryRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.LibraryEntry{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count library entries: %w", err)
	}
	return n, nil
}
