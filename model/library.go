package model

import "strings"

// LibraryEntry is a raw, loosely-structured record from the user's library
// pool. CatalogIDs keeps the comma-joined source form; only the first id is
// authoritative. Entries are loaded once and never mutated by the engine.
type LibraryEntry struct {
	EntryID    uint   `json:"-" gorm:"primaryKey;autoIncrement;column:entry_id"`
	Title      string `json:"title" gorm:"size:512;not null"`
	Artist     string `json:"artist,omitempty" gorm:"size:512"`
	CatalogIDs string `json:"catalogIds,omitempty" gorm:"size:512;column:catalog_ids"`
	Visible    bool   `json:"visible" gorm:"not null;default:true"`
}

// TableName sets the MySQL table for GORM.
func (LibraryEntry) TableName() string {
	return "library_entries"
}

// FirstCatalogID returns the first id of the comma-joined catalog id list,
// or "" when the entry carries no id.
func (e LibraryEntry) FirstCatalogID() string {
	if e.CatalogIDs == "" {
		return ""
	}
	first, _, _ := strings.Cut(e.CatalogIDs, ",")
	return strings.TrimSpace(first)
}
