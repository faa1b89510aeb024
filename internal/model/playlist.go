package model

import (
	"time"

	"github.com/google/uuid"
)

type Playlist struct {
	ID        uuid.UUID      `db:"id"         json:"id"`
	Name      string         `db:"name"       json:"name"`
	Slug      string         `db:"slug"       json:"slug"`
	IsActive  bool           `db:"is_active"  json:"is_active"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
	Items     []PlaylistItem `db:"-"          json:"items,omitempty"`
}

// PlaylistItem has no lifecycle outside its parent playlist. Position is
// unique within one playlist; gaps are allowed.
type PlaylistItem struct {
	ID              int       `db:"id"               json:"id"`
	PlaylistID      uuid.UUID `db:"playlist_id"      json:"playlist_id"`
	ScreenDesignID  int       `db:"screen_design_id" json:"screen_design_id"`
	Position        int       `db:"position"         json:"position"`
	DurationSeconds int       `db:"duration_seconds" json:"duration_seconds"`
	CreatedAt       time.Time `db:"created_at"       json:"created_at"`
}

// ResolvedPlaylistItem is a playlist item joined against its screen design.
// Items whose design is inactive or deleted never appear in a resolved list.
type ResolvedPlaylistItem struct {
	ScreenDesignID  int    `db:"screen_design_id"`
	Name            string `db:"name"`
	Slug            string `db:"slug"`
	Position        int    `db:"position"`
	DurationSeconds int    `db:"duration_seconds"`
}
