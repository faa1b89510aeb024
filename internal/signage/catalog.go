package signage

import (
	"errors"
	"fmt"

	gosslug "github.com/gosimple/slug"

	"github.com/jumpca/gridsignage/internal/db"
	"github.com/jumpca/gridsignage/internal/model"
)

// slugAttempts bounds the collision-suffix loop when deriving slugs from
// names. Past that the caller gets the conflict back.
const slugAttempts = 20

// CreateDesign derives a URL-safe slug from the name and inserts the
// design, disambiguating slug collisions with a numeric suffix ("q1-board",
// "q1-board-2", ...). Insert-and-retry against the unique index, never
// check-then-insert.
func CreateDesign(store db.Store, name, description, htmlCode, cssCode, jsCode, notes string) (model.ScreenDesign, error) {
	base := gosslug.Make(name)
	if base == "" {
		return model.ScreenDesign{}, fmt.Errorf("name %q yields an empty slug: %w", name, db.ErrInvalid)
	}

	candidate := base
	for attempt := 2; attempt <= slugAttempts+1; attempt++ {
		design, err := store.CreateScreenDesign(name, candidate, description, htmlCode, cssCode, jsCode, notes)
		if err == nil {
			return design, nil
		}
		if !errors.Is(err, db.ErrConflict) {
			return model.ScreenDesign{}, err
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt)
	}
	return model.ScreenDesign{}, fmt.Errorf("could not find a free slug for %q: %w", name, db.ErrConflict)
}

// CreatePlaylist is the same derivation for playlists; the playlist name
// itself is unique, so a name conflict surfaces before any suffixing helps.
func CreatePlaylist(store db.Store, name string) (model.Playlist, error) {
	base := gosslug.Make(name)
	if base == "" {
		return model.Playlist{}, fmt.Errorf("name %q yields an empty slug: %w", name, db.ErrInvalid)
	}

	candidate := base
	for attempt := 2; attempt <= slugAttempts+1; attempt++ {
		playlist, err := store.CreatePlaylist(name, candidate)
		if err == nil {
			return playlist, nil
		}
		if !errors.Is(err, db.ErrConflict) {
			return model.Playlist{}, err
		}
		candidate = fmt.Sprintf("%s-%d", base, attempt)
	}
	return model.Playlist{}, fmt.Errorf("could not find a free slug for %q: %w", name, db.ErrConflict)
}
