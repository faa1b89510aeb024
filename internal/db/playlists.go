package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jumpca/gridsignage/internal/model"
)

func (s *pgStore) CreatePlaylist(name, slug string) (model.Playlist, error) {
	var p model.Playlist
	const q = `
	INSERT INTO playlists (id, name, slug, is_active, created_at, updated_at)
	VALUES ($1, $2, $3, true, now(), now())
	RETURNING id, name, slug, is_active, created_at, updated_at;
	`
	if err := s.db.Get(&p, q, uuid.New(), name, slug); err != nil {
		if isUniqueViolation(err) {
			return model.Playlist{}, fmt.Errorf("playlist name or slug taken: %w", ErrConflict)
		}
		log.Error().Err(err).Msg("[db] CreatePlaylist: failed to insert playlist")
		return model.Playlist{}, err
	}
	// p.Items defaults to nil/empty
	return p, nil
}

func (s *pgStore) GetPlaylistByID(id uuid.UUID) (model.Playlist, error) {
	var p model.Playlist
	q := `
	SELECT id, name, slug, is_active, created_at, updated_at
	FROM playlists
	WHERE id = $1;`
	if err := s.db.Get(&p, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Playlist{}, ErrNotFound
		}
		log.Error().Err(err).Msg("failed to get playlist by ID")
		return model.Playlist{}, err
	}

	items, err := s.listPlaylistItems(id)
	if err != nil {
		return p, err
	}
	p.Items = items
	return p, nil
}

func (s *pgStore) ListPlaylists() ([]model.Playlist, error) {
	var out []model.Playlist
	const q = `SELECT id, name, slug, is_active, created_at, updated_at FROM playlists ORDER BY name;`
	if err := s.db.Select(&out, q); err != nil {
		log.Error().Err(err).Msg("[db] ListPlaylists: failed to select playlists")
		return nil, err
	}

	for i := range out {
		items, err := s.listPlaylistItems(out[i].ID)
		if err != nil {
			log.Error().Err(err).Str("playlist_id", out[i].ID.String()).
				Msg("[db] ListPlaylists: failed to load items")
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (s *pgStore) UpdatePlaylist(id uuid.UUID, name *string, isActive *bool) error {
	res, err := s.db.Exec(`
		UPDATE playlists
		SET
		name       = COALESCE($2, name),
		is_active  = COALESCE($3, is_active),
		updated_at = now()
		WHERE id = $1;`,
		id, name, isActive,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("playlist name taken: %w", ErrConflict)
		}
		log.Error().Err(err).Msg("failed to update playlist")
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePlaylist cascades to playlist items; devices assigned to the
// playlist fall back to unassigned via ON DELETE SET NULL.
func (s *pgStore) DeletePlaylist(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM playlists WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to delete playlist")
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// AddPlaylistItem rejects a position already occupied within the playlist
// rather than shifting neighbours; the unique index is the arbiter so
// concurrent inserts cannot both win.
func (s *pgStore) AddPlaylistItem(
	playlistID uuid.UUID, screenDesignID, position, durationSeconds int,
) (model.PlaylistItem, error) {
	if durationSeconds <= 0 {
		return model.PlaylistItem{}, fmt.Errorf("duration_seconds must be positive: %w", ErrInvalid)
	}
	if position < 0 {
		return model.PlaylistItem{}, fmt.Errorf("position must not be negative: %w", ErrInvalid)
	}

	var it model.PlaylistItem
	query := `
	INSERT INTO playlist_items
	(playlist_id, screen_design_id, position, duration_seconds, created_at)
	VALUES
	($1,          $2,               $3,       $4,               now())
	RETURNING
	id, playlist_id, screen_design_id, position, duration_seconds, created_at;`

	if err := s.db.Get(&it, query,
		playlistID, screenDesignID, position, durationSeconds,
	); err != nil {
		if isUniqueViolation(err) {
			return model.PlaylistItem{}, fmt.Errorf("position %d occupied: %w", position, ErrConflict)
		}
		if isForeignKeyViolation(err) {
			return model.PlaylistItem{}, fmt.Errorf("playlist or design missing: %w", ErrNotFound)
		}
		log.Error().Err(err).Msg("failed to add item to playlist")
		return model.PlaylistItem{}, err
	}
	return it, nil
}

func (s *pgStore) UpdatePlaylistItem(
	playlistID uuid.UUID, itemID int, position, durationSeconds *int,
) error {
	if durationSeconds != nil && *durationSeconds <= 0 {
		return fmt.Errorf("duration_seconds must be positive: %w", ErrInvalid)
	}
	if position != nil && *position < 0 {
		return fmt.Errorf("position must not be negative: %w", ErrInvalid)
	}
	res, err := s.db.Exec(`
		UPDATE playlist_items
		SET
		position         = COALESCE($3, position),
		duration_seconds = COALESCE($4, duration_seconds)
		WHERE id = $2 AND playlist_id = $1;`,
		playlistID, itemID, position, durationSeconds,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("position occupied: %w", ErrConflict)
		}
		log.Error().Err(err).Msg("failed to update playlist item")
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *pgStore) RemovePlaylistItem(playlistID uuid.UUID, itemID int) error {
	res, err := s.db.Exec(`
		DELETE FROM playlist_items WHERE id = $2 AND playlist_id = $1;`,
		playlistID, itemID,
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to remove playlist item")
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *pgStore) listPlaylistItems(playlistID uuid.UUID) ([]model.PlaylistItem, error) {
	var list []model.PlaylistItem
	const query = `
	SELECT id, playlist_id, screen_design_id, position, duration_seconds, created_at
	FROM playlist_items
	WHERE playlist_id = $1
	ORDER BY position;`

	err := s.db.Select(&list, query, playlistID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list playlist items")
	}
	return list, err
}

// ReorderPlaylistItems replaces the whole order atomically. The supplied id
// set must match the playlist's items exactly; positions become 0..n-1 in
// the given order. Positions are first flipped negative so the unique
// index never trips mid-transaction (positions are constrained >= 0).
func (s *pgStore) ReorderPlaylistItems(playlistID uuid.UUID, itemIDs []int) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var existing []int
	if err := tx.Select(&existing, `
		SELECT id FROM playlist_items WHERE playlist_id = $1 ORDER BY id;`,
		playlistID,
	); err != nil {
		log.Error().Err(err).Msg("failed to load playlist items for reorder")
		return err
	}
	if !sameIDSet(existing, itemIDs) {
		return fmt.Errorf("item ids do not match playlist contents: %w", ErrInvalid)
	}

	if _, err := tx.Exec(`
		UPDATE playlist_items
		SET position = -position - 1
		WHERE playlist_id = $1;`,
		playlistID,
	); err != nil {
		return err
	}

	for idx, itemID := range itemIDs {
		if _, err := tx.Exec(`
			UPDATE playlist_items
			SET position = $1
			WHERE id = $2 AND playlist_id = $3;`,
			idx, itemID, playlistID,
		); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`
		UPDATE playlists SET updated_at = now() WHERE id = $1;`,
		playlistID,
	); err != nil {
		return err
	}

	return tx.Commit()
}

func sameIDSet(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[int]int, len(a))
	for _, id := range a {
		seen[id]++
	}
	for _, id := range b {
		seen[id]--
		if seen[id] < 0 {
			return false
		}
	}
	return true
}

// ResolvePlaylistItems joins items against their designs in playback order.
// Inactive or deleted designs are omitted rather than surfaced as errors,
// so a dangling reference degrades to a shorter (possibly empty) rotation.
func (s *pgStore) ResolvePlaylistItems(playlistID uuid.UUID) ([]model.ResolvedPlaylistItem, error) {
	var out []model.ResolvedPlaylistItem
	const q = `
	SELECT
	d.id AS screen_design_id,
	d.name,
	d.slug,
	i.position,
	i.duration_seconds
	FROM playlist_items i
	JOIN screen_designs d ON d.id = i.screen_design_id AND d.is_active
	WHERE i.playlist_id = $1
	ORDER BY i.position;`

	if err := s.db.Select(&out, q, playlistID); err != nil {
		log.Error().Err(err).Str("playlist_id", playlistID.String()).
			Msg("failed to resolve playlist items")
		return nil, err
	}
	return out, nil
}
