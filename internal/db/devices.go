package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jumpca/gridsignage/internal/model"
)

const deviceColumns = `
	id, name, registration_code, registered, assigned_playlist_id,
	assigned_screen_id, location, notes, last_seen, created_at, updated_at`

// CreateDevice inserts a fresh unregistered device. A registration-code
// collision surfaces as ErrConflict from the unique index; the registry
// regenerates and retries. The index is the only collision check; a
// pre-insert lookup would race with concurrent requests.
func (s *pgStore) CreateDevice(name, registrationCode string) (model.Device, error) {
	var d model.Device
	query := `
	INSERT INTO devices
	(id, name, registration_code, registered, location, notes, last_seen, created_at, updated_at)
	VALUES
	($1, $2,   $3,                false,      '',       '',    now(),     now(),      now())
	RETURNING` + deviceColumns + `;`

	if err := s.db.Get(&d, query, uuid.New(), name, registrationCode); err != nil {
		if isUniqueViolation(err) {
			return model.Device{}, fmt.Errorf("registration code collision: %w", ErrConflict)
		}
		log.Error().Err(err).Msg("failed to create device")
		return model.Device{}, err
	}
	return d, nil
}

func (s *pgStore) GetDeviceByID(id uuid.UUID) (model.Device, error) {
	var d model.Device
	query := `SELECT` + deviceColumns + ` FROM devices WHERE id = $1;`
	err := s.db.Get(&d, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Device{}, ErrNotFound
	}
	return d, err
}

func (s *pgStore) GetDeviceByCode(registrationCode string) (model.Device, error) {
	var d model.Device
	query := `SELECT` + deviceColumns + ` FROM devices WHERE registration_code = $1;`
	err := s.db.Get(&d, query, registrationCode)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Device{}, ErrNotFound
	}
	return d, err
}

func (s *pgStore) ListDevices() ([]model.Device, error) {
	var all []model.Device
	query := `SELECT` + deviceColumns + ` FROM devices ORDER BY last_seen DESC;`
	if err := s.db.Select(&all, query); err != nil {
		log.Error().Err(err).Msg("failed to list devices")
		return nil, err
	}
	return all, nil
}

func (s *pgStore) UpdateDevice(id uuid.UUID, name, location, notes *string) error {
	res, err := s.db.Exec(`
		UPDATE devices
		SET
		name       = COALESCE($2, name),
		location   = COALESCE($3, location),
		notes      = COALESCE($4, notes),
		updated_at = now()
		WHERE id = $1;`,
		id, name, location, notes,
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to update device")
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *pgStore) SetDeviceRegistered(id uuid.UUID, registered bool) error {
	res, err := s.db.Exec(`
		UPDATE devices
		SET registered = $2,
		updated_at = now()
		WHERE id = $1;`,
		id, registered,
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to set device registered")
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// AssignScreenToDevice sets the screen and clears any playlist in one
// statement; a concurrent reader never observes both set.
func (s *pgStore) AssignScreenToDevice(id uuid.UUID, screenDesignID int) error {
	res, err := s.db.Exec(`
		UPDATE devices
		SET
		assigned_screen_id   = $2,
		assigned_playlist_id = NULL,
		updated_at = now()
		WHERE id = $1;`,
		id, screenDesignID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("screen design %d missing: %w", screenDesignID, ErrNotFound)
		}
		log.Error().Err(err).Msg("failed to assign screen to device")
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// AssignPlaylistToDevice mirrors AssignScreenToDevice with the columns
// swapped.
func (s *pgStore) AssignPlaylistToDevice(id uuid.UUID, playlistID uuid.UUID) error {
	res, err := s.db.Exec(`
		UPDATE devices
		SET
		assigned_playlist_id = $2,
		assigned_screen_id   = NULL,
		updated_at = now()
		WHERE id = $1;`,
		id, playlistID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("playlist %s missing: %w", playlistID, ErrNotFound)
		}
		log.Error().Err(err).Msg("failed to assign playlist to device")
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *pgStore) UnassignDevice(id uuid.UUID) error {
	res, err := s.db.Exec(`
		UPDATE devices
		SET
		assigned_playlist_id = NULL,
		assigned_screen_id   = NULL,
		updated_at = now()
		WHERE id = $1;`,
		id,
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to unassign device")
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchDevice stamps last_seen. Called on every config poll; this is the
// heartbeat.
func (s *pgStore) TouchDevice(id uuid.UUID) error {
	_, err := s.db.Exec(`UPDATE devices SET last_seen = now() WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to touch device")
	}
	return err
}

func (s *pgStore) DeleteDevice(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM devices WHERE id = $1;`, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to delete device")
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}
