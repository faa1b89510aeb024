package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jumpca/gridsignage/internal/model"
)

const designColumns = `
	id, name, slug, description, html_code, css_code, js_code, notes,
	is_active, created_at, updated_at`

func (s *pgStore) CreateScreenDesign(
	name, slug, description, htmlCode, cssCode, jsCode, notes string,
) (model.ScreenDesign, error) {
	var d model.ScreenDesign
	query := `
	INSERT INTO screen_designs
	(name, slug, description, html_code, css_code, js_code, notes, is_active, created_at, updated_at)
	VALUES
	($1,   $2,   $3,          $4,        $5,       $6,      $7,    true,      now(),      now())
	RETURNING` + designColumns + `;`

	if err := s.db.Get(&d, query,
		name, slug, description, htmlCode, cssCode, jsCode, notes,
	); err != nil {
		if isUniqueViolation(err) {
			return model.ScreenDesign{}, fmt.Errorf("slug %q taken: %w", slug, ErrConflict)
		}
		log.Error().Err(err).Msg("failed to create screen design")
		return model.ScreenDesign{}, err
	}
	return d, nil
}

func (s *pgStore) GetScreenDesignByID(id int) (model.ScreenDesign, error) {
	var d model.ScreenDesign
	query := `SELECT` + designColumns + ` FROM screen_designs WHERE id = $1;`
	err := s.db.Get(&d, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ScreenDesign{}, ErrNotFound
	}
	return d, err
}

// GetActiveScreenDesignBySlug reports an inactive design identically to a
// missing one, so public surfaces cannot tell disabled from nonexistent.
func (s *pgStore) GetActiveScreenDesignBySlug(slug string) (model.ScreenDesign, error) {
	var d model.ScreenDesign
	query := `SELECT` + designColumns + ` FROM screen_designs WHERE slug = $1 AND is_active;`
	err := s.db.Get(&d, query, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ScreenDesign{}, ErrNotFound
	}
	return d, err
}

func (s *pgStore) ListScreenDesigns(isActive *bool, search string) ([]model.ScreenDesign, error) {
	var all []model.ScreenDesign
	query := `
	SELECT` + designColumns + `
	FROM screen_designs
	WHERE ($1::boolean IS NULL OR is_active = $1)
	AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR slug ILIKE '%' || $2 || '%')
	ORDER BY updated_at DESC;`
	if err := s.db.Select(&all, query, isActive, search); err != nil {
		log.Error().Err(err).Msg("failed to list screen designs")
		return nil, err
	}
	return all, nil
}

func (s *pgStore) UpdateScreenDesign(
	id int,
	name, description, htmlCode, cssCode, jsCode, notes *string,
	isActive *bool,
) error {
	res, err := s.db.Exec(`
		UPDATE screen_designs
		SET
		name        = COALESCE($2, name),
		description = COALESCE($3, description),
		html_code   = COALESCE($4, html_code),
		css_code    = COALESCE($5, css_code),
		js_code     = COALESCE($6, js_code),
		notes       = COALESCE($7, notes),
		is_active   = COALESCE($8, is_active),
		updated_at  = now()
		WHERE id = $1;`,
		id, name, description, htmlCode, cssCode, jsCode, notes, isActive,
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to update screen design")
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteScreenDesign refuses to remove a design still referenced by any
// playlist item or device assignment. Both foreign keys restrict the
// delete, so the check and the removal are a single statement: a concurrent
// assign either commits first and blocks the delete, or fails against the
// already-deleted row.
func (s *pgStore) DeleteScreenDesign(id int) error {
	res, err := s.db.Exec(`DELETE FROM screen_designs WHERE id = $1;`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("design %d still referenced: %w", id, ErrConflict)
		}
		log.Error().Err(err).Msg("failed to delete screen design")
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}
