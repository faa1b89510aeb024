package db

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jumpca/gridsignage/internal/model"
)

// Sentinel errors returned by every Store implementation. Callers match
// with errors.Is and translate to API status codes at the edge.
var (
	// ErrNotFound covers both genuinely missing rows and rows intentionally
	// hidden from the caller (inactive designs on public lookups).
	ErrNotFound = errors.New("not found")
	// ErrConflict is a uniqueness or reference violation (duplicate slug,
	// duplicate playlist position, colliding registration code, deleting a
	// design that is still referenced).
	ErrConflict = errors.New("conflict")
	// ErrInvalid is client-correctable bad input (reorder id-set mismatch,
	// non-positive duration).
	ErrInvalid = errors.New("invalid input")
)

// Store is the persistence boundary shared by the HTTP endpoints and the
// signage registry. Postgres implements it in production; an in-memory
// implementation backs the tests.
type Store interface {
	// users
	CreateUser(email, hashedPassword string, name *string) (int, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	UpdateUserProfile(id int, email string, name *string) error

	// screen designs
	CreateScreenDesign(name, slug, description, htmlCode, cssCode, jsCode, notes string) (model.ScreenDesign, error)
	GetScreenDesignByID(id int) (model.ScreenDesign, error)
	GetActiveScreenDesignBySlug(slug string) (model.ScreenDesign, error)
	ListScreenDesigns(isActive *bool, search string) ([]model.ScreenDesign, error)
	UpdateScreenDesign(id int, name, description, htmlCode, cssCode, jsCode, notes *string, isActive *bool) error
	DeleteScreenDesign(id int) error

	// playlists
	CreatePlaylist(name, slug string) (model.Playlist, error)
	GetPlaylistByID(id uuid.UUID) (model.Playlist, error)
	ListPlaylists() ([]model.Playlist, error)
	UpdatePlaylist(id uuid.UUID, name *string, isActive *bool) error
	DeletePlaylist(id uuid.UUID) error
	AddPlaylistItem(playlistID uuid.UUID, screenDesignID, position, durationSeconds int) (model.PlaylistItem, error)
	UpdatePlaylistItem(playlistID uuid.UUID, itemID int, position, durationSeconds *int) error
	RemovePlaylistItem(playlistID uuid.UUID, itemID int) error
	ReorderPlaylistItems(playlistID uuid.UUID, itemIDs []int) error
	ResolvePlaylistItems(playlistID uuid.UUID) ([]model.ResolvedPlaylistItem, error)

	// devices
	CreateDevice(name, registrationCode string) (model.Device, error)
	GetDeviceByID(id uuid.UUID) (model.Device, error)
	GetDeviceByCode(registrationCode string) (model.Device, error)
	ListDevices() ([]model.Device, error)
	UpdateDevice(id uuid.UUID, name, location, notes *string) error
	SetDeviceRegistered(id uuid.UUID, registered bool) error
	AssignScreenToDevice(id uuid.UUID, screenDesignID int) error
	AssignPlaylistToDevice(id uuid.UUID, playlistID uuid.UUID) error
	UnassignDevice(id uuid.UUID) error
	TouchDevice(id uuid.UUID) error
	DeleteDevice(id uuid.UUID) error
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore(conn *sqlx.DB) Store {
	if conn == nil {
		conn = DB
	}
	return &pgStore{db: conn}
}

// isUniqueViolation reports whether err is a Postgres unique-index error.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// isForeignKeyViolation reports whether err is a Postgres FK error.
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
