package model

import (
	"time"

	"github.com/google/uuid"
)

// Device is a physical player (Fire TV stick) identity. The UUID is the only
// credential a device carries in its URLs; the registration code is the
// short human-typed secret used during setup.
//
// At most one of AssignedPlaylistID / AssignedScreenID is non-nil at any
// time. The store enforces this with a single-statement update plus a CHECK
// constraint; use Assignment() to read the current state.
type Device struct {
	ID                 uuid.UUID  `db:"id"                   json:"id"`
	Name               string     `db:"name"                 json:"name"`
	RegistrationCode   string     `db:"registration_code"    json:"registration_code"`
	Registered         bool       `db:"registered"           json:"registered"`
	AssignedPlaylistID *uuid.UUID `db:"assigned_playlist_id" json:"assigned_playlist_id"`
	AssignedScreenID   *int       `db:"assigned_screen_id"   json:"assigned_screen_id"`
	Location           string     `db:"location"             json:"location"`
	Notes              string     `db:"notes"                json:"notes"`
	LastSeen           time.Time  `db:"last_seen"            json:"last_seen"`
	CreatedAt          time.Time  `db:"created_at"           json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at"           json:"updated_at"`
}

type AssignmentKind int

const (
	AssignmentNone AssignmentKind = iota
	AssignmentScreen
	AssignmentPlaylist
)

// Assignment is the tagged-union view over the two nullable columns.
type Assignment struct {
	Kind       AssignmentKind
	ScreenID   int
	PlaylistID uuid.UUID
}

func (d *Device) Assignment() Assignment {
	switch {
	case d.AssignedPlaylistID != nil:
		return Assignment{Kind: AssignmentPlaylist, PlaylistID: *d.AssignedPlaylistID}
	case d.AssignedScreenID != nil:
		return Assignment{Kind: AssignmentScreen, ScreenID: *d.AssignedScreenID}
	default:
		return Assignment{Kind: AssignmentNone}
	}
}

// IsPendingRegistration is derived state, never stored.
func (d *Device) IsPendingRegistration() bool {
	return !d.Registered
}

// Status buckets a device by how recently it polled.
func (d *Device) Status(now time.Time) string {
	diff := now.Sub(d.LastSeen)
	switch {
	case diff < 5*time.Minute:
		return "online"
	case diff < time.Hour:
		return "recent"
	default:
		return "offline"
	}
}
