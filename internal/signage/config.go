package signage

import (
	"github.com/google/uuid"
)

type ConfigKind string

const (
	ConfigNone     ConfigKind = "none"
	ConfigScreen   ConfigKind = "screen"
	ConfigPlaylist ConfigKind = "playlist"
)

// DeviceConfig is the fully resolved answer to a device poll: whether the
// device is registered, and the hydrated content assignment if any.
// Exactly one of Screen/Playlist is non-nil when Kind says so.
type DeviceConfig struct {
	DeviceID   uuid.UUID
	DeviceName string
	Registered bool
	Kind       ConfigKind
	Screen     *ScreenConfig
	Playlist   *PlaylistConfig
}

type ScreenConfig struct {
	ID        int
	Name      string
	Slug      string
	PlayerURL string
}

type PlaylistConfig struct {
	ID    uuid.UUID
	Name  string
	Items []PlaylistItemConfig
}

type PlaylistItemConfig struct {
	ScreenID        int
	ScreenName      string
	ScreenSlug      string
	PlayerURL       string
	DurationSeconds int
	Order           int
}
