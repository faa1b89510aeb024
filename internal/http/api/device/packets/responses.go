package packets

import (
	"github.com/google/uuid"

	"github.com/jumpca/gridsignage/internal/signage"
)

// The device protocol shapes are fixed: the Fire TV client parses these
// fields by name. Config is one of ConfigNone / ConfigScreen /
// ConfigPlaylist, discriminated by "type".

type RequestCodeResponse struct {
	Success          bool      `json:"success"`
	DeviceID         uuid.UUID `json:"device_id"`
	RegistrationCode string    `json:"registration_code"`
}

type RegisterResponse struct {
	Success    bool `json:"success"`
	Registered bool `json:"registered"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type ConfigResponse struct {
	Success    bool      `json:"success"`
	DeviceID   uuid.UUID `json:"device_id"`
	DeviceName string    `json:"device_name"`
	Registered bool      `json:"registered"`
	Config     any       `json:"config"`
}

type ConfigNone struct {
	Type string `json:"type"`
}

type ConfigScreen struct {
	Type       string `json:"type"`
	ScreenID   int    `json:"screen_id"`
	ScreenName string `json:"screen_name"`
	ScreenSlug string `json:"screen_slug"`
	PlayerURL  string `json:"player_url"`
}

type ConfigPlaylist struct {
	Type         string               `json:"type"`
	PlaylistID   uuid.UUID            `json:"playlist_id"`
	PlaylistName string               `json:"playlist_name"`
	Items        []ConfigPlaylistItem `json:"items"`
}

type ConfigPlaylistItem struct {
	ScreenID        int    `json:"screen_id"`
	ScreenName      string `json:"screen_name"`
	ScreenSlug      string `json:"screen_slug"`
	PlayerURL       string `json:"player_url"`
	DurationSeconds int    `json:"duration_seconds"`
	Order           int    `json:"order"`
}

// MapConfig flattens a resolved signage.DeviceConfig into the wire shape.
func MapConfig(cfg signage.DeviceConfig) ConfigResponse {
	out := ConfigResponse{
		Success:    true,
		DeviceID:   cfg.DeviceID,
		DeviceName: cfg.DeviceName,
		Registered: cfg.Registered,
		Config:     ConfigNone{Type: "none"},
	}

	switch cfg.Kind {
	case signage.ConfigScreen:
		out.Config = ConfigScreen{
			Type:       "screen",
			ScreenID:   cfg.Screen.ID,
			ScreenName: cfg.Screen.Name,
			ScreenSlug: cfg.Screen.Slug,
			PlayerURL:  cfg.Screen.PlayerURL,
		}
	case signage.ConfigPlaylist:
		items := make([]ConfigPlaylistItem, len(cfg.Playlist.Items))
		for i, item := range cfg.Playlist.Items {
			items[i] = ConfigPlaylistItem{
				ScreenID:        item.ScreenID,
				ScreenName:      item.ScreenName,
				ScreenSlug:      item.ScreenSlug,
				PlayerURL:       item.PlayerURL,
				DurationSeconds: item.DurationSeconds,
				Order:           item.Order,
			}
		}
		out.Config = ConfigPlaylist{
			Type:         "playlist",
			PlaylistID:   cfg.Playlist.ID,
			PlaylistName: cfg.Playlist.Name,
			Items:        items,
		}
	}

	return out
}
