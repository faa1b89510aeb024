package signage

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jumpca/gridsignage/internal/db"
	"github.com/jumpca/gridsignage/internal/model"
)

// ErrCodeSpaceExhausted means repeated registration-code collisions; the
// caller should treat it as a transient infrastructure failure, the device
// retries on its own schedule.
var ErrCodeSpaceExhausted = errors.New("could not generate a unique registration code")

// Registry owns the device lifecycle: code issuance, registration, content
// assignment and config resolution. All state lives in the store; the
// registry enforces the transitions and keeps resolution self-healing so a
// remote player is never handed an error it cannot act on.
type Registry struct {
	store   db.Store
	baseURL string
}

func NewRegistry(store db.Store, publicBaseURL string) *Registry {
	return &Registry{store: store, baseURL: publicBaseURL}
}

// RequestCode mints a brand-new device with a fresh registration code.
// Repeated calls from the same physical device create new rows each time;
// de-duplication is deliberately not attempted.
func (r *Registry) RequestCode(name string) (model.Device, error) {
	for attempt := 0; attempt < codeAttempts; attempt++ {
		device, err := r.store.CreateDevice(name, generateRegistrationCode())
		if err == nil {
			return device, nil
		}
		if errors.Is(err, db.ErrConflict) {
			log.Warn().Int("attempt", attempt+1).Msg("registration code collision, regenerating")
			continue
		}
		return model.Device{}, err
	}
	return model.Device{}, ErrCodeSpaceExhausted
}

// Register flips a device to registered when the supplied code matches.
// A mismatch is reported as (false, nil), not an error, so the endpoint
// leaks nothing about which devices exist. Registering an already
// registered device with the right code is a no-op success.
func (r *Registry) Register(deviceID uuid.UUID, code string) (bool, error) {
	device, err := r.store.GetDeviceByID(deviceID)
	if err != nil {
		return false, err
	}
	if device.RegistrationCode != code {
		return false, nil
	}
	if device.Registered {
		return true, nil
	}
	if err := r.store.SetDeviceRegistered(deviceID, true); err != nil {
		return false, err
	}
	return true, nil
}

// RegisterByCode is the staff-side flow: an admin types the code shown on
// the TV, optionally naming the device at the same time.
func (r *Registry) RegisterByCode(code string, name *string) (model.Device, error) {
	device, err := r.store.GetDeviceByCode(code)
	if err != nil {
		return model.Device{}, err
	}
	if name != nil && *name != "" {
		if err := r.store.UpdateDevice(device.ID, name, nil, nil); err != nil {
			return model.Device{}, err
		}
	}
	if !device.Registered {
		if err := r.store.SetDeviceRegistered(device.ID, true); err != nil {
			return model.Device{}, err
		}
	}
	return r.store.GetDeviceByID(device.ID)
}

// AssignScreen points the device at a single screen design, clearing any
// playlist assignment in the same store write.
func (r *Registry) AssignScreen(deviceID uuid.UUID, screenDesignID int) error {
	if _, err := r.store.GetScreenDesignByID(screenDesignID); err != nil {
		return fmt.Errorf("assign screen: %w", err)
	}
	return r.store.AssignScreenToDevice(deviceID, screenDesignID)
}

// AssignPlaylist mirrors AssignScreen for playlists.
func (r *Registry) AssignPlaylist(deviceID uuid.UUID, playlistID uuid.UUID) error {
	if _, err := r.store.GetPlaylistByID(playlistID); err != nil {
		return fmt.Errorf("assign playlist: %w", err)
	}
	return r.store.AssignPlaylistToDevice(deviceID, playlistID)
}

func (r *Registry) Unassign(deviceID uuid.UUID) error {
	return r.store.UnassignDevice(deviceID)
}

// ResolveConfig is the device poll path. It stamps last_seen on every call
// (the heartbeat) and hydrates the current assignment. Dangling or inactive
// references degrade to "none" rather than surfacing an error; worst case
// the device shows nothing, it never gets stuck.
func (r *Registry) ResolveConfig(deviceID uuid.UUID) (DeviceConfig, error) {
	device, err := r.store.GetDeviceByID(deviceID)
	if err != nil {
		return DeviceConfig{}, err
	}
	return r.resolve(device)
}

// ResolveConfigByCode is the alternate lookup used before a device has
// stored its id, and as an admin debugging entry point.
func (r *Registry) ResolveConfigByCode(code string) (DeviceConfig, error) {
	device, err := r.store.GetDeviceByCode(code)
	if err != nil {
		return DeviceConfig{}, err
	}
	return r.resolve(device)
}

func (r *Registry) resolve(device model.Device) (DeviceConfig, error) {
	if err := r.store.TouchDevice(device.ID); err != nil {
		// heartbeat failure is not worth failing the poll over
		log.Warn().Err(err).Str("device_id", device.ID.String()).Msg("failed to stamp last_seen")
	}

	cfg := DeviceConfig{
		DeviceID:   device.ID,
		DeviceName: device.Name,
		Registered: device.Registered,
		Kind:       ConfigNone,
	}
	if !device.Registered {
		return cfg, nil
	}

	switch assignment := device.Assignment(); assignment.Kind {
	case model.AssignmentScreen:
		design, err := r.store.GetScreenDesignByID(assignment.ScreenID)
		if err != nil || !design.IsActive {
			if err != nil && !errors.Is(err, db.ErrNotFound) {
				return DeviceConfig{}, err
			}
			// dangling or deactivated screen: report no content
			return cfg, nil
		}
		cfg.Kind = ConfigScreen
		cfg.Screen = &ScreenConfig{
			ID:        design.ID,
			Name:      design.Name,
			Slug:      design.Slug,
			PlayerURL: r.PlayerURL(design.Slug),
		}

	case model.AssignmentPlaylist:
		playlist, err := r.store.GetPlaylistByID(assignment.PlaylistID)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return cfg, nil
			}
			return DeviceConfig{}, err
		}
		if !playlist.IsActive {
			return cfg, nil
		}
		items, err := r.store.ResolvePlaylistItems(playlist.ID)
		if err != nil {
			return DeviceConfig{}, err
		}
		if len(items) == 0 {
			// every item dangling or the playlist is empty: no content
			return cfg, nil
		}
		out := make([]PlaylistItemConfig, len(items))
		for i, item := range items {
			out[i] = PlaylistItemConfig{
				ScreenID:        item.ScreenDesignID,
				ScreenName:      item.Name,
				ScreenSlug:      item.Slug,
				PlayerURL:       r.PlayerURL(item.Slug),
				DurationSeconds: item.DurationSeconds,
				Order:           item.Position,
			}
		}
		cfg.Kind = ConfigPlaylist
		cfg.Playlist = &PlaylistConfig{
			ID:    playlist.ID,
			Name:  playlist.Name,
			Items: out,
		}
	}

	return cfg, nil
}

// PlayerURL is the public full-screen renderer address for a design slug.
func (r *Registry) PlayerURL(slug string) string {
	return r.baseURL + "/player/" + slug
}
