package signage

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumpca/gridsignage/internal/db"
	"github.com/jumpca/gridsignage/internal/model"
)

const testBaseURL = "http://signage.test"

func newTestRegistry(t *testing.T) (*Registry, db.Store) {
	t.Helper()
	store := db.NewMemoryStore()
	return NewRegistry(store, testBaseURL), store
}

func mustDesign(t *testing.T, store db.Store, name string) model.ScreenDesign {
	t.Helper()
	d, err := CreateDesign(store, name, "", "<h1>hi</h1>", "body{}", "", "")
	require.NoError(t, err)
	return d
}

func TestRequestCode_MintsUnregisteredDevice(t *testing.T) {
	registry, store := newTestRegistry(t)

	device, err := registry.RequestCode("Lobby TV")
	require.NoError(t, err)

	assert.Len(t, device.RegistrationCode, 6)
	assert.False(t, device.Registered)
	assert.True(t, device.IsPendingRegistration())
	for _, ch := range device.RegistrationCode {
		assert.Contains(t, codeCharset, string(ch))
	}

	// a second request is a new identity, never a reuse
	second, err := registry.RequestCode("Lobby TV")
	require.NoError(t, err)
	assert.NotEqual(t, device.ID, second.ID)
	assert.NotEqual(t, device.RegistrationCode, second.RegistrationCode)

	stored, err := store.GetDeviceByID(device.ID)
	require.NoError(t, err)
	assert.Equal(t, device.RegistrationCode, stored.RegistrationCode)
}

func TestRequestCode_ConcurrentMintsAreUnique(t *testing.T) {
	registry, _ := newTestRegistry(t)

	const n = 64
	var wg sync.WaitGroup
	codes := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			device, err := registry.RequestCode("")
			if err != nil {
				t.Error(err)
				return
			}
			codes <- device.RegistrationCode
		}()
	}
	wg.Wait()
	close(codes)

	seen := make(map[string]bool)
	for code := range codes {
		assert.False(t, seen[code], "duplicate code %s issued", code)
		seen[code] = true
	}
	assert.Len(t, seen, n)
}

func TestRegister_CodeMismatchIsSilent(t *testing.T) {
	registry, store := newTestRegistry(t)
	device, err := registry.RequestCode("")
	require.NoError(t, err)

	ok, err := registry.Register(device.ID, "WRONG1")
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := store.GetDeviceByID(device.ID)
	require.NoError(t, err)
	assert.False(t, stored.Registered)
}

func TestRegister_MatchingCodeIsIdempotent(t *testing.T) {
	registry, store := newTestRegistry(t)
	device, err := registry.RequestCode("")
	require.NoError(t, err)

	ok, err := registry.Register(device.ID, device.RegistrationCode)
	require.NoError(t, err)
	assert.True(t, ok)

	// registering again with the same code stays a success
	ok, err = registry.Register(device.ID, device.RegistrationCode)
	require.NoError(t, err)
	assert.True(t, ok)

	stored, err := store.GetDeviceByID(device.ID)
	require.NoError(t, err)
	assert.True(t, stored.Registered)
}

func TestRegister_UnknownDevice(t *testing.T) {
	registry, _ := newTestRegistry(t)

	_, err := registry.Register(uuid.New(), "ABC234")
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestRegisterByCode_NamesAndRegisters(t *testing.T) {
	registry, _ := newTestRegistry(t)
	device, err := registry.RequestCode("")
	require.NoError(t, err)

	name := "Cafeteria"
	registered, err := registry.RegisterByCode(device.RegistrationCode, &name)
	require.NoError(t, err)
	assert.True(t, registered.Registered)
	assert.Equal(t, "Cafeteria", registered.Name)

	_, err = registry.RegisterByCode("NOPE22", nil)
	assert.ErrorIs(t, err, db.ErrNotFound)
}

func TestAssignScreenAndPlaylistAreExclusive(t *testing.T) {
	registry, store := newTestRegistry(t)
	device, err := registry.RequestCode("")
	require.NoError(t, err)

	design := mustDesign(t, store, "Welcome Board")
	playlist, err := CreatePlaylist(store, "Morning Loop")
	require.NoError(t, err)

	require.NoError(t, registry.AssignScreen(device.ID, design.ID))
	stored, _ := store.GetDeviceByID(device.ID)
	assert.Equal(t, model.AssignmentScreen, stored.Assignment().Kind)

	require.NoError(t, registry.AssignPlaylist(device.ID, playlist.ID))
	stored, _ = store.GetDeviceByID(device.ID)
	assignment := stored.Assignment()
	assert.Equal(t, model.AssignmentPlaylist, assignment.Kind)
	assert.Equal(t, playlist.ID, assignment.PlaylistID)
	assert.Nil(t, stored.AssignedScreenID)

	require.NoError(t, registry.AssignScreen(device.ID, design.ID))
	stored, _ = store.GetDeviceByID(device.ID)
	assert.Equal(t, model.AssignmentScreen, stored.Assignment().Kind)
	assert.Nil(t, stored.AssignedPlaylistID)

	require.NoError(t, registry.Unassign(device.ID))
	stored, _ = store.GetDeviceByID(device.ID)
	assert.Equal(t, model.AssignmentNone, stored.Assignment().Kind)
}

func TestAssign_MissingTargets(t *testing.T) {
	registry, store := newTestRegistry(t)
	device, err := registry.RequestCode("")
	require.NoError(t, err)

	assert.ErrorIs(t, registry.AssignScreen(device.ID, 9999), db.ErrNotFound)
	assert.ErrorIs(t, registry.AssignPlaylist(device.ID, uuid.New()), db.ErrNotFound)

	design := mustDesign(t, store, "Exists")
	assert.ErrorIs(t, registry.AssignScreen(uuid.New(), design.ID), db.ErrNotFound)
}

func TestResolveConfig_UnregisteredIsNone(t *testing.T) {
	registry, store := newTestRegistry(t)
	device, err := registry.RequestCode("Hall TV")
	require.NoError(t, err)

	// assignments on an unregistered device are stored but not served
	design := mustDesign(t, store, "Hidden")
	require.NoError(t, registry.AssignScreen(device.ID, design.ID))

	cfg, err := registry.ResolveConfig(device.ID)
	require.NoError(t, err)
	assert.Equal(t, ConfigNone, cfg.Kind)
	assert.False(t, cfg.Registered)
	assert.Equal(t, "Hall TV", cfg.DeviceName)
	assert.Nil(t, cfg.Screen)
	assert.Nil(t, cfg.Playlist)
}

func TestResolveConfig_Screen(t *testing.T) {
	registry, store := newTestRegistry(t)
	device, err := registry.RequestCode("")
	require.NoError(t, err)
	_, err = registry.Register(device.ID, device.RegistrationCode)
	require.NoError(t, err)

	design := mustDesign(t, store, "Quarterly Numbers")
	require.NoError(t, registry.AssignScreen(device.ID, design.ID))

	cfg, err := registry.ResolveConfig(device.ID)
	require.NoError(t, err)
	require.Equal(t, ConfigScreen, cfg.Kind)
	require.NotNil(t, cfg.Screen)
	assert.Equal(t, design.ID, cfg.Screen.ID)
	assert.Equal(t, "quarterly-numbers", cfg.Screen.Slug)
	assert.Equal(t, testBaseURL+"/player/quarterly-numbers", cfg.Screen.PlayerURL)
}

func TestResolveConfig_InactiveScreenDegradesToNone(t *testing.T) {
	registry, store := newTestRegistry(t)
	device, err := registry.RequestCode("")
	require.NoError(t, err)
	_, err = registry.Register(device.ID, device.RegistrationCode)
	require.NoError(t, err)

	design := mustDesign(t, store, "Seasonal")
	require.NoError(t, registry.AssignScreen(device.ID, design.ID))

	inactive := false
	require.NoError(t, store.UpdateScreenDesign(design.ID, nil, nil, nil, nil, nil, nil, &inactive))

	cfg, err := registry.ResolveConfig(device.ID)
	require.NoError(t, err)
	assert.Equal(t, ConfigNone, cfg.Kind)
	assert.True(t, cfg.Registered)
}

func TestResolveConfig_PlaylistOrderingAndFiltering(t *testing.T) {
	registry, store := newTestRegistry(t)
	device, err := registry.RequestCode("")
	require.NoError(t, err)
	_, err = registry.Register(device.ID, device.RegistrationCode)
	require.NoError(t, err)

	first := mustDesign(t, store, "First Slide")
	second := mustDesign(t, store, "Second Slide")
	third := mustDesign(t, store, "Third Slide")

	playlist, err := CreatePlaylist(store, "Rotation")
	require.NoError(t, err)
	_, err = store.AddPlaylistItem(playlist.ID, first.ID, 0, 10)
	require.NoError(t, err)
	_, err = store.AddPlaylistItem(playlist.ID, second.ID, 1, 20)
	require.NoError(t, err)
	_, err = store.AddPlaylistItem(playlist.ID, third.ID, 2, 30)
	require.NoError(t, err)

	require.NoError(t, registry.AssignPlaylist(device.ID, playlist.ID))

	cfg, err := registry.ResolveConfig(device.ID)
	require.NoError(t, err)
	require.Equal(t, ConfigPlaylist, cfg.Kind)
	require.NotNil(t, cfg.Playlist)
	require.Len(t, cfg.Playlist.Items, 3)
	assert.Equal(t, "first-slide", cfg.Playlist.Items[0].ScreenSlug)
	assert.Equal(t, 10, cfg.Playlist.Items[0].DurationSeconds)
	assert.Equal(t, "second-slide", cfg.Playlist.Items[1].ScreenSlug)
	assert.Equal(t, "third-slide", cfg.Playlist.Items[2].ScreenSlug)

	// deactivating one design drops it from the resolved list
	inactive := false
	require.NoError(t, store.UpdateScreenDesign(second.ID, nil, nil, nil, nil, nil, nil, &inactive))

	cfg, err = registry.ResolveConfig(device.ID)
	require.NoError(t, err)
	require.Equal(t, ConfigPlaylist, cfg.Kind)
	require.Len(t, cfg.Playlist.Items, 2)
	assert.Equal(t, "first-slide", cfg.Playlist.Items[0].ScreenSlug)
	assert.Equal(t, "third-slide", cfg.Playlist.Items[1].ScreenSlug)
}

func TestResolveConfig_EmptyOrDanglingPlaylistIsNone(t *testing.T) {
	registry, store := newTestRegistry(t)
	device, err := registry.RequestCode("")
	require.NoError(t, err)
	_, err = registry.Register(device.ID, device.RegistrationCode)
	require.NoError(t, err)

	playlist, err := CreatePlaylist(store, "Empty Loop")
	require.NoError(t, err)
	require.NoError(t, registry.AssignPlaylist(device.ID, playlist.ID))

	cfg, err := registry.ResolveConfig(device.ID)
	require.NoError(t, err)
	assert.Equal(t, ConfigNone, cfg.Kind)

	// a deactivated playlist serves nothing even with items in it
	design := mustDesign(t, store, "Filler")
	_, err = store.AddPlaylistItem(playlist.ID, design.ID, 0, 30)
	require.NoError(t, err)
	inactive := false
	require.NoError(t, store.UpdatePlaylist(playlist.ID, nil, &inactive))
	cfg, err = registry.ResolveConfig(device.ID)
	require.NoError(t, err)
	assert.Equal(t, ConfigNone, cfg.Kind)

	// deleting the playlist leaves the device serving none as well
	require.NoError(t, store.DeletePlaylist(playlist.ID))
	cfg, err = registry.ResolveConfig(device.ID)
	require.NoError(t, err)
	assert.Equal(t, ConfigNone, cfg.Kind)
}

func TestResolveConfig_RepeatedPollsIdentical(t *testing.T) {
	registry, store := newTestRegistry(t)
	device, err := registry.RequestCode("Lobby TV")
	require.NoError(t, err)

	// unregistered polls answer the same "none" every time
	first, err := registry.ResolveConfig(device.ID)
	require.NoError(t, err)
	second, err := registry.ResolveConfig(device.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = registry.Register(device.ID, device.RegistrationCode)
	require.NoError(t, err)

	a := mustDesign(t, store, "Opening Slide")
	b := mustDesign(t, store, "Closing Slide")
	playlist, err := CreatePlaylist(store, "Steady Rotation")
	require.NoError(t, err)
	_, err = store.AddPlaylistItem(playlist.ID, a.ID, 0, 15)
	require.NoError(t, err)
	_, err = store.AddPlaylistItem(playlist.ID, b.ID, 1, 25)
	require.NoError(t, err)
	require.NoError(t, registry.AssignPlaylist(device.ID, playlist.ID))

	// with nothing changing between polls, the device sees byte-for-byte
	// the same answer on every poll
	first, err = registry.ResolveConfig(device.ID)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		next, err := registry.ResolveConfig(device.ID)
		require.NoError(t, err)
		assert.Equal(t, first, next)
	}
}

func TestAssignmentExclusiveDuringConcurrentFlips(t *testing.T) {
	registry, store := newTestRegistry(t)
	device, err := registry.RequestCode("")
	require.NoError(t, err)

	design := mustDesign(t, store, "Flip Target")
	playlist, err := CreatePlaylist(store, "Flip Loop")
	require.NoError(t, err)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		for i := 0; i < 500; i++ {
			if i%2 == 0 {
				if err := registry.AssignScreen(device.ID, design.ID); err != nil {
					t.Error(err)
					return
				}
			} else {
				if err := registry.AssignPlaylist(device.ID, playlist.ID); err != nil {
					t.Error(err)
					return
				}
			}
		}
	}()

	// read until the writer finishes; no snapshot may ever show both
	// assignment columns set
	for {
		dev, err := store.GetDeviceByID(device.ID)
		require.NoError(t, err)
		if dev.AssignedScreenID != nil && dev.AssignedPlaylistID != nil {
			t.Fatal("device observed with both a screen and a playlist assigned")
		}
		select {
		case <-done:
			wg.Wait()
			return
		default:
		}
	}
}

func TestResolveConfig_StampsLastSeen(t *testing.T) {
	registry, store := newTestRegistry(t)
	device, err := registry.RequestCode("")
	require.NoError(t, err)

	before, err := store.GetDeviceByID(device.ID)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = registry.ResolveConfig(device.ID)
	require.NoError(t, err)

	after, err := store.GetDeviceByID(device.ID)
	require.NoError(t, err)
	assert.True(t, after.LastSeen.After(before.LastSeen))
}

func TestResolveConfigByCode(t *testing.T) {
	registry, _ := newTestRegistry(t)
	device, err := registry.RequestCode("Side Door")
	require.NoError(t, err)

	cfg, err := registry.ResolveConfigByCode(device.RegistrationCode)
	require.NoError(t, err)
	assert.Equal(t, device.ID, cfg.DeviceID)
	assert.Equal(t, "Side Door", cfg.DeviceName)

	_, err = registry.ResolveConfigByCode("(unknown)")
	assert.ErrorIs(t, err, db.ErrNotFound)
}
