package endpoints

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumpca/gridsignage/internal/db"
	"github.com/jumpca/gridsignage/internal/http/api"
	"github.com/jumpca/gridsignage/internal/signage"
)

func setupDeviceRouter(t *testing.T) (*gin.Engine, *signage.Registry, db.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := db.NewMemoryStore()
	registry := signage.NewRegistry(store, "http://signage.test")

	r := gin.New()
	api.MountGroup(r, api.GroupConfig{}, DeviceModule(registry))
	return r, registry, store
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestCode_WireShape(t *testing.T) {
	r, _, _ := setupDeviceRouter(t)

	w := doJSON(t, r, http.MethodPost, "/devices/request-code", map[string]string{
		"device_name": "Lobby TV",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success          bool   `json:"success"`
		DeviceID         string `json:"device_id"`
		RegistrationCode string `json:"registration_code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.RegistrationCode, 6)
	_, err := uuid.Parse(resp.DeviceID)
	assert.NoError(t, err)
}

func TestRequestCode_EmptyBodyAccepted(t *testing.T) {
	r, _, _ := setupDeviceRouter(t)

	w := doJSON(t, r, http.MethodPost, "/devices/request-code", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegister_Flow(t *testing.T) {
	r, registry, _ := setupDeviceRouter(t)
	device, err := registry.RequestCode("")
	require.NoError(t, err)

	// wrong code: 200 with registered false, nothing leaked
	w := doJSON(t, r, http.MethodPost, "/devices/"+device.ID.String()+"/register",
		map[string]string{"registration_code": "WRONG2"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success    bool `json:"success"`
		Registered bool `json:"registered"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.False(t, resp.Registered)

	// right code registers
	w = doJSON(t, r, http.MethodPost, "/devices/"+device.ID.String()+"/register",
		map[string]string{"registration_code": device.RegistrationCode})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Registered)

	// registering again stays true
	w = doJSON(t, r, http.MethodPost, "/devices/"+device.ID.String()+"/register",
		map[string]string{"registration_code": device.RegistrationCode})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Registered)
}

func TestRegister_UnknownDevice404(t *testing.T) {
	r, _, _ := setupDeviceRouter(t)

	w := doJSON(t, r, http.MethodPost, "/devices/"+uuid.NewString()+"/register",
		map[string]string{"registration_code": "ABC234"})
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestRegister_MalformedID404(t *testing.T) {
	r, _, _ := setupDeviceRouter(t)

	w := doJSON(t, r, http.MethodPost, "/devices/not-a-uuid/register",
		map[string]string{"registration_code": "ABC234"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetConfig_NoneScreenPlaylist(t *testing.T) {
	r, registry, store := setupDeviceRouter(t)
	device, err := registry.RequestCode("Hall TV")
	require.NoError(t, err)
	_, err = registry.Register(device.ID, device.RegistrationCode)
	require.NoError(t, err)

	configPath := "/devices/" + device.ID.String() + "/config"

	// no assignment yet
	w := doJSON(t, r, http.MethodGet, configPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success    bool            `json:"success"`
		DeviceID   string          `json:"device_id"`
		DeviceName string          `json:"device_name"`
		Registered bool            `json:"registered"`
		Config     json.RawMessage `json:"config"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.Registered)
	assert.Equal(t, "Hall TV", resp.DeviceName)
	assert.JSONEq(t, `{"type":"none"}`, string(resp.Config))

	// screen assignment
	design, err := signage.CreateDesign(store, "Welcome", "", "<p>hi</p>", "", "", "")
	require.NoError(t, err)
	require.NoError(t, registry.AssignScreen(device.ID, design.ID))

	w = doJSON(t, r, http.MethodGet, configPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	var screenCfg struct {
		Type       string `json:"type"`
		ScreenID   int    `json:"screen_id"`
		ScreenSlug string `json:"screen_slug"`
		PlayerURL  string `json:"player_url"`
	}
	require.NoError(t, json.Unmarshal(resp.Config, &screenCfg))
	assert.Equal(t, "screen", screenCfg.Type)
	assert.Equal(t, design.ID, screenCfg.ScreenID)
	assert.Equal(t, "welcome", screenCfg.ScreenSlug)
	assert.Equal(t, "http://signage.test/player/welcome", screenCfg.PlayerURL)

	// playlist assignment
	playlist, err := signage.CreatePlaylist(store, "Loop")
	require.NoError(t, err)
	_, err = store.AddPlaylistItem(playlist.ID, design.ID, 0, 45)
	require.NoError(t, err)
	require.NoError(t, registry.AssignPlaylist(device.ID, playlist.ID))

	w = doJSON(t, r, http.MethodGet, configPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	var playlistCfg struct {
		Type  string `json:"type"`
		Items []struct {
			ScreenSlug      string `json:"screen_slug"`
			DurationSeconds int    `json:"duration_seconds"`
			Order           int    `json:"order"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(resp.Config, &playlistCfg))
	assert.Equal(t, "playlist", playlistCfg.Type)
	require.Len(t, playlistCfg.Items, 1)
	assert.Equal(t, "welcome", playlistCfg.Items[0].ScreenSlug)
	assert.Equal(t, 45, playlistCfg.Items[0].DurationSeconds)
	assert.Equal(t, 0, playlistCfg.Items[0].Order)
}

func TestGetConfig_UnknownDevice404(t *testing.T) {
	r, _, _ := setupDeviceRouter(t)

	w := doJSON(t, r, http.MethodGet, "/devices/"+uuid.NewString()+"/config", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp struct {
		Success bool `json:"success"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
}

func TestGetConfigByCode(t *testing.T) {
	r, registry, _ := setupDeviceRouter(t)
	device, err := registry.RequestCode("")
	require.NoError(t, err)

	w := doJSON(t, r, http.MethodGet, "/devices/by-code/"+device.RegistrationCode+"/config", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success  bool   `json:"success"`
		DeviceID string `json:"device_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, device.ID.String(), resp.DeviceID)

	w = doJSON(t, r, http.MethodGet, "/devices/by-code/ZZZZZZ/config", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
