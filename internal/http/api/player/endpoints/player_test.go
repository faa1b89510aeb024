package endpoints

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumpca/gridsignage/internal/db"
	"github.com/jumpca/gridsignage/internal/http/api"
	"github.com/jumpca/gridsignage/internal/signage"
)

func setupPlayerRouter(t *testing.T) (*gin.Engine, db.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := db.NewMemoryStore()
	r := gin.New()
	api.MountGroup(r, api.GroupConfig{}, PlayerModule(store))
	return r, store
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRenderDesign_FullPage(t *testing.T) {
	r, store := setupPlayerRouter(t)

	design, err := signage.CreateDesign(store, "Welcome Board",
		"", `<div id="board">Hello</div>`, `#board { color: red; }`, `console.log("up");`, "")
	require.NoError(t, err)

	w := get(r, "/player/"+design.Slug)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	body := w.Body.String()
	assert.Contains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, `<div id="board">Hello</div>`)
	assert.Contains(t, body, "#board { color: red; }")
	assert.Contains(t, body, `console.log("up");`)
	assert.Contains(t, body, "<title>Welcome Board</title>")
}

func TestRenderDesign_UnknownSlug404(t *testing.T) {
	r, _ := setupPlayerRouter(t)

	w := get(r, "/player/does-not-exist")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRenderDesign_InactiveLooksMissing(t *testing.T) {
	r, store := setupPlayerRouter(t)

	design, err := signage.CreateDesign(store, "Seasonal", "", "<p>sale</p>", "", "", "")
	require.NoError(t, err)

	inactive := false
	require.NoError(t, store.UpdateScreenDesign(design.ID, nil, nil, nil, nil, nil, nil, &inactive))

	w := get(r, "/player/"+design.Slug)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, w.Body.String(), "sale")
}
