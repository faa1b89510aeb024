package signage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jumpca/gridsignage/internal/db"
)

func TestCreateDesign_SlugDerivation(t *testing.T) {
	store := db.NewMemoryStore()

	d, err := CreateDesign(store, "Q1 Sales Board!", "", "", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "q1-sales-board", d.Slug)
	assert.True(t, d.IsActive)
}

func TestCreateDesign_CollisionSuffix(t *testing.T) {
	store := db.NewMemoryStore()

	first, err := CreateDesign(store, "Menu", "", "", "", "", "")
	require.NoError(t, err)
	second, err := CreateDesign(store, "Menu", "", "", "", "", "")
	require.NoError(t, err)
	third, err := CreateDesign(store, "Menu", "", "", "", "", "")
	require.NoError(t, err)

	assert.Equal(t, "menu", first.Slug)
	assert.Equal(t, "menu-2", second.Slug)
	assert.Equal(t, "menu-3", third.Slug)
}

func TestCreateDesign_EmptySlug(t *testing.T) {
	store := db.NewMemoryStore()

	_, err := CreateDesign(store, "!!!", "", "", "", "", "")
	assert.ErrorIs(t, err, db.ErrInvalid)
}

func TestCreatePlaylist_SlugAndUniqueName(t *testing.T) {
	store := db.NewMemoryStore()

	p, err := CreatePlaylist(store, "Morning Rotation")
	require.NoError(t, err)
	assert.Equal(t, "morning-rotation", p.Slug)

	// the playlist name itself is unique, so re-creating fails outright
	_, err = CreatePlaylist(store, "Morning Rotation")
	assert.ErrorIs(t, err, db.ErrConflict)
}
