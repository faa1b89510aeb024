package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jumpca/gridsignage/internal/db"
	"github.com/jumpca/gridsignage/internal/http/api"
	"github.com/jumpca/gridsignage/internal/http/api/admin/packets"
	"github.com/jumpca/gridsignage/internal/model"
	"github.com/jumpca/gridsignage/internal/signage"
)

const defaultItemDurationSeconds = 30

type PlaylistController struct {
	store db.Store
}

func newPlaylistController(store db.Store) *PlaylistController {
	return &PlaylistController{store: store}
}

// PlaylistModule mounts all authenticated /playlists endpoints.
func PlaylistModule(store db.Store) api.Module {
	ctl := newPlaylistController(store)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/playlists", ctl.listPlaylists)
		c.POST("/playlists", ctl.createPlaylist)
		c.GET("/playlists/:id", ctl.getPlaylist)
		c.PUT("/playlists/:id", ctl.updatePlaylist)
		c.DELETE("/playlists/:id", ctl.deletePlaylist)

		c.POST("/playlists/:id/items", ctl.addItem)
		c.PUT("/playlists/:id/items/:item_id", ctl.updateItem)
		c.DELETE("/playlists/:id/items/:item_id", ctl.removeItem)
		c.PUT("/playlists/:id/items", ctl.reorderItems)
	})
}

func mapPlaylist(pl model.Playlist) packets.PlaylistResponse {
	items := make([]packets.PlaylistItemResponse, len(pl.Items))
	for i, it := range pl.Items {
		items[i] = packets.PlaylistItemResponse{
			ID:              it.ID,
			ScreenDesignID:  it.ScreenDesignID,
			Position:        it.Position,
			DurationSeconds: it.DurationSeconds,
			CreatedAt:       it.CreatedAt,
		}
	}
	return packets.PlaylistResponse{
		ID:        pl.ID,
		Name:      pl.Name,
		Slug:      pl.Slug,
		IsActive:  pl.IsActive,
		CreatedAt: pl.CreatedAt,
		UpdatedAt: pl.UpdatedAt,
		Items:     items,
	}
}

func playlistID(ctx *gin.Context) (uuid.UUID, *api.APIError) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return uuid.Nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid playlist id"}
	}
	return id, nil
}

func (p *PlaylistController) listPlaylists(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	all, err := p.store.ListPlaylists()
	if err != nil {
		log.Error().Err(err).Msg("[playlists] list: could not list playlists")
		return nil, storeError(err, "could not list playlists")
	}

	out := make([]packets.PlaylistResponse, 0, len(all))
	for _, pl := range all {
		out = append(out, mapPlaylist(pl))
	}
	return out, nil
}

func (p *PlaylistController) createPlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.CreatePlaylistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Error().Err(err).Msg("[playlists] create: bad request")
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	pl, err := signage.CreatePlaylist(p.store, req.Name)
	if err != nil {
		log.Error().Err(err).Str("name", req.Name).Msg("[playlists] create: could not create playlist")
		return nil, storeError(err, "could not create playlist")
	}
	return mapPlaylist(pl), nil
}

func (p *PlaylistController) getPlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := playlistID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	pl, err := p.store.GetPlaylistByID(id)
	if err != nil {
		return nil, storeError(err, "could not get playlist")
	}
	return mapPlaylist(pl), nil
}

func (p *PlaylistController) updatePlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := playlistID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.UpdatePlaylistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := p.store.UpdatePlaylist(id, req.Name, req.IsActive); err != nil {
		return nil, storeError(err, "could not update playlist")
	}

	pl, err := p.store.GetPlaylistByID(id)
	if err != nil {
		return nil, storeError(err, "could not get playlist")
	}
	return mapPlaylist(pl), nil
}

func (p *PlaylistController) deletePlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := playlistID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := p.store.DeletePlaylist(id); err != nil {
		return nil, storeError(err, "could not delete playlist")
	}
	return nil, nil
}

// POST /api/admin/playlists/:id/items
// Rejects an occupied position with 409 rather than shifting neighbours.
func (p *PlaylistController) addItem(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := playlistID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.AddPlaylistItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	duration := defaultItemDurationSeconds
	if req.DurationSeconds != nil {
		duration = *req.DurationSeconds
	}

	item, err := p.store.AddPlaylistItem(id, req.ScreenDesignID, *req.Position, duration)
	if err != nil {
		log.Error().Err(err).Str("playlist_id", id.String()).Msg("[playlists] addItem failed")
		return nil, storeError(err, "could not add item")
	}
	return packets.PlaylistItemResponse{
		ID:              item.ID,
		ScreenDesignID:  item.ScreenDesignID,
		Position:        item.Position,
		DurationSeconds: item.DurationSeconds,
		CreatedAt:       item.CreatedAt,
	}, nil
}

func (p *PlaylistController) updateItem(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := playlistID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	itemID, err := strconv.Atoi(ctx.Param("item_id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid item id"}
	}

	var req packets.UpdatePlaylistItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := p.store.UpdatePlaylistItem(id, itemID, req.Position, req.DurationSeconds); err != nil {
		return nil, storeError(err, "could not update item")
	}

	pl, err := p.store.GetPlaylistByID(id)
	if err != nil {
		return nil, storeError(err, "could not get playlist")
	}
	return mapPlaylist(pl), nil
}

func (p *PlaylistController) removeItem(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := playlistID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	itemID, err := strconv.Atoi(ctx.Param("item_id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid item id"}
	}
	if err := p.store.RemovePlaylistItem(id, itemID); err != nil {
		return nil, storeError(err, "could not remove item")
	}
	return nil, nil
}

// PUT /api/admin/playlists/:id/items
// Whole-order replacement; the id set must match the playlist exactly.
func (p *PlaylistController) reorderItems(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := playlistID(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.ReorderItemsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if err := p.store.ReorderPlaylistItems(id, req.ItemIDs); err != nil {
		log.Error().Err(err).Str("playlist_id", id.String()).Msg("[playlists] reorder failed")
		return nil, storeError(err, "could not reorder items")
	}

	pl, err := p.store.GetPlaylistByID(id)
	if err != nil {
		return nil, storeError(err, "could not get playlist")
	}
	return mapPlaylist(pl), nil
}
