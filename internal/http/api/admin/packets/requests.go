package packets

import "github.com/google/uuid"

type CreateDesignRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	HTMLCode    string `json:"html_code"`
	CSSCode     string `json:"css_code"`
	JSCode      string `json:"js_code"`
	Notes       string `json:"notes"`
}

type UpdateDesignRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	HTMLCode    *string `json:"html_code"`
	CSSCode     *string `json:"css_code"`
	JSCode      *string `json:"js_code"`
	Notes       *string `json:"notes"`
	IsActive    *bool   `json:"is_active"`
}

type CreatePlaylistRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpdatePlaylistRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

type AddPlaylistItemRequest struct {
	ScreenDesignID  int  `json:"screen_design_id" binding:"required"`
	Position        *int `json:"position" binding:"required"`
	DurationSeconds *int `json:"duration_seconds"` // defaults to 30
}

type UpdatePlaylistItemRequest struct {
	Position        *int `json:"position"`
	DurationSeconds *int `json:"duration_seconds"`
}

type ReorderItemsRequest struct {
	ItemIDs []int `json:"item_ids" binding:"required"`
}

type UpdateDeviceRequest struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
	Notes    *string `json:"notes"`
}

// RegisterDeviceRequest is the staff flow: type the code the TV shows,
// optionally naming the device in the same step.
type RegisterDeviceRequest struct {
	RegistrationCode string  `json:"registration_code" binding:"required"`
	Name             *string `json:"name"`
}

// AssignContentRequest sets the device's exclusive assignment.
// Type "none" clears it; "screen" requires screen_design_id; "playlist"
// requires playlist_id.
type AssignContentRequest struct {
	Type           string     `json:"type" binding:"required,oneof=screen playlist none"`
	ScreenDesignID *int       `json:"screen_design_id"`
	PlaylistID     *uuid.UUID `json:"playlist_id"`
}
