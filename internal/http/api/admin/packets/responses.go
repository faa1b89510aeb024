package packets

import (
	"time"

	"github.com/google/uuid"
)

// Responses mirror the models but flatten times to RFC3339.

type DesignResponse struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	HTMLCode    string `json:"html_code"`
	CSSCode     string `json:"css_code"`
	JSCode      string `json:"js_code"`
	Notes       string `json:"notes"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type PlaylistItemResponse struct {
	ID              int       `json:"id"`
	ScreenDesignID  int       `json:"screen_design_id"`
	Position        int       `json:"position"`
	DurationSeconds int       `json:"duration_seconds"`
	CreatedAt       time.Time `json:"created_at"`
}

type PlaylistResponse struct {
	ID        uuid.UUID              `json:"id"`
	Name      string                 `json:"name"`
	Slug      string                 `json:"slug"`
	IsActive  bool                   `json:"is_active"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
	Items     []PlaylistItemResponse `json:"items"`
}

// AssignmentResponse is the tagged-union view of a device's assignment.
type AssignmentResponse struct {
	Type           string     `json:"type"`
	ScreenDesignID *int       `json:"screen_design_id,omitempty"`
	PlaylistID     *uuid.UUID `json:"playlist_id,omitempty"`
}

type DeviceResponse struct {
	ID                    uuid.UUID          `json:"id"`
	Name                  string             `json:"name"`
	RegistrationCode      string             `json:"registration_code"`
	Registered            bool               `json:"registered"`
	IsPendingRegistration bool               `json:"is_pending_registration"`
	Status                string             `json:"status"`
	Assignment            AssignmentResponse `json:"assignment"`
	Location              string             `json:"location"`
	Notes                 string             `json:"notes"`
	LastSeen              string             `json:"last_seen"`
	CreatedAt             string             `json:"created_at"`
	UpdatedAt             string             `json:"updated_at"`
}
