package model

import "time"

// ScreenDesign is a reusable screen content unit: an HTML/CSS/JS bundle
// identified by a unique URL-safe slug. Only active designs are visible to
// the public player and to device config resolution.
type ScreenDesign struct {
	ID          int       `db:"id"          json:"id"`
	Name        string    `db:"name"        json:"name"`
	Slug        string    `db:"slug"        json:"slug"`
	Description string    `db:"description" json:"description"`
	HTMLCode    string    `db:"html_code"   json:"html_code"`
	CSSCode     string    `db:"css_code"    json:"css_code"`
	JSCode      string    `db:"js_code"     json:"js_code"`
	Notes       string    `db:"notes"       json:"notes"`
	IsActive    bool      `db:"is_active"   json:"is_active"`
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"  json:"updated_at"`
}
