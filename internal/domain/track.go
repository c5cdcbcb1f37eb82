package domain

import "time"

// MaxFieldLength is the column cap applied to title and artist before a
// track is registered.
const MaxFieldLength = 200

// Track represents a row in the catalog's tracks table.
type Track struct {
	ID       int64   `json:"id,omitempty"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	AudioURL string  `json:"audio_url"`
	ArtURL   *string `json:"art_url"`
	Favorite bool    `json:"favorite"`
	// Duration is the track length in seconds.
	Duration  float64   `json:"duration"`
	PlayCount int64     `json:"play_count"`
	CreatedAt time.Time `json:"created_at,omitempty"`

	// Album comes from source metadata but has no column in the minimal
	// schema; it is never sent to the catalog.
	Album string `json:"-"`
}

// SiteConfig is the settings singleton controlling the public player.
type SiteConfig struct {
	ID      int64 `json:"id"`
	Blocked bool  `json:"blocked"`
}

// SiteConfigID addresses the one settings row the site has.
const SiteConfigID = 1
