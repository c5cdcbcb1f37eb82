package downloader

import "encoding/json"

// Metadata is the fixed set of fields the pipeline needs from a source,
// with defaulting applied. The open-ended info dump yt-dlp produces never
// travels past this package.
type Metadata struct {
	Title     string
	Artist    string
	Album     string
	Duration  float64
	Thumbnail string
}

const unknownField = "Unknown"

// mediaInfo mirrors the subset of yt-dlp's JSON dump we read.
type mediaInfo struct {
	Title         string   `json:"title"`
	Artist        string   `json:"artist"`
	Uploader      string   `json:"uploader"`
	Creator       string   `json:"creator"`
	Album         string   `json:"album"`
	PlaylistTitle string   `json:"playlist_title"`
	Duration      *float64 `json:"duration"`
	Thumbnail     string   `json:"thumbnail"`
}

func parseMetadata(data []byte) (*Metadata, error) {
	var info mediaInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return metadataFromInfo(info), nil
}

// metadataFromInfo applies the defaulting rules: title falls back to
// "Unknown"; artist is the first present of artist, uploader, creator;
// album is the explicit tag or the playlist title; duration is coerced
// non-negative.
func metadataFromInfo(info mediaInfo) *Metadata {
	meta := &Metadata{
		Title:     info.Title,
		Artist:    info.Artist,
		Album:     info.Album,
		Thumbnail: info.Thumbnail,
	}

	if meta.Title == "" {
		meta.Title = unknownField
	}

	if meta.Artist == "" {
		meta.Artist = info.Uploader
	}
	if meta.Artist == "" {
		meta.Artist = info.Creator
	}
	if meta.Artist == "" {
		meta.Artist = unknownField
	}

	if meta.Album == "" {
		meta.Album = info.PlaylistTitle
	}

	if info.Duration != nil && *info.Duration > 0 {
		meta.Duration = *info.Duration
	}

	return meta
}
