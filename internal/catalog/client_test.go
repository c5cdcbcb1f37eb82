package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurafm/aura-bot/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, "test-key")
}

func TestListTracksQueryShape(t *testing.T) {
	var gotPath, gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		assert.Equal(t, "test-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"title":"Song","artist":"Band","duration":125.4}]`))
	})

	tracks, err := client.ListTracks(context.Background(), ListOptions{
		Select:  []string{"id", "title", "artist", "duration", "play_count"},
		OrderBy: "created_at",
		Desc:    true,
		Limit:   50,
	})

	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "Song", tracks[0].Title)
	assert.Equal(t, "/rest/v1/tracks", gotPath)
	assert.Contains(t, gotQuery, "select=id%2Ctitle%2Cartist%2Cduration%2Cplay_count")
	assert.Contains(t, gotQuery, "order=created_at.desc")
	assert.Contains(t, gotQuery, "limit=50")
}

func TestGetTrack(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "eq.7", r.URL.Query().Get("id"))
		_, _ = w.Write([]byte(`[{"id":7,"title":"Found","artist":"Band"}]`))
	})

	track, err := client.GetTrack(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, track)
	assert.Equal(t, int64(7), track.ID)
}

func TestGetTrackNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	track, err := client.GetTrack(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, track)
}

func TestInsertTrackReturnsRepresentation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Song", body["title"])
		assert.Equal(t, float64(0), body["play_count"])
		assert.Equal(t, false, body["favorite"])
		assert.Nil(t, body["art_url"])
		// Album has no column and must never be sent
		_, hasAlbum := body["album"]
		assert.False(t, hasAlbum)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id":123,"title":"Song","artist":"Band","duration":125.4}]`))
	})

	inserted, err := client.InsertTrack(context.Background(), &domain.Track{
		Title:    "Song",
		Artist:   "Band",
		AudioURL: "https://proj.supabase.co/storage/v1/object/public/tracks/audio/1_Song.mp3",
		Duration: 125.4,
		Album:    "Hidden",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(123), inserted.ID)
}

func TestInsertTrackServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"duplicate key"}`))
	})

	_, err := client.InsertTrack(context.Background(), &domain.Track{Title: "Song"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")
	assert.Contains(t, err.Error(), "duplicate key")
}

func TestDeleteTrackAndPlaylists(t *testing.T) {
	var paths []string
	var filters []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		paths = append(paths, r.URL.Path)
		filters = append(filters, r.URL.RawQuery)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteTrackPlaylists(context.Background(), 5))
	require.NoError(t, client.DeleteTrack(context.Background(), 5))

	assert.Equal(t, []string{"/rest/v1/playlist_tracks", "/rest/v1/tracks"}, paths)
	assert.Equal(t, []string{"track_id=eq.5", "id=eq.5"}, filters)
}

func TestSiteConfig(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/settings", r.URL.Path)
		assert.Equal(t, "eq.1", r.URL.Query().Get("id"))
		_, _ = w.Write([]byte(`[{"id":1,"blocked":true}]`))
	})

	cfg, err := client.SiteConfig(context.Background())
	require.NoError(t, err)
	assert.True(t, cfg.Blocked)
}

func TestSiteConfigMissingRowDefaultsUnblocked(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	cfg, err := client.SiteConfig(context.Background())
	require.NoError(t, err)
	assert.False(t, cfg.Blocked)
	assert.Equal(t, int64(domain.SiteConfigID), cfg.ID)
}

func TestSetBlockedUpsert(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/settings", r.URL.Path)
		assert.Contains(t, r.Header.Get("Prefer"), "resolution=merge-duplicates")

		var body domain.SiteConfig
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, int64(1), body.ID)
		assert.True(t, body.Blocked)

		_, _ = w.Write([]byte(`[{"id":1,"blocked":true}]`))
	})

	assert.NoError(t, client.SetBlocked(context.Background(), true))
}
