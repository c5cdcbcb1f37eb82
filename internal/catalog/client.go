// Package catalog talks to the site's hosted database through its
// PostgREST-style query interface: equality filters, column projection,
// ordering, limits, insert-with-returning and upsert-with-merge.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aurafm/aura-bot/internal/domain"
)

const (
	defaultTimeout = 20 * time.Second
	deleteTimeout  = 30 * time.Second

	// maxErrorBody caps how much of an error response ends up in logs and
	// operator-facing messages.
	maxErrorBody = 300
)

// Client issues REST queries against one project's database.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{},
	}
}

// ListOptions shape a track listing query.
type ListOptions struct {
	Select  []string
	OrderBy string
	Desc    bool
	Limit   int
}

// ListTracks returns tracks matching the options.
func (c *Client) ListTracks(ctx context.Context, opts ListOptions) ([]domain.Track, error) {
	params := url.Values{}
	if len(opts.Select) > 0 {
		params.Set("select", strings.Join(opts.Select, ","))
	}
	if opts.OrderBy != "" {
		dir := "asc"
		if opts.Desc {
			dir = "desc"
		}
		params.Set("order", opts.OrderBy+"."+dir)
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}

	var tracks []domain.Track
	if err := c.get(ctx, "tracks", params, &tracks); err != nil {
		return nil, err
	}
	return tracks, nil
}

// GetTrack fetches one track by id. Returns (nil, nil) when no row matches.
func (c *Client) GetTrack(ctx context.Context, id int64) (*domain.Track, error) {
	params := url.Values{}
	params.Set("id", "eq."+strconv.FormatInt(id, 10))

	var tracks []domain.Track
	if err := c.get(ctx, "tracks", params, &tracks); err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, nil
	}
	return &tracks[0], nil
}

// InsertTrack registers a new track and returns the stored row with its
// server-assigned id.
func (c *Client) InsertTrack(ctx context.Context, track *domain.Track) (*domain.Track, error) {
	body, err := json.Marshal(map[string]any{
		"title":      track.Title,
		"artist":     track.Artist,
		"audio_url":  track.AudioURL,
		"art_url":    track.ArtURL,
		"favorite":   track.Favorite,
		"duration":   track.Duration,
		"play_count": track.PlayCount,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode track: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "tracks", nil, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Prefer", "return=representation")

	var rows []domain.Track
	if err := c.do(req, defaultTimeout, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert returned no representation")
	}
	return &rows[0], nil
}

// DeleteTrack removes a track row by id.
func (c *Client) DeleteTrack(ctx context.Context, id int64) error {
	params := url.Values{}
	params.Set("id", "eq."+strconv.FormatInt(id, 10))
	return c.delete(ctx, "tracks", params)
}

// DeleteTrackPlaylists removes the playlist join rows referencing a track.
func (c *Client) DeleteTrackPlaylists(ctx context.Context, trackID int64) error {
	params := url.Values{}
	params.Set("track_id", "eq."+strconv.FormatInt(trackID, 10))
	return c.delete(ctx, "playlist_tracks", params)
}

// SiteConfig reads the settings singleton. A missing row is not an error;
// the site defaults to unblocked.
func (c *Client) SiteConfig(ctx context.Context) (domain.SiteConfig, error) {
	params := url.Values{}
	params.Set("id", "eq."+strconv.Itoa(domain.SiteConfigID))

	var rows []domain.SiteConfig
	if err := c.get(ctx, "settings", params, &rows); err != nil {
		return domain.SiteConfig{}, err
	}
	if len(rows) == 0 {
		return domain.SiteConfig{ID: domain.SiteConfigID, Blocked: false}, nil
	}
	return rows[0], nil
}

// SetBlocked flips the site-wide blocked flag via an upsert so the call
// works whether or not the settings row exists yet.
func (c *Client) SetBlocked(ctx context.Context, blocked bool) error {
	body, err := json.Marshal(domain.SiteConfig{ID: domain.SiteConfigID, Blocked: blocked})
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "settings", nil, body)
	if err != nil {
		return err
	}
	req.Header.Set("Prefer", "resolution=merge-duplicates,return=representation")

	return c.do(req, defaultTimeout, nil)
}

func (c *Client) get(ctx context.Context, table string, params url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, table, params, nil)
	if err != nil {
		return err
	}
	return c.do(req, defaultTimeout, out)
}

func (c *Client) delete(ctx context.Context, table string, params url.Values) error {
	req, err := c.newRequest(ctx, http.MethodDelete, table, params, nil)
	if err != nil {
		return err
	}
	return c.do(req, deleteTimeout, nil)
}

func (c *Client) newRequest(ctx context.Context, method, table string, params url.Values, body []byte) (*http.Request, error) {
	endpoint := c.baseURL + "/rest/v1/" + table
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *Client) do(req *http.Request, timeout time.Duration, out any) error {
	ctx, cancel := context.WithTimeout(req.Context(), timeout)
	defer cancel()
	req = req.WithContext(ctx)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("catalog returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return nil
}
