// Package ingest implements the download-and-register pipeline: resolve
// source metadata, acquire and transcode the audio, store the assets
// durably, and insert the catalog row. One synchronous run per invocation,
// no retries, no persistence of in-flight state beyond a scratch directory.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aurafm/aura-bot/internal/domain"
	"github.com/aurafm/aura-bot/internal/downloader"
	"github.com/aurafm/aura-bot/internal/objstore"
)

const (
	resolveTimeout   = 30 * time.Second
	thumbnailTimeout = 15 * time.Second
)

// Acquirer resolves metadata and downloads audio from a source URL.
type Acquirer interface {
	Resolve(ctx context.Context, url string) (*downloader.Metadata, error)
	Download(ctx context.Context, url, outputDir string) (string, error)
}

// ObjectStore persists binary assets and derives their public URLs.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	ObjectKey(publicURL string) (string, bool)
}

// Registrar is the slice of the catalog the pipeline touches.
type Registrar interface {
	GetTrack(ctx context.Context, id int64) (*domain.Track, error)
	InsertTrack(ctx context.Context, track *domain.Track) (*domain.Track, error)
	DeleteTrack(ctx context.Context, id int64) error
	DeleteTrackPlaylists(ctx context.Context, trackID int64) error
}

// ArtStatus records what happened to the cover image. Art is best-effort:
// its failure never fails the run, but tests and operators can tell a
// swallowed failure from a source with no artwork.
type ArtStatus int

const (
	ArtSkipped ArtStatus = iota
	ArtUploaded
	ArtFailed
)

// Result is the outcome of a successful run.
type Result struct {
	Track     *domain.Track
	Meta      downloader.Metadata
	ArtStatus ArtStatus
	ArtErr    error
}

// Progress is invoked as the run enters each stage.
type Progress func(Stage)

// Pipeline wires the collaborators of one ingest flow.
type Pipeline struct {
	acquirer Acquirer
	store    ObjectStore
	catalog  Registrar
	http     *http.Client

	// scratchRoot is where per-run scratch directories are created;
	// defaults to the system temp dir.
	scratchRoot string
}

func New(acquirer Acquirer, store ObjectStore, catalog Registrar) *Pipeline {
	return &Pipeline{
		acquirer:    acquirer,
		store:       store,
		catalog:     catalog,
		http:        &http.Client{},
		scratchRoot: os.TempDir(),
	}
}

// Run executes one ingest: URL in, registered track out. The scratch
// directory is removed on every exit path. A nil error means the catalog
// row exists; any error is a StageError naming the failed stage, and no
// row was written.
func (p *Pipeline) Run(ctx context.Context, sourceURL string, progress Progress) (*Result, error) {
	report := func(stage Stage) {
		if progress != nil {
			progress(stage)
		}
	}

	report(StageResolve)
	resolveCtx, cancel := context.WithTimeout(ctx, resolveTimeout)
	meta, err := p.acquirer.Resolve(resolveCtx, sourceURL)
	cancel()
	if err != nil {
		return nil, stageErr(StageResolve, err)
	}

	scratchDir := filepath.Join(p.scratchRoot, "aura-ingest-"+uuid.NewString())
	if err := os.MkdirAll(scratchDir, 0755); err != nil {
		return nil, stageErr(StageAcquire, fmt.Errorf("failed to create scratch directory: %w", err))
	}
	defer func() {
		if err := os.RemoveAll(scratchDir); err != nil {
			slog.Error("Failed to remove scratch directory", "dir", scratchDir, "error", err)
		}
	}()

	report(StageAcquire)
	audioPath, err := p.acquirer.Download(ctx, sourceURL, scratchDir)
	if err != nil {
		return nil, stageErr(StageAcquire, err)
	}

	report(StageUploadAudio)
	audioURL, err := p.uploadAudio(ctx, audioPath, meta.Title)
	if err != nil {
		return nil, stageErr(StageUploadAudio, err)
	}

	result := &Result{Meta: *meta}

	var artURL *string
	if meta.Thumbnail != "" {
		report(StageUploadArt)
		uploaded, err := p.uploadArt(ctx, meta.Thumbnail, meta.Title)
		if err != nil {
			// Cover art is an enhancement, never a requirement.
			result.ArtStatus = ArtFailed
			result.ArtErr = err
			slog.Warn("Art upload failed, continuing without cover", "url", sourceURL, "error", err)
		} else {
			result.ArtStatus = ArtUploaded
			artURL = &uploaded
		}
	}

	report(StageRegister)
	track := &domain.Track{
		Title:     domain.Truncate(meta.Title, domain.MaxFieldLength),
		Artist:    domain.Truncate(meta.Artist, domain.MaxFieldLength),
		AudioURL:  audioURL,
		ArtURL:    artURL,
		Favorite:  false,
		Duration:  math.Round(meta.Duration*100) / 100,
		PlayCount: 0,
		Album:     meta.Album,
	}

	inserted, err := p.catalog.InsertTrack(ctx, track)
	if err != nil {
		// Uploaded assets are left behind; accepted inconsistency, there
		// is no rollback.
		return nil, stageErr(StageRegister, err)
	}

	result.Track = inserted
	slog.Info("Track registered",
		"id", inserted.ID,
		"title", inserted.Title,
		"artist", inserted.Artist,
		"hasArt", result.ArtStatus == ArtUploaded,
	)
	return result, nil
}

func (p *Pipeline) uploadAudio(ctx context.Context, audioPath, title string) (string, error) {
	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to read audio file: %w", err)
	}

	ext := strings.TrimPrefix(filepath.Ext(audioPath), ".")
	key := objstore.BuildKey(objstore.AudioPrefix, title, ext)
	return p.store.Upload(ctx, key, data, objstore.ContentTypeForExt(ext))
}

func (p *Pipeline) uploadArt(ctx context.Context, thumbnailURL, title string) (string, error) {
	data, err := p.fetchThumbnail(ctx, thumbnailURL)
	if err != nil {
		return "", err
	}

	key := objstore.BuildKey(objstore.ArtPrefix, title, "jpg")
	return p.store.Upload(ctx, key, data, "image/jpeg")
}

// fetchThumbnail downloads the cover image. The timeout covers the fetch
// only; the subsequent upload runs on the caller's context.
func (p *Pipeline) fetchThumbnail(ctx context.Context, thumbnailURL string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, thumbnailTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, thumbnailURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create thumbnail request: %w", err)
	}

	resp, err := p.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("thumbnail fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("thumbnail fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read thumbnail: %w", err)
	}
	return data, nil
}

// Delete removes a track record along with its stored assets: best-effort
// object deletes first, then the playlist join rows, then the row itself.
// Returns (nil, nil) when no such track exists. Storage failures are logged
// and swallowed so record deletion never blocks on cleanup.
func (p *Pipeline) Delete(ctx context.Context, id int64) (*domain.Track, error) {
	track, err := p.catalog.GetTrack(ctx, id)
	if err != nil {
		return nil, err
	}
	if track == nil {
		return nil, nil
	}

	urls := []string{track.AudioURL}
	if track.ArtURL != nil {
		urls = append(urls, *track.ArtURL)
	}
	for _, u := range urls {
		key, ok := p.store.ObjectKey(u)
		if !ok {
			continue
		}
		if err := p.store.Delete(ctx, key); err != nil {
			slog.Warn("Failed to delete storage object", "key", key, "error", err)
		}
	}

	if err := p.catalog.DeleteTrackPlaylists(ctx, id); err != nil {
		return nil, err
	}
	if err := p.catalog.DeleteTrack(ctx, id); err != nil {
		return nil, err
	}

	slog.Info("Track deleted", "id", id, "title", track.Title)
	return track, nil
}
