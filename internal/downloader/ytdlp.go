// Package downloader resolves media metadata and acquires audio from
// third-party platforms through the yt-dlp command line tool.
package downloader

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var (
	ErrYtDlpNotAvailable = fmt.Errorf("yt-dlp not available")
	ErrNoOutput          = fmt.Errorf("no output file")
)

// Audio container preference when yt-dlp leaves something other than mp3
// behind (no transcoder on the host, or a native stream kept as-is).
var extensionPreference = []string{".mp3", ".m4a", ".ogg", ".opus", ".flac", ".wav", ".webm"}

// youtubeClients are the client fingerprints tried, in order, when the
// default web client gets gated.
var youtubeClients = []string{"", "android", "ios"}

// YtDlp drives the yt-dlp binary for metadata resolution and acquisition.
type YtDlp struct {
	// cookiesFile optionally points at a browser-session export used when a
	// platform refuses anonymous automated access.
	cookiesFile  string
	audioQuality string
}

func New(cookiesFile, audioQuality string) *YtDlp {
	return &YtDlp{
		cookiesFile:  cookiesFile,
		audioQuality: audioQuality,
	}
}

// Available verifies the yt-dlp binary can be executed.
func (d *YtDlp) Available() error {
	if _, err := exec.LookPath("yt-dlp"); err != nil {
		return fmt.Errorf("%w: %v", ErrYtDlpNotAvailable, err)
	}
	return nil
}

// Resolve fetches source metadata without downloading the media payload.
func (d *YtDlp) Resolve(ctx context.Context, sourceURL string) (*Metadata, error) {
	args := []string{
		"-J",
		"--skip-download",
		"--no-playlist",
		"--no-warnings",
	}
	if d.cookiesFile != "" {
		args = append(args, "--cookies", d.cookiesFile)
	}
	args = append(args, sourceURL)

	cmd := exec.CommandContext(ctx, "yt-dlp", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("metadata resolution failed: %w: %s", err, lastLine(stderr.String()))
	}

	meta, err := parseMetadata(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}

	slog.Info("Resolved source metadata",
		"url", sourceURL,
		"title", meta.Title,
		"artist", meta.Artist,
		"duration", meta.Duration,
	)
	return meta, nil
}

// Download acquires the best audio-only stream into outputDir, transcoding
// to mp3 when ffmpeg is on the host. For platforms known to gate automated
// access it retries across alternate client fingerprints before giving up.
// Returns the path to the resulting audio file.
func (d *YtDlp) Download(ctx context.Context, sourceURL, outputDir string) (string, error) {
	if err := d.Available(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	clients := []string{""}
	if isYouTube(sourceURL) {
		clients = youtubeClients
	}

	var lastErr error
	for _, client := range clients {
		if err := d.runDownload(ctx, sourceURL, outputDir, client); err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			lastErr = err
			slog.Warn("Download attempt failed", "url", sourceURL, "client", clientName(client), "error", err)
			continue
		}

		output, err := findAudioFile(outputDir)
		if err != nil {
			lastErr = err
			continue
		}
		slog.Info("Acquired audio", "url", sourceURL, "file", output, "client", clientName(client))
		return output, nil
	}

	return "", fmt.Errorf("download failed: %w", lastErr)
}

func (d *YtDlp) runDownload(ctx context.Context, sourceURL, outputDir, client string) error {
	args := []string{
		"-f", "bestaudio/best",
		"-o", filepath.Join(outputDir, "%(title).80s.%(ext)s"),
		"--no-playlist",
		"--no-warnings",
	}

	if ffmpegAvailable() {
		args = append(args,
			"-x",
			"--audio-format", "mp3",
			"--audio-quality", d.audioQuality,
		)
	} else {
		slog.Warn("ffmpeg not found, keeping native audio container")
	}

	if client != "" {
		args = append(args, "--extractor-args", "youtube:player_client="+client)
	}
	if d.cookiesFile != "" {
		args = append(args, "--cookies", d.cookiesFile)
	}
	args = append(args, sourceURL)

	cmd := exec.CommandContext(ctx, "yt-dlp", args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("yt-dlp failed: %w: %s", err, lastLine(stderr.String()))
	}
	return nil
}

// findAudioFile picks the acquired audio file from the scratch directory,
// preferring the normalized mp3 and falling back through the native
// container order.
func findAudioFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to scan output directory: %w", err)
	}

	for _, ext := range extensionPreference {
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if strings.EqualFold(filepath.Ext(entry.Name()), ext) {
				return filepath.Join(dir, entry.Name()), nil
			}
		}
	}

	return "", fmt.Errorf("%w: in directory %s", ErrNoOutput, dir)
}

func ffmpegAvailable() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

func isYouTube(sourceURL string) bool {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	return host == "youtube.com" || host == "youtu.be" || host == "music.youtube.com" || host == "m.youtube.com"
}

func clientName(client string) string {
	if client == "" {
		return "default"
	}
	return client
}

// lastLine extracts the final non-empty stderr line, which is where yt-dlp
// puts its actual error.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
