package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lrstanley/go-ytdlp"
)

// ErrTranscriptsDisabled means the video has no captions at all, manual or
// automatic. Callers branch on this with errors.Is instead of matching
// error strings.
var ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")

// Segment is one caption cue of a fetched transcript.
type Segment struct {
	Text string
}

// TranscriptFetcher is the transcript-fetch collaborator.
type TranscriptFetcher interface {
	// Fetch returns the caption segments of a video in display order, or
	// ErrTranscriptsDisabled when the video has no captions.
	Fetch(ctx context.Context, videoID string) ([]Segment, error)
}

// CaptionFetcher implements TranscriptFetcher using yt-dlp: it checks caption
// availability from the video metadata, downloads English subtitles as SRT
// into the cache directory and parses them into segments.
type CaptionFetcher struct {
	cacheDir string
	logger   *slog.Logger
}

// NewCaptionFetcher creates a fetcher that stages SRT downloads in cacheDir.
func NewCaptionFetcher(cacheDir string, logger *slog.Logger) *CaptionFetcher {
	return &CaptionFetcher{cacheDir: cacheDir, logger: logger}
}

// Fetch downloads and parses the captions of a video.
func (f *CaptionFetcher) Fetch(ctx context.Context, videoID string) ([]Segment, error) {
	url := WatchURL(videoID)

	available, err := f.captionsAvailable(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("checking caption availability for %s: %w", videoID, err)
	}
	if !available {
		return nil, fmt.Errorf("video %s: %w", videoID, ErrTranscriptsDisabled)
	}

	if err := EnsureDirs(f.cacheDir); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	outputPath := filepath.Join(f.cacheDir, "%(id)s")
	dl := ytdlp.New().
		WriteSubs().        // Enable subtitle writing
		WriteAutoSubs().    // Enable auto-generated subtitle writing
		SubLangs("en").     // Download English subtitle variants
		ConvertSubs("srt"). // Convert subtitles to SRT format
		SkipDownload().     // Skip downloading the video
		Output(outputPath)

	result, err := dl.Run(ctx, url)
	if err != nil {
		f.logger.Debug("subtitle download failed", "video_id", videoID, "stderr", result.Stderr)
		return nil, fmt.Errorf("downloading subtitles for %s: %w", videoID, err)
	}

	srtPath, err := f.findSubtitleFile(videoID)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(srtPath)
	if err != nil {
		return nil, fmt.Errorf("reading SRT file: %w", err)
	}

	// The staged SRT is not needed once parsed; the transcript cache owns
	// the persistent copy.
	if err := os.Remove(srtPath); err != nil {
		f.logger.Warn("failed to remove staged SRT file", "path", srtPath, "error", err)
	}

	lines := removeDuplicateLines(parseSRT(string(content)))
	segments := make([]Segment, 0, len(lines))
	for _, line := range lines {
		segments = append(segments, Segment{Text: line})
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("subtitles for %s contained no text", videoID)
	}
	return segments, nil
}

// captionsAvailable checks the yt-dlp metadata for manual or automatic captions.
func (f *CaptionFetcher) captionsAvailable(ctx context.Context, url string) (bool, error) {
	dl := ytdlp.New().
		DumpSingleJSON().
		NoPlaylist().
		SkipDownload()

	result, err := dl.Run(ctx, url)
	if err != nil {
		f.logger.Debug("metadata extraction failed", "url", url, "stderr", result.Stderr)
		return false, fmt.Errorf("extracting video metadata: %w", err)
	}

	var rawData map[string]any
	if err := json.Unmarshal([]byte(result.Stdout), &rawData); err != nil {
		return false, fmt.Errorf("parsing video metadata: %w", err)
	}

	if subtitles, ok := rawData["subtitles"].(map[string]any); ok && len(subtitles) > 0 {
		return true, nil
	}
	if autoCaptions, ok := rawData["automatic_captions"].(map[string]any); ok && len(autoCaptions) > 0 {
		return true, nil
	}
	return false, nil
}

// findSubtitleFile locates the SRT file yt-dlp wrote for a video.
func (f *CaptionFetcher) findSubtitleFile(videoID string) (string, error) {
	pattern := filepath.Join(f.cacheDir, videoID+"*.srt")
	files, err := filepath.Glob(pattern)
	if err != nil || len(files) == 0 {
		return "", fmt.Errorf("no subtitle files found for %s", videoID)
	}
	return files[0], nil
}

// parseSRT extracts text content from SRT format
func parseSRT(content string) []string {
	var lines []string

	for block := range strings.SplitSeq(content, "\n\n") {
		blockLines := strings.Split(block, "\n")
		if len(blockLines) >= 3 {
			// Skip sequence number and timestamp, get text lines
			for i := 2; i < len(blockLines); i++ {
				if strings.TrimSpace(blockLines[i]) != "" {
					lines = append(lines, strings.TrimSpace(blockLines[i]))
				}
			}
		}
	}

	return lines
}

// removeDuplicateLines eliminates consecutive repeated lines, which
// auto-generated captions produce as cues scroll.
func removeDuplicateLines(lines []string) []string {
	result := make([]string, 0, len(lines))
	prevLine := ""

	for _, line := range lines {
		isDuplicate := prevLine != "" && (strings.Contains(line, prevLine) || strings.Contains(prevLine, line))
		if !isDuplicate {
			result = append(result, line)
		}
		prevLine = line
	}

	return result
}
