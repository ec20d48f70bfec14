package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TranscriptCache is a content-addressed on-disk store of transcript text
// keyed by video ID. Existence of <dir>/<id>.txt is the sole cache-hit
// signal; stored text is never re-validated or refreshed. Fetch failures are
// remembered for the run so each video ID triggers at most one fetch attempt.
type TranscriptCache struct {
	dir     string
	fetcher TranscriptFetcher
	logger  *slog.Logger

	mu     sync.Mutex
	locks  map[string]*sync.Mutex
	failed map[string]error
}

// NewTranscriptCache creates a cache over dir backed by the given fetcher.
func NewTranscriptCache(dir string, fetcher TranscriptFetcher, logger *slog.Logger) *TranscriptCache {
	return &TranscriptCache{
		dir:     dir,
		fetcher: fetcher,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
		failed:  make(map[string]error),
	}
}

// Path returns the on-disk location of a video's transcript.
func (c *TranscriptCache) Path(videoID string) string {
	return filepath.Join(c.dir, videoID+".txt")
}

// Ensure returns the transcript text for a video, fetching and persisting it
// on a cache miss. Segments are joined with a single space. A failure
// (including ErrTranscriptsDisabled) is recorded for the remainder of the run
// and returned again without another fetch attempt.
func (c *TranscriptCache) Ensure(ctx context.Context, videoID string) (string, error) {
	lock := c.lockFor(videoID)
	lock.Lock()
	defer lock.Unlock()

	c.mu.Lock()
	failedErr := c.failed[videoID]
	c.mu.Unlock()
	if failedErr != nil {
		return "", failedErr
	}

	path := c.Path(videoID)
	if FileExists(path) {
		c.logger.Info("transcript already exists, skipping download", "video_id", videoID)
		text, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading cached transcript: %w", err)
		}
		return string(text), nil
	}

	c.logger.Info("downloading transcript", "video_id", videoID)
	segments, err := c.fetcher.Fetch(ctx, videoID)
	if err != nil {
		err = fmt.Errorf("fetching transcript for %s: %w", videoID, err)
		c.mu.Lock()
		c.failed[videoID] = err
		c.mu.Unlock()
		return "", err
	}

	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		parts = append(parts, s.Text)
	}
	text := strings.Join(parts, " ")

	if err := EnsureDirs(c.dir); err != nil {
		return "", fmt.Errorf("creating transcripts directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("saving transcript: %w", err)
	}

	return text, nil
}

// lockFor returns the per-key mutex serializing fetch and write for one
// video ID.
func (c *TranscriptCache) lockFor(videoID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[videoID]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[videoID] = lock
	}
	return lock
}
