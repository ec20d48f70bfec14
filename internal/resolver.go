package internal

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// VideoRef identifies one video to process. Title and Channel are empty when
// metadata resolution failed for the entry; such refs are skipped later in
// the run instead of aborting it.
type VideoRef struct {
	ID      string
	Title   string
	Channel string
}

// videoIDPattern matches the 11-character video ID embedded in the common
// YouTube URL shapes (watch, short domain, embed, /v/, parametrized query).
var videoIDPattern = regexp.MustCompile(`(?:youtube\.com/(?:[^/\n\s]+/\S+/|(?:v|e(?:mbed)?)/|\S*?[?&]v=)|youtu\.be/)([a-zA-Z0-9_-]{11})`)

// ExtractVideoID pulls a video ID out of a YouTube URL. A bare valid ID is
// accepted as-is.
func ExtractVideoID(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if m := videoIDPattern.FindStringSubmatch(input); m != nil {
		return m[1], true
	}
	if IsValidVideoID(input) {
		return input, true
	}
	return "", false
}

// WatchURL builds the canonical watch URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// Resolver turns direct video references or channel handles into an ordered
// list of VideoRefs. Unresolvable entries are logged and dropped; resolution
// never fails the run.
type Resolver struct {
	metadata MetadataService
	logger   *slog.Logger
}

// NewResolver creates a resolver backed by the given metadata service.
func NewResolver(metadata MetadataService, logger *slog.Logger) *Resolver {
	return &Resolver{metadata: metadata, logger: logger}
}

// ResolveVideos maps raw URLs or bare IDs to VideoRefs. Entries with no
// extractable ID are dropped with a warning. Entries whose metadata lookup
// fails keep their ID but have no title, which marks them for a downstream
// skip.
func (r *Resolver) ResolveVideos(ctx context.Context, inputs []string) []VideoRef {
	refs := make([]VideoRef, 0, len(inputs))
	for _, input := range inputs {
		id, ok := ExtractVideoID(input)
		if !ok {
			r.logger.Warn("failed to parse video ID, skipping", "input", input)
			continue
		}

		title, channel, err := r.metadata.VideoDetails(ctx, id)
		if err != nil {
			r.logger.Warn("video metadata lookup failed", "video_id", id, "error", err)
			refs = append(refs, VideoRef{ID: id})
			continue
		}

		r.logger.Info("found video", "title", title, "channel", channel, "video_id", id)
		refs = append(refs, VideoRef{ID: id, Title: title, Channel: channel})
	}
	return refs
}

// ResolveChannels lists the n most recent videos for each channel handle,
// newest first. Unknown handles are skipped with a warning.
func (r *Resolver) ResolveChannels(ctx context.Context, handles []string, n int) []VideoRef {
	var refs []VideoRef
	for _, handle := range handles {
		channelID, err := r.metadata.ResolveChannelID(ctx, handle)
		if err != nil {
			r.logger.Warn("channel not resolved, skipping", "handle", handle, "error", err)
			continue
		}
		r.logger.Debug("resolved channel handle", "handle", handle, "channel_id", channelID)

		videos, err := r.metadata.ListRecentVideos(ctx, channelID, n)
		if err != nil {
			r.logger.Warn("listing channel videos failed, skipping", "handle", handle, "error", err)
			continue
		}

		for _, v := range videos {
			r.logger.Info("found video", "title", v.Title, "channel", v.Channel, "video_id", v.ID)
		}
		refs = append(refs, videos...)
	}
	return refs
}
