package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

var (
	// ErrChannelNotFound means a handle resolved to no channel.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrVideoNotFound means a video ID resolved to no video.
	ErrVideoNotFound = errors.New("video not found")
)

// MetadataService is the metadata-lookup collaborator: it resolves channel
// handles and lists or describes videos.
type MetadataService interface {
	ResolveChannelID(ctx context.Context, handle string) (string, error)
	ListRecentVideos(ctx context.Context, channelID string, n int) ([]VideoRef, error)
	VideoDetails(ctx context.Context, videoID string) (title, channel string, err error)
}

// DataAPI implements MetadataService on the YouTube Data API v3.
type DataAPI struct {
	svc     *youtube.Service
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewDataAPI creates a Data API client authenticated with an API key.
// Requests are rate limited to stay under the default quota.
func NewDataAPI(ctx context.Context, apiKey string, logger *slog.Logger) (*DataAPI, error) {
	svc, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating YouTube service: %w", err)
	}
	return &DataAPI{
		svc:     svc,
		limiter: rate.NewLimiter(rate.Limit(5), 5),
		logger:  logger,
	}, nil
}

// ResolveChannelID looks up the channel ID for a handle like "@somecreator".
func (d *DataAPI) ResolveChannelID(ctx context.Context, handle string) (string, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return "", err
	}

	resp, err := d.svc.Channels.List([]string{"id"}).ForHandle(handle).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("looking up channel %q: %w", handle, err)
	}
	if len(resp.Items) == 0 {
		return "", fmt.Errorf("handle %q: %w", handle, ErrChannelNotFound)
	}
	return resp.Items[0].Id, nil
}

// ListRecentVideos returns the n most recently published videos of a channel,
// newest first.
func (d *DataAPI) ListRecentVideos(ctx context.Context, channelID string, n int) ([]VideoRef, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := d.svc.Search.List([]string{"snippet"}).
		ChannelId(channelID).
		Order("date").
		Type("video").
		MaxResults(int64(n)).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("listing videos for channel %s: %w", channelID, err)
	}

	refs := make([]VideoRef, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		refs = append(refs, VideoRef{
			ID:      item.Id.VideoId,
			Title:   item.Snippet.Title,
			Channel: item.Snippet.ChannelTitle,
		})
	}
	return refs, nil
}

// VideoDetails fetches the title and channel title of a single video.
func (d *DataAPI) VideoDetails(ctx context.Context, videoID string) (string, string, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return "", "", err
	}

	resp, err := d.svc.Videos.List([]string{"snippet"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return "", "", fmt.Errorf("looking up video %s: %w", videoID, err)
	}
	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return "", "", fmt.Errorf("video %s: %w", videoID, ErrVideoNotFound)
	}

	snippet := resp.Items[0].Snippet
	return snippet.Title, snippet.ChannelTitle, nil
}
