package internal

import (
	"context"
	"fmt"
	"log/slog"
)

// App holds the application state and dependencies
type App struct {
	config     *Config
	logger     *slog.Logger
	ui         UIManager
	metadata   MetadataService
	fetcher    TranscriptFetcher
	cache      *TranscriptCache
	ledger     *Ledger
	prompts    *PromptBuilder
	summarizer *Summarizer
	sender     MailSender
	batcher    *Batcher
}

// AppOption customizes App creation
type AppOption func(*App)

// WithMetadataService sets a custom metadata-lookup collaborator
func WithMetadataService(metadata MetadataService) AppOption {
	return func(a *App) {
		a.metadata = metadata
	}
}

// WithTranscriptFetcher sets a custom transcript-fetch collaborator
func WithTranscriptFetcher(fetcher TranscriptFetcher) AppOption {
	return func(a *App) {
		a.fetcher = fetcher
	}
}

// WithCompleter sets a custom completion collaborator
func WithCompleter(client Completer) AppOption {
	return func(a *App) {
		a.summarizer = NewSummarizer(client, a.config.Model, a.config.SummaryTimeout)
	}
}

// WithMailSender sets a custom mail-transport collaborator
func WithMailSender(sender MailSender) AppOption {
	return func(a *App) {
		a.sender = sender
	}
}

// NewApp initializes the application and its collaborators. Credential and
// configuration problems surface here, before any video is processed.
func NewApp(ctx context.Context, config *Config, options ...AppOption) (*App, error) {
	app := &App{
		config: config,
		logger: config.Logger(),
		ui:     NewUIManager(config.Verbose, config.Quiet),
	}

	// Apply any custom options
	for _, option := range options {
		option(app)
	}

	if app.metadata == nil && config.YouTubeAPIKey != "" {
		metadata, err := NewDataAPI(ctx, config.YouTubeAPIKey, app.logger)
		if err != nil {
			return nil, err
		}
		app.metadata = metadata
	}

	if app.fetcher == nil {
		app.fetcher = NewCaptionFetcher(config.CacheDir, app.logger)
	}
	if app.cache == nil {
		app.cache = NewTranscriptCache(config.TranscriptsDir, app.fetcher, app.logger)
	}

	if app.ledger == nil {
		ledger, err := OpenLedger(config.LedgerPath)
		if err != nil {
			return nil, err
		}
		app.ledger = ledger
	}

	if app.prompts == nil {
		app.prompts = NewPromptBuilder(config.ConfigDir, config.Prompt)
	}
	if app.summarizer == nil {
		app.summarizer = NewSummarizerWithKey(config.OpenAIAPIKey, config.Model, config.SummaryTimeout)
	}

	if app.sender == nil && config.Email != "" && config.SMTPPassword != "" {
		app.sender = NewSMTPSender(config.SMTPHost, config.SMTPPort, config.Email, config.SMTPPassword)
	}
	if app.batcher == nil {
		app.batcher = NewBatcher(app.sender, config.Email, config.Email, app.logger)
	}

	return app, nil
}

// Close releases resources held by the application.
func (app *App) Close() error {
	if app.ledger != nil {
		return app.ledger.Close()
	}
	return nil
}

// SetPromptBuilder sets a new prompt builder
func (app *App) SetPromptBuilder(pb *PromptBuilder) {
	app.prompts = pb
}

// Config returns the application configuration.
func (app *App) Config() *Config {
	return app.config
}

// Pipeline builds the batch pipeline from the application's collaborators.
// It requires the metadata collaborator, so the YouTube API key must be set.
func (app *App) Pipeline() (*Pipeline, error) {
	if app.metadata == nil {
		return nil, ValidateYouTubeAPIKey("")
	}
	resolver := NewResolver(app.metadata, app.logger)
	return NewPipeline(resolver, app.cache, app.ledger, app.prompts,
		app.summarizer, app.batcher, app.ui, app.logger, app.config.MailSubject), nil
}

// Transcript returns the (cached or freshly fetched) transcript of one video.
func (app *App) Transcript(ctx context.Context, videoID string) (string, error) {
	return app.cache.Ensure(ctx, videoID)
}

// VideoDetails returns title and channel of one video.
func (app *App) VideoDetails(ctx context.Context, videoID string) (string, string, error) {
	if app.metadata == nil {
		return "", "", ValidateYouTubeAPIKey("")
	}
	return app.metadata.VideoDetails(ctx, videoID)
}

// SummarizeVideo runs the single-video workflow: transcript, prompt, summary.
// It bypasses the ledger, so repeated calls regenerate the summary.
func (app *App) SummarizeVideo(ctx context.Context, videoID string) (string, error) {
	title, channel, err := app.VideoDetails(ctx, videoID)
	if err != nil {
		return "", fmt.Errorf("resolving video metadata: %w", err)
	}

	transcript, err := app.Transcript(ctx, videoID)
	if err != nil {
		return "", err
	}

	prompt, err := app.prompts.Build(title, channel, transcript)
	if err != nil {
		return "", fmt.Errorf("creating prompt: %w", err)
	}

	app.logger.Info("summarizing video",
		"video_id", videoID,
		"tokens", EstimateTokens(prompt, app.summarizer.Model()))

	summary, err := app.summarizer.Summarize(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("generating summary: %w", err)
	}
	return summary, nil
}
