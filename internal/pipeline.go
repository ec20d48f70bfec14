package internal

import (
	"context"
	"fmt"
	"log/slog"
)

// Inputs describes one batch run. Videos and Channels are mutually exclusive.
type Inputs struct {
	// Videos are direct references: URLs or bare 11-character IDs.
	Videos []string
	// Channels are channel handles; the PerChannel newest videos of each
	// are processed.
	Channels []string
	// PerChannel is the number of videos to take per channel handle.
	PerChannel int
	// DownloadOnly stops after transcripts are cached: no claims, no
	// summaries, no delivery.
	DownloadOnly bool
}

// Skip records one video that left the pipeline before producing a summary.
type Skip struct {
	VideoID string
	Stage   string
	Reason  string
}

// Report summarizes the outcome of one run.
type Report struct {
	Resolved   int
	Summarized int
	Delivered  bool
	Skipped    []Skip
}

// Pipeline sequences resolution, transcript acquisition, duplicate
// suppression, summarization and delivery. Every per-video failure is
// converted into a skip; no video error escapes the batch loop.
type Pipeline struct {
	resolver   *Resolver
	cache      *TranscriptCache
	ledger     *Ledger
	prompts    *PromptBuilder
	summarizer *Summarizer
	batcher    *Batcher
	ui         UIManager
	logger     *slog.Logger
	subject    string
}

// NewPipeline wires the pipeline from its collaborators.
func NewPipeline(resolver *Resolver, cache *TranscriptCache, ledger *Ledger,
	prompts *PromptBuilder, summarizer *Summarizer, batcher *Batcher,
	ui UIManager, logger *slog.Logger, subject string) *Pipeline {
	return &Pipeline{
		resolver:   resolver,
		cache:      cache,
		ledger:     ledger,
		prompts:    prompts,
		summarizer: summarizer,
		batcher:    batcher,
		ui:         ui,
		logger:     logger,
		subject:    subject,
	}
}

// Run processes one batch. It returns an error only for input/configuration
// problems and for a failed delivery at the end of the run; per-video
// failures are reported as skips.
func (p *Pipeline) Run(ctx context.Context, inputs Inputs) (*Report, error) {
	if len(inputs.Videos) > 0 && len(inputs.Channels) > 0 {
		return nil, fmt.Errorf("video and channel inputs are mutually exclusive")
	}
	if len(inputs.Videos) == 0 && len(inputs.Channels) == 0 {
		return nil, fmt.Errorf("no video or channel inputs given")
	}

	var refs []VideoRef
	if len(inputs.Videos) > 0 {
		refs = p.resolver.ResolveVideos(ctx, inputs.Videos)
	} else {
		n := inputs.PerChannel
		if n <= 0 {
			n = 1
		}
		refs = p.resolver.ResolveChannels(ctx, inputs.Channels, n)
	}

	report := &Report{Resolved: len(refs)}

	bar := p.ui.NewProgressBar(len(refs), "Processing videos")
	for i, ref := range refs {
		bar.Set(i)
		if skip := p.processVideo(ctx, ref, inputs.DownloadOnly, report); skip != nil {
			report.Skipped = append(report.Skipped, *skip)
		}
	}
	bar.Finish()

	if inputs.DownloadOnly {
		return report, nil
	}

	sent, err := p.batcher.Flush(ctx, p.subject)
	report.Delivered = sent
	if err != nil {
		// Ledger marks written this run stay in place; a summarized but
		// undelivered video is not summarized again.
		p.logger.Error("delivery failed", "error", err)
		return report, fmt.Errorf("delivering summaries: %w", err)
	}

	if !sent {
		p.printSummaries()
	}

	return report, nil
}

// processVideo walks one video through transcript acquisition, claim, prompt
// construction and summarization. A nil return means the video produced a
// summary fragment (or, in download-only mode, a cached transcript).
func (p *Pipeline) processVideo(ctx context.Context, ref VideoRef, downloadOnly bool, report *Report) *Skip {
	text, err := p.cache.Ensure(ctx, ref.ID)
	if err != nil {
		p.logger.Warn("transcript unavailable, skipping video", "video_id", ref.ID, "error", err)
		return &Skip{VideoID: ref.ID, Stage: "transcript", Reason: err.Error()}
	}

	if downloadOnly {
		return nil
	}

	claimed, err := p.ledger.TryClaim(ctx, ref)
	if err != nil {
		p.logger.Warn("ledger claim failed, skipping video", "video_id", ref.ID, "error", err)
		return &Skip{VideoID: ref.ID, Stage: "claim", Reason: err.Error()}
	}
	if !claimed {
		p.logger.Info("video already summarized, skipping", "video_id", ref.ID)
		return &Skip{VideoID: ref.ID, Stage: "claim", Reason: "already summarized"}
	}

	if ref.Title == "" {
		p.logger.Warn("title not found, skipping video", "video_id", ref.ID)
		return &Skip{VideoID: ref.ID, Stage: "metadata", Reason: "title not found"}
	}

	prompt, err := p.prompts.Build(ref.Title, ref.Channel, text)
	if err != nil {
		p.logger.Warn("prompt construction failed, skipping video", "video_id", ref.ID, "error", err)
		return &Skip{VideoID: ref.ID, Stage: "prompt", Reason: err.Error()}
	}

	p.logger.Info("summarizing video",
		"video_id", ref.ID,
		"tokens", EstimateTokens(prompt, p.summarizer.Model()))

	summary, err := p.summarizer.Summarize(ctx, prompt)
	if err != nil {
		p.logger.Warn("summarization failed, skipping video", "video_id", ref.ID, "error", err)
		return &Skip{VideoID: ref.ID, Stage: "summary", Reason: err.Error()}
	}

	p.batcher.Add(ref.Title, summary)
	report.Summarized++
	return nil
}

// printSummaries renders accumulated fragments to the terminal when no mail
// was sent, so a run without a delivery target still shows its results.
func (p *Pipeline) printSummaries() {
	for _, f := range p.batcher.Fragments() {
		content := fmt.Sprintf("## %s\n\n%s", f.Title, f.Body)
		rendered, err := RenderMarkdown(content)
		if err != nil {
			p.ui.Println(content)
			continue
		}
		p.ui.Println(rendered)
	}
}
