package internal

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompleter returns a canned summary per prompt and counts calls.
type fakeCompleter struct {
	calls   int
	prompts []string
	errs    map[string]error // keyed by substring of the prompt
}

func (f *fakeCompleter) Complete(ctx context.Context, model, system, user string) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, user)
	for sub, err := range f.errs {
		if strings.Contains(user, sub) {
			return "", err
		}
	}
	return "summary of: " + firstLine(user), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// pipelineFixture bundles the collaborators a pipeline test needs to mutate.
type pipelineFixture struct {
	pipeline  *Pipeline
	metadata  *fakeMetadata
	fetcher   *fakeFetcher
	completer *fakeCompleter
	sender    *fakeSender
	ledger    *Ledger
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()
	logger := testLogger()

	metadata := &fakeMetadata{
		channels: make(map[string]string),
		videos:   make(map[string][]VideoRef),
		details:  make(map[string][2]string),
	}
	fetcher := newFakeFetcher()
	completer := &fakeCompleter{errs: make(map[string]error)}
	sender := &fakeSender{}

	ledger, err := OpenLedger(filepath.Join(t.TempDir(), "processed.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ledger.Close() })

	fx := &pipelineFixture{
		metadata:  metadata,
		fetcher:   fetcher,
		completer: completer,
		sender:    sender,
		ledger:    ledger,
	}
	fx.pipeline = NewPipeline(
		NewResolver(metadata, logger),
		NewTranscriptCache(t.TempDir(), fetcher, logger),
		ledger,
		NewPromptBuilder("", "Summarize '{{.Title}}' from '{{.Channel}}'."),
		NewSummarizer(completer, "gpt-4o", time.Minute),
		NewBatcher(sender, "me@example.com", "me@example.com", logger),
		NewUIManager(false, true),
		logger,
		"YouTube video summaries",
	)
	return fx
}

func (fx *pipelineFixture) addVideo(id, title, channel, transcript string) {
	fx.metadata.details[id] = [2]string{title, channel}
	fx.fetcher.segments[id] = []Segment{{Text: transcript}}
}

func TestPipelineRunInputValidation(t *testing.T) {
	fx := newPipelineFixture(t)
	ctx := context.Background()

	_, err := fx.pipeline.Run(ctx, Inputs{})
	require.Error(t, err)

	_, err = fx.pipeline.Run(ctx, Inputs{Videos: []string{"dQw4w9WgXcQ"}, Channels: []string{"h"}})
	require.Error(t, err)
}

func TestPipelineChannelRunWithDisabledTranscript(t *testing.T) {
	fx := newPipelineFixture(t)
	fx.metadata.channels["somecreator"] = "UC123"
	fx.metadata.videos["UC123"] = []VideoRef{
		{ID: "okvideo0001", Title: "Good Video", Channel: "Some Creator"},
		{ID: "disabledvid", Title: "No Captions", Channel: "Some Creator"},
	}
	fx.addVideo("okvideo0001", "Good Video", "Some Creator", "transcript text")
	fx.fetcher.errs["disabledvid"] = ErrTranscriptsDisabled

	report, err := fx.pipeline.Run(context.Background(), Inputs{Channels: []string{"somecreator"}, PerChannel: 2})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Resolved)
	assert.Equal(t, 1, report.Summarized)
	assert.True(t, report.Delivered)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "disabledvid", report.Skipped[0].VideoID)
	assert.Equal(t, "transcript", report.Skipped[0].Stage)

	// Only the summarized video is marked; the excluded one stays eligible.
	ctx := context.Background()
	marked, err := fx.ledger.Contains(ctx, "okvideo0001")
	require.NoError(t, err)
	assert.True(t, marked)
	marked, err = fx.ledger.Contains(ctx, "disabledvid")
	require.NoError(t, err)
	assert.False(t, marked)

	require.Len(t, fx.sender.sent, 1)
	assert.Contains(t, fx.sender.sent[0].body, "Good Video")
	assert.NotContains(t, fx.sender.sent[0].body, "No Captions")
}

func TestPipelineDuplicateInputSummarizedOnce(t *testing.T) {
	fx := newPipelineFixture(t)
	fx.addVideo("dQw4w9WgXcQ", "Never Gonna Give You Up", "Rick Astley", "transcript")

	report, err := fx.pipeline.Run(context.Background(), Inputs{Videos: []string{
		"https://youtu.be/dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	}})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Resolved)
	assert.Equal(t, 1, report.Summarized)
	assert.Equal(t, 1, fx.completer.calls, "same video summarized once per run")
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "already summarized", report.Skipped[0].Reason)
}

func TestPipelineIdempotentAcrossRuns(t *testing.T) {
	fx := newPipelineFixture(t)
	fx.addVideo("dQw4w9WgXcQ", "Never Gonna Give You Up", "Rick Astley", "transcript")
	inputs := Inputs{Videos: []string{"dQw4w9WgXcQ"}}
	ctx := context.Background()

	report, err := fx.pipeline.Run(ctx, inputs)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summarized)
	assert.True(t, report.Delivered)

	// Second run: the ledger suppresses the video, nothing is sent.
	fx2 := newPipelineFixture(t)
	fx2.addVideo("dQw4w9WgXcQ", "Never Gonna Give You Up", "Rick Astley", "transcript")
	claimed, err := fx.ledger.TryClaim(ctx, VideoRef{ID: "dQw4w9WgXcQ"})
	require.NoError(t, err)
	require.False(t, claimed)

	fx2.pipeline.ledger = fx.ledger
	report, err = fx2.pipeline.Run(ctx, inputs)
	require.NoError(t, err)
	assert.Zero(t, report.Summarized)
	assert.False(t, report.Delivered)
	assert.Empty(t, fx2.sender.sent)
	assert.Zero(t, fx2.completer.calls)
}

func TestPipelineSummaryFailureIsolated(t *testing.T) {
	fx := newPipelineFixture(t)
	fx.addVideo("failingvid1", "Failing Video", "Some Creator", "bad transcript")
	fx.addVideo("okvideo0001", "Good Video", "Some Creator", "good transcript")
	fx.completer.errs["Failing Video"] = errors.New("model overloaded")

	report, err := fx.pipeline.Run(context.Background(), Inputs{Videos: []string{"failingvid1", "okvideo0001"}})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Summarized)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "failingvid1", report.Skipped[0].VideoID)
	assert.Equal(t, "summary", report.Skipped[0].Stage)
	require.Len(t, fx.sender.sent, 1)
	assert.Contains(t, fx.sender.sent[0].body, "Good Video")
}

func TestPipelineMissingTitleSkippedAfterClaim(t *testing.T) {
	fx := newPipelineFixture(t)
	// No metadata entry: the ref resolves with an empty title.
	fx.fetcher.segments["notitlevid1"] = []Segment{{Text: "transcript"}}

	report, err := fx.pipeline.Run(context.Background(), Inputs{Videos: []string{"notitlevid1"}})
	require.NoError(t, err)

	assert.Zero(t, report.Summarized)
	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "metadata", report.Skipped[0].Stage)
	assert.Zero(t, fx.completer.calls)

	// The claim lands before the title check, so the mark persists.
	marked, err := fx.ledger.Contains(context.Background(), "notitlevid1")
	require.NoError(t, err)
	assert.True(t, marked)
}

func TestPipelineDownloadOnly(t *testing.T) {
	fx := newPipelineFixture(t)
	fx.addVideo("dQw4w9WgXcQ", "Never Gonna Give You Up", "Rick Astley", "transcript")

	report, err := fx.pipeline.Run(context.Background(), Inputs{
		Videos:       []string{"dQw4w9WgXcQ"},
		DownloadOnly: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, fx.fetcher.fetches["dQw4w9WgXcQ"])
	assert.Zero(t, report.Summarized)
	assert.Zero(t, fx.completer.calls)
	assert.Empty(t, fx.sender.sent)

	marked, err := fx.ledger.Contains(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.False(t, marked, "download-only must not claim")
}

func TestPipelineDeliveryFailureReturnsError(t *testing.T) {
	fx := newPipelineFixture(t)
	fx.addVideo("dQw4w9WgXcQ", "Never Gonna Give You Up", "Rick Astley", "transcript")
	fx.sender.err = errors.New("connection refused")

	report, err := fx.pipeline.Run(context.Background(), Inputs{Videos: []string{"dQw4w9WgXcQ"}})
	require.Error(t, err)
	require.NotNil(t, report)
	assert.Equal(t, 1, report.Summarized)
	assert.False(t, report.Delivered)

	// The mark stays: summarized-but-undelivered is not retried.
	marked, lerr := fx.ledger.Contains(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, lerr)
	assert.True(t, marked)
}

func TestPipelinePromptIncludesTranscript(t *testing.T) {
	fx := newPipelineFixture(t)
	fx.addVideo("dQw4w9WgXcQ", "Never Gonna Give You Up", "Rick Astley", "the full transcript body")

	_, err := fx.pipeline.Run(context.Background(), Inputs{Videos: []string{"dQw4w9WgXcQ"}})
	require.NoError(t, err)

	require.Len(t, fx.completer.prompts, 1)
	prompt := fx.completer.prompts[0]
	assert.Contains(t, prompt, "Never Gonna Give You Up")
	assert.Contains(t, prompt, "Rick Astley")
	assert.True(t, strings.HasSuffix(prompt, "the full transcript body"))
}
