package internal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// systemPrompt establishes the summarization persona for every completion.
const systemPrompt = "You are a summarization assistant, able to take long pieces of text and summarize them for users."

// Completer is the completion-service collaborator.
type Completer interface {
	Complete(ctx context.Context, model, system, user string) (string, error)
}

// OpenAIClient wraps the official OpenAI Go SDK
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(apiKey string) *OpenAIClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIClient{client: &client}
}

// Complete sends a system+user message exchange and returns the first
// generated response's content.
func (c *OpenAIClient) Complete(ctx context.Context, model, system, user string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

// Summarizer generates summaries through a Completer. Failures are not
// handled here; the pipeline isolates them to the current video.
type Summarizer struct {
	client     Completer
	model      string
	timeout    time.Duration
	apiKey     string
	clientOnce sync.Once
}

// NewSummarizer creates a summarizer with an explicit completion client.
func NewSummarizer(client Completer, model string, timeout time.Duration) *Summarizer {
	return &Summarizer{
		client:  client,
		model:   model,
		timeout: timeout,
	}
}

// NewSummarizerWithKey creates a summarizer with lazy client initialization.
func NewSummarizerWithKey(apiKey, model string, timeout time.Duration) *Summarizer {
	return &Summarizer{
		model:   model,
		timeout: timeout,
		apiKey:  apiKey,
	}
}

// Model returns the configured completion model identifier.
func (s *Summarizer) Model() string {
	return s.model
}

// ensureClient initializes the OpenAI client if needed
func (s *Summarizer) ensureClient() error {
	if s.client != nil {
		return nil
	}

	if s.apiKey == "" {
		return ValidateOpenAIAPIKey("")
	}

	s.clientOnce.Do(func() {
		s.client = NewOpenAIClient(s.apiKey)
	})

	return nil
}

// Summarize sends the prepared prompt and returns the generated summary.
func (s *Summarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	if err := s.ensureClient(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	content, err := s.client.Complete(ctx, s.model, systemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("creating chat completion: %w", err)
	}

	return content, nil
}

// ValidateOpenAIAPIKey checks if the OpenAI API key is set and returns a standardized error if not
func ValidateOpenAIAPIKey(apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("OpenAI API key is required - set it in config.toml or OPENAI_API_KEY environment variable")
	}
	return nil
}

// ValidateYouTubeAPIKey checks if the YouTube Data API key is set.
func ValidateYouTubeAPIKey(apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("YouTube API key is required - set it in config.toml or YOUTUBE_API_KEY environment variable")
	}
	return nil
}
