package internal

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/pkoukk/tiktoken-go"
)

// PromptData for template injection
type PromptData struct {
	Title   string
	Channel string
}

// PromptBuilder loads the prompt template and composes per-video prompts.
// The template may reference {{.Title}} and {{.Channel}}; any other
// placeholder is rejected when the template executes. The transcript is
// appended verbatim after the rendered template.
type PromptBuilder struct {
	promptFile   string
	promptString string
	configDir    string
}

// NewPromptBuilder creates a prompt builder. promptSetting may be empty
// (use the default prompt.txt from the config directory), a file path, or a
// literal template string.
func NewPromptBuilder(configDir, promptSetting string) *PromptBuilder {
	pb := &PromptBuilder{
		configDir: configDir,
	}

	if promptSetting != "" {
		if IsLikelyFilePath(promptSetting) && FileExists(promptSetting) {
			pb.promptFile = promptSetting
		} else {
			pb.promptString = promptSetting
		}
	}

	return pb
}

// Build renders the template with the video's title and channel and appends
// the transcript text.
func (pb *PromptBuilder) Build(title, channel, transcript string) (string, error) {
	tmplContent, err := pb.templateContent()
	if err != nil {
		return "", err
	}
	return buildPromptFromTemplate(tmplContent, title, channel, transcript)
}

// templateContent resolves the template source: custom string, custom file,
// or the default prompt.txt from the config directory.
func (pb *PromptBuilder) templateContent() (string, error) {
	if pb.promptString != "" {
		return pb.promptString, nil
	}

	promptFile := pb.promptFile
	if promptFile == "" {
		promptFile = filepath.Join(pb.configDir, "prompt.txt")
	}

	content, err := os.ReadFile(promptFile)
	if err != nil {
		return "", fmt.Errorf("reading prompt template: %w", err)
	}
	return string(content), nil
}

// buildPromptFromTemplate renders the template and appends the transcript.
func buildPromptFromTemplate(templateContent, title, channel, transcript string) (string, error) {
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(templateContent)
	if err != nil {
		return "", fmt.Errorf("parsing prompt template: %w", err)
	}

	data := PromptData{
		Title:   title,
		Channel: channel,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing prompt template: %w", err)
	}

	prompt := buf.String()
	if !strings.HasSuffix(prompt, "\n") {
		prompt += "\n"
	}
	return prompt + "\n" + transcript, nil
}

// EstimateTokens counts tokens in text with the tokenizer family of the
// target model. Used for logging only; the completion service enforces its
// own limits. Unknown models fall back to cl100k_base, and an unavailable
// tokenizer falls back to a crude bytes/4 estimate.
func EstimateTokens(text, model string) int {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
	}
	if err != nil {
		return len(text) / 4
	}
	return len(enc.Encode(text, nil, nil))
}

// IsLikelyFilePath uses heuristics to determine if a string is likely a file path
func IsLikelyFilePath(s string) bool {
	// Check for common file path indicators
	if strings.Contains(s, "/") || strings.Contains(s, "\\") {
		return true
	}

	// Check for common file extensions
	if strings.Contains(s, ".txt") || strings.Contains(s, ".md") ||
		strings.Contains(s, ".template") || strings.Contains(s, ".tmpl") {
		return true
	}

	// If it's longer than 200 characters, it's likely a prompt string
	if len(s) > 200 {
		return false
	}

	// Default to treating as file path if it doesn't contain spaces and newlines
	return !strings.Contains(s, " ") && !strings.Contains(s, "\n")
}
