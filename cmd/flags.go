package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ytbrief/ytbrief/internal"
)

// addOpenAIFlags adds flags related to OpenAI API functionality
func addOpenAIFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("model", "m", "", "OpenAI model to use for summaries")
	cmd.Flags().StringP("prompt", "p", "", "Custom prompt template (string or file path)")
}

// handleModelFlag overrides the configured model when --model was given.
func handleModelFlag(cmd *cobra.Command, config *internal.Config) {
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		config.Model = model
	}
}

// handlePromptFlag processes the --prompt flag to set a custom prompt
func handlePromptFlag(cmd *cobra.Command, app *internal.App) error {
	promptFlag := cmd.Flags().Lookup("prompt")
	if promptFlag == nil || !promptFlag.Changed {
		return nil
	}

	prompt, err := cmd.Flags().GetString("prompt")
	if err != nil {
		return fmt.Errorf("failed to get prompt flag: %w", err)
	}
	if prompt == "" {
		return nil
	}

	app.SetPromptBuilder(internal.NewPromptBuilder(app.Config().ConfigDir, prompt))
	return nil
}

// handleDeliveryFlags binds --email/--password onto the config and checks the
// credential pair. A missing password for a requested delivery target is a
// configuration error, fatal before any video is processed.
func handleDeliveryFlags(cmd *cobra.Command, config *internal.Config) error {
	if email, _ := cmd.Flags().GetString("email"); email != "" {
		config.Email = email
	}
	if password, _ := cmd.Flags().GetString("password"); password != "" {
		config.SMTPPassword = password
	}

	if config.Email != "" && config.SMTPPassword == "" {
		return fmt.Errorf("email password not provided - set it via --password or smtp_password in config.toml")
	}
	return nil
}

// handleOutputFlags processes the --verbose/--quiet/--log-level flags
func handleOutputFlags(cmd *cobra.Command, config *internal.Config) error {
	// Flags override the config file only when actually given.
	if cmd.Flags().Changed("verbose") {
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return fmt.Errorf("failed to get verbose flag: %w", err)
		}
		config.Verbose = verbose
	}

	if cmd.Flags().Changed("quiet") {
		quiet, err := cmd.Flags().GetBool("quiet")
		if err != nil {
			return fmt.Errorf("failed to get quiet flag: %w", err)
		}
		config.Quiet = quiet
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		config.LogLevel = level
	}
	return nil
}
