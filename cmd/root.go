package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ytbrief/ytbrief/internal"
)

var (
	config *internal.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ytbrief",
	Short: "Summarize YouTube videos and deliver the summaries by email",
	Long: `ytbrief turns YouTube videos into AI-generated summaries.

Videos are given directly (URL or ID) or resolved from channel handles.
Transcripts are fetched from YouTube captions and cached on disk; videos
already summarized in an earlier run are skipped. Summaries are batched
into a single email, or printed to the terminal when no address is set.`,
	Example: `  # Summarize two videos
  ytbrief --video "https://www.youtube.com/watch?v=tAP1eZYEuKA" --video tAP1eZYEuKA

  # Summarize the 3 newest videos of two channels and email the result
  ytbrief -c GoogleDevelopers -c fireship -n 3 -e me@example.com

  # Only download transcripts, don't summarize
  ytbrief --video tAP1eZYEuKA --download-only

  # Use a specific OpenAI model and a custom prompt
  ytbrief -c GoogleDevelopers -m gpt-4o --prompt "tldr of '{{.Title}}':"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		downloadOnly, _ := cmd.Flags().GetBool("download-only")

		if err := internal.ValidateYouTubeAPIKey(config.YouTubeAPIKey); err != nil {
			return err
		}
		if !downloadOnly {
			if err := internal.ValidateOpenAIAPIKey(config.OpenAIAPIKey); err != nil {
				return err
			}
		}
		if err := handleDeliveryFlags(cmd, config); err != nil {
			return err
		}
		handleModelFlag(cmd, config)

		app, err := internal.NewApp(cmd.Context(), config)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := handlePromptFlag(cmd, app); err != nil {
			return err
		}

		pipeline, err := app.Pipeline()
		if err != nil {
			return err
		}

		videos, _ := cmd.Flags().GetStringArray("video")
		channels, _ := cmd.Flags().GetStringArray("channel")
		num, _ := cmd.Flags().GetInt("num")

		report, err := pipeline.Run(cmd.Context(), internal.Inputs{
			Videos:       videos,
			Channels:     channels,
			PerChannel:   num,
			DownloadOnly: downloadOnly,
		})
		if err != nil {
			return err
		}

		if !config.Quiet {
			fmt.Printf("Processed %d of %d videos", report.Summarized, report.Resolved)
			if len(report.Skipped) > 0 {
				fmt.Printf(", skipped %d", len(report.Skipped))
			}
			fmt.Println()
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	// Initialize configuration with Viper
	config = internal.InitConfig()

	// Ensure XDG directories exist
	if err := internal.EnsureDirs(config.ConfigDir, config.DataDir, config.CacheDir, config.TranscriptsDir); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating XDG directories: %v\n", err)
		os.Exit(1)
	}

	// Ensure default config exists in XDG config directory
	if err := internal.EnsureDefaultConfig(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default config: %v\n", err)
	}

	// Ensure default prompt exists in XDG config directory
	if err := internal.EnsureDefaultPrompt(config.ConfigDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to ensure default prompt: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.SetContext(ctx)

	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().StringArray("video", nil, "YouTube video URL(s) or ID(s) to summarize")
	rootCmd.Flags().StringArrayP("channel", "c", nil, "YouTube channel handle(s) to summarize recent videos from")
	rootCmd.Flags().IntP("num", "n", 1, "Number of videos to summarize per channel handle")
	rootCmd.Flags().BoolP("download-only", "d", false, "Download the transcripts and exit")
	rootCmd.MarkFlagsMutuallyExclusive("video", "channel")
	rootCmd.MarkFlagsOneRequired("video", "channel")

	rootCmd.Flags().StringP("email", "e", "", "Email address used as both sender and recipient of the summaries")
	rootCmd.Flags().String("password", "", "Password for the SMTP account of the email address")

	addOpenAIFlags(rootCmd)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress status output")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return handleOutputFlags(cmd, config)
	}
}
