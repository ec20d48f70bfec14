package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/ytbrief/ytbrief/internal"
)

// cpCmd copies the transcript to the system clipboard instead of printing to stdout.
var cpCmd = &cobra.Command{
	Use:   "cp [YouTube URL or ID]",
	Short: "Copy transcript from YouTube to the clipboard",
	Example: `  # Copy transcript from YouTube captions
  ytbrief cp "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  ytbrief cp tAP1eZYEuKA`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		videoID, ok := internal.ExtractVideoID(args[0])
		if !ok {
			return fmt.Errorf("could not extract a video ID from %q", args[0])
		}

		app, err := internal.NewApp(cmd.Context(), config)
		if err != nil {
			return err
		}
		defer app.Close()

		transcript, err := app.Transcript(cmd.Context(), videoID)
		if err != nil {
			return err
		}

		if err := clipboard.WriteAll(transcript); err != nil {
			return fmt.Errorf("copying transcript to clipboard: %w", err)
		}

		if !config.Quiet {
			fmt.Println("Transcript copied to clipboard")
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(cpCmd)
}
