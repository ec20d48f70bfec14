package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ytbrief/ytbrief/internal"
)

// transcriptCmd represents the transcript command
var transcriptCmd = &cobra.Command{
	Use:   "transcript [YouTube URL or ID]",
	Short: "Get transcript from YouTube (cached or downloaded)",
	Example: `  # Print a transcript from YouTube captions
  ytbrief transcript "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  ytbrief transcript tAP1eZYEuKA

  # Save transcript to file
  ytbrief transcript tAP1eZYEuKA -o transcript.txt`,
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

		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile != "" {
			return os.WriteFile(outputFile, []byte(transcript), 0644)
		}

		fmt.Println(transcript)
		return nil
	},
}

func init() {
	transcriptCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	rootCmd.AddCommand(transcriptCmd)
}
