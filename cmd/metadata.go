package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ytbrief/ytbrief/internal"
)

// metadataCmd represents the metadata command
var metadataCmd = &cobra.Command{
	Use:   "metadata [YouTube URL or ID]",
	Short: "Get metadata from YouTube video",
	Example: `  # Get metadata from YouTube video
  ytbrief metadata "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  ytbrief metadata tAP1eZYEuKA

  # Save metadata to file
  ytbrief metadata tAP1eZYEuKA -o metadata.json

  # Format output as pretty JSON
  ytbrief metadata tAP1eZYEuKA --pretty`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.ValidateYouTubeAPIKey(config.YouTubeAPIKey); err != nil {
			return err
		}

		videoID, ok := internal.ExtractVideoID(args[0])
		if !ok {
			return fmt.Errorf("could not extract a video ID from %q", args[0])
		}

		app, err := internal.NewApp(cmd.Context(), config)
		if err != nil {
			return err
		}
		defer app.Close()

		title, channel, err := app.VideoDetails(cmd.Context(), videoID)
		if err != nil {
			return err
		}

		metadata := struct {
			VideoID string `json:"video_id"`
			Title   string `json:"title"`
			Channel string `json:"channel"`
		}{videoID, title, channel}

		var jsonData []byte
		pretty, _ := cmd.Flags().GetBool("pretty")
		if pretty {
			jsonData, err = json.MarshalIndent(metadata, "", "  ")
		} else {
			jsonData, err = json.Marshal(metadata)
		}
		if err != nil {
			return fmt.Errorf("error converting metadata to JSON: %w", err)
		}

		outputFile, _ := cmd.Flags().GetString("output")
		if outputFile != "" {
			return os.WriteFile(outputFile, jsonData, 0644)
		}

		fmt.Println(string(jsonData))

		return nil
	},
}

func init() {
	metadataCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	metadataCmd.Flags().Bool("pretty", false, "Format output as pretty JSON")
	rootCmd.AddCommand(metadataCmd)
}
