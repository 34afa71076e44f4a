package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/juergenlandauer/landtalk/internal/model"
	"github.com/juergenlandauer/landtalk/internal/pipeline"
	"github.com/juergenlandauer/landtalk/internal/store"
)

var (
	processCapture   string
	processThreshold float64
)

var processCmd = &cobra.Command{
	Use:   "process <response-file>",
	Short: "Run the detection pipeline on a saved AI response",
	Long: `Run the detection pipeline on a raw AI response saved to a file,
without calling any provider. Useful to re-process an old response with a
different confidence threshold, or to inspect what the pipeline makes of a
response by hand.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading response file: %w", err)
		}

		s, err := store.New(dataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		var ext *model.Extent
		captureID := ""
		if processCapture != "" {
			capture, err := s.ReadCapture(processCapture)
			if err != nil {
				return fmt.Errorf("reading capture %s: %w", processCapture, err)
			}
			e := capture.Extent
			ext = &e
			captureID = capture.ID
		}

		threshold := cfg.Analysis.ConfidenceThreshold
		if cmd.Flags().Changed("threshold") {
			threshold = processThreshold
		}

		res := pipeline.Run(string(raw), pipeline.Options{
			ConfidenceThreshold: threshold,
			Extent:              ext,
		}, logger)

		features := res.Features
		if res.State == pipeline.StateDone && ext != nil {
			features = append(features, pipeline.QueryExtentMarker(ext))
		}

		run := &model.Run{
			ID:          uuid.NewString(),
			CaptureID:   captureID,
			Provider:    "file",
			Model:       args[0],
			ResultText:  string(raw),
			CleanedText: res.CleanedText,
			State:       string(res.State),
			Stats:       res.Stats,
			CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.WriteRun(run, features); err != nil {
			return fmt.Errorf("saving run: %w", err)
		}

		if res.State == pipeline.StateNoJSON {
			fmt.Printf("No detections found; saved run %s with the text answer.\n", run.ID)
			return nil
		}

		fmt.Printf("Created layer with %d features for run %s (filtered from %d total)\n",
			res.Stats.Processed, run.ID, res.Stats.Total)
		if res.Stats.SkippedMissing > 0 {
			fmt.Printf("  %d records skipped for missing fields\n", res.Stats.SkippedMissing)
		}
		if res.Stats.SkippedConfidence > 0 {
			fmt.Printf("  %d records below the %.0f%% confidence threshold\n",
				res.Stats.SkippedConfidence, threshold)
		}
		return nil
	},
}

func init() {
	processCmd.Flags().StringVar(&processCapture, "capture", "", "Capture id whose extent geocodes the features")
	processCmd.Flags().Float64Var(&processThreshold, "threshold", 0, "Confidence threshold override in [0,100]")
	rootCmd.AddCommand(processCmd)
}
