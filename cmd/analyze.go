package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/juergenlandauer/landtalk/internal/genai"
	"github.com/juergenlandauer/landtalk/internal/model"
	"github.com/juergenlandauer/landtalk/internal/pipeline"
	"github.com/juergenlandauer/landtalk/internal/store"
)

var (
	analyzeProvider  string
	analyzeCapture   string
	analyzePrompt    string
	analyzeThreshold float64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Send a captured image to an AI provider and save the detected features",
	RunE: func(cmd *cobra.Command, args []string) error {
		pc, err := cfg.Provider(analyzeProvider)
		if err != nil {
			return err
		}

		s, err := store.New(dataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		var capture *model.Capture
		if analyzeCapture != "" {
			capture, err = s.ReadCapture(analyzeCapture)
			if err != nil {
				return fmt.Errorf("reading capture %s: %w", analyzeCapture, err)
			}
		} else {
			capture, err = s.LatestCapture()
			if err != nil {
				return err
			}
			if capture == nil {
				return fmt.Errorf("no captures registered (run capture first)")
			}
		}
		if capture.ImagePath == "" {
			return fmt.Errorf("capture %s has no image", capture.ID)
		}

		image, err := os.ReadFile(capture.ImagePath)
		if err != nil {
			return fmt.Errorf("reading capture image: %w", err)
		}

		client, err := genai.NewClient(analyzeProvider, pc, cfg.Analysis)
		if err != nil {
			return err
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		threshold := cfg.Analysis.ConfidenceThreshold
		if cmd.Flags().Changed("threshold") {
			threshold = analyzeThreshold
		}

		fmt.Printf("Analyzing capture %s with %s (%s)...\n", capture.ID, analyzeProvider, pc.Model)

		text, usage, err := client.Analyze(ctx, genai.DefaultSystemPrompt, analyzePrompt, image)
		if err != nil {
			return err
		}
		fmt.Printf("  Response received (%d chars, %d+%d tokens)\n",
			len(text), usage.InputTokens, usage.OutputTokens)

		ext := capture.Extent
		res := pipeline.Run(text, pipeline.Options{
			ConfidenceThreshold: threshold,
			Extent:              &ext,
		}, logger)

		features := res.Features
		if res.State == pipeline.StateDone {
			features = append(features, pipeline.QueryExtentMarker(&ext))
		}

		run := &model.Run{
			ID:          uuid.NewString(),
			CaptureID:   capture.ID,
			Provider:    analyzeProvider,
			Model:       pc.Model,
			ResultText:  text,
			CleanedText: res.CleanedText,
			State:       string(res.State),
			Stats:       res.Stats,
			CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.WriteRun(run, features); err != nil {
			return fmt.Errorf("saving run: %w", err)
		}

		if res.State == pipeline.StateNoJSON {
			fmt.Printf("No detections in response; saved run %s with the text answer.\n", run.ID)
			return nil
		}

		fmt.Printf("Created layer with %d features for run %s (filtered from %d total)\n",
			res.Stats.Processed, run.ID, res.Stats.Total)
		if res.CleanedText != "" {
			fmt.Printf("\n%s\n", res.CleanedText)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeProvider, "provider", "gemini", "AI provider to use (gemini or gpt)")
	analyzeCmd.Flags().StringVar(&analyzeCapture, "capture", "", "Capture id to analyze (default: latest)")
	analyzeCmd.Flags().StringVar(&analyzePrompt, "prompt", genai.DefaultAnalysisPrompt, "Analysis prompt sent with the image")
	analyzeCmd.Flags().Float64Var(&analyzeThreshold, "threshold", 0, "Confidence threshold override in [0,100]")
	rootCmd.AddCommand(analyzeCmd)
}
