package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/juergenlandauer/landtalk/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show captures, runs and detected features",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := store.New(dataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		captures, runs, features, err := s.Counts()
		if err != nil {
			return err
		}

		fmt.Printf("Detection Status\n")
		fmt.Printf("================\n")
		fmt.Printf("Captures: %d\n", captures)
		fmt.Printf("Runs:     %d\n", runs)
		fmt.Printf("Features: %d\n", features)

		all, err := s.ListRuns()
		if err != nil {
			return err
		}
		if len(all) > 0 {
			fmt.Printf("\nRecent Runs\n")
			fmt.Printf("-----------\n")
			for i, r := range all {
				if i == 10 {
					fmt.Printf("  ... and %d more\n", len(all)-10)
					break
				}
				fmt.Printf("  %s  %-7s %-20s %-13s processed: %3d  skipped: %d+%d\n",
					r.CreatedAt, r.Provider, r.Model, r.State,
					r.Stats.Processed, r.Stats.SkippedConfidence, r.Stats.SkippedMissing)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
