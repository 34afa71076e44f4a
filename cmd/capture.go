package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/juergenlandauer/landtalk/internal/model"
	"github.com/juergenlandauer/landtalk/internal/store"
)

var (
	captureCRS    string
	captureExtent string
	captureImage  string
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Register a captured map area (extent plus rendered image)",
	RunE: func(cmd *cobra.Command, args []string) error {
		ext, err := parseExtent(captureExtent)
		if err != nil {
			return err
		}

		if captureImage != "" {
			if _, err := os.Stat(captureImage); err != nil {
				return fmt.Errorf("image file: %w", err)
			}
		}

		s, err := store.New(dataDir)
		if err != nil {
			return err
		}
		defer s.Close()

		c := &model.Capture{
			ID:         uuid.NewString(),
			CRS:        captureCRS,
			Extent:     ext,
			ImagePath:  captureImage,
			CapturedAt: time.Now().UTC().Format(time.RFC3339),
		}
		if err := s.WriteCapture(c); err != nil {
			return fmt.Errorf("saving capture: %w", err)
		}

		fmt.Printf("Registered capture %s (%s, %gx%g map units)\n",
			c.ID, c.CRS, c.Extent.Width, c.Extent.Height)
		return nil
	},
}

// parseExtent reads "left,top,right,bottom" in map units.
func parseExtent(s string) (model.Extent, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return model.Extent{}, fmt.Errorf("extent must be left,top,right,bottom, got %q", s)
	}
	var vals [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return model.Extent{}, fmt.Errorf("extent component %d: %w", i+1, err)
		}
		vals[i] = v
	}
	return model.NewExtent(vals[0], vals[1], vals[2], vals[3]), nil
}

func init() {
	captureCmd.Flags().StringVar(&captureCRS, "crs", "EPSG:3857", "CRS of the extent coordinates")
	captureCmd.Flags().StringVar(&captureExtent, "extent", "", "Captured extent as left,top,right,bottom in map units")
	captureCmd.Flags().StringVar(&captureImage, "image", "", "Path to the rendered PNG of the captured area")
	captureCmd.MarkFlagRequired("extent")
	rootCmd.AddCommand(captureCmd)
}
