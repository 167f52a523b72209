package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gocv.io/x/gocv"

	"github.com/dudu/snapfilter/internal/filter"
)

var (
	applyFilter string
	applyOut    string
)

var applyCmd = &cobra.Command{
	Use:   "apply --filter <kind> <images...>",
	Short: "Apply a filter to image files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, ok := filter.ParseKind(applyFilter); !ok {
			return fmt.Errorf("unknown filter %q (see 'snapfilter filters')", applyFilter)
		}

		eng, err := newEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		if err := os.MkdirAll(applyOut, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		bar := progressbar.NewOptions(len(args),
			progressbar.OptionSetDescription("Applying "+applyFilter),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
		)

		var faces, failed int
		for _, path := range args {
			if err := cmd.Context().Err(); err != nil {
				return err
			}

			n, err := applyFile(eng, path)
			if err != nil {
				log.WithField("image", path).WithError(err).Warn("Skipping image")
				failed++
			}
			faces += n
			bar.Add(1)
		}
		bar.Finish()

		fmt.Printf("\n%d images, %d faces filtered, %d failed -> %s\n", len(args), faces, failed, applyOut)
		return nil
	},
}

func init() {
	applyCmd.Flags().StringVarP(&applyFilter, "filter", "f", "", "Filter kind to apply (required)")
	applyCmd.Flags().StringVarP(&applyOut, "out", "o", "out", "Output directory")
	applyCmd.MarkFlagRequired("filter")
	rootCmd.AddCommand(applyCmd)
}

// applyFile filters one image and writes it under the output directory
func applyFile(eng *engine, path string) (int, error) {
	img := gocv.IMRead(path, gocv.IMReadColor)
	if img.Empty() {
		return 0, fmt.Errorf("failed to load image: %s", path)
	}
	defer img.Close()

	res, err := eng.pipeline.Process(&img, applyFilter)
	if err != nil {
		return 0, err
	}

	out := filepath.Join(applyOut, filepath.Base(path))
	if !gocv.IMWrite(out, img) {
		return res.Faces, fmt.Errorf("failed to write %s", out)
	}

	log.WithFields(logrus.Fields{
		"image":     path,
		"faces":     res.Faces,
		"detection": res.Timing.Detection,
	}).Debug("Image filtered")

	return res.Faces, nil
}
