package main

import (
	"fmt"
	"image"

	"toftracer/datfile"

	"github.com/spf13/cobra"
)

var (
	compareLayout          string
	compareReferenceLayout string
)

func init() {
	cmdCompare.Flags().StringVar(&compareLayout, "layout", "image", "Layout of the first dump: image, groundtruth, or histogram.")
	cmdCompare.Flags().StringVar(&compareReferenceLayout, "reference-layout", "", "Layout of the second dump.  Defaults to --layout.")
}

var cmdCompare = &cobra.Command{
	Use:   "compare DUMP REFERENCE",
	Short: "Compare the per-pixel luminance of two film dumps",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		layout, err := datfile.ParseLayout(compareLayout)
		if err != nil {
			return err
		}
		refLayout := layout
		if compareReferenceLayout != "" {
			refLayout, err = datfile.ParseLayout(compareReferenceLayout)
			if err != nil {
				return err
			}
		}

		first, err := luminances(args[0], layout)
		if err != nil {
			return err
		}
		second, err := luminances(args[1], refLayout)
		if err != nil {
			return err
		}

		st := datfile.Compare(first, second)
		fmt.Fprintf(cmd.OutOrStdout(), "pixels: %d\nmean difference: %g\nstddev: %g\npercent error: %g\n",
			st.Pixels, st.MeanDifference, st.StdDev, st.PercentError)
		return nil
	},
}

func luminances(name string, l datfile.Layout) (map[image.Point]float64, error) {
	recs, err := datfile.ReadFile(name)
	if err != nil {
		return nil, err
	}
	lum, err := datfile.Luminances(recs, l)
	if err != nil {
		return nil, fmt.Errorf("in %q: %w", name, err)
	}
	return lum, nil
}
