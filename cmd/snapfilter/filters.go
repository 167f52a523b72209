package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dudu/snapfilter/internal/filter"
)

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "List filter kinds and the state of their assets",
	Run: func(cmd *cobra.Command, args []string) {
		runFilters()
	},
}

func init() {
	rootCmd.AddCommand(filtersCmd)
}

func runFilters() {
	src := filter.DirSource{Dir: cfg.AssetsDir}
	cache := filter.NewCache(src, log)
	defer cache.Close()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "FILTER\tASSET\tSIZE\tSTATUS")
	fmt.Fprintln(w, "------\t-----\t----\t------")

	for _, kind := range filter.Kinds() {
		path := src.Path(kind)

		size := "-"
		if info, err := os.Stat(path); err == nil {
			size = humanize.Bytes(uint64(info.Size()))
		}

		status := "missing"
		if a, ok := cache.Get(kind); ok {
			channels := "BGR"
			if a.HasAlpha() {
				channels = "BGRA"
			}
			status = fmt.Sprintf("%dx%d %s", a.Image.Cols(), a.Image.Rows(), channels)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", kind, path, size, status)
	}
	w.Flush()
}
