package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dudu/snapfilter/internal/filter"
)

var genDir string

var genAssetsCmd = &cobra.Command{
	Use:   "gen-assets",
	Short: "Write placeholder filter images",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.AssetsDir
		if cmd.Flags().Changed("dir") {
			dir = genDir
		}

		paths, err := filter.WritePlaceholders(dir)
		if err != nil {
			return err
		}

		for _, p := range paths {
			fmt.Println("  ", p)
		}
		fmt.Println("Sample filters generated successfully.")
		return nil
	},
}

func init() {
	genAssetsCmd.Flags().StringVar(&genDir, "dir", "", "Output directory (default: the assets directory)")
	rootCmd.AddCommand(genAssetsCmd)
}
