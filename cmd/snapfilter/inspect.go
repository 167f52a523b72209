package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dudu/snapfilter/internal/inference"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect-model <model.onnx>",
	Short: "Print an ONNX model's inputs, outputs and metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		modelPath := args[0]

		if _, err := os.Stat(modelPath); err != nil {
			return fmt.Errorf("model not found: %w", err)
		}

		if err := inference.Initialize(cfg.ORTLibrary); err != nil {
			return err
		}
		defer inference.Shutdown()

		info, err := inference.Inspect(modelPath)
		if err != nil {
			return err
		}

		fmt.Printf("Model: %s\n", info.Path)

		fmt.Printf("\nInputs (%d):\n", len(info.Inputs))
		for _, t := range info.Inputs {
			fmt.Printf("  %s: shape=%v, type=%s\n", t.Name, t.Dimensions, t.DataType)
		}

		fmt.Printf("\nOutputs (%d):\n", len(info.Outputs))
		for _, t := range info.Outputs {
			fmt.Printf("  %s: shape=%v, type=%s\n", t.Name, t.Dimensions, t.DataType)
		}

		fmt.Println("\nMetadata:")
		if info.Producer != "" {
			fmt.Printf("  Producer: %s\n", info.Producer)
		}
		fmt.Printf("  Version: %d\n", info.Version)
		if info.Domain != "" {
			fmt.Printf("  Domain: %s\n", info.Domain)
		}
		if info.Description != "" {
			fmt.Printf("  Description: %s\n", info.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
