package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pankaj139/pixelforge/internal/utils"
	"github.com/pankaj139/pixelforge/pkg/convert"
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Check images against the engine's input requirements",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine := convert.NewEngine()
		failed := 0
		for _, path := range args {
			result := engine.Validate(path)
			if result.IsValid {
				meta := result.Metadata
				fmt.Printf("%s: ok (%dx%d %s, %s)\n", path,
					meta.Width, meta.Height, meta.Format, utils.FormatFileSize(meta.Size))
				continue
			}
			failed++
			fmt.Printf("%s: invalid\n", path)
			for _, e := range result.Errors {
				fmt.Printf("  - %s\n", e)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d images failed validation", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
