package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pankaj139/pixelforge/pkg/sheet"
	"github.com/pankaj139/pixelforge/pkg/types"
)

var layoutsCmd = &cobra.Command{
	Use:   "layouts",
	Short: "List the supported sheet grid layouts",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%-6s %-6s %-8s %s\n", "NAME", "ROWS", "COLUMNS", "CAPACITY")
		for _, l := range sheet.Layouts() {
			fmt.Printf("%-6s %-6d %-8d %d\n", l.Name, l.Rows, l.Columns, l.Capacity())
		}
		p := sheet.CanvasSize(types.Portrait)
		fmt.Printf("\nA4 canvas at 300 DPI: %dx%d portrait\n", p.Width, p.Height)
	},
}

func init() {
	rootCmd.AddCommand(layoutsCmd)
}
