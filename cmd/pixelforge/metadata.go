package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pankaj139/pixelforge/pkg/convert"
)

var metadataCmd = &cobra.Command{
	Use:   "metadata [file]",
	Short: "Print image metadata as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		meta, err := convert.NewEngine().Metadata(args[0])
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var thumbnailCmd = &cobra.Command{
	Use:   "thumbnail [file] [output]",
	Short: "Create a fit-inside thumbnail",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		maxSize, _ := cmd.Flags().GetInt("size")
		size, err := convert.NewEngine().CreateThumbnail(args[0], args[1], maxSize)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %dx%d\n", args[1], size.Width, size.Height)
		return nil
	},
}

func init() {
	thumbnailCmd.Flags().Int("size", convert.DefaultThumbnailSize, "maximum edge length")
	rootCmd.AddCommand(metadataCmd, thumbnailCmd)
}
