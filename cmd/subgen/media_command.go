package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"subgen/internal/api"
)

func newMediaCommand(ctx *commandContext) *cobra.Command {
	var rescan bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "media",
		Short: "List library files and their subtitle state",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			files, err := client.Media(cmd.Context(), rescan)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), api.MediaListResponse{Files: files})
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No media files")
				return nil
			}
			rows := make([][]string, 0, len(files))
			for _, file := range files {
				subtitles := strings.Join(file.SidecarLanguages, ", ")
				if subtitles == "" {
					subtitles = "-"
				}
				generated := ""
				if file.Generated {
					generated = "yes"
				}
				rows = append(rows, []string{file.Path, subtitles, generated})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]tableColumn{{Title: "Path"}, {Title: "Subtitles"}, {Title: "Generated"}},
				rows,
			))
			if rescan {
				fmt.Fprintln(cmd.OutOrStdout(), "Rescan queued")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&rescan, "rescan", false, "Also queue a scan job for missing subtitles")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}
