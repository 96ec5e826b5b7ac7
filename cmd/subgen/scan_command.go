package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"subgen/internal/api"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Queue a library scan for files that need subtitles",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			job, err := client.Submit(cmd.Context(), api.SubmitRequest{
				Type:       "scan",
				SourcePath: path,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Queued scan job %s\n", shortID(job.ID))
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", "", "Directory to scan (default: configured media dir)")
	return cmd
}
