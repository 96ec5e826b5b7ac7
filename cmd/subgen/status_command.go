package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			status, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), status)
			}

			out := cmd.OutOrStdout()
			if stdoutIsTerminal() {
				rows := [][]string{
					{"Queued", fmt.Sprintf("%d", status.Queue.Queued)},
					{"Running", fmt.Sprintf("%d", status.Queue.Running)},
					{"Cancelling", fmt.Sprintf("%d", status.Queue.Cancelling)},
					{"Completed", fmt.Sprintf("%d", status.Queue.Completed)},
					{"Failed", fmt.Sprintf("%d", status.Queue.Failed)},
					{"Canceled", fmt.Sprintf("%d", status.Queue.Canceled)},
				}
				fmt.Fprintf(out, "Daemon running (pid %d)\n", status.PID)
				fmt.Fprintf(out, "Media dir: %s\n", status.MediaDir)
				fmt.Fprintf(out, "Database:  %s\n", status.DatabasePath)
				fmt.Fprintln(out, renderTable([]tableColumn{{Title: "State"}, {Title: "Jobs", Right: true}}, rows))
				return nil
			}

			fmt.Fprintf(out, "running=%t pid=%d\n", status.Running, status.PID)
			fmt.Fprintf(out, "media_dir=%s\n", status.MediaDir)
			fmt.Fprintf(out, "database=%s\n", status.DatabasePath)
			fmt.Fprintf(out, "queued=%d running=%d cancelling=%d completed=%d failed=%d canceled=%d\n",
				status.Queue.Queued, status.Queue.Running, status.Queue.Cancelling,
				status.Queue.Completed, status.Queue.Failed, status.Queue.Canceled)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
