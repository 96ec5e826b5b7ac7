package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"subgen/internal/api"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and manage transcription jobs",
	}

	jobsCmd.AddCommand(newJobsListCommand(ctx))
	jobsCmd.AddCommand(newJobsShowCommand(ctx))
	jobsCmd.AddCommand(newJobsSubmitCommand(ctx))
	jobsCmd.AddCommand(newJobsCancelCommand(ctx))
	jobsCmd.AddCommand(newJobsDeleteCommand(ctx))

	return jobsCmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	var statusFilter []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			records, err := client.ListJobs(cmd.Context(), statusFilter)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), api.JobListResponse{Jobs: records})
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No jobs")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, job := range records {
				rows = append(rows, []string{
					shortID(job.ID),
					job.Type,
					job.Status,
					formatProgress(job.Progress),
					job.SourcePath,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]tableColumn{{Title: "ID"}, {Title: "Type"}, {Title: "Status"}, {Title: "Progress", Right: true}, {Title: "Source"}},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&statusFilter, "status", nil, "Filter by status (repeatable)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}

func newJobsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <job-id>",
		Short: "Show one job in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			job, err := client.GetJob(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), api.JobResponse{Job: job})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:       %s\n", job.ID)
			fmt.Fprintf(out, "Type:     %s\n", job.Type)
			fmt.Fprintf(out, "Status:   %s\n", job.Status)
			fmt.Fprintf(out, "Source:   %s\n", job.SourcePath)
			if job.Language != "" {
				fmt.Fprintf(out, "Language: %s\n", job.Language)
			}
			if job.TargetLanguage != "" {
				fmt.Fprintf(out, "Target:   %s\n", job.TargetLanguage)
			}
			if job.Progress.Total > 0 {
				fmt.Fprintf(out, "Progress: %s\n", formatProgress(job.Progress))
			}
			for _, output := range job.Outputs {
				fmt.Fprintf(out, "Output:   %s\n", output)
			}
			if job.ErrorMessage != "" {
				fmt.Fprintf(out, "Error:    %s\n", job.ErrorMessage)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}

func newJobsSubmitCommand(ctx *commandContext) *cobra.Command {
	var jobType string
	var language string
	var target string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "submit <path>",
		Short: "Queue a job for a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			job, err := client.Submit(cmd.Context(), api.SubmitRequest{
				Type:           jobType,
				SourcePath:     args[0],
				Language:       language,
				TargetLanguage: target,
			})
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), api.JobResponse{Job: job})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Queued %s job %s for %s\n", job.Type, shortID(job.ID), job.SourcePath)
			return nil
		},
	}

	cmd.Flags().StringVar(&jobType, "type", "transcribe", "Job type: transcribe or translate")
	cmd.Flags().StringVarP(&language, "language", "l", "", "Audio language hint (ISO 639-1)")
	cmd.Flags().StringVarP(&target, "target", "t", "", "Target language for translation")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}

func newJobsCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Cancel a queued or running job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			job, err := client.Cancel(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Job %s is now %s\n", shortID(job.ID), job.Status)
			return nil
		},
	}
}

func newJobsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <job-id>",
		Short: "Delete a finished job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			if err := client.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted job %s\n", shortID(args[0]))
			return nil
		},
	}
}

// shortID trims a UUID to its first group for table display.
func shortID(id string) string {
	if idx := strings.IndexByte(id, '-'); idx > 0 {
		return id[:idx]
	}
	return id
}

func formatProgress(progress api.JobProgress) string {
	if progress.Total <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d/%d (%.0f%%)", progress.Window, progress.Total, progress.Percent)
}
