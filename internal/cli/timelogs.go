package cli

import (
	"time"

	"github.com/geocoder89/timehub/internal/client"
	"github.com/geocoder89/timehub/internal/domain/timelog"
	"github.com/spf13/cobra"
)

func (a *app) logCmd() *cobra.Command {
	var projectID, hours, date, notes string

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log hours against a project (employees only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := timelog.ParseHours(hours)
			if err != nil {
				return err
			}
			if date == "" {
				date = time.Now().Format(timelog.DateLayout)
			}
			if err := timelog.ValidateDate(date, time.Now()); err != nil {
				return err
			}

			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}

			tl, err := a.store.API().LogTime(cmd.Context(), timelog.CreateTimeLogRequest{
				ProjectID: projectID,
				Hours:     h,
				Notes:     notes,
				Date:      date,
			})
			if err != nil {
				return err
			}

			success(cmd.OutOrStdout(), "Logged %s h on %s", tl.Hours.String(), tl.Date)
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "project id")
	cmd.Flags().StringVar(&hours, "hours", "", "hours worked, in quarter hours (e.g. 1.75)")
	cmd.Flags().StringVar(&date, "date", "", "work date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&notes, "notes", "", "what you worked on")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("hours")

	return cmd
}

func (a *app) timeLogsCmd() *cobra.Command {
	var projectID string
	var q client.PageQuery

	cmd := &cobra.Command{
		Use:   "timelogs",
		Short: "List time logs",
		Long:  "List your own time logs, or with --project (managers) the logs on one project.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.requireSession(cmd.Context()); err != nil {
				return err
			}

			var (
				page client.TimeLogPage
				err  error
			)
			if projectID != "" {
				page, err = a.store.API().ProjectTimeLogs(cmd.Context(), projectID, q)
			} else {
				page, err = a.store.API().TimeLogs(cmd.Context(), q)
			}
			if err != nil {
				return err
			}

			renderTimeLogs(cmd.OutOrStdout(), page.Items)
			if page.HasMore && page.NextCursor != nil {
				hint(cmd.OutOrStdout(), "more: --cursor %s", *page.NextCursor)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "project id (managers)")
	cmd.Flags().IntVar(&q.Limit, "limit", 20, "page size")
	cmd.Flags().StringVar(&q.Cursor, "cursor", "", "cursor from a previous page")

	return cmd
}
