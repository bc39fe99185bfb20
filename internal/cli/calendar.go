package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/me/odflow/internal/calendar"
	"github.com/me/odflow/internal/feed"
	"github.com/me/odflow/internal/render"
	"github.com/me/odflow/internal/status"
	"github.com/me/odflow/pkg/model"
	"github.com/spf13/cobra"
)

func newCalendarCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show a month with requested OD days marked",
		Long: "Students see the days of their requests that are not rejected.\n" +
			"Teachers see the days of requests awaiting their decision.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession(cmd.Context(), "")
			if err != nil {
				return err
			}

			today := calendar.Today(now)
			shown := today
			if month != "" {
				shown, err = calendar.ParseMonth(month)
				if err != nil {
					return err
				}
			}

			var f *feed.Feed
			if sess.IsTeacher() {
				f = inboxView.feed(sess)
			} else {
				f = feed.New("calendar", func(ctx context.Context) ([]model.Form, error) {
					return api.ListStudentForms(ctx, sess.User.ID)
				}, nil, logger)
			}
			if err := f.Refresh(cmd.Context()); err != nil {
				return failed("load", err)
			}

			fmt.Fprint(cmd.OutOrStdout(), render.Calendar(shown, requestedDays(f.Snapshot().Forms), today))
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month to show, YYYY-MM (default current month)")
	return cmd
}

// requestedDays collects the dates of every form that is not rejected.
func requestedDays(forms []model.Form) []time.Time {
	var days []time.Time
	for _, f := range forms {
		if status.Effective(f.Requests) == model.StatusRejected {
			continue
		}
		days = append(days, f.Dates...)
	}
	return days
}
