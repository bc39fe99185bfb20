package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/me/odflow/internal/feed"
	"github.com/me/odflow/internal/render"
	"github.com/me/odflow/internal/status"
	"github.com/me/odflow/pkg/model"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep your main view open and reprint it when it changes",
		Long: "Students watch their pending requests; teachers watch their inbox.\n" +
			"Stops on Ctrl-C.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession(cmd.Context(), "")
			if err != nil {
				return err
			}
			v := activeView
			if sess.IsTeacher() {
				v = inboxView
			}
			if interval <= 0 {
				interval = cfg.PollInterval
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			f := v.feed(sess)
			var (
				last    string
				printed bool
				lastErr bool
			)
			f.OnUpdate(func(snap feed.Snapshot) {
				if snap.Err != nil {
					if !lastErr {
						fmt.Fprintf(out, "[%s] %s\n", snap.UpdatedAt.Format("15:04:05"), model.FriendlyMessage("load", snap.Err))
					}
					lastErr = true
					return
				}
				lastErr = false
				sig := signature(snap.Forms)
				if printed && sig == last {
					return
				}
				last, printed = sig, true
				fmt.Fprintf(out, "[%s] %s\n", snap.UpdatedAt.Format("15:04:05"), f.Name())
				render.List(out, snap.Forms, v.empty, func(form model.Form) string {
					return v.card(sess, form)
				})
			})

			logger.Info("watching", "view", f.Name(), "interval", interval)
			if err := f.Run(ctx, interval); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "Refresh interval (default from config, 20s)")
	return cmd
}

// signature identifies what a view shows so unchanged polls print nothing.
func signature(forms []model.Form) string {
	var b strings.Builder
	for _, f := range forms {
		fmt.Fprintf(&b, "%s:%s;", f.ID, status.Effective(f.Requests))
	}
	return b.String()
}
