package cli

import (
	"fmt"
	"strings"

	"github.com/me/odflow/internal/feed"
	"github.com/me/odflow/pkg/model"
	"github.com/spf13/cobra"
)

// newDecideCmd builds "accept" or "reject".
func newDecideCmd(decision model.Status) *cobra.Command {
	var reason string
	verb := "accept"
	if decision == model.StatusRejected {
		verb = "reject"
	}

	cmd := &cobra.Command{
		Use:   verb + " <form_id>",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " an OD request addressed to you",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession(cmd.Context(), model.RoleTeacher)
			if err != nil {
				return err
			}

			inbox := inboxView.feed(sess)
			if err := inbox.Refresh(cmd.Context()); err != nil {
				return failed("load", err)
			}
			form, ok := feed.FindForm(inbox, args[0])
			if !ok {
				return fmt.Errorf("form %s is not awaiting your decision", args[0])
			}

			if _, err := feed.Decide(cmd.Context(), api, sess.User.ID, form, decision, reason, inbox); err != nil {
				return failed("decide", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Request %s successfully!\n", strings.ToLower(string(decision)))
			return nil
		},
	}

	if decision == model.StatusRejected {
		cmd.Flags().StringVar(&reason, "reason", "", "Reason for rejection")
	}
	return cmd
}
