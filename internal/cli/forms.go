package cli

import (
	"github.com/me/odflow/internal/feed"
	"github.com/me/odflow/internal/render"
	"github.com/me/odflow/pkg/model"
	"github.com/spf13/cobra"
)

// view describes one list screen: which role sees it, how its feed is
// built and how each form is drawn.
type view struct {
	role  model.Role
	empty string
	feed  func(sess model.Session) *feed.Feed
	card  func(sess model.Session, f model.Form) string
}

var (
	activeView = view{
		role:  model.RoleStudent,
		empty: render.EmptyActive,
		feed: func(sess model.Session) *feed.Feed {
			return feed.NewStudentActive(api, sess.User.ID, logger)
		},
		card: func(_ model.Session, f model.Form) string { return render.ActiveCard(f, now()) },
	}
	historyView = view{
		role:  model.RoleStudent,
		empty: render.EmptyHistory,
		feed: func(sess model.Session) *feed.Feed {
			return feed.NewStudentHistory(api, sess.User.ID, logger)
		},
		card: func(_ model.Session, f model.Form) string { return render.HistoryCard(f, now()) },
	}
	inboxView = view{
		role:  model.RoleTeacher,
		empty: render.EmptyInbox,
		feed: func(sess model.Session) *feed.Feed {
			return feed.NewTeacherInbox(api, sess.User.ID, logger)
		},
		card: func(sess model.Session, f model.Form) string { return render.InboxCard(f, sess.User.ID, now()) },
	}
)

func newFormsCmd() *cobra.Command {
	return newViewCmd("forms", "List your pending OD requests", activeView)
}

func newHistoryCmd() *cobra.Command {
	return newViewCmd("history", "List your decided OD requests", historyView)
}

func newInboxCmd() *cobra.Command {
	return newViewCmd("inbox", "List OD requests awaiting your decision", inboxView)
}

func newViewCmd(use, short string, v view) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession(cmd.Context(), v.role)
			if err != nil {
				return err
			}
			f := v.feed(sess)
			if err := f.Refresh(cmd.Context()); err != nil {
				return failed("load", err)
			}
			render.List(cmd.OutOrStdout(), f.Snapshot().Forms, v.empty, func(form model.Form) string {
				return v.card(sess, form)
			})
			return nil
		},
	}
}
