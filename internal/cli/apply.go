package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/me/odflow/internal/calendar"
	"github.com/me/odflow/internal/feed"
	"github.com/me/odflow/pkg/model"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// draftFile is the YAML form of an OD request:
//
//	reason: ML workshop
//	category: Workshop
//	from: 2024-10-03
//	to: 2024-10-04
type draftFile struct {
	Reason   string `yaml:"reason"`
	Category string `yaml:"category"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

func newApplyCmd() *cobra.Command {
	var flags draftFile
	var file string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply for on-duty leave",
		Long: "Submit an OD request covering every day from --from to --to inclusive.\n" +
			"Values can come from a YAML file (--file); flags override it.\n" +
			"Categories: " + categoryNames() + ".",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession(cmd.Context(), model.RoleStudent)
			if err != nil {
				return err
			}

			var df draftFile
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read draft: %w", err)
				}
				if err := yaml.Unmarshal(data, &df); err != nil {
					return fmt.Errorf("parse draft %s: %w", file, err)
				}
				logger.Debug("loaded draft", "file", file)
			}
			overlay(&df.Reason, flags.Reason)
			overlay(&df.Category, flags.Category)
			overlay(&df.From, flags.From)
			overlay(&df.To, flags.To)

			today := calendar.Today(now)
			draft, err := toDraft(df, today)
			if err != nil {
				return failed("apply", err)
			}

			active := activeView.feed(sess)
			form, err := feed.Submit(cmd.Context(), api, sess, draft, today, active)
			if err != nil {
				return failed("apply", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "OD request submitted")
			if form != nil {
				fmt.Fprintf(out, "Requested Dates: %s\n", calendar.JoinDays(form.Dates))
			}
			if n := len(active.Snapshot().Forms); n > 0 {
				fmt.Fprintf(out, "Pending requests: %d\n", n)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.Reason, "reason", "", "Reason for the leave")
	cmd.Flags().StringVar(&flags.Category, "category", "", "Category ("+categoryNames()+")")
	cmd.Flags().StringVar(&flags.From, "from", "", "First day, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&flags.To, "to", "", "Last day, YYYY-MM-DD (default --from)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML draft file")
	return cmd
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func toDraft(df draftFile, today time.Time) (feed.Draft, error) {
	d := feed.Draft{Reason: df.Reason, Category: df.Category, From: today}
	if df.From != "" {
		from, err := calendar.ParseDay(df.From)
		if err != nil {
			return d, model.NewValidationError("%v", err)
		}
		d.From = from
	}
	d.To = d.From
	if df.To != "" {
		to, err := calendar.ParseDay(df.To)
		if err != nil {
			return d, model.NewValidationError("%v", err)
		}
		d.To = to
	}
	return d, nil
}

func categoryNames() string {
	names := make([]string, len(model.Categories))
	for i, c := range model.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
