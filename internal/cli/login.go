package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/me/odflow/internal/calendar"
	"github.com/me/odflow/internal/render"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newLoginCmd() *cobra.Command {
	var username string
	var passwordStdin bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session on this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			if username == "" {
				fmt.Fprint(out, "Username: ")
				line, err := readLine(in)
				if err != nil {
					return fmt.Errorf("read username: %w", err)
				}
				username = line
			}

			password, err := readPassword(cmd, in, passwordStdin)
			if err != nil {
				return err
			}

			sess, err := sessions.Login(cmd.Context(), username, password)
			if err != nil {
				return failed("login", err)
			}
			fmt.Fprintf(out, "Logged in as %s (%s)\n", sess.User.DisplayName(), sess.User.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (prompted if omitted)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	return cmd
}

// readPassword reads without echo when stdin is a terminal, otherwise the
// next line of input.
func readPassword(cmd *cobra.Command, in *bufio.Reader, fromStdin bool) (string, error) {
	if !fromStdin && cmd.InOrStdin() == os.Stdin && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprint(cmd.OutOrStdout(), "Password: ")
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	if !fromStdin {
		fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	}
	line, err := readLine(in)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return line, nil
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session stored on this device",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := sessions.Logout(cmd.Context()); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := requireSession(cmd.Context(), "")
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			u := sess.User
			fmt.Fprintf(out, "Name:    %s\n", u.DisplayName())
			fmt.Fprintf(out, "ID:      %s\n", u.ID)
			fmt.Fprintf(out, "Role:    %s\n", u.Role)
			if u.Section != "" {
				fmt.Fprintf(out, "Section: %s\n", u.Section)
			}
			if u.Year != "" {
				fmt.Fprintf(out, "Year:    %s\n", u.Year)
			}
			if !sess.ExpiresAt.IsZero() {
				fmt.Fprintf(out, "Expires: %s (%s)\n", calendar.FormatDay(sess.ExpiresAt), render.Age(sess.ExpiresAt, now()))
			}
			fmt.Fprintf(out, "Server:  %s\n", cfg.ServerURL)
			return nil
		},
	}
}
