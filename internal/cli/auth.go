package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/me/examdesk/pkg/model"
)

// readCredentials fills in missing email/password from stdin.
func readCredentials(cmd *cobra.Command, email, password string) (model.Credentials, error) {
	reader := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()
	var err error
	if email == "" {
		if email, err = prompt(reader, out, "Email: "); err != nil {
			return model.Credentials{}, err
		}
	}
	if password == "" {
		if password, err = prompt(reader, out, "Password: "); err != nil {
			return model.Credentials{}, err
		}
	}
	return model.Credentials{Email: strings.TrimSpace(email), Password: password}, nil
}

func prompt(r *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprint(w, label)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimSpace(line), nil
}

func newLoginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the backend",
		Long:  "Exchange email and password for a bearer token and store it for later commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := readCredentials(cmd, email, password)
			if err != nil {
				return err
			}
			token, err := client.Login(cmd.Context(), creds)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}
			if err := guard.Login(cmd.Context(), token); err != nil {
				return err
			}

			sess := guard.Session(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Login successful")
			if !sess.ExpiresAt.IsZero() {
				fmt.Fprintf(out, "Session expires %s (%s)\n", humanize.Time(sess.ExpiresAt), sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (prompted if omitted)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted if omitted)")
	return cmd
}

func newRegisterCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an operator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := readCredentials(cmd, email, password)
			if err != nil {
				return err
			}
			if err := client.Register(cmd.Context(), creds); err != nil {
				if apiErr, ok := model.AsAPIError(err); ok && len(apiErr.Details) > 0 {
					for _, msg := range apiErr.Messages() {
						fmt.Fprintf(cmd.ErrOrStderr(), "  - %s\n", msg)
					}
				}
				return fmt.Errorf("register: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Registration successful. Run examdesk login to sign in.")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email (prompted if omitted)")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted if omitted)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := guard.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the session status",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := guard.Session(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Server:  %s\n", cfg.Server)
			fmt.Fprintf(out, "Session: %s\n", sess.Status)
			if sess.IsValid() {
				fmt.Fprintf(out, "Expires: %s\n", humanize.Time(sess.ExpiresAt))
			} else {
				// Mirror what a protected command would do.
				guard.OnMount(cmd.Context(), "whoami")
				fmt.Fprintln(out, "Run examdesk login to sign in.")
			}
			return nil
		},
	}
}
