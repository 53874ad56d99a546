package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spge/groundcheck/internal/localstore"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func loginCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the SGS server and refresh reference data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			username, _ := cmd.Flags().GetString("username")
			fromStdin, _ := cmd.Flags().GetBool("password-stdin")

			reader := bufio.NewReader(app.In)
			if username == "" {
				fmt.Fprint(app.Out, "Username: ")
				line, err := readLine(reader)
				if err != nil {
					return err
				}
				username = line
			}

			var password string
			if fromStdin {
				line, err := readLine(reader)
				if err != nil {
					return err
				}
				password = line
			} else {
				fmt.Fprint(app.Out, "Password: ")
				pw, err := readPassword(int(os.Stdin.Fd()))
				fmt.Fprintln(app.Out)
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = string(pw)
			}

			user, err := app.Client.Login(ctx, username, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			sess := localstore.Session{ServerURL: app.Client.BaseURL(), User: *user, Cookie: app.Client.SessionCookie()}
			if err := app.Store.Session().Save(ctx, sess); err != nil {
				return err
			}
			app.session = &sess
			success(app.Out, "Logged in as %s (%s)", user.Name, user.Role)

			app.Monitor.Set(true)
			if d, f, err := syncReference(ctx, app); err != nil {
				app.Log.Warn("reference refresh after login failed", zap.Error(err))
				warn(app.Out, "Reference data not refreshed: %v", err)
			} else {
				success(app.Out, "Reference data refreshed: %d divisions, %d foremen", d, f)
			}
			return nil
		},
	}
	cmd.Flags().StringP("username", "u", "", "username")
	cmd.Flags().Bool("password-stdin", false, "read the password from stdin")
	return cmd
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func logoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if app.session != nil && app.Monitor.Check(ctx) {
				if err := app.Client.Logout(ctx); err != nil {
					app.Log.Warn("server logout failed", zap.Error(err))
				}
			}
			if err := app.Store.Session().Clear(ctx); err != nil {
				return err
			}
			app.session = nil
			success(app.Out, "Logged out")
			return nil
		},
	}
}

func whoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.session == nil {
				warn(app.Out, "Not logged in to %s", app.Client.BaseURL())
				return nil
			}
			u := app.session.User
			fmt.Fprintf(app.Out, "%s (%s), role %s, server %s\n", u.Name, u.Username, u.Role, app.session.ServerURL)
			return nil
		},
	}
}
