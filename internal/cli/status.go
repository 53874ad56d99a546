package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func statusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show server reachability, session and device counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if app.Monitor.Check(ctx) {
				success(app.Out, "Server %s is reachable", app.Client.BaseURL())
			} else {
				warn(app.Out, "Server %s is not reachable, working offline", app.Client.BaseURL())
			}

			if app.session != nil {
				fmt.Fprintf(app.Out, "Signed in as %s (%s)\n", app.session.User.Name, app.session.User.Role)
			} else {
				dimColor.Fprintln(app.Out, "Not signed in")
			}

			count, err := app.Store.Tasks().Count(ctx)
			if err != nil {
				return err
			}
			divisions, err := app.Store.Reference().Divisions(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "Tasks on device: %d\nDivisions on device: %d\n", count, len(divisions))
			return nil
		},
	}
}

func watchCmd(app *App) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Report connectivity changes until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if interval <= 0 {
				interval = app.Config.OnlineCheckInterval
			}
			if interval <= 0 {
				interval = 5 * time.Second
			}
			app.Monitor.OnChange(func(online bool) {
				stamp := time.Now().Format("15:04:05")
				if online {
					success(app.Out, "%s online", stamp)
				} else {
					warn(app.Out, "%s offline", stamp)
				}
			})
			app.Monitor.Run(cmd.Context(), interval)
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "probe interval (defaults to SGS_ONLINE_CHECK_INTERVAL)")
	return cmd
}
