package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func historyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List ground checks saved on this device, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := app.submission().History(cmd.Context())
			if err != nil {
				return err
			}
			if len(items) == 0 {
				dimColor.Fprintln(app.Out, "No ground checks yet.")
				return nil
			}

			w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tCLERK\tDIVISION\tFOREMAN\tPHOTOS\tSIGNED\tSYNCED")
			for _, it := range items {
				t := it.Task
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
					shortID(t.ID), t.CreatedAt.Local().Format("2006-01-02 15:04"), t.ClerkName,
					t.DivisionCode, t.ForemanCode, it.AttachmentCount,
					mark(it.Completed), mark(it.Synced))
			}
			return w.Flush()
		},
	}
}

func mark(ok bool) string {
	if ok {
		return okColor.Sprint("yes")
	}
	return warnColor.Sprint("no")
}

func showCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one saved ground check",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stored, err := app.Store.Tasks().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			t := stored.Task

			w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "ID\t%s\n", t.ID)
			fmt.Fprintf(w, "Date\t%s\n", t.CreatedAt.Local().Format("2006-01-02 15:04"))
			fmt.Fprintf(w, "Clerk\t%s\n", t.ClerkName)
			fmt.Fprintf(w, "Division\t%s\n", t.DivisionCode)
			fmt.Fprintf(w, "Foreman\t%s\n", t.ForemanCode)
			fmt.Fprintf(w, "Notes\t%s\n", t.Notes)
			fmt.Fprintf(w, "Photos\t%d\n", len(t.Attachments))
			for _, a := range t.Attachments {
				fmt.Fprintf(w, "\tTPH %d (%d bytes)\n", a.TPHNumber, len(a.PhotoData))
			}
			fmt.Fprintf(w, "Signed\t%s\n", mark(t.HasSignature()))
			fmt.Fprintf(w, "Synced\t%s\n", mark(stored.Synced))
			return w.Flush()
		},
	}
}
