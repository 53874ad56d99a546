package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spge/groundcheck/internal/apiclient"
	"github.com/spge/groundcheck/internal/report"
)

// renderer builds the chain server PDF, then local process, then HTML. Links
// that cannot run here are left out.
func (a *App) renderer(online bool) report.Renderer {
	var r report.Renderer = &report.HTMLRenderer{Resolver: a.Store.Reference()}
	if len(a.Config.ReportCommand) > 0 {
		r = &report.FallbackRenderer{
			Primary:  &report.ProcessRenderer{Command: a.Config.ReportCommand, Timeout: a.Config.RequestTimeout, Log: a.Log},
			Fallback: r,
			Log:      a.Log,
		}
	}
	if online {
		r = &report.FallbackRenderer{
			Primary:  apiclient.ReportRenderer{Client: a.Client},
			Fallback: r,
			Log:      a.Log,
		}
	}
	return r
}

func renderCmd(app *App) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "render <task-id>",
		Short: "Render a saved ground check as a PDF, or HTML when no PDF renderer is available",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			task, err := app.submission().Task(ctx, args[0])
			if err != nil {
				return err
			}

			doc, err := app.renderer(app.Monitor.Check(ctx)).Render(ctx, task)
			if err != nil {
				return fmt.Errorf("failed to render report: %w", err)
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
			path := filepath.Join(outDir, doc.Filename)
			if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			success(app.Out, "Wrote %s (%s)", path, doc.ContentType)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "output directory")
	return cmd
}
