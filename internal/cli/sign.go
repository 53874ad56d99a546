package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spge/groundcheck/internal/capture"
	"github.com/spge/groundcheck/internal/dataurl"
	"github.com/spge/groundcheck/internal/submission"
)

func signCmd(app *App) *cobra.Command {
	var strokes string

	cmd := &cobra.Command{
		Use:   "sign <task-id>",
		Short: "Attach the foreman's signature to a saved task",
		Long: `sign replays the strokes drawn on a signature pad and attaches the
resulting PNG to a saved task.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app.Monitor.Check(ctx)
			return signWithStrokes(ctx, app, app.submission(), args[0], strokes)
		},
	}
	cmd.Flags().StringVar(&strokes, "strokes", "", "JSON stroke file from a signature pad")
	_ = cmd.MarkFlagRequired("strokes")
	return cmd
}

func signWithStrokes(ctx context.Context, app *App, svc *submission.Service, id, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open stroke file: %w", err)
	}
	defer f.Close()

	pad, err := capture.LoadSignaturePad(f)
	if err != nil {
		return err
	}
	png, err := pad.Snapshot()
	if err != nil {
		return err
	}
	return sign(ctx, app, svc, id, dataurl.Encode("image/png", png))
}

func sign(ctx context.Context, app *App, svc *submission.Service, id, signature string) error {
	result, err := svc.Sign(ctx, id, signature)
	if err != nil {
		return err
	}
	switch {
	case result.Remote.Synced:
		success(app.Out, "Signed %s on the server and this device", shortID(id))
	case result.Remote.Attempted:
		warn(app.Out, "Signed %s on this device only; server said: %v", shortID(id), result.Remote.Err)
	default:
		success(app.Out, "Signed %s on this device", shortID(id))
	}
	return nil
}
