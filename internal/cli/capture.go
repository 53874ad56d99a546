package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spge/groundcheck/internal/capture"
	"github.com/spge/groundcheck/internal/groundcheck"
	"github.com/spge/groundcheck/internal/submission"
	"go.uber.org/zap"
)

type captureOptions struct {
	clerk    string
	division string
	foreman  string
	notes    string
	camera   int
	retries  int
	facing   string
	strokes  string
}

// errCaptureCancelled is returned when the clerk gives up on a shot; the
// draft is not saved.
var errCaptureCancelled = errors.New("capture cancelled, nothing was saved")

func captureCmd(app *App) *cobra.Command {
	var opts captureOptions

	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Record a ground check and save it",
		Long: `capture takes TPH photos with the camera, then saves the ground check on
the device and, when the server is reachable, on the server.

A failed shot is retried automatically --retries times, then the clerk is
asked whether to retry, skip the TPH or cancel. Nothing is saved until every
requested shot was taken or skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapture(cmd.Context(), app, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.clerk, "clerk", "", "clerk name (defaults to the signed-in user)")
	f.StringVar(&opts.division, "division", "", "division id or code")
	f.StringVar(&opts.foreman, "foreman", "", "foreman id or code within the division")
	f.StringVar(&opts.notes, "notes", "", "free-text notes")
	f.IntVar(&opts.camera, "camera", 1, "number of TPH photos to take")
	f.IntVar(&opts.retries, "retries", 2, "automatic retries for a failed shot before asking")
	f.StringVar(&opts.facing, "facing", "environment", "camera facing mode")
	f.StringVar(&opts.strokes, "strokes", "", "stroke file to sign the task with right after saving")
	return cmd
}

func runCapture(ctx context.Context, app *App, opts captureOptions) error {
	clerk := strings.TrimSpace(opts.clerk)
	if clerk == "" && app.session != nil {
		clerk = app.session.User.Name
	}
	draft := submission.NewDraft(clerk)
	draft.Notes = opts.notes

	if opts.division != "" || opts.foreman != "" {
		div, fm, err := resolveReference(ctx, app, opts.division, opts.foreman)
		if err != nil {
			return err
		}
		draft.DivisionID = div.ID
		draft.ForemanID = fm.ID
	}

	// Slot 1 exists from the start; later shots get new slots.
	slots := capture.NewSlots()
	pipeline := capture.NewPipeline(app.Device, app.Log)
	constraints := capture.Constraints{FacingMode: opts.facing}
	answers := bufio.NewReader(app.In)
	for n := 0; n < opts.camera; n++ {
		if n >= slots.Len() {
			slots.Add()
		}
		photo, err := shoot(ctx, app, pipeline, constraints, n+1, opts.retries, answers)
		if err != nil {
			return err
		}
		if photo == "" {
			continue
		}
		if err := slots.SetPhoto(n, photo); err != nil {
			return err
		}
	}
	draft.Attachments = slots.Attachments()

	app.Monitor.Check(ctx)
	svc := app.submission()
	result, err := svc.Commit(ctx, draft, app.userID())
	if err != nil {
		var verr *groundcheck.ValidationError
		if errors.As(err, &verr) {
			failure(app.Out, "Cannot save: missing %s", strings.Join(verr.Missing, ", "))
		}
		return err
	}

	switch {
	case result.Remote.Synced:
		success(app.Out, "Saved %s on the server and this device", shortID(result.Task.ID))
	case result.Remote.Attempted:
		warn(app.Out, "Saved %s on this device only; server said: %v", shortID(result.Task.ID), result.Remote.Err)
	default:
		warn(app.Out, "Offline: saved %s on this device only", shortID(result.Task.ID))
	}
	fmt.Fprintf(app.Out, "Task ID: %s\n", result.Task.ID)

	if opts.strokes == "" {
		return nil
	}
	return signWithStrokes(ctx, app, svc, result.Task.ID, opts.strokes)
}

// shoot takes one TPH photo. Failures are retried retries times, then the
// clerk decides: retry (default), skip or cancel. A skipped shot returns "".
func shoot(ctx context.Context, app *App, p *capture.Pipeline, c capture.Constraints, tph, retries int, answers *bufio.Reader) (string, error) {
	for attempt := 1; ; attempt++ {
		photo, err := capture.CaptureToDataURL(ctx, p, c)
		if err == nil {
			return photo, nil
		}
		app.Log.Warn("camera capture failed", zap.Int("tph", tph), zap.Int("attempt", attempt), zap.Error(err))
		warn(app.Out, "TPH %d: photo not taken: %v", tph, err)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if attempt <= retries {
			continue
		}

		fmt.Fprint(app.Out, "[r]etry, [s]kip this TPH or [c]ancel? ")
		answer, rerr := answers.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "s", "skip":
			return "", nil
		case "c", "cancel":
			return "", errCaptureCancelled
		case "", "r", "retry":
			if rerr != nil {
				// No one left to ask.
				fmt.Fprintln(app.Out)
				return "", errCaptureCancelled
			}
		default:
			fmt.Fprintf(app.Out, "unknown answer %q, retrying\n", strings.TrimSpace(answer))
		}
	}
}
