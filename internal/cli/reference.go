package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spge/groundcheck/internal/groundcheck"
	"golang.org/x/sync/errgroup"
)

var errEmptyReference = errors.New("server returned no divisions")

// syncReference fetches divisions and foremen concurrently and replaces the
// device copy. The device copy is left alone when either fetch fails.
func syncReference(ctx context.Context, app *App) (int, int, error) {
	var divisions []groundcheck.Division
	var foremen []groundcheck.Foreman

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := app.Client.ListDivisions(gctx)
		divisions = d
		return err
	})
	g.Go(func() error {
		f, err := app.Client.ListForemen(gctx, "")
		foremen = f
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}
	if len(divisions) == 0 {
		return 0, 0, errEmptyReference
	}

	if err := app.Store.Reference().ReplaceAll(ctx, divisions, foremen); err != nil {
		return 0, 0, err
	}
	return len(divisions), len(foremen), nil
}

func syncReferenceCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync-reference",
		Short: "Download divisions and foremen from the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, f, err := syncReference(cmd.Context(), app)
			if err != nil {
				return fmt.Errorf("failed to refresh reference data: %w", err)
			}
			success(app.Out, "Reference data refreshed: %d divisions, %d foremen", d, f)
			return nil
		},
	}
}

func referenceCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reference",
		Short: "List the divisions and foremen stored on this device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			divisions, err := app.Store.Reference().Divisions(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DIVISION\tNAME\tFOREMEN")
			for _, d := range divisions {
				foremen, err := app.Store.Reference().Foremen(ctx, d.ID)
				if err != nil {
					return err
				}
				codes := make([]string, len(foremen))
				for i, f := range foremen {
					codes[i] = f.Code
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", d.Code, d.Name, strings.Join(codes, ", "))
			}
			return w.Flush()
		},
	}
}

// resolveReference accepts ids or codes for the division and foreman.
func resolveReference(ctx context.Context, app *App, division, foreman string) (*groundcheck.Division, *groundcheck.Foreman, error) {
	divisions, err := app.Store.Reference().Divisions(ctx)
	if err != nil {
		return nil, nil, err
	}
	var div *groundcheck.Division
	for i := range divisions {
		if divisions[i].ID == division || divisions[i].Code == division {
			div = &divisions[i]
			break
		}
	}
	if div == nil {
		return nil, nil, &groundcheck.NotFoundError{Kind: "division", ID: division}
	}

	foremen, err := app.Store.Reference().Foremen(ctx, div.ID)
	if err != nil {
		return nil, nil, err
	}
	for i := range foremen {
		if foremen[i].ID == foreman || strings.EqualFold(foremen[i].Code, foreman) {
			return div, &foremen[i], nil
		}
	}
	return nil, nil, &groundcheck.NotFoundError{Kind: "foreman", ID: foreman}
}
