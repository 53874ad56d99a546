// Package cli implements the clerk command used in the field: signing in,
// refreshing reference data, capturing and committing ground checks,
// signing them and rendering reports.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spge/groundcheck/internal/apiclient"
	"github.com/spge/groundcheck/internal/capture"
	"github.com/spge/groundcheck/internal/config"
	"github.com/spge/groundcheck/internal/connectivity"
	"github.com/spge/groundcheck/internal/localstore"
	"github.com/spge/groundcheck/internal/logger"
	"github.com/spge/groundcheck/internal/submission"
	"go.uber.org/zap"
)

// App carries the collaborators every command needs. Nil fields are built
// from Config before the command runs.
type App struct {
	Config  *config.ClientConfig
	Log     *zap.Logger
	In      io.Reader
	Out     io.Writer
	Store   *localstore.DB
	Client  *apiclient.Client
	Monitor *connectivity.Monitor
	Device  capture.Device

	session   *localstore.Session
	ownsStore bool
}

func (a *App) init(ctx context.Context) error {
	if a.Config == nil {
		a.Config = config.LoadClient()
	}
	if a.In == nil {
		a.In = os.Stdin
	}
	if a.Log == nil {
		log, err := logger.NewCLI(a.Config.AppEnv)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		a.Log = log
	}
	if a.Store == nil {
		store, err := localstore.Open(a.Config.DataPath, a.Log)
		if err != nil {
			return err
		}
		a.Store = store
		a.ownsStore = true
	}
	// A device that has never synced still gets divisions 1-3 and foremen A-C.
	if err := a.Store.Reference().SeedDefaults(ctx); err != nil {
		return fmt.Errorf("failed to seed reference data: %w", err)
	}
	if a.Client == nil {
		client, err := apiclient.New(a.Config.ServerURL, a.Config.RequestTimeout)
		if err != nil {
			return err
		}
		a.Client = client
	}
	if a.Monitor == nil {
		a.Monitor = connectivity.NewMonitor(a.Client.Ping, a.Log)
	}
	if a.Device == nil {
		a.Device = &capture.V4L2Device{Path: a.Config.CameraDevice, Command: a.Config.CameraCommand}
	}

	sess, err := a.Store.Session().Load(ctx)
	switch {
	case err == nil:
		if sess.ServerURL == a.Client.BaseURL() {
			a.Client.SetSessionCookie(sess.Cookie)
			a.session = sess
		}
	case errors.Is(err, localstore.ErrNoSession):
	default:
		return fmt.Errorf("failed to load session: %w", err)
	}
	return nil
}

func (a *App) close() error {
	if a.ownsStore && a.Store != nil {
		err := a.Store.Close()
		a.Store = nil
		return err
	}
	return nil
}

func (a *App) submission() *submission.Service {
	return submission.NewService(a.Client, a.Monitor, a.Store.Tasks(), a.Store.Reference(), a.Log,
		submission.WithRemoteTimeout(a.Config.SubmitTimeout))
}

// userID is the signed-in user, or "" when working anonymously offline.
func (a *App) userID() string {
	if a.session == nil {
		return ""
	}
	return a.session.User.ID
}

// NewRootCmd builds the clerk command tree around app.
func NewRootCmd(app *App) *cobra.Command {
	if app.Config == nil {
		app.Config = config.LoadClient()
	}

	root := &cobra.Command{
		Use:           "clerk",
		Short:         "SGS field client for ground check QC",
		Long:          "clerk captures ground checks at the TPH, saves them on the device and submits them to the SGS server when it is reachable.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Out == nil {
				app.Out = cmd.OutOrStdout()
			}
			return app.init(cmd.Context())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.close()
		},
	}

	root.PersistentFlags().StringVar(&app.Config.ServerURL, "server", app.Config.ServerURL, "SGS server base URL")
	root.PersistentFlags().StringVar(&app.Config.DataPath, "data", app.Config.DataPath, "device database path")

	root.AddCommand(loginCmd(app))
	root.AddCommand(logoutCmd(app))
	root.AddCommand(whoamiCmd(app))
	root.AddCommand(syncReferenceCmd(app))
	root.AddCommand(referenceCmd(app))
	root.AddCommand(captureCmd(app))
	root.AddCommand(signCmd(app))
	root.AddCommand(historyCmd(app))
	root.AddCommand(showCmd(app))
	root.AddCommand(renderCmd(app))
	root.AddCommand(statusCmd(app))
	root.AddCommand(watchCmd(app))

	return root
}
