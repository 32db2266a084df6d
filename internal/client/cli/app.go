package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/api"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/client"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/config"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/media"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/migrator"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/services"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/session"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/tasks"
	"github.com/ReloopAI/vibecut-frontend-2/internal/logging"
)

// App holds everything a CLI session needs.
type App struct {
	config *config.Config
	stores *client.Stores
	sess   *session.Session
	api    *api.Client
	auth   services.AuthService
	editor services.EditorService
	media  *media.Manager
	tasks  *tasks.Group
	log    logging.Logger

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the local store selected by cfg, brings stored projects up
// to the current schema and wires the services.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	stores, err := client.OpenStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if _, err := migrator.NewRunner(stores.Projects, cfg.DataDir, log).Run(ctx, migrator.Builtin()); err != nil {
		_ = stores.Close()
		return nil, fmt.Errorf("failed to migrate local projects: %w", err)
	}

	app, err := newApp(cfg, stores, log, in, out)
	if err != nil {
		_ = stores.Close()
		return nil, err
	}
	return app, nil
}

func newApp(cfg *config.Config, stores *client.Stores, log logging.Logger, in io.Reader, out io.Writer) (*App, error) {
	sess := session.New(stores.Metadata)

	opts := []api.Option{api.WithLogger(log)}
	if cfg.HTTPTimeout > 0 {
		opts = append(opts, api.WithTimeout(cfg.HTTPTimeout))
	}
	apiClient, err := api.New(cfg.APIBaseURL, sess, opts...)
	if err != nil {
		return nil, err
	}

	group := tasks.NewGroup(log)
	manager := media.NewManager(stores.Media, apiClient, sess,
		media.WithLogger(log),
		media.WithTasks(group),
		media.WithTransferWrapper(progressWrapper(out)),
	)
	editor := services.NewEditorService(apiClient, stores.Projects, manager, sess, log)
	manager.Attach(editor)

	return &App{
		config: cfg,
		stores: stores,
		sess:   sess,
		api:    apiClient,
		auth:   services.NewAuthService(apiClient, sess, log),
		editor: editor,
		media:  manager,
		tasks:  group,
		log:    log,
		reader: bufio.NewReader(in),
		out:    out,
	}, nil
}

// Close waits for background uploads and releases the store.
func (a *App) Close() error {
	a.tasks.Wait()
	return a.stores.Close()
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) isLoggedIn() bool {
	return a.sess.Token() != ""
}

// status is the prompt decoration: user, workspace and open project.
func (a *App) status(ctx context.Context) string {
	s := "signed out"
	if u := a.auth.User(); u != nil && a.isLoggedIn() {
		s = u.Email
		if ws, err := a.sess.WorkspaceID(ctx); err == nil && ws != "" {
			s += "@" + ws
		}
	}
	if p, ok := a.editor.Active(); ok {
		s += " " + p.Metadata.Name
		if a.editor.IsDirty() {
			s += "*"
		}
	}
	return s
}
