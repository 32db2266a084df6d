package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ReloopAI/vibecut-frontend-2/internal/client/api"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/media"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/models"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/services"
	"github.com/ReloopAI/vibecut-frontend-2/internal/client/timeline"
	"github.com/ReloopAI/vibecut-frontend-2/internal/common"
)

var (
	errNotLoggedIn = errors.New("not logged in, use 'login' first")
	errNoProject   = errors.New("no open project, use 'new' or 'open' first")
)

// signedLinkTTL is how long a signed download link is reused.
const signedLinkTTL = 10 * time.Minute

// getSimpleText and getPassword are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

func usage(cmd string) error {
	return fmt.Errorf("usage: %s", cmd)
}

// describe turns err into a message for the user.
func describe(err error) string {
	switch api.Classify(err) {
	case api.KindSessionExpired:
		return "Session expired, please log in again."
	case api.KindNoWorkspace:
		return "Your account has no workspace yet."
	case api.KindConflict:
		conflict, _ := api.IsConflict(err)
		return fmt.Sprintf("The cloud copy changed (server version %d).", conflict.ServerVersion)
	}
	var reqErr *api.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Message
	}
	return err.Error()
}

func (a *App) activeProjectID() (string, bool) {
	p, ok := a.editor.Active()
	return p.Metadata.ID, ok
}

func (a *App) Login(ctx context.Context, args []string) error {
	username := ""
	if len(args) > 0 {
		username = args[0]
	} else {
		var err error
		if username, err = getSimpleText(a.reader, "Username", a.out); err != nil {
			return err
		}
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.Login(ctx, username, string(password)); err != nil {
		return errors.New(a.auth.LastError())
	}

	a.printf("Logged in as %s.\n", a.auth.User().Email)
	a.announceWorkspace(ctx)
	return nil
}

func (a *App) Register(ctx context.Context) error {
	if initialized, err := a.api.UserInit(ctx); err == nil && !initialized {
		a.println("First account on this backend: it will own the organisation.")
	}

	var req models.RegisterRequest
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Email", &req.Email},
		{"First name", &req.Firstname},
		{"Last name", &req.Lastname},
		{"Organisation (optional)", &req.OrganisationName},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	req.Password = string(password)

	if err := a.auth.Register(ctx, req); err != nil {
		return errors.New(a.auth.LastError())
	}

	a.printf("Welcome, %s!\n", req.Firstname)
	a.announceWorkspace(ctx)
	return nil
}

// announceWorkspace resolves the editor scope right after signing in so the
// first editor call does not have to.
func (a *App) announceWorkspace(ctx context.Context) {
	ws, err := a.api.ResolveWorkspace(ctx, a.sess.Token())
	if err != nil {
		a.printf("No workspace selected: %s\n", describe(err))
		return
	}
	a.printf("Workspace: %s\n", ws)
}

func (a *App) Logout(ctx context.Context) error {
	a.auth.Logout(ctx)
	a.println("Logged out.")
	return nil
}

func (a *App) Status(ctx context.Context) error {
	a.printf("Account:   %s\n", a.auth.Status())
	if u := a.auth.User(); u != nil {
		a.printf("User:      %s (%s)\n", u.Email, u.ID)
	}
	if exp, ok := a.sess.TokenExpiry(); ok {
		a.printf("Token:     expires %s\n", exp.Local().Format(time.RFC1123))
	}
	if ws, err := a.sess.WorkspaceID(ctx); err == nil && ws != "" {
		a.printf("Workspace: %s\n", ws)
	}
	if a.isLoggedIn() {
		if org, err := a.api.Organisation(ctx, a.sess.Token()); err == nil && org.Name != "" {
			a.printf("Org:       %s\n", org.Name)
		}
	}

	p, ok := a.editor.Active()
	if !ok {
		a.println("Project:   none")
		return nil
	}
	state := "saved"
	if a.editor.IsDirty() {
		state = "unpushed changes"
	}
	a.printf("Project:   %s (%s), version %d, %s\n", p.Metadata.Name, p.Metadata.ID, p.Version, state)
	a.printf("Duration:  %s\n", timeline.FormatTimeCode(p.Metadata.Duration, timeline.FormatHHMMSSFF, float64(p.Settings.FPS)))
	return nil
}

func (a *App) Workspaces(ctx context.Context) error {
	list, err := a.auth.Workspaces(ctx)
	if err != nil {
		return err
	}
	current, _ := a.sess.WorkspaceID(ctx)

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, w := range list {
		marker := " "
		if w.ID == current {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", marker, w.ID, w.Name)
	}
	return tw.Flush()
}

func (a *App) Use(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("use <workspaceId>")
	}
	if err := a.auth.SelectWorkspace(ctx, args[0]); err != nil {
		if errors.Is(err, services.ErrUnknownWorkspace) {
			return fmt.Errorf("unknown workspace %q", args[0])
		}
		return err
	}
	a.printf("Using workspace %s.\n", args[0])
	return nil
}

func (a *App) New(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("new <name>")
	}
	p, err := a.editor.CreateProject(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	a.media.ClearAll()
	a.printf("Created project %s (%s).\n", p.Metadata.Name, p.Metadata.ID)
	return nil
}

func (a *App) Open(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("open <projectId>")
	}
	p, err := a.editor.OpenProject(ctx, args[0])
	if err != nil {
		return err
	}
	return a.loadMedia(ctx, p)
}

func (a *App) loadMedia(ctx context.Context, p models.Project) error {
	a.media.ClearAll()
	if err := a.media.LoadProjectMedia(ctx, p.Metadata.ID); err != nil {
		return err
	}
	a.printf("Opened %s, version %d, %d media assets.\n", p.Metadata.Name, p.Version, len(a.media.Assets()))
	return nil
}

func (a *App) Projects(ctx context.Context) error {
	list, err := a.editor.ListLocalProjects(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("No local projects.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, p := range list {
		fmt.Fprintf(tw, "%s\t%s\tv%d\t%s\n", p.Metadata.ID, p.Metadata.Name, p.Version, p.Metadata.UpdatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func (a *App) Cloud(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	resp, err := a.editor.ListCloudProjects(ctx, api.ListProjectsParams{Search: strings.Join(args, " ")})
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, p := range resp.Items {
		fmt.Fprintf(tw, "%s\t%s\tv%d\t%s\n", p.ID, p.Name, p.Version, p.UpdatedAt)
	}
	fmt.Fprintf(tw, "%d of %d projects\n", len(resp.Items), resp.Total)
	return tw.Flush()
}

func (a *App) Import(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("import <path>...")
	}
	projectID, ok := a.activeProjectID()
	if !ok {
		return errNoProject
	}

	for _, path := range args {
		asset, err := media.FromFile(path)
		if err != nil {
			return err
		}
		added, err := a.media.Add(ctx, projectID, asset)
		if err != nil {
			return err
		}
		a.printf("Imported %s as %s.\n", added.Name, added.ID)
	}
	if !a.isLoggedIn() {
		a.println("Not logged in: media stays local until the next upload.")
	}
	return nil
}

func (a *App) Media(ctx context.Context) error {
	if _, ok := a.activeProjectID(); !ok {
		return errNoProject
	}
	assets := a.media.Assets()
	if len(assets) == 0 {
		a.println("No media.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	for _, m := range assets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d B\t%s\n", m.ID, m.Name, m.Type, m.Size, m.SyncLabel())
	}
	return tw.Flush()
}

// Sync retries the upload of every local-only asset.
func (a *App) Sync(ctx context.Context) error {
	projectID, ok := a.activeProjectID()
	if !ok {
		return errNoProject
	}
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	n := 0
	for _, m := range a.media.Assets() {
		if m.IsSynced() {
			continue
		}
		a.media.SyncMediaAssetToCloud(ctx, projectID, m.ID)
		n++
	}
	a.printf("Checked %d assets.\n", n)
	return nil
}

func (a *App) Rm(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("rm <mediaId>")
	}
	projectID, ok := a.activeProjectID()
	if !ok {
		return errNoProject
	}
	if _, ok := a.media.Asset(args[0]); !ok {
		return fmt.Errorf("no media %q", args[0])
	}
	a.media.Remove(ctx, projectID, args[0])
	a.printf("Removed %s.\n", args[0])
	return nil
}

func (a *App) Place(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return usage("place <mediaId> [start]")
	}
	p, ok := a.editor.Active()
	if !ok {
		return errNoProject
	}
	asset, ok := a.media.Asset(args[0])
	if !ok {
		return fmt.Errorf("no media %q", args[0])
	}

	start := 0.0
	if len(args) == 2 {
		t, err := parseStart(args[1], float64(p.Settings.FPS))
		if err != nil {
			return err
		}
		start = t
	}

	e, err := a.editor.AddMediaElement(asset, start)
	if err != nil {
		return err
	}
	a.printf("Placed %s at %s.\n", asset.Name, timeline.FormatTimeCode(e.StartTime, timeline.FormatHHMMSSCS, float64(p.Settings.FPS)))
	return nil
}

// Link prints a signed download URL for a synced asset.
func (a *App) Link(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("link <mediaId>")
	}
	asset, ok := a.media.Asset(args[0])
	if !ok {
		return fmt.Errorf("no media %q", args[0])
	}
	key := asset.CloudFileKey()
	if key == "" {
		return fmt.Errorf("%s is not uploaded yet", asset.Name)
	}

	previews := a.media.Previews()
	if cached, ok := previews.Get(asset.ID, "link"); ok {
		if exp, ok := previews.Get(asset.ID, "link-expires"); ok {
			if at, err := time.Parse(time.RFC3339, exp); err == nil && time.Now().Before(at) {
				a.println(cached)
				return nil
			}
		}
	}

	signed, err := a.api.SignFileByKey(ctx, key, false)
	if err != nil {
		return err
	}
	previews.Put(asset.ID, "link", signed.URL)
	previews.Put(asset.ID, "link-expires", time.Now().Add(signedLinkTTL).Format(time.RFC3339))
	a.println(signed.URL)
	return nil
}

func (a *App) Save(ctx context.Context) error {
	if err := a.editor.SaveLocal(ctx); err != nil {
		return err
	}
	a.println("Saved.")
	return nil
}

// Push uploads the open project. On a version conflict the user may
// overwrite the cloud copy.
func (a *App) Push(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	if err := a.editor.SaveLocal(ctx); err != nil {
		return err
	}

	resp, err := a.editor.PushToCloud(ctx)
	if conflict, ok := api.IsConflict(err); ok {
		a.println(describe(err))
		if !Confirm(a.reader, "Overwrite the cloud copy with your version?", a.out) {
			a.println("Push cancelled. Use 'pull' to fetch the cloud copy.")
			return nil
		}
		resp, err = a.editor.ResolveConflictOverwrite(ctx, conflict)
	}
	if err != nil {
		return err
	}
	a.printf("Pushed, cloud version %d.\n", resp.Version)
	return nil
}

func (a *App) Pull(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("pull <projectId>")
	}
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	p, err := a.editor.PullFromCloud(ctx, args[0])
	if err != nil {
		return err
	}
	return a.loadMedia(ctx, p)
}

func (a *App) DeleteCloud(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("delete-cloud <projectId>")
	}
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	if !Confirm(a.reader, fmt.Sprintf("Delete cloud project %s?", args[0]), a.out) {
		return nil
	}
	if err := a.editor.DeleteCloudProject(ctx, args[0]); err != nil {
		return err
	}
	a.println("Deleted.")
	return nil
}

// parseStart accepts plain seconds or a time code, snapped to a frame.
func parseStart(s string, fps float64) (float64, error) {
	t, err := strconv.ParseFloat(s, 64)
	if err != nil {
		format, ok := timeline.GuessTimeCodeFormat(s)
		if !ok {
			return 0, fmt.Errorf("bad start time %q", s)
		}
		if t, ok = timeline.ParseTimeCode(s, format, fps); !ok {
			return 0, fmt.Errorf("bad start time %q", s)
		}
	}
	if t < 0 {
		return 0, fmt.Errorf("start time %q is negative", s)
	}
	return timeline.SnapTimeToFrame(t, fps), nil
}
