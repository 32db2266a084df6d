package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. *App satisfies it.
type execIface interface {
	isLoggedIn() bool

	Login(ctx context.Context, args []string) error
	Register(ctx context.Context) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) error
	Workspaces(ctx context.Context) error
	Use(ctx context.Context, args []string) error

	New(ctx context.Context, args []string) error
	Open(ctx context.Context, args []string) error
	Projects(ctx context.Context) error
	Save(ctx context.Context) error

	Import(ctx context.Context, args []string) error
	Media(ctx context.Context) error
	Sync(ctx context.Context) error
	Rm(ctx context.Context, args []string) error
	Place(ctx context.Context, args []string) error
	Link(ctx context.Context, args []string) error

	Cloud(ctx context.Context, args []string) error
	Push(ctx context.Context) error
	Pull(ctx context.Context, args []string) error
	DeleteCloud(ctx context.Context, args []string) error
}

type command struct {
	name    string
	alias   string
	usage   string
	account bool
	run     func(ctx context.Context, a execIface, args []string) error
}

func noArgs(f func(execIface, context.Context) error) func(context.Context, execIface, []string) error {
	return func(ctx context.Context, a execIface, _ []string) error { return f(a, ctx) }
}

var commands = []command{
	{name: "register", usage: "create an account", run: noArgs(execIface.Register)},
	{name: "login", usage: "login [username]", run: func(ctx context.Context, a execIface, args []string) error { return a.Login(ctx, args) }},
	{name: "status", alias: "st", usage: "show account and project state", run: noArgs(execIface.Status)},
	{name: "new", usage: "new <name>", run: func(ctx context.Context, a execIface, args []string) error { return a.New(ctx, args) }},
	{name: "open", usage: "open <projectId>", run: func(ctx context.Context, a execIface, args []string) error { return a.Open(ctx, args) }},
	{name: "projects", alias: "ls", usage: "list local projects", run: noArgs(execIface.Projects)},
	{name: "save", usage: "save the open project locally", run: noArgs(execIface.Save)},
	{name: "import", usage: "import <path>...", run: func(ctx context.Context, a execIface, args []string) error { return a.Import(ctx, args) }},
	{name: "media", usage: "list media of the open project", run: noArgs(execIface.Media)},
	{name: "rm", usage: "rm <mediaId>", run: func(ctx context.Context, a execIface, args []string) error { return a.Rm(ctx, args) }},
	{name: "place", usage: "place <mediaId> [start]", run: func(ctx context.Context, a execIface, args []string) error { return a.Place(ctx, args) }},

	{name: "workspaces", alias: "ws", usage: "list workspaces", account: true, run: noArgs(execIface.Workspaces)},
	{name: "use", usage: "use <workspaceId>", account: true, run: func(ctx context.Context, a execIface, args []string) error { return a.Use(ctx, args) }},
	{name: "cloud", usage: "cloud [search]", account: true, run: func(ctx context.Context, a execIface, args []string) error { return a.Cloud(ctx, args) }},
	{name: "sync", usage: "upload local-only media", account: true, run: noArgs(execIface.Sync)},
	{name: "link", usage: "link <mediaId>", account: true, run: func(ctx context.Context, a execIface, args []string) error { return a.Link(ctx, args) }},
	{name: "push", usage: "push the open project", account: true, run: noArgs(execIface.Push)},
	{name: "pull", usage: "pull <projectId>", account: true, run: func(ctx context.Context, a execIface, args []string) error { return a.Pull(ctx, args) }},
	{name: "delete-cloud", usage: "delete-cloud <projectId>", account: true, run: func(ctx context.Context, a execIface, args []string) error { return a.DeleteCloud(ctx, args) }},
	{name: "logout", usage: "log out", account: true, run: noArgs(execIface.Logout)},
}

func lookup(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name || (c.alias != "" && c.alias == name) {
			return c, true
		}
	}
	return command{}, false
}

func printHelp(loggedIn bool) {
	for _, c := range commands {
		if c.account && !loggedIn {
			continue
		}
		name := c.name
		if c.alias != "" {
			name += " (" + c.alias + ")"
		}
		printlnFn(fmt.Sprintf("  %-20s %s", name, c.usage))
	}
	printlnFn(fmt.Sprintf("  %-20s %s", "exit (quit)", "leave the program"))
}

// runREPL reads commands line by line from reader until EOF, "exit" or ctx
// is done. Command prompts read from the same reader, so it must be the one
// the App was built with.
//
// Handler errors are reported and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for ctx.Err() == nil {
		printlnFn(fmt.Sprintf("vc [%s]> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				return
			}
			continue
		}

		name, args := parts[0], parts[1:]
		switch name {
		case "help":
			printHelp(a.isLoggedIn())
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			dispatch(ctx, a, name, args)
		}

		if err != nil {
			return
		}
	}
}

func dispatch(ctx context.Context, a execIface, name string, args []string) {
	c, ok := lookup(name)
	if !ok {
		printlnFn("Unknown command:", name)
		return
	}
	if c.account && !a.isLoggedIn() {
		printlnFn(errNotLoggedIn.Error())
		return
	}
	if err := c.run(ctx, a, args); err != nil {
		printlnFn("Error:", describe(err))
	}
}
