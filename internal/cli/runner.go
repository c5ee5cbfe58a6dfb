// Package cli implements the `todo` command: one-shot subcommands and
// the interactive view.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Tomlord1122/todo-tracker/internal/client"
	"github.com/Tomlord1122/todo-tracker/internal/tui"
)

// Options carries what every subcommand needs.
type Options struct {
	APIURL      string
	Credentials *client.CredentialStore
	In          io.Reader
	Out         io.Writer
	Err         io.Writer
}

// runTUI is swapped in tests to avoid taking over the terminal.
var runTUI = tui.Run

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
// With no arguments it opens the interactive view.
func Run(ctx context.Context, args []string, opt Options) int {
	if len(args) == 0 {
		return doInteractive(ctx, opt)
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.Out)
		return 0

	case "login":
		return doLogin(ctx, opt)

	case "logout":
		return doLogout(opt)

	case "list", "ls":
		return withClient(opt, func(c *client.Client) int { return doList(ctx, c, opt) })

	case "add":
		if len(a) == 0 {
			fail(opt.Err, "usage: todo add <title...>")
			return 2
		}
		return withClient(opt, func(c *client.Client) int { return doAdd(ctx, c, opt, strings.Join(a, " ")) })

	case "done", "undo":
		if len(a) != 1 {
			fail(opt.Err, fmt.Sprintf("usage: todo %s <index|id>", cmd))
			return 2
		}
		return withClient(opt, func(c *client.Client) int { return doSetCompleted(ctx, c, opt, a[0], cmd == "done") })

	case "rename":
		if len(a) < 2 {
			fail(opt.Err, "usage: todo rename <index|id> <title...>")
			return 2
		}
		return withClient(opt, func(c *client.Client) int { return doRename(ctx, c, opt, a[0], strings.Join(a[1:], " ")) })

	case "rm":
		if len(a) != 1 {
			fail(opt.Err, "usage: todo rm <index|id>")
			return 2
		}
		return withClient(opt, func(c *client.Client) int { return doRemove(ctx, c, opt, a[0]) })
	}

	fail(opt.Err, "unknown subcommand: "+cmd)
	fmt.Fprintln(opt.Err)
	PrintHelp(opt.Err)
	return 2
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `todo - your todos, from the terminal

Usage:
  todo [--api URL] [subcommand] [args]

Without a subcommand, todo opens the interactive list
(a add, e edit, space toggle, d delete, r refresh, q quit).

Subcommands:
  list                      List todos, newest first
  add <title...>            Add a todo
  done <index|id>           Mark a todo as completed
  undo <index|id>           Mark a todo as not completed
  rename <index|id> <title> Change a todo's title
  rm <index|id>             Delete a todo
  login                     Store a session token
  logout                    Forget the stored session token

Indexes are the 1-based positions printed by "todo list".
The TODO_TOKEN environment variable overrides the stored token.
`)
}

// withClient loads the session token and hands a client to fn.
func withClient(opt Options, fn func(*client.Client) int) int {
	ti, err := opt.Credentials.Token()
	if err != nil {
		fail(opt.Err, err.Error())
		return 1
	}
	c := client.New(opt.APIURL, "")
	if ti == nil {
		notLoggedIn(opt, c)
		return 1
	}
	return fn(client.New(opt.APIURL, ti.Token))
}

func doInteractive(ctx context.Context, opt Options) int {
	return withClient(opt, func(c *client.Client) int {
		loginRequired, err := runTUI(ctx, c)
		if err != nil {
			fail(opt.Err, "tui: "+err.Error())
			return 1
		}
		if loginRequired {
			fail(opt.Err, "Session expired. Please log in again.")
			fmt.Fprintln(opt.Err, mutedStyle.Render("Sign in at "+c.LoginURL()+", then run `todo login`."))
			return 1
		}
		return 0
	})
}

func doAdd(ctx context.Context, c *client.Client, opt Options, title string) int {
	todo, err := c.CreateTodo(ctx, strings.TrimSpace(title))
	if err != nil {
		return report(opt, c, "add", err)
	}
	ok(opt.Out, "added "+shortID(todo.ID))
	return 0
}

func doSetCompleted(ctx context.Context, c *client.Client, opt Options, ref string, completed bool) int {
	todo, code := resolve(ctx, c, opt, ref)
	if code != 0 {
		return code
	}
	if _, err := c.UpdateTodo(ctx, todo.ID, client.TodoUpdate{IsCompleted: &completed}); err != nil {
		return report(opt, c, "update", err)
	}
	if completed {
		ok(opt.Out, "completed: "+todo.Title)
	} else {
		ok(opt.Out, "reopened: "+todo.Title)
	}
	return 0
}

func doRename(ctx context.Context, c *client.Client, opt Options, ref, title string) int {
	todo, code := resolve(ctx, c, opt, ref)
	if code != 0 {
		return code
	}
	title = strings.TrimSpace(title)
	if _, err := c.UpdateTodo(ctx, todo.ID, client.TodoUpdate{Title: &title}); err != nil {
		return report(opt, c, "rename", err)
	}
	ok(opt.Out, "renamed")
	return 0
}

func doRemove(ctx context.Context, c *client.Client, opt Options, ref string) int {
	todo, code := resolve(ctx, c, opt, ref)
	if code != 0 {
		return code
	}
	if err := c.DeleteTodo(ctx, todo.ID); err != nil {
		return report(opt, c, "remove", err)
	}
	ok(opt.Out, "removed: "+todo.Title)
	return 0
}

// resolve turns a 1-based index or a todo id (or unique id prefix) into
// a todo from the current list.
func resolve(ctx context.Context, c *client.Client, opt Options, ref string) (client.Todo, int) {
	todos, err := c.ListTodos(ctx)
	if err != nil {
		return client.Todo{}, report(opt, c, "list", err)
	}

	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(todos) {
			fail(opt.Err, fmt.Sprintf("index out of range: have %d, got %d", len(todos), n))
			fmt.Fprintln(opt.Err, mutedStyle.Render("Hint: run `todo list` to see valid indexes"))
			return client.Todo{}, 2
		}
		return todos[n-1], 0
	}

	var matches []client.Todo
	for _, t := range todos {
		if t.ID == ref {
			return t, 0
		}
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], 0
	case 0:
		fail(opt.Err, "todo not found: "+ref)
	default:
		fail(opt.Err, "ambiguous id prefix: "+ref)
	}
	return client.Todo{}, 1
}

func report(opt Options, c *client.Client, op string, err error) int {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		notLoggedIn(opt, c)
	case errors.Is(err, client.ErrNotFound):
		fail(opt.Err, op+": todo not found")
	case errors.As(err, &apiErr):
		fail(opt.Err, op+": "+apiErr.Error())
	default:
		fail(opt.Err, op+": "+err.Error())
	}
	return 1
}

func notLoggedIn(opt Options, c *client.Client) {
	fail(opt.Err, "not logged in or session expired")
	fmt.Fprintln(opt.Err, mutedStyle.Render("Sign in at "+c.LoginURL()+", then run `todo login`."))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
