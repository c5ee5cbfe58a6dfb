package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/Tomlord1122/todo-tracker/internal/client"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

func doLogin(ctx context.Context, opt Options) int {
	anon := client.New(opt.APIURL, "")
	fmt.Fprintln(opt.Out, "Sign in at "+anon.LoginURL()+" and copy your session token.")

	token, err := readToken(opt)
	if err != nil {
		fail(opt.Err, "read token: "+err.Error())
		return 1
	}
	if token == "" {
		fail(opt.Err, "login: empty token")
		return 2
	}

	userID, err := client.New(opt.APIURL, token).CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			fail(opt.Err, "login: token rejected by server")
			return 1
		}
		fail(opt.Err, "login: "+err.Error())
		return 1
	}

	if err := opt.Credentials.Save(token); err != nil {
		fail(opt.Err, "save credentials: "+err.Error())
		return 1
	}
	ok(opt.Out, "logged in as "+userID)
	return 0
}

func doLogout(opt Options) int {
	if err := opt.Credentials.Delete(); err != nil {
		fail(opt.Err, "logout: "+err.Error())
		return 1
	}
	ok(opt.Out, "logged out")
	if os.Getenv(client.TokenEnv) != "" {
		fmt.Fprintln(opt.Err, mutedStyle.Render(client.TokenEnv+" is still set and will be used"))
	}
	return 0
}

// readToken reads without echo from a terminal, or one line otherwise.
func readToken(opt Options) (string, error) {
	fmt.Fprint(opt.Out, "Session token: ")

	if f, isFile := opt.In.(*os.File); isFile && isTerminal(int(f.Fd())) {
		b, err := readPassword(int(f.Fd()))
		fmt.Fprintln(opt.Out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(opt.In).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
