package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/todo-tracker/internal/auth"
	"github.com/Tomlord1122/todo-tracker/internal/client"
	"github.com/Tomlord1122/todo-tracker/internal/config"
	"github.com/Tomlord1122/todo-tracker/internal/logging"
	"github.com/Tomlord1122/todo-tracker/internal/repository"
	"github.com/Tomlord1122/todo-tracker/internal/server"
	"github.com/Tomlord1122/todo-tracker/internal/service"
	"github.com/Tomlord1122/todo-tracker/internal/tui"
)

const secret = "cli-test-secret"

type upHealth struct{}

func (upHealth) Health() map[string]string { return map[string]string{"status": "up"} }

type harness struct {
	api   *httptest.Server
	creds *client.CredentialStore
	out   *bytes.Buffer
	err   *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv(client.TokenEnv, "")

	users := repository.NewMemoryUserRepository()
	s := server.New(&config.Config{SessionSecret: secret, LoginURL: "/login"}, server.Deps{
		Todos:    service.NewTodoService(repository.NewMemoryTodoRepository(), users),
		Profiles: service.NewProfileService(repository.NewMemoryProfileRepository(), users, nil, 0, logging.Discard()),
		DB:       upHealth{},
		Logger:   logging.Discard(),
	})
	api := httptest.NewServer(s.RegisterRoutes())
	t.Cleanup(api.Close)

	return &harness{
		api:   api,
		creds: client.NewCredentialStore(filepath.Join(t.TempDir(), "credentials.json")),
		out:   &bytes.Buffer{},
		err:   &bytes.Buffer{},
	}
}

func (h *harness) run(args ...string) int {
	return h.runWithInput("", args...)
}

func (h *harness) runWithInput(stdin string, args ...string) int {
	h.out.Reset()
	h.err.Reset()
	return Run(context.Background(), args, Options{
		APIURL:      h.api.URL,
		Credentials: h.creds,
		In:          strings.NewReader(stdin),
		Out:         h.out,
		Err:         h.err,
	})
}

func (h *harness) login(t *testing.T, userID string) {
	t.Helper()
	tok, err := auth.NewToken([]byte(secret), auth.Session{UserID: userID}, time.Hour)
	require.NoError(t, err)
	require.Equal(t, 0, h.runWithInput(tok+"\n", "login"), h.err.String())
	assert.Contains(t, h.out.String(), "logged in as "+userID)
}

func TestRun_RequiresLogin(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 1, h.run("list"))
	assert.Contains(t, h.err.String(), "not logged in")
	assert.Contains(t, h.err.String(), h.api.URL+"/api/login")
}

func TestRun_LoginRejectsBadToken(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, 1, h.runWithInput("nope\n", "login"))
	assert.Contains(t, h.err.String(), "token rejected")

	ti, err := h.creds.Token()
	require.NoError(t, err)
	assert.Nil(t, ti)

	assert.Equal(t, 2, h.runWithInput("\n", "login"))
}

func TestRun_TodoLifecycle(t *testing.T) {
	h := newHarness(t)
	h.login(t, "alice")

	require.Equal(t, 0, h.run("add", "Buy", "milk"), h.err.String())
	require.Equal(t, 0, h.run("add", "Walk dog"), h.err.String())

	require.Equal(t, 0, h.run("list"))
	out := h.out.String()
	assert.Contains(t, out, "Buy milk")
	assert.Less(t, strings.Index(out, "Walk dog"), strings.Index(out, "Buy milk"), "newest first")

	require.Equal(t, 0, h.run("done", "2"), h.err.String())
	assert.Contains(t, h.out.String(), "completed: Buy milk")

	require.Equal(t, 0, h.run("undo", "2"), h.err.String())
	assert.Contains(t, h.out.String(), "reopened: Buy milk")

	require.Equal(t, 0, h.run("rename", "1", "Walk", "the", "dog"), h.err.String())

	require.Equal(t, 0, h.run("rm", "1"), h.err.String())
	assert.Contains(t, h.out.String(), "removed: Walk the dog")

	require.Equal(t, 0, h.run("list"))
	assert.NotContains(t, h.out.String(), "Walk")
	assert.Contains(t, h.out.String(), "Buy milk")
}

func TestRun_ResolveByID(t *testing.T) {
	h := newHarness(t)
	h.login(t, "alice")
	require.Equal(t, 0, h.run("add", "by id"))

	todos, err := client.New(h.api.URL, mustToken(t, "alice")).ListTodos(context.Background())
	require.NoError(t, err)
	require.Len(t, todos, 1)

	require.Equal(t, 0, h.run("done", todos[0].ID[:8]), h.err.String())
	assert.Equal(t, 1, h.run("rm", "ffffffff-0000"))
	assert.Contains(t, h.err.String(), "todo not found")
}

func TestRun_UsageErrors(t *testing.T) {
	h := newHarness(t)
	h.login(t, "alice")

	assert.Equal(t, 2, h.run("add"))
	assert.Equal(t, 2, h.run("done"))
	assert.Equal(t, 2, h.run("rename", "1"))
	assert.Equal(t, 2, h.run("rm", "7"))
	assert.Contains(t, h.err.String(), "index out of range")
	assert.Equal(t, 2, h.run("frobnicate"))
	assert.Contains(t, h.err.String(), "unknown subcommand")
}

func TestRun_ValidationErrorIsReported(t *testing.T) {
	h := newHarness(t)
	h.login(t, "alice")

	assert.Equal(t, 1, h.run("add", strings.Repeat("x", 501)))
	assert.Contains(t, h.err.String(), "too long")
}

func TestRun_Logout(t *testing.T) {
	h := newHarness(t)
	h.login(t, "alice")

	assert.Equal(t, 0, h.run("logout"))
	assert.Equal(t, 1, h.run("list"))
}

func TestRun_InteractiveSessionExpired(t *testing.T) {
	h := newHarness(t)
	h.login(t, "alice")

	orig := runTUI
	t.Cleanup(func() { runTUI = orig })

	var got tui.API
	runTUI = func(_ context.Context, api tui.API) (bool, error) {
		got = api
		return true, nil
	}

	assert.Equal(t, 1, h.run())
	assert.NotNil(t, got)
	assert.Contains(t, h.err.String(), "Session expired. Please log in again.")

	runTUI = func(context.Context, tui.API) (bool, error) { return false, nil }
	assert.Equal(t, 0, h.run())
}

func TestRun_Help(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, 0, h.run("help"))
	assert.Contains(t, h.out.String(), "Subcommands:")
}

func mustToken(t *testing.T, userID string) string {
	t.Helper()
	tok, err := auth.NewToken([]byte(secret), auth.Session{UserID: userID}, time.Hour)
	require.NoError(t, err)
	return tok
}
