package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/todo-tracker/internal/client"
)

// fakeAPI is an in-memory todo API, newest first like the server.
type fakeAPI struct {
	mu        sync.Mutex
	todos     []client.Todo
	seq       int
	lists     int
	failWith  error
	listError error
}

func (f *fakeAPI) ListTodos(context.Context) ([]client.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.listError != nil {
		return nil, f.listError
	}
	return append([]client.Todo(nil), f.todos...), nil
}

func (f *fakeAPI) CreateTodo(_ context.Context, title string) (*client.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.seq++
	t := client.Todo{ID: fmt.Sprintf("id-%d", f.seq), Title: title, CreatedAt: time.Now()}
	f.todos = append([]client.Todo{t}, f.todos...)
	return &t, nil
}

func (f *fakeAPI) UpdateTodo(_ context.Context, id string, upd client.TodoUpdate) (*client.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	for i := range f.todos {
		if f.todos[i].ID == id {
			if upd.Title != nil {
				f.todos[i].Title = *upd.Title
			}
			if upd.IsCompleted != nil {
				f.todos[i].IsCompleted = *upd.IsCompleted
			}
			t := f.todos[i]
			return &t, nil
		}
	}
	return nil, client.ErrNotFound
}

func (f *fakeAPI) DeleteTodo(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	for i := range f.todos {
		if f.todos[i].ID == id {
			f.todos = append(f.todos[:i], f.todos[i+1:]...)
			return nil
		}
	}
	return client.ErrNotFound
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send feeds msg to the model and returns the updated model and command.
func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

// settle runs cmd and feeds its message back until no command remains.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return m
		}
		m, cmd = send(t, m, msg)
	}
	return m
}

func loaded(t *testing.T, api *fakeAPI) Model {
	t.Helper()
	m := New(context.Background(), api)
	return settle(t, m, m.Init())
}

func titles(m Model) []string {
	out := []string{}
	for _, it := range m.list.Items() {
		out = append(out, it.(todoItem).todo.Title)
	}
	return out
}

func TestModel_LoadsList(t *testing.T) {
	api := &fakeAPI{todos: []client.Todo{{ID: "2", Title: "newer"}, {ID: "1", Title: "older", IsCompleted: true}}}
	m := loaded(t, api)

	assert.Equal(t, []string{"newer", "older"}, titles(m))
	assert.False(t, m.loading)
	view := m.View()
	assert.Contains(t, view, "newer")
	assert.Contains(t, view, "older")
}

func TestModel_ToggleTracksInFlightStatusAndRefetches(t *testing.T) {
	api := &fakeAPI{todos: []client.Todo{{ID: "1", Title: "Buy milk"}}}
	m := loaded(t, api)
	listsBefore := api.lists

	m, cmd := send(t, m, keyPress(" "))
	require.NotNil(t, cmd)
	assert.Equal(t, statusUpdating, m.status["1"])
	assert.Contains(t, m.View(), "updating")

	// a second toggle while the first is in flight is ignored
	m, again := send(t, m, keyPress(" "))
	assert.Nil(t, again)

	m = settle(t, m, cmd)
	assert.Empty(t, m.status)
	assert.Equal(t, listsBefore+1, api.lists, "list refetched after success")
	assert.True(t, m.list.Items()[0].(todoItem).todo.IsCompleted)
}

func TestModel_FailedMutationClearsStatusWithoutRefetch(t *testing.T) {
	api := &fakeAPI{todos: []client.Todo{{ID: "1", Title: "Buy milk"}}}
	m := loaded(t, api)
	listsBefore := api.lists
	api.failWith = errors.New("boom")

	m, cmd := send(t, m, keyPress("d"))
	assert.Equal(t, statusDeleting, m.status["1"])

	m = settle(t, m, cmd)
	assert.Empty(t, m.status)
	assert.Equal(t, listsBefore, api.lists)
	assert.Equal(t, "Failed to delete todo", m.notice)
	assert.Equal(t, []string{"Buy milk"}, titles(m))
}

func TestModel_AddAndEdit(t *testing.T) {
	api := &fakeAPI{}
	m := loaded(t, api)

	m, _ = send(t, m, keyPress("a"))
	require.Equal(t, modeAdding, m.mode)

	m, _ = send(t, m, keyPress("enter"))
	assert.Equal(t, "Title cannot be empty", m.inputErr)

	m, _ = send(t, m, keyPress("Buy milk"))
	m, cmd := send(t, m, keyPress("enter"))
	assert.True(t, m.creating)
	assert.Equal(t, modeNone, m.mode)

	m = settle(t, m, cmd)
	assert.False(t, m.creating)
	assert.Equal(t, []string{"Buy milk"}, titles(m))

	m, _ = send(t, m, keyPress("e"))
	require.Equal(t, modeEditing, m.mode)
	assert.Equal(t, "Buy milk", m.input.Value())

	m.input.SetValue("Buy oat milk")
	m, cmd = send(t, m, keyPress("enter"))
	assert.Equal(t, statusUpdating, m.status["id-1"])

	m = settle(t, m, cmd)
	assert.Equal(t, []string{"Buy oat milk"}, titles(m))
	assert.Empty(t, m.status)
}

func TestModel_EscCancelsInput(t *testing.T) {
	m := loaded(t, &fakeAPI{})
	m, _ = send(t, m, keyPress("a"))
	m, cmd := send(t, m, keyPress("esc"))

	assert.Nil(t, cmd)
	assert.Equal(t, modeNone, m.mode)
}

func TestModel_SessionExpired(t *testing.T) {
	api := &fakeAPI{todos: []client.Todo{{ID: "1", Title: "Buy milk"}}}
	m := loaded(t, api)
	api.failWith = client.ErrUnauthorized

	m, cmd := send(t, m, keyPress(" "))
	m, cmd = send(t, m, cmd())

	assert.True(t, m.LoginRequired())
	assert.Equal(t, sessionExpiredText, m.notice)
	assert.Contains(t, m.View(), sessionExpiredText)
	assert.Empty(t, m.status)
	require.NotNil(t, cmd)

	// further actions are ignored while waiting to quit
	_, ignored := send(t, m, keyPress("d"))
	assert.Nil(t, ignored)

	start := time.Now()
	msg := cmd()
	assert.GreaterOrEqual(t, time.Since(start), expiryDelay-50*time.Millisecond)
	_, quit := send(t, m, msg)
	require.NotNil(t, quit)
	assert.IsType(t, tea.QuitMsg{}, quit())
}

func TestModel_InitialLoadUnauthorized(t *testing.T) {
	m := New(context.Background(), &fakeAPI{listError: client.ErrUnauthorized})
	m, cmd := send(t, m, m.Init()())

	assert.True(t, m.LoginRequired())
	assert.NotNil(t, cmd)
}

func TestModel_NotFoundRefetches(t *testing.T) {
	api := &fakeAPI{todos: []client.Todo{{ID: "1", Title: "gone soon"}}}
	m := loaded(t, api)
	api.todos = nil

	m, cmd := send(t, m, keyPress(" "))
	m = settle(t, m, cmd)

	assert.Equal(t, "Todo not found", m.notice)
	assert.Empty(t, titles(m))
}
