// Package tui is the interactive terminal view over the todo API.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Tomlord1122/todo-tracker/internal/client"
	"github.com/Tomlord1122/todo-tracker/internal/schema"
)

// API is the part of *client.Client the view uses.
type API interface {
	ListTodos(ctx context.Context) ([]client.Todo, error)
	CreateTodo(ctx context.Context, title string) (*client.Todo, error)
	UpdateTodo(ctx context.Context, id string, upd client.TodoUpdate) (*client.Todo, error)
	DeleteTodo(ctx context.Context, id string) error
}

const (
	sessionExpiredText = "Session expired. Please log in again."
	expiryDelay        = 500 * time.Millisecond
)

type itemStatus int

const (
	statusUpdating itemStatus = iota + 1
	statusDeleting
)

type inputMode int

const (
	modeNone inputMode = iota
	modeAdding
	modeEditing
)

type todoItem struct {
	todo client.Todo
}

func (i todoItem) Title() string       { return i.todo.Title }
func (i todoItem) Description() string { return "" }
func (i todoItem) FilterValue() string { return i.todo.Title }

// itemDelegate renders one line per todo. status is shared with the
// model, which only ever adds and removes keys.
type itemDelegate struct {
	status map[string]itemStatus
}

func (d itemDelegate) Height() int                         { return 1 }
func (d itemDelegate) Spacing() int                        { return 0 }
func (d itemDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(todoItem)
	if !ok {
		return
	}

	box := mutedStyle.Render(boxUnchecked)
	text := it.todo.Title
	if it.todo.IsCompleted {
		box = successStyle.Render(boxChecked)
		text = doneStyle.Render(text)
	}

	line := box + " " + text
	switch d.status[it.todo.ID] {
	case statusUpdating:
		line += " " + pendingStyle.Render("updating…")
	case statusDeleting:
		line += " " + errorStyle.Render("deleting…")
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintln(w, prefix+line)
}

type todosLoadedMsg struct {
	todos []client.Todo
	err   error
}

// mutationMsg settles a create, update or delete. id is empty for creates.
type mutationMsg struct {
	id  string
	op  string
	err error
}

type sessionExpiredMsg struct{}

type Model struct {
	ctx context.Context
	api API

	list     list.Model
	status   map[string]itemStatus
	creating bool
	loading  bool

	input    textinput.Model
	mode     inputMode
	editID   string
	inputErr string

	notice        string
	loginRequired bool
}

func New(ctx context.Context, api API) Model {
	status := make(map[string]itemStatus)

	l := list.New(nil, itemDelegate{status: status}, 80, 20)
	l.Title = titleStyle.Render("Todos")
	l.SetShowHelp(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.Styles.Title = titleStyle
	l.Styles.HelpStyle = helpStyle
	l.Styles.PaginationStyle = helpStyle
	l.SetStatusBarItemName("todo", "todos")

	bindings := []key.Binding{
		key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	}
	l.AdditionalShortHelpKeys = func() []key.Binding { return bindings }
	l.AdditionalFullHelpKeys = func() []key.Binding { return bindings }

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = schema.MaxTitleLength

	return Model{
		ctx:     ctx,
		api:     api,
		list:    l,
		status:  status,
		input:   ti,
		loading: true,
	}
}

// LoginRequired reports whether the view quit because the session expired.
func (m Model) LoginRequired() bool { return m.loginRequired }

func (m Model) Init() tea.Cmd { return m.fetch() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case todosLoadedMsg:
		m.loading = false
		if msg.err != nil {
			cmd := m.fail("Failed to fetch todos", msg.err)
			return m, cmd
		}
		cmd := m.setTodos(msg.todos)
		return m, cmd

	case mutationMsg:
		if msg.id == "" {
			m.creating = false
		} else {
			delete(m.status, msg.id)
		}
		if msg.err != nil {
			cmd := m.fail("Failed to "+msg.op+" todo", msg.err)
			return m, cmd
		}
		m.notice = ""
		m.loading = true
		return m, m.fetch()

	case sessionExpiredMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		if m.mode != modeNone {
			return m.updateInput(msg)
		}
		return m.updateKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	}
	if m.loginRequired {
		return m, nil
	}

	switch msg.String() {
	case "r":
		m.loading = true
		return m, m.fetch()
	case "a":
		m.mode = modeAdding
		m.inputErr = ""
		m.input.SetValue("")
		m.input.Placeholder = "New todo title..."
		cmd := m.input.Focus()
		return m, cmd
	case "e":
		it, ok := m.selected()
		if !ok || m.busy(it.todo.ID) {
			return m, nil
		}
		m.mode = modeEditing
		m.editID = it.todo.ID
		m.inputErr = ""
		m.input.SetValue(it.todo.Title)
		m.input.CursorEnd()
		m.input.Placeholder = "Edit todo title..."
		cmd := m.input.Focus()
		return m, cmd
	case " ":
		it, ok := m.selected()
		if !ok || m.busy(it.todo.ID) {
			return m, nil
		}
		done := !it.todo.IsCompleted
		m.status[it.todo.ID] = statusUpdating
		return m, m.update(it.todo.ID, client.TodoUpdate{IsCompleted: &done})
	case "d":
		it, ok := m.selected()
		if !ok || m.busy(it.todo.ID) {
			return m, nil
		}
		m.status[it.todo.ID] = statusDeleting
		return m, m.remove(it.todo.ID)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeInput()
		return m, nil
	case "enter":
		title := strings.TrimSpace(m.input.Value())
		switch {
		case title == "":
			m.inputErr = "Title cannot be empty"
			return m, nil
		case utf8.RuneCountInString(title) > schema.MaxTitleLength:
			m.inputErr = fmt.Sprintf("Title is too long (max %d characters)", schema.MaxTitleLength)
			return m, nil
		}

		var cmd tea.Cmd
		if m.mode == modeAdding {
			m.creating = true
			cmd = m.create(title)
		} else {
			m.status[m.editID] = statusUpdating
			cmd = m.update(m.editID, client.TodoUpdate{Title: &title})
		}
		m.closeInput()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.mode = modeNone
	m.editID = ""
	m.inputErr = ""
	m.input.SetValue("")
	m.input.Blur()
}

// fail shows err to the user. An expired session schedules the quit that
// hands control back to the login flow.
func (m *Model) fail(prefix string, err error) tea.Cmd {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		m.notice = sessionExpiredText
		if m.loginRequired {
			return nil
		}
		m.loginRequired = true
		return tea.Tick(expiryDelay, func(time.Time) tea.Msg { return sessionExpiredMsg{} })
	case errors.Is(err, client.ErrNotFound):
		m.notice = "Todo not found"
		m.loading = true
		return m.fetch()
	}

	m.notice = prefix
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && len(apiErr.Errors) > 0 {
		m.notice += ": " + apiErr.Errors[0].Field + " " + apiErr.Errors[0].Message
	}
	return nil
}

func (m *Model) setTodos(todos []client.Todo) tea.Cmd {
	items := make([]list.Item, 0, len(todos))
	done := 0
	for _, t := range todos {
		items = append(items, todoItem{todo: t})
		if t.IsCompleted {
			done++
		}
	}
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		titleStyle.Render("Todos"),
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), len(todos)-done,
		accentStyle.Render("Total"), len(todos),
	)
	return m.list.SetItems(items)
}

func (m Model) selected() (todoItem, bool) {
	it, ok := m.list.SelectedItem().(todoItem)
	return it, ok
}

func (m Model) busy(id string) bool {
	_, ok := m.status[id]
	return ok
}

func (m Model) fetch() tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		todos, err := api.ListTodos(ctx)
		return todosLoadedMsg{todos: todos, err: err}
	}
}

func (m Model) create(title string) tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		_, err := api.CreateTodo(ctx, title)
		return mutationMsg{op: "create", err: err}
	}
}

func (m Model) update(id string, upd client.TodoUpdate) tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		_, err := api.UpdateTodo(ctx, id, upd)
		return mutationMsg{id: id, op: "update", err: err}
	}
}

func (m Model) remove(id string) tea.Cmd {
	ctx, api := m.ctx, m.api
	return func() tea.Msg {
		err := api.DeleteTodo(ctx, id)
		return mutationMsg{id: id, op: "delete", err: err}
	}
}

func (m Model) View() string {
	content := m.list.View()
	if m.loading && len(m.list.Items()) == 0 {
		content = mutedStyle.Render("Loading todos…")
	}
	if m.creating {
		content += "\n" + pendingStyle.Render("adding…")
	}

	if m.mode != modeNone {
		title := "Add todo"
		if m.mode == modeEditing {
			title = "Edit todo"
		}
		if m.inputErr != "" {
			title += "  " + errorStyle.Render(m.inputErr)
		}
		content += "\n" + panelStyle.Render(title+"\n"+m.input.View())
	}

	if m.notice != "" {
		content += "\n" + errorStyle.Render(m.notice)
	}
	return panelStyle.Render(content)
}

// Run starts the view and blocks until it quits. loginRequired is true
// when the session expired while it was running.
func Run(ctx context.Context, api API) (loginRequired bool, err error) {
	p := tea.NewProgram(New(ctx, api), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return false, err
	}
	fm, ok := final.(Model)
	if !ok {
		return false, nil
	}
	return fm.LoginRequired(), nil
}
