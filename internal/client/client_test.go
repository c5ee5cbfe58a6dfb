package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/todo-tracker/internal/auth"
	"github.com/Tomlord1122/todo-tracker/internal/config"
	"github.com/Tomlord1122/todo-tracker/internal/logging"
	"github.com/Tomlord1122/todo-tracker/internal/repository"
	"github.com/Tomlord1122/todo-tracker/internal/schema"
	"github.com/Tomlord1122/todo-tracker/internal/server"
	"github.com/Tomlord1122/todo-tracker/internal/service"
)

const secret = "client-test-secret"

type okHealth struct{}

func (okHealth) Health() map[string]string { return map[string]string{"status": "up"} }

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()
	users := repository.NewMemoryUserRepository()
	s := server.New(&config.Config{SessionSecret: secret, LoginURL: "/login"}, server.Deps{
		Todos:    service.NewTodoService(repository.NewMemoryTodoRepository(), users),
		Profiles: service.NewProfileService(repository.NewMemoryProfileRepository(), users, nil, 0, logging.Discard()),
		DB:       okHealth{},
		Logger:   logging.Discard(),
	})
	ts := httptest.NewServer(s.RegisterRoutes())
	t.Cleanup(ts.Close)
	return ts
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	tok, err := auth.NewToken([]byte(secret), auth.Session{UserID: userID}, time.Hour)
	require.NoError(t, err)
	return tok
}

func ptr[T any](v T) *T { return &v }

func TestClient_AgainstServer(t *testing.T) {
	ctx := context.Background()
	ts := newAPI(t)
	c := New(ts.URL+"/", tokenFor(t, "alice"))

	list, err := c.ListTodos(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	created, err := c.CreateTodo(ctx, "Buy milk")
	require.NoError(t, err)
	assert.Equal(t, "alice", created.UserID)
	assert.False(t, created.CreatedAt.IsZero())

	updated, err := c.UpdateTodo(ctx, created.ID, TodoUpdate{IsCompleted: ptr(true)})
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted)

	// false must still be sent
	updated, err = c.UpdateTodo(ctx, created.ID, TodoUpdate{IsCompleted: ptr(false)})
	require.NoError(t, err)
	assert.False(t, updated.IsCompleted)

	id, err := c.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", id)

	require.NoError(t, c.DeleteTodo(ctx, created.ID))
	assert.ErrorIs(t, c.DeleteTodo(ctx, created.ID), ErrNotFound)
	assert.Equal(t, ts.URL+"/api/login", c.LoginURL())
}

func TestClient_Errors(t *testing.T) {
	ctx := context.Background()
	ts := newAPI(t)

	_, err := New(ts.URL, "").ListTodos(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = New(ts.URL, tokenFor(t, "alice")).CreateTodo(ctx, "   ")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Invalid request body", apiErr.Message)
	assert.Equal(t, []schema.FieldError{{Field: "title", Message: "is required"}}, apiErr.Errors)
	assert.Equal(t, "400 Invalid request body: title is required", apiErr.Error())

	_, err = New(ts.URL, tokenFor(t, "alice")).UpdateTodo(ctx, "00000000-0000-0000-0000-000000000000", TodoUpdate{Title: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_NonJSONErrorBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := New(ts.URL, "t").ListTodos(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "Bad Gateway", apiErr.Message)
}

func TestCredentialStore(t *testing.T) {
	t.Setenv(TokenEnv, "")
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	store := NewCredentialStore(path)

	ti, err := store.Token()
	require.NoError(t, err)
	assert.Nil(t, ti)

	require.NoError(t, store.Save("Bearer abc.def.ghi"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	ti, err = store.Token()
	require.NoError(t, err)
	require.NotNil(t, ti)
	assert.Equal(t, "abc.def.ghi", ti.Token)
	assert.Equal(t, "file", ti.Source)

	t.Setenv(TokenEnv, "from-env")
	ti, err = store.Token()
	require.NoError(t, err)
	assert.Equal(t, "from-env", ti.Token)
	assert.Equal(t, "env", ti.Source)
	t.Setenv(TokenEnv, "")

	require.NoError(t, store.Delete())
	require.NoError(t, store.Delete())
	ti, err = store.Token()
	require.NoError(t, err)
	assert.Nil(t, ti)

	assert.Error(t, store.Save("   "))
}
