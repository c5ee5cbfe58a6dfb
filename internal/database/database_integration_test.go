package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tomlord1122/todo-tracker/internal/database/databasetest"
)

func TestService_MigrateAndHealth(t *testing.T) {
	svc := databasetest.NewPostgres(t)

	// A second run finds nothing pending.
	require.NoError(t, svc.Migrate(context.Background()))

	stats := svc.Health()
	assert.Equal(t, "up", stats["status"])
	assert.Contains(t, stats, "open_connections")

	var tables []string
	require.NoError(t, svc.GetDB().
		Raw("SELECT table_name FROM information_schema.tables WHERE table_schema = 'public' ORDER BY table_name").
		Scan(&tables).Error)
	assert.Subset(t, tables, []string{"profiles", "todos", "users"})
}
