package backend

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
	applog "expensetracker/internal/log"
	"expensetracker/internal/store/memory"
	"expensetracker/internal/store/sqlite"
)

func newFactory() (*DefaultFactory, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewFactory(applog.New(applog.Config{Component: applog.ComponentStorage, Output: &buf})), &buf
}

func TestTypeIsValid(t *testing.T) {
	assert.True(t, MemoryBackend.IsValid())
	assert.True(t, SQLiteBackend.IsValid())
	assert.False(t, Type("postgres").IsValid())
	assert.False(t, Type("").IsValid())
}

func TestCreateMemoryBackend(t *testing.T) {
	f, logs := newFactory()
	res, err := f.CreateBackend(context.Background(), Config{Type: MemoryBackend})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, res.Store)
	assert.NoError(t, res.Cleanup())
	assert.Contains(t, logs.String(), "backend=memory")
}

func TestCreateSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	f, _ := newFactory()
	res, err := f.CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteMemoryName: "backend-" + uuid.NewString()})
	require.NoError(t, err)
	defer res.Cleanup()
	assert.IsType(t, &sqlite.Repository{}, res.Store)

	require.NoError(t, res.Store.Add(ctx, core.Record{
		ID: "a", Kind: core.KindIncome, Title: "Salary", Date: core.NewDate(2026, 10, 1), Amount: 1200,
	}))
	records, err := res.Store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Salary", records[0].Title)
}

func TestCreateBackendErrors(t *testing.T) {
	f, _ := newFactory()
	_, err := f.CreateBackend(context.Background(), Config{Type: "postgres"})
	assert.ErrorContains(t, err, "invalid backend type")

	_, err = f.CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteMemoryName: "data/x.db"})
	assert.ErrorIs(t, err, sqlite.ErrInvalidName)
}
