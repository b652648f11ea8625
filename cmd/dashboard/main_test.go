package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenJournalCreatesTableOnFreshDatabase(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "journal.db")

	db, repos, err := openJournal(context.Background(), "sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	items, err := repos.ListEvents(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, items)
}
