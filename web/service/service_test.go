package service

import (
	"os"
	"testing"

	"github.com/gogorichielab/ppcollection/database"

	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) {
	t.Helper()

	dbPath := "test.db"
	os.Remove(dbPath)
	require.NoError(t, database.InitDB(dbPath))

	t.Cleanup(func() {
		db, _ := database.GetDB().DB()
		db.Close()
		os.Remove(dbPath)
		os.Remove(dbPath + "-wal")
		os.Remove(dbPath + "-shm")
	})
}
