// Package testkit holds fixtures shared by the package tests: a migrated
// sqlite database per test and helpers for the job log files.
package testkit

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	_ "github.com/shashiranjanraj/kashvi-crm/database/migrations"
	"github.com/shashiranjanraj/kashvi-crm/pkg/database"
	"github.com/shashiranjanraj/kashvi-crm/pkg/migration"
)

// NewDB opens a fresh sqlite file under t.TempDir(), runs every registered
// migration and closes the pool when the test ends.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "crm.db") + "?_foreign_keys=on"
	db, err := database.Open("sqlite", dsn)
	require.NoError(t, err, "testkit: open sqlite")
	t.Cleanup(func() { _ = database.Close(db) })

	require.NoError(t, migration.New(db).Run(), "testkit: migrate")
	return db
}
