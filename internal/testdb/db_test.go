//go:build integration

package testdb

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTestDatabaseURL(t *testing.T) {
	tests := []struct {
		name    string
		primary string
		confhub string
		want    string
	}{
		{"primary wins", "postgres://a/db", "postgres://b/db", "postgres://a/db"},
		{"confhub fallback", "", "postgres://b/db", "postgres://b/db"},
		{"none", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDatabaseURL, tt.primary)
			t.Setenv(EnvConfhubDatabaseURL, tt.confhub)

			assert.Equal(t, tt.want, GetTestDatabaseURL())
			assert.Equal(t, tt.want == "", ShouldSkipDatabaseTest())
		})
	}
}

func TestWithTx_RollsBack(t *testing.T) {
	db := GetTestDB(t)
	name := UniqueName("rollback-")

	WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		_, err := tx.Exec(`INSERT INTO projects (name) VALUES ($1)`, name)
		require.NoError(t, err)
	})

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM projects WHERE name = $1`, name).Scan(&count))
	assert.Zero(t, count)
}

func TestApplyMigrations_SeedsEnvironments(t *testing.T) {
	db := GetTestDB(t)

	var envs int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM environments`).Scan(&envs))
	assert.Equal(t, 7, envs)
}
