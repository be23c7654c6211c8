package db

import (
	"io/fs"
	"testing"

	"community/internal/config"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateURL(t *testing.T) {
	cfg := &config.Config{DbUser: "u", DbPass: "p", DbHost: "localhost", DbPort: "5432", DbName: "community", DbSSLMode: "disable"}
	assert.Equal(t, "pgx5://u:p@localhost:5432/community?sslmode=disable", MigrateURL(cfg))
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrationsFS, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationsFS, "migrations/*.down.sql")
	require.NoError(t, err)

	assert.NotEmpty(t, ups)
	assert.Equal(t, len(ups), len(downs))

	src, err := iofs.New(migrationsFS, "migrations")
	require.NoError(t, err)
	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)
}
