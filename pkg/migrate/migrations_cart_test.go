package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chowline/chowline-backend/pkg/config"
	"github.com/chowline/chowline-backend/pkg/logger"
)

const migrationsDir = "migrations"

func TestMigrationsDirValidates(t *testing.T) {
	require.NoError(t, ValidateDir(migrationsDir))
}

func TestCartMigrationsDefineDedupIndexes(t *testing.T) {
	entries, err := os.ReadDir(migrationsDir)
	require.NoError(t, err)

	var all strings.Builder
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		b, err := os.ReadFile(filepath.Join(migrationsDir, e.Name()))
		require.NoError(t, err)
		all.Write(b)
	}
	sql := all.String()

	require.Contains(t, sql, "CREATE TABLE cart_sessions")
	require.Contains(t, sql, "CREATE TABLE cart_lines")
	require.Contains(t, sql, "uniq_cart_lines_identity")
	require.Contains(t, sql, "uniq_cart_sessions_user_merchant")
	require.Contains(t, sql, "uniq_cart_sessions_token_merchant")
	require.Contains(t, sql, "cart_sessions_owner_one_of")
}

func TestMaybeRunDevSkipsOutsideDev(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "migrate-test"})

	prod := &config.Config{App: config.AppConfig{Env: config.AppEnvProd, AutoMigrate: true}}
	require.NoError(t, MaybeRunDev(context.Background(), prod, logg, nil))

	devDisabled := &config.Config{App: config.AppConfig{Env: config.AppEnvDev, AutoMigrate: false}}
	require.NoError(t, MaybeRunDev(context.Background(), devDisabled, logg, nil))
}
