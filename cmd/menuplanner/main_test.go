package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"menu-planner/internal/model"
	"menu-planner/internal/repository"
)

const starterFile = "../../internal/seed/testdata/starter.yaml"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func setupAccount(t *testing.T) (string, *model.Account) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "planner.db")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", dbPath)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("LOG_LEVEL", "error")

	db, err := repository.NewDB(dbPath, zap.NewNop())
	require.NoError(t, err)
	account := &model.Account{ID: uuid.NewString(), Email: "cook@example.com", Language: model.LanguageEnglish}
	require.NoError(t, repository.NewAccountRepository(db).Create(context.Background(), account))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	return dir, account
}

func TestSeedIsRepeatable(t *testing.T) {
	setupAccount(t)

	out, err := run(t, "seed", "--email", "Cook@Example.com", starterFile)
	require.NoError(t, err)
	assert.Contains(t, out, "added 4 dishes and 2 menus, skipped 0 existing")

	out, err = run(t, "seed", "--email", "cook@example.com", starterFile)
	require.NoError(t, err)
	assert.Contains(t, out, "added 0 dishes and 0 menus, skipped 6 existing")
}

func TestExportThenImportIntoLocalStore(t *testing.T) {
	dir, account := setupAccount(t)
	exportDir := filepath.Join(dir, "export")

	_, err := run(t, "seed", "--email", account.Email, starterFile)
	require.NoError(t, err)

	out, err := run(t, "export", "--email", account.Email, "--dir", exportDir)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 4 dishes, 2 menus, 0 daily menus")
	assert.FileExists(t, filepath.Join(exportDir, account.ID, "dishes.json"))

	t.Setenv("STORAGE_DRIVER", "local")
	t.Setenv("LOCAL_DATA_DIR", filepath.Join(dir, "data"))
	out, err = run(t, "import", "--email", account.Email, "--dir", exportDir)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 4 dishes, 2 menus, 0 daily menus")
	assert.FileExists(t, filepath.Join(dir, "data", account.ID, "menus.json"))
}

func TestUnknownAccount(t *testing.T) {
	setupAccount(t)

	_, err := run(t, "seed", "--email", "nobody@example.com", starterFile)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = run(t, "export")
	assert.EqualError(t, err, "--email is required")
}

func TestServeNeedsToken(t *testing.T) {
	setupAccount(t)
	t.Setenv("TELEGRAM_TOKEN", "")

	_, err := run(t, "serve")
	assert.EqualError(t, err, "TELEGRAM_TOKEN is required")
}

func TestConfigErrorsStopCommands(t *testing.T) {
	setupAccount(t)
	t.Setenv("JWT_SECRET", "")

	_, err := run(t, "migrate")
	assert.EqualError(t, err, "JWT_SECRET is required")
}
