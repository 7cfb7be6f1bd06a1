package persistence

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"
)

func TestMigrationFilesOrderedAndFiltered(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"002_replies.sql", "001_init.sql", "notes.md", "010_indexes.sql"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "archive"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	got, err := migrationFiles(dir)
	if err != nil {
		t.Fatalf("migrationFiles: %v", err)
	}
	want := []string{"001_init.sql", "002_replies.sql", "010_indexes.sql"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("migrationFiles = %v, want %v", got, want)
	}
}

func TestMigrationFilesMissingDir(t *testing.T) {
	t.Parallel()

	if _, err := migrationFiles(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestRunMigrationsWithoutPool(t *testing.T) {
	t.Parallel()

	if err := RunMigrations(context.Background(), nil, "migrations", zap.NewNop()); err != nil {
		t.Errorf("nil pool must skip migrations, got %v", err)
	}
}
