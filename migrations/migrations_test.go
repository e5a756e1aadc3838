package migrations

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(Files, ".")
	if err != nil {
		t.Fatalf("reading embedded migrations: %v", err)
	}

	var sqlFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	if len(sqlFiles) == 0 {
		t.Fatalf("no .sql files embedded")
	}

	for _, name := range sqlFiles {
		content, err := fs.ReadFile(Files, name)
		if err != nil {
			t.Fatalf("reading %s: %v", name, err)
		}
		if len(strings.TrimSpace(string(content))) == 0 {
			t.Fatalf("migration %s is empty", name)
		}
	}
}
