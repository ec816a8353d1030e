package tokenstore

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/me/examdesk/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLiteStore(":memory:", testLogger())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// exerciseStore runs the shared Store contract against st.
func exerciseStore(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()

	tok, err := st.Get(ctx)
	if err != nil {
		t.Fatalf("Get on empty store: %v", err)
	}
	if tok != "" {
		t.Fatalf("Get on empty store = %q, want empty", tok)
	}

	if err := st.Set(ctx, "first"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := st.Set(ctx, "second"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if tok, _ := st.Get(ctx); tok != "second" {
		t.Errorf("Get = %q, want second", tok)
	}

	if err := st.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if tok, _ := st.Get(ctx); tok != "" {
		t.Errorf("Get after Clear = %q, want empty", tok)
	}
	if err := st.Clear(ctx); err != nil {
		t.Errorf("Clear on empty store: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(""))
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	st := NewFileStore(path)
	exerciseStore(t, st)
}

func TestSQLiteStore(t *testing.T) {
	exerciseStore(t, testSQLiteStore(t))
}

func TestFileStore_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	st := NewFileStore(path)
	if err := st.Set(context.Background(), "secret"); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, want 600", perm)
	}
}

func TestFileStore_CorruptedFileReadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	tok, err := NewFileStore(path).Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if tok != "" {
		t.Errorf("Get = %q, want empty", tok)
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "examdesk.db")
	ctx := context.Background()

	st, err := NewSQLiteStore(path, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	if err := st.Set(ctx, "persisted"); err != nil {
		t.Fatal(err)
	}
	st.Close()

	reopened, err := NewSQLiteStore(path, testLogger())
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	if err := reopened.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	if tok, _ := reopened.Get(ctx); tok != "persisted" {
		t.Errorf("Get after reopen = %q, want persisted", tok)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	cfg := config.DefaultClientConfig()
	cfg.TokenPath = filepath.Join(dir, "credentials.json")
	st, err := Open(cfg, testLogger())
	if err != nil {
		t.Fatalf("Open file: %v", err)
	}
	if _, ok := st.(*FileStore); !ok {
		t.Errorf("Open(file) = %T, want *FileStore", st)
	}

	cfg.TokenStore = config.StoreSQLite
	cfg.TokenPath = filepath.Join(dir, "examdesk.db")
	st, err = Open(cfg, testLogger())
	if err != nil {
		t.Fatalf("Open sqlite: %v", err)
	}
	defer st.Close()
	if _, ok := st.(*SQLiteStore); !ok {
		t.Errorf("Open(sqlite) = %T, want *SQLiteStore", st)
	}

	cfg.TokenStore = "etcd"
	if _, err := Open(cfg, testLogger()); err == nil {
		t.Error("expected error for unknown store")
	}
}
