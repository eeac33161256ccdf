package repl

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hozondb/hozon-db/pkg/database"
)

func runSession(t *testing.T, input string) string {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	var out bytes.Buffer
	r := New(db, strings.NewReader(input), &out)
	if err := r.Run(); err != nil {
		t.Fatalf("session failed: %v", err)
	}
	if err := r.Database().Close(); err != nil {
		t.Fatalf("failed to close database: %v", err)
	}
	return out.String()
}

func TestSessionCreateInsertSelect(t *testing.T) {
	out := runSession(t, strings.Join([]string{
		"CREATE TABLE users (id INTEGER, name TEXT);",
		"INSERT INTO users VALUES (1, 'Alice');",
		"SELECT * FROM users;",
		".exit",
	}, "\n"))

	if !strings.Contains(out, "table users created") {
		t.Errorf("missing create confirmation in output:\n%s", out)
	}
	if !strings.Contains(out, "1 row inserted") {
		t.Errorf("missing insert confirmation in output:\n%s", out)
	}
	if !strings.Contains(out, "Alice") {
		t.Errorf("missing selected row in output:\n%s", out)
	}
	if !strings.Contains(out, "id") || !strings.Contains(out, "name") {
		t.Errorf("missing column header in output:\n%s", out)
	}
}

func TestSessionContinuesAfterError(t *testing.T) {
	out := runSession(t, strings.Join([]string{
		"SELECT * FROM missing;",
		".tables",
		".exit",
	}, "\n"))

	if !strings.Contains(out, "error:") {
		t.Errorf("missing error line in output:\n%s", out)
	}
	if !strings.Contains(out, "no tables") {
		t.Errorf("expected session to continue after error:\n%s", out)
	}
}

func TestSessionTablesAndStats(t *testing.T) {
	out := runSession(t, strings.Join([]string{
		"CREATE TABLE b (x INTEGER);",
		"CREATE TABLE a (y TEXT);",
		".tables",
		".stats",
		".exit",
	}, "\n"))

	if !strings.Contains(out, "a\n") || !strings.Contains(out, "b\n") {
		t.Errorf("missing table listing in output:\n%s", out)
	}
	if !strings.Contains(out, "pages: 4") {
		t.Errorf("missing stats in output:\n%s", out)
	}
}

func TestSessionUnknownCommand(t *testing.T) {
	out := runSession(t, ".bogus\n.exit")
	if !strings.Contains(out, "unknown command .bogus") {
		t.Errorf("missing unknown-command message:\n%s", out)
	}
}

func TestSessionEndsAtEOF(t *testing.T) {
	out := runSession(t, "CREATE TABLE t (x INTEGER);")
	if !strings.Contains(out, "table t created") {
		t.Errorf("missing create confirmation:\n%s", out)
	}
}

func TestSessionBackup(t *testing.T) {
	dir := t.TempDir()
	backupPath := filepath.Join(dir, "out.hzbk")

	db, err := database.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	var out bytes.Buffer
	input := strings.Join([]string{
		"CREATE TABLE t (x INTEGER);",
		".backup " + backupPath + " snappy",
		".exit",
	}, "\n")
	r := New(db, strings.NewReader(input), &out)
	if err := r.Run(); err != nil {
		t.Fatalf("session failed: %v", err)
	}
	defer r.Database().Close()

	if !strings.Contains(out.String(), "backup written") {
		t.Errorf("missing backup confirmation:\n%s", out.String())
	}
	info, err := os.Stat(backupPath)
	if err != nil {
		t.Fatalf("expected backup file: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected non-empty backup file")
	}
}

func TestSessionOpenSwitchesDatabase(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.db")
	second := filepath.Join(dir, "second.db")

	db, err := database.Open(first)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	var out bytes.Buffer
	input := strings.Join([]string{
		".open " + second,
		"CREATE TABLE t (x INTEGER);",
		".exit",
	}, "\n")
	r := New(db, strings.NewReader(input), &out)
	if err := r.Run(); err != nil {
		t.Fatalf("session failed: %v", err)
	}
	defer r.Database().Close()

	if r.Database().Path() != second {
		t.Errorf("expected database switched to %s, got %s", second, r.Database().Path())
	}
	// The first file's lock must be gone after the switch.
	if _, err := os.Stat(first + ".lock"); !os.IsNotExist(err) {
		t.Errorf("expected first database's lock removed, got %v", err)
	}
}
