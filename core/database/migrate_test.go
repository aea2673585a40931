package database

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestUpFilesAndBetween(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000002_workouts.up.sql",
		"000001_init.up.sql",
		"000001_init.down.sql",
		"000003_sessions.up.sql",
		"notes.txt",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	files := upFiles(dir)
	want := []string{"000001_init.up.sql", "000002_workouts.up.sql", "000003_sessions.up.sql"}
	if !reflect.DeepEqual(files, want) {
		t.Fatalf("upFiles = %v", files)
	}
	if got := between(files, 1, 3); !reflect.DeepEqual(got, want[1:]) {
		t.Fatalf("between(1,3) = %v", got)
	}
	if got := between(files, 3, 3); len(got) != 0 {
		t.Fatalf("between(3,3) = %v", got)
	}
	if got := upFiles(filepath.Join(dir, "missing")); got != nil {
		t.Fatalf("missing dir = %v", got)
	}
}

func TestResolveMigrationsDir(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "m")
	if got, _ := resolveMigrationsDir(abs); got != abs {
		t.Fatalf("absolute = %q", got)
	}
	got, err := resolveMigrationsDir("")
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(got) || !strings.HasSuffix(got, "migrations") {
		t.Fatalf("default = %q", got)
	}
}

func TestConfigDSNAndURL(t *testing.T) {
	c := Config{Host: "db", Port: "5432", User: "coach", Password: "p@ss word", Name: "sportbot"}
	c.Password = `it's`
	if got := c.DSN(); got != `user='coach' password='it\'s' host='db' port='5432' dbname='sportbot' sslmode='disable'` {
		t.Fatalf("DSN = %q", got)
	}
	c.Password = "p@ss word"
	u := c.URL()
	if !strings.HasPrefix(u, "postgres://coach:p%40ss%20word@db:5432/sportbot?") || !strings.HasSuffix(u, "sslmode=disable") {
		t.Fatalf("URL = %q", u)
	}
	c.SSLMode = "require"
	if !strings.HasSuffix(c.URL(), "sslmode=require") {
		t.Fatalf("URL = %q", c.URL())
	}
}
