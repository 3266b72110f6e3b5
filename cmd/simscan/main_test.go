package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"simscan/internal/config"
)

func writeCorpus(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SIMSCAN_LOG_LEVEL", "")
	t.Setenv("SIMSCAN_STORE_PATH", "")
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestScanCSV(t *testing.T) {
	root := writeCorpus(t, map[string]string{
		"g1/a.py": "foo foo bar",
		"g2/b.py": "foo baz",
	})
	cfgPath := filepath.Join(t.TempDir(), "none.yaml")

	out, err := runCLI(t, "scan", root, "--config", cfgPath, "--format", "csv")
	if err != nil {
		t.Fatalf("scan error = %v", err)
	}
	if out != "0.05479,g1,g2\n" {
		t.Errorf("output = %q, want 0.05479,g1,g2", out)
	}
}

func TestScanTopWithSQLiteStore(t *testing.T) {
	root := writeCorpus(t, map[string]string{
		"a/main.py": "def solve(grid):\n    return sum(grid)\n",
		"b/main.py": "def solve(grid):\n    return sum(grid)\n",
		"c/main.py": "print('hello world')\n",
		"d/main.py": "import sys\nsys.exit(run())\n",
	})
	dir := t.TempDir()
	out, err := runCLI(t, "scan", root,
		"--config", filepath.Join(dir, "none.yaml"),
		"--store-path", filepath.Join(dir, "scores.db"),
		"--format", "csv",
		"--top", "1",
		"--explain", "2")
	if err != nil {
		t.Fatalf("scan error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], ",a,b,") {
		t.Errorf("output = %q, want the a/b pair with terms", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "scores.db")); err != nil {
		t.Errorf("sqlite store not created: %v", err)
	}
}

func TestScanRejectsBadFormat(t *testing.T) {
	root := writeCorpus(t, map[string]string{"g/a.py": "x"})
	_, err := runCLI(t, "scan", root, "--config", filepath.Join(t.TempDir(), "none.yaml"), "--format", "xml")
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestScanRequiresRoot(t *testing.T) {
	if _, err := runCLI(t, "scan"); err == nil {
		t.Fatal("expected argument error")
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "simscan.yaml")
	out, err := runCLI(t, "config", "init", path)
	if err != nil {
		t.Fatalf("config init error = %v", err)
	}
	if !strings.Contains(out, path) {
		t.Errorf("output = %q", out)
	}
	if _, err := runCLI(t, "config", "init", path); err == nil {
		t.Error("second init without --force should fail")
	}
	if _, err := runCLI(t, "config", "init", path, "--force"); err != nil {
		t.Errorf("init --force error = %v", err)
	}

	out, err = runCLI(t, "config", "show", "--config", path)
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if !strings.Contains(out, "preset: python") {
		t.Errorf("config show = %q", out)
	}
}

func TestScanSQLiteWithoutPathUsesCacheDir(t *testing.T) {
	cache := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cache)
	t.Setenv("HOME", cache)
	root := writeCorpus(t, map[string]string{
		"g1/a.py": "foo foo bar",
		"g2/b.py": "foo baz",
	})
	out, err := runCLI(t, "scan", root,
		"--config", filepath.Join(t.TempDir(), "none.yaml"),
		"--store", "sqlite",
		"--format", "csv")
	if err != nil {
		t.Fatalf("scan error = %v", err)
	}
	if out != "0.05479,g1,g2\n" {
		t.Errorf("output = %q", out)
	}
	want := config.DefaultStorePath()
	if !strings.HasPrefix(want, cache) {
		t.Fatalf("DefaultStorePath() = %q, want it under %q", want, cache)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("sqlite store not created at default path: %v", err)
	}
}

func TestRunsListsStoredScans(t *testing.T) {
	root := writeCorpus(t, map[string]string{
		"g1/a.py": "foo foo bar",
		"g2/b.py": "foo baz",
		"g3/c.py": "qux",
	})
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "none.yaml")
	dbPath := filepath.Join(dir, "scores.db")
	for i := 0; i < 2; i++ {
		if _, err := runCLI(t, "scan", root, "--config", cfgPath, "--store-path", dbPath, "--format", "csv"); err != nil {
			t.Fatalf("scan %d error = %v", i, err)
		}
	}

	out, err := runCLI(t, "runs", "--config", cfgPath, "--store-path", dbPath, "--format", "csv")
	if err != nil {
		t.Fatalf("runs error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("runs output = %q, want two runs", out)
	}
	for _, line := range lines {
		if !strings.HasSuffix(line, ",3,"+root) {
			t.Errorf("run line = %q, want 3 groups under %s", line, root)
		}
	}
}

func TestRunsMissingStore(t *testing.T) {
	dir := t.TempDir()
	_, err := runCLI(t, "runs",
		"--config", filepath.Join(dir, "none.yaml"),
		"--store-path", filepath.Join(dir, "absent.db"))
	if err == nil {
		t.Fatal("expected error for a missing store")
	}
}
