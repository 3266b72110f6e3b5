package service

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"simscan/internal/collector"
	"simscan/internal/domain"
	"simscan/internal/logging"
	"simscan/internal/resultstore/memory"
	"simscan/internal/tokenizer"
)

type staticCollector map[string]string

func (c staticCollector) Collect(context.Context, string) (map[string]string, error) {
	return c, nil
}

func newService(c domain.Collector) *SimilarityServiceImpl {
	return NewSimilarityService(c, tokenizer.New(nil), memory.NewStorage(), logging.Discard())
}

func TestScanSummary(t *testing.T) {
	svc := newService(staticCollector{
		"g1": "foo foo bar",
		"g2": "foo baz",
		"g3": "",
	})
	ctx := context.Background()
	summary, err := svc.Scan(ctx, "root")
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if summary.Groups != 3 || summary.Pairs != 3 {
		t.Errorf("summary = %+v, want 3 groups and 3 pairs", summary)
	}
	if len(summary.EmptyGroups) != 1 || summary.EmptyGroups[0] != "g3" {
		t.Errorf("EmptyGroups = %v, want [g3]", summary.EmptyGroups)
	}
	if summary.RunID == "" {
		t.Error("RunID is empty")
	}
	if summary.Best == nil {
		t.Fatal("Best is nil")
	}

	pairs := svc.Pairs()
	if len(pairs) != 3 || pairs[0].A != "g1" || pairs[0].B != "g2" || pairs[2].A != "g2" || pairs[2].B != "g3" {
		t.Errorf("Pairs() = %v, want lexicographic enumeration", pairs)
	}
}

func TestScanNoGroups(t *testing.T) {
	svc := newService(staticCollector{})
	_, err := svc.Scan(context.Background(), "root")
	if !errors.Is(err, ErrNoGroups) {
		t.Errorf("Scan() error = %v, want ErrNoGroups", err)
	}
}

func TestLookupsBeforeScan(t *testing.T) {
	svc := newService(staticCollector{})
	if _, err := svc.Top(context.Background(), 1); !errors.Is(err, ErrNotScanned) {
		t.Errorf("Top() error = %v", err)
	}
	if _, err := svc.Explain("a", "b", 1); !errors.Is(err, ErrNotScanned) {
		t.Errorf("Explain() error = %v", err)
	}
}

func TestQueryAndExplain(t *testing.T) {
	svc := newService(staticCollector{
		"a": "alpha beta gamma delta",
		"b": "alpha beta gamma delta",
		"c": "epsilon zeta",
		"d": "eta theta alpha",
	})
	ctx := context.Background()
	if _, err := svc.Scan(ctx, "root"); err != nil {
		t.Fatal(err)
	}

	got, err := svc.Query(ctx, "a", 1)
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 1 || got[0].B != "b" {
		t.Errorf("Query(a) = %v, want pair with b first", got)
	}
	if _, err := svc.Query(ctx, "zz", 1); !errors.Is(err, ErrUnknownGroup) {
		t.Errorf("Query(zz) error = %v, want ErrUnknownGroup", err)
	}

	cs, err := svc.Explain("a", "b", 0)
	if err != nil {
		t.Fatalf("Explain() error = %v", err)
	}
	var sum float64
	for _, c := range cs {
		sum += c.Product
	}
	if math.Abs(sum-got[0].Score) > 1e-12 {
		t.Errorf("explained sum = %v, score = %v", sum, got[0].Score)
	}
	if _, err := svc.Explain("a", "nope", 0); !errors.Is(err, ErrUnknownGroup) {
		t.Errorf("Explain(nope) error = %v", err)
	}
}

func TestScanFromDirectories(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"s1/main.py":      "def solve(grid):\n    return sum(grid)\n",
		"s2/main.py":      "def solve(grid):\n    return sum(grid)\n",
		"s3/app/calc.py":  "class Calculator:\n    pass\n",
		"s3/app/README":   "ignored",
		"s4/empty/.keep":  "",
		"s4/other/run.py": "import os\nprint(os.name)\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	tok, _ := tokenizer.FromConfig(tokenizer.PresetPython, nil)
	svc := NewSimilarityService(collector.NewDirCollector([]string{".py"}, true), tok, memory.NewStorage(), logging.Discard())

	summary, err := svc.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if summary.Groups != 4 || summary.Pairs != 6 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.Best == nil || summary.Best.A != "s1" || summary.Best.B != "s2" {
		t.Errorf("Best = %+v, want s1/s2", summary.Best)
	}
}
