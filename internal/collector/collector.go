package collector

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DirCollector turns every immediate sub-directory of a root into one group
// whose text is the concatenation of its matching files.
type DirCollector struct {
	extensions []string
	skipHidden bool
}

// NewDirCollector creates a collector for files with the given extensions.
// An empty extension list matches every regular file.
func NewDirCollector(extensions []string, skipHidden bool) *DirCollector {
	exts := make([]string, 0, len(extensions))
	for _, e := range extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	return &DirCollector{extensions: exts, skipHidden: skipHidden}
}

// Collect reads every group under root. Groups without matching files are
// returned with empty text. Plain files directly inside root are ignored.
func (c *DirCollector) Collect(ctx context.Context, root string) (map[string]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read corpus root: %w", err)
	}
	groups := make(map[string]string, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if c.skipHidden && isHidden(name) {
			continue
		}
		text, err := c.concat(ctx, filepath.Join(root, name))
		if err != nil {
			return nil, fmt.Errorf("collect group %s: %w", name, err)
		}
		groups[name] = text
	}
	return groups, nil
}

func (c *DirCollector) concat(ctx context.Context, dir string) (string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && c.skipHidden && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !c.matches(d.Name()) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Strings(paths)

	var b strings.Builder
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", p, err)
		}
		b.Write(data)
		if len(data) > 0 && data[len(data)-1] != '\n' {
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

func (c *DirCollector) matches(name string) bool {
	if len(c.extensions) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, e := range c.extensions {
		if strings.HasSuffix(lower, e) {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
