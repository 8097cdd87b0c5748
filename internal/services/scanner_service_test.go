package services

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"

	"organizer-api/internal/config"
	"organizer-api/internal/models"
)

func newTestScanner() *ScannerService {
	return NewScannerService(NewLocalFS(), models.DefaultScanBudget(), config.DefaultProjectMarkers)
}

func TestScan_ListsVisibleChildren(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"report.pdf":         "pdf",
		".DS_Store":          "x",
		"MyApp/package.json": "{}",
		"MyApp/index.js":     "",
		".cache/":            "",
	})

	entries, err := newTestScanner().Scan(root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2: %+v", len(entries), entries)
	}

	app := entries[0]
	if app.Name != "MyApp" || app.Kind != models.KindFolder || app.Context == nil {
		t.Fatalf("entries[0] = %+v", app)
	}
	if app.Context.FileCount != 2 || !reflect.DeepEqual(app.Context.Markers, []string{"package.json"}) {
		t.Errorf("MyApp context = %+v", app.Context)
	}

	if entries[1].Name != "report.pdf" || entries[1].Kind != models.KindFile || entries[1].Context != nil {
		t.Errorf("entries[1] = %+v", entries[1])
	}
}

func TestScan_UnreadableRoot(t *testing.T) {
	_, err := newTestScanner().Scan(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrScan) {
		t.Fatalf("err = %v, want ErrScan", err)
	}
}

func TestComputeContext_FileBudget(t *testing.T) {
	root := t.TempDir()
	files := make(map[string]string, 600)
	for i := 0; i < 300; i++ {
		files[fmt.Sprintf("a/f%03d.txt", i)] = ""
		files[fmt.Sprintf("b/g%03d.txt", i)] = ""
	}
	writeFiles(t, root, files)

	ctx := newTestScanner().ComputeContext(root)
	if ctx == nil {
		t.Fatal("nil context")
	}
	if ctx.FileCount != 500 {
		t.Errorf("FileCount = %d, want 500", ctx.FileCount)
	}
	if !ctx.Truncated {
		t.Error("Truncated = false, want true")
	}
}

func TestComputeContext_DepthLimit(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"f0.txt":                "",
		"d1/f1.txt":             "",
		"d1/d2/f2.txt":          "",
		"d1/d2/d3/f3.txt":       "",
		"d1/d2/d3/d4/f4.txt":    "",
		"d1/d2/d3/d4/d5/f5.txt": "",
	})

	ctx := newTestScanner().ComputeContext(root)
	if ctx.FileCount != 4 {
		t.Errorf("FileCount = %d, want 4 (depths 0 through 3)", ctx.FileCount)
	}
	if !ctx.Truncated {
		t.Error("Truncated = false, want true when a folder lies past the depth cap")
	}
}

func TestComputeContext_WithinBudgetNotTruncated(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.txt": "", "sub/b.txt": ""})

	ctx := newTestScanner().ComputeContext(root)
	if ctx.Truncated || ctx.FileCount != 2 {
		t.Errorf("context = %+v", ctx)
	}
}

func TestComputeContext_ExtensionRanking(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"a.txt": "", "b.md": "", "c.MD": "", "d.go": "",
		"e.txt": "", "f.py": "", "g.py": "", "Makefile": "",
	})

	ctx := newTestScanner().ComputeContext(root)
	// Makefile < a.txt in name order, so "(no ext)" is seen first but has one hit
	want := []string{".txt", ".md", ".py"}
	if !reflect.DeepEqual(ctx.TopExtensions, want) {
		t.Errorf("TopExtensions = %v, want %v", ctx.TopExtensions, want)
	}
}

func TestComputeContext_TieBreakFirstSeen(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"a.zip": "", "b.csv": "", "c.bin": "", "d.log": ""})

	ctx := newTestScanner().ComputeContext(root)
	want := []string{".zip", ".csv", ".bin"}
	if !reflect.DeepEqual(ctx.TopExtensions, want) {
		t.Errorf("TopExtensions = %v, want %v", ctx.TopExtensions, want)
	}
}

func TestComputeContext_MarkersRootOnly(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"package.json":   "{}",
		"README.md":      "",
		".gitignore":     "",
		".env":           "",
		"sub/Cargo.toml": "",
		"sub/.git/HEAD":  "",
	})

	ctx := newTestScanner().ComputeContext(root)
	want := []string{".gitignore", "README.md", "package.json"}
	if !reflect.DeepEqual(ctx.Markers, want) {
		t.Errorf("Markers = %v, want %v", ctx.Markers, want)
	}
	// .env is hidden and not a marker; sub/.git is a marker dir below the root
	if ctx.FileCount != 5 {
		t.Errorf("FileCount = %d, want 5", ctx.FileCount)
	}
}

func TestComputeContext_MarkersCapped(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"Dockerfile": "", "LICENSE": "", "Makefile": "", "README": "",
		"go.mod": "", "package.json": "", "pom.xml": "",
	})

	ctx := newTestScanner().ComputeContext(root)
	if len(ctx.Markers) != 5 {
		t.Errorf("Markers = %v, want 5 entries", ctx.Markers)
	}
}

func TestComputeContext_UnreadableFolder(t *testing.T) {
	if ctx := newTestScanner().ComputeContext(filepath.Join(t.TempDir(), "nope")); ctx != nil {
		t.Errorf("context = %+v, want nil", ctx)
	}
}

func TestComputeContext_EmptyFolder(t *testing.T) {
	ctx := newTestScanner().ComputeContext(t.TempDir())
	if ctx == nil || ctx.FileCount != 0 || len(ctx.TopExtensions) != 0 || ctx.Markers == nil {
		t.Errorf("context = %+v", ctx)
	}
}
