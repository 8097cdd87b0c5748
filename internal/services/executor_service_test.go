package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"organizer-api/internal/models"
)

func planOf(cats ...models.PlanCategory) models.Plan {
	var p models.Plan
	for _, c := range cats {
		p.Set(c)
	}
	return p
}

func file(name string) models.PlanItem   { return models.PlanItem{Name: name, Kind: models.KindFile} }
func folder(name string) models.PlanItem { return models.PlanItem{Name: name, Kind: models.KindFolder} }

func outcomeFor(t *testing.T, res *ApplyResult, name string) ItemOutcome {
	t.Helper()
	for _, o := range res.Outcomes {
		if o.Name == name {
			return o
		}
	}
	t.Fatalf("no outcome for %q", name)
	return ItemOutcome{}
}

func TestApply_MovesFilesAndFolders(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"report.pdf":         "12345",
		"MyApp/package.json": "{}",
	})

	var seen []ItemOutcome
	res := NewExecutorService(NewLocalFS()).Apply(root, planOf(
		models.PlanCategory{Name: "Documents", Items: []models.PlanItem{file("report.pdf")}},
		models.PlanCategory{Name: "Projects/Node.js", Items: []models.PlanItem{folder("MyApp")}},
	), func(o ItemOutcome) { seen = append(seen, o) })

	if !res.Success || len(res.Moved) != 2 || len(seen) != 2 {
		t.Fatalf("result = %+v, progress calls = %d", res, len(seen))
	}
	if !exists(filepath.Join(root, "Documents", "report.pdf")) || exists(filepath.Join(root, "report.pdf")) {
		t.Error("report.pdf not moved")
	}
	if !exists(filepath.Join(root, "Projects", "Node.js", "MyApp", "package.json")) {
		t.Error("MyApp not moved into nested category")
	}
	if res.BytesMoved != 7 {
		t.Errorf("BytesMoved = %d, want 7", res.BytesMoved)
	}
	if res.Moved[1].Kind != models.KindFolder || res.Moved[1].Category != "Projects/Node.js" {
		t.Errorf("record = %+v", res.Moved[1])
	}
}

func TestApply_GuardSameAsCategory(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"Images/a.jpg": "x"})

	res := NewExecutorService(NewLocalFS()).Apply(root, planOf(
		models.PlanCategory{Name: "Images", Items: []models.PlanItem{folder("Images")}},
	), nil)

	if o := outcomeFor(t, res, "Images"); o.Status != OutcomeSkipped || o.Reason != SkipSameAsCategory {
		t.Errorf("outcome = %+v", o)
	}
	if !exists(filepath.Join(root, "Images", "a.jpg")) || exists(filepath.Join(root, "Images", "Images")) {
		t.Error("filesystem changed")
	}
}

func TestApply_GuardInsideSource(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"MyApp/index.js": ""})

	res := NewExecutorService(NewLocalFS()).Apply(root, planOf(
		models.PlanCategory{Name: "MyApp/Archive", Items: []models.PlanItem{folder("MyApp")}},
	), nil)

	if o := outcomeFor(t, res, "MyApp"); o.Reason != SkipInsideSource {
		t.Errorf("outcome = %+v", o)
	}
	if exists(filepath.Join(root, "MyApp", "Archive")) {
		t.Error("category folder created although every item was skipped")
	}
	if len(res.Moved) != 0 {
		t.Errorf("moved = %+v", res.Moved)
	}
}

func TestApply_NoClobber(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"notes.txt":      "new",
		"Docs/notes.txt": "old",
	})

	res := NewExecutorService(NewLocalFS()).Apply(root, planOf(
		models.PlanCategory{Name: "Docs", Items: []models.PlanItem{file("notes.txt")}},
	), nil)

	if o := outcomeFor(t, res, "notes.txt"); o.Reason != SkipDestinationExists {
		t.Errorf("outcome = %+v", o)
	}
	data, _ := os.ReadFile(filepath.Join(root, "Docs", "notes.txt"))
	if string(data) != "old" {
		t.Errorf("destination overwritten: %q", data)
	}
	if !exists(filepath.Join(root, "notes.txt")) {
		t.Error("source removed")
	}
}

func TestApply_MissingSourceAndInvalidNames(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"keep.txt": ""})

	res := NewExecutorService(NewLocalFS()).Apply(root, planOf(
		models.PlanCategory{Name: "Misc", Items: []models.PlanItem{file("ghost.txt"), file("../escape"), file("keep.txt")}},
		models.PlanCategory{Name: "../Outside", Items: []models.PlanItem{file("x")}},
	), nil)

	cases := map[string]SkipReason{
		"ghost.txt": SkipMissingSource,
		"../escape": SkipInvalidName,
		"x":         SkipInvalidCategory,
	}
	for name, reason := range cases {
		if o := outcomeFor(t, res, name); o.Reason != reason {
			t.Errorf("%s: reason = %q, want %q", name, o.Reason, reason)
		}
	}
	if o := outcomeFor(t, res, "keep.txt"); o.Status != OutcomeMoved {
		t.Errorf("keep.txt outcome = %+v", o)
	}
	if exists(filepath.Join(filepath.Dir(root), "Outside")) {
		t.Error("category escaped the root")
	}
	// outcomes follow plan order
	if res.Outcomes[0].Name != "ghost.txt" || res.Outcomes[2].Name != "keep.txt" {
		t.Errorf("outcome order = %+v", res.Outcomes)
	}
}

func TestApply_EmptyCategoryCreatesFolder(t *testing.T) {
	root := t.TempDir()
	res := NewExecutorService(NewLocalFS()).Apply(root, planOf(
		models.PlanCategory{Name: "Archives"},
	), nil)

	if !res.Success || len(res.Outcomes) != 0 {
		t.Errorf("result = %+v", res)
	}
	if !exists(filepath.Join(root, "Archives")) {
		t.Error("empty category folder not created")
	}
}

func TestApply_MkdirFailure(t *testing.T) {
	root := t.TempDir()
	// a file where the category folder should go
	writeFiles(t, root, map[string]string{"Docs": "not a folder", "a.txt": ""})

	res := NewExecutorService(NewLocalFS()).Apply(root, planOf(
		models.PlanCategory{Name: "Docs", Items: []models.PlanItem{file("a.txt")}},
	), nil)

	if o := outcomeFor(t, res, "a.txt"); o.Reason != SkipMkdirFailed {
		t.Errorf("outcome = %+v", o)
	}
	if !exists(filepath.Join(root, "a.txt")) {
		t.Error("a.txt moved despite mkdir failure")
	}
}

func TestApply_ReportsCopyProgress(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"big.bin":       strings.Repeat("x", 100000),
		"MyApp/a.txt":   "abc",
		"MyApp/b/c.txt": "de",
	})

	type copied struct{ written, total int64 }
	last := map[string]copied{}
	res := NewExecutorService(copyingFS{}).WithCopyProgress(func(item string, written, total int64) {
		last[item] = copied{written, total}
	}).Apply(root, planOf(
		models.PlanCategory{Name: "Data", Items: []models.PlanItem{file("big.bin"), folder("MyApp")}},
	), nil)

	if len(res.Moved) != 2 || res.BytesMoved != 100005 {
		t.Fatalf("result = %+v", res)
	}
	if got := last["big.bin"]; got != (copied{100000, 100000}) {
		t.Errorf("big.bin progress = %+v", got)
	}
	if got := last["MyApp"]; got != (copied{5, 5}) {
		t.Errorf("MyApp progress = %+v", got)
	}
	if exists(filepath.Join(root, "big.bin")) || !exists(filepath.Join(root, "Data", "MyApp", "b", "c.txt")) {
		t.Error("copy fallback did not move the items")
	}
}

func TestLocalFS_CopyMoveRemovesSource(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "hello"})

	var calls int
	err := LocalFS{}.copyMove(filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt"), func(written, total int64) {
		calls++
		if total != 5 {
			t.Errorf("total = %d, want 5", total)
		}
	})
	if err != nil {
		t.Fatalf("copyMove: %v", err)
	}
	if calls == 0 {
		t.Error("no progress reported")
	}
	if exists(filepath.Join(dir, "a.txt")) || !exists(filepath.Join(dir, "b.txt")) {
		t.Error("file not moved")
	}
}
