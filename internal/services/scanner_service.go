package services

import (
	"fmt"
	"sort"
	"time"

	"organizer-api/internal/logging"
	"organizer-api/internal/metrics"
	"organizer-api/internal/models"
	"organizer-api/internal/utils"
)

const (
	maxTopExtensions = 3
	maxMarkers       = 5
)

// ScannerService lists a folder and summarizes each of its sub-folders
type ScannerService struct {
	fs      FileSystem
	budget  models.ScanBudget
	markers map[string]struct{}
}

// NewScannerService creates a scanner over fs. markers are the names that
// identify a project at the top of a sub-folder.
func NewScannerService(fs FileSystem, budget models.ScanBudget, markers []string) *ScannerService {
	set := make(map[string]struct{}, len(markers))
	for _, m := range markers {
		set[m] = struct{}{}
	}
	return &ScannerService{fs: fs, budget: budget, markers: set}
}

// Scan returns the non-hidden children of root. Folders carry a context
// summary; entries that cannot be stat'ed are left out.
func (s *ScannerService) Scan(root string) ([]models.DirectoryEntry, error) {
	start := time.Now()
	root = s.fs.Clean(root)

	names, err := s.fs.ReadDirNames(root)
	if err != nil {
		metrics.RecordScan(time.Since(start), false)
		return nil, fmt.Errorf("%w: %s: %v", ErrScan, root, err)
	}

	entries := make([]models.DirectoryEntry, 0, len(names))
	for _, name := range names {
		if utils.IsHiddenName(name) {
			continue
		}

		full := s.fs.Join(root, name)
		info, err := s.fs.Stat(full)
		if err != nil {
			logging.Logger().Debug().Err(err).Str("path", full).Msg("skipping unreadable entry")
			continue
		}

		switch {
		case info.Mode().IsRegular():
			entries = append(entries, models.DirectoryEntry{Name: name, Kind: models.KindFile})
		case info.IsDir():
			entries = append(entries, models.DirectoryEntry{
				Name:    name,
				Kind:    models.KindFolder,
				Context: s.ComputeContext(full),
			})
		}
	}

	metrics.RecordScan(time.Since(start), true)
	logging.Logger().Debug().
		Str("root", root).
		Int("entries", len(entries)).
		Dur("took", time.Since(start)).
		Msg("folder scanned")

	return entries, nil
}

// scanState accumulates counts across one recursive walk.
type scanState struct {
	fileCount   int
	scanned     int
	extCounts   map[string]int
	extOrder    []string
	markers     []string
	depthCapped bool
}

// ComputeContext walks path depth-first within the scan budget. It returns
// nil when path itself cannot be listed.
func (s *ScannerService) ComputeContext(path string) *models.FolderContext {
	st := &scanState{extCounts: make(map[string]int)}
	if !s.walk(path, 0, st) {
		return nil
	}
	return s.summarize(st)
}

// walk reports false only when the folder at depth 0 is unreadable.
func (s *ScannerService) walk(dir string, depth int, st *scanState) bool {
	if depth > s.budget.MaxDepth {
		st.depthCapped = true
		return true
	}
	if st.scanned >= s.budget.MaxFilesScanned {
		return true
	}

	names, err := s.fs.ReadDirNames(dir)
	if err != nil {
		return depth != 0
	}

	for _, name := range names {
		if st.scanned >= s.budget.MaxFilesScanned {
			break
		}

		_, isMarker := s.markers[name]
		if utils.IsHiddenName(name) && !isMarker {
			continue
		}
		if depth == 0 && isMarker {
			st.markers = append(st.markers, name)
		}

		full := s.fs.Join(dir, name)
		info, err := s.fs.Stat(full)
		if err != nil {
			continue
		}

		switch {
		case info.Mode().IsRegular():
			st.fileCount++
			st.scanned++
			ext := utils.ExtensionLabel(name)
			if _, seen := st.extCounts[ext]; !seen {
				st.extOrder = append(st.extOrder, ext)
			}
			st.extCounts[ext]++
		case info.IsDir():
			s.walk(full, depth+1, st)
		}
	}
	return true
}

func (s *ScannerService) summarize(st *scanState) *models.FolderContext {
	exts := make([]string, len(st.extOrder))
	copy(exts, st.extOrder)
	// stable keeps first-seen order among equal counts
	sort.SliceStable(exts, func(i, j int) bool {
		return st.extCounts[exts[i]] > st.extCounts[exts[j]]
	})
	if len(exts) > maxTopExtensions {
		exts = exts[:maxTopExtensions]
	}

	markers := st.markers
	if len(markers) > maxMarkers {
		markers = markers[:maxMarkers]
	}
	if markers == nil {
		markers = []string{}
	}

	return &models.FolderContext{
		FileCount:     st.fileCount,
		TopExtensions: exts,
		Markers:       markers,
		Truncated:     st.scanned >= s.budget.MaxFilesScanned || st.depthCapped,
	}
}
