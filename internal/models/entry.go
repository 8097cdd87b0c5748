package models

// EntryKind distinguishes files from folders in scan results and plans.
type EntryKind string

const (
	KindFile   EntryKind = "file"
	KindFolder EntryKind = "folder"
)

// ParseEntryKind maps a wire value to a kind. Anything other than
// "folder" is treated as a file.
func ParseEntryKind(s string) EntryKind {
	if EntryKind(s) == KindFolder {
		return KindFolder
	}
	return KindFile
}

// DirectoryEntry is one immediate child of a scanned folder
type DirectoryEntry struct {
	Name    string         `json:"name" validate:"required,entry_name"`
	Kind    EntryKind      `json:"type" validate:"omitempty,oneof=file folder"`
	Context *FolderContext `json:"context,omitempty"`
}

// FolderContext summarizes the contents of a sub-folder
type FolderContext struct {
	FileCount     int      `json:"fileCount"`
	TopExtensions []string `json:"topExtensions"`
	Markers       []string `json:"markers"`
	Truncated     bool     `json:"truncated"`
}

// NoExtension stands in for files without an extension in TopExtensions.
const NoExtension = "(no ext)"

// ScanBudget bounds the recursive walk of a single folder.
type ScanBudget struct {
	MaxDepth        int `json:"maxDepth"`
	MaxFilesScanned int `json:"maxFilesScanned"`
}

func DefaultScanBudget() ScanBudget {
	return ScanBudget{MaxDepth: 3, MaxFilesScanned: 500}
}
