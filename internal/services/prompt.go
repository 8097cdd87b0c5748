package services

import (
	"encoding/json"
	"strings"

	"organizer-api/internal/models"
)

const (
	maxPromptItems   = 200
	maxPromptHistory = 20
)

const systemPrompt = "You are a helpful assistant that outputs raw JSON."

const promptInstructions = `Item shapes:
- a file looks like {"name": "notes.txt", "type": "file"}
- a folder looks like {"name": "src", "type": "folder", "context": {...}} where
  context.fileCount is how many files it holds, context.topExtensions lists its
  most frequent extensions and context.markers lists project files found at its
  top level (package.json for Node.js, Cargo.toml for Rust, .git and so on).

What to do:
1. Find folders that already act as categories, such as "Images", "Documents",
   "Archives" or "Projects". They usually have a descriptive name, contain
   files and carry no project markers.
2. Pick the items that still need a home: loose files, project folders (those
   with markers) and folders whose names look random or unsorted.
3. Build the plan:
   - reuse an existing category folder name whenever it fits, e.g. keep
     "Images" instead of inventing "Pictures";
   - put project folders under "Projects", or split them by ecosystem such as
     "Node.js Projects" or "Python Projects";
   - only invent a new category when nothing existing fits;
   - anything that fits nowhere goes to "Misc".
4. Never list a category folder as an item to move, and leave folders that
   already serve as categories alone. When the folder only contains category
   folders and no loose items, answer with the empty plan {}.

Answer with JSON only, without markdown fences, in exactly this shape:
{
  "Category Name": {
    "reason": "one short sentence",
    "items": [{"name": "report.pdf", "type": "file"}, {"name": "MyApp", "type": "folder"}]
  }
}

If nothing needs organizing, answer {}.`

// buildUserPrompt embeds the listing and, when present, recent history as a
// hint about the user's habits.
func buildUserPrompt(items []models.DirectoryEntry, history []models.MoveRecord) string {
	listing, _ := json.MarshalIndent(items, "", "  ")

	var sb strings.Builder
	sb.WriteString("You organize files and folders. Categorize the items below.\n\nITEMS IN FOLDER:\n")
	sb.Write(listing)
	sb.WriteString("\n\n")
	sb.WriteString(promptInstructions)

	if len(history) > 0 {
		if len(history) > maxPromptHistory {
			history = history[:maxPromptHistory]
		}
		past, _ := json.Marshal(history)
		sb.WriteString("\n\nPrevious organization history (user preferences):\n")
		sb.Write(past)
	}
	return sb.String()
}
