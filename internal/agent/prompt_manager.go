package agent

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PromptManager loads system prompts from a directory of markdown
// files, falling back to built-in defaults when no overrides exist.
type PromptManager struct {
	Directory string
}

func NewPromptManager(dir string) *PromptManager {
	return &PromptManager{Directory: dir}
}

// GetSubAgentPrompt merges every non-planner markdown file in the
// prompts directory into the sub-agent system prompt. Without a
// directory (or with an empty one) the built-in default applies.
func (pm *PromptManager) GetSubAgentPrompt() (string, error) {
	files, err := os.ReadDir(pm.Directory)
	if err != nil {
		return defaultSubAgentPrompt, nil
	}

	// Sort files to ensure deterministic prompt order
	order := map[string]int{
		"identity.md":     1,
		"capabilities.md": 2,
		"user.md":         3,
	}

	sort.Slice(files, func(i, j int) bool {
		oi, okI := order[files[i].Name()]
		oj, okJ := order[files[j].Name()]
		if okI && okJ {
			return oi < oj
		}
		if okI {
			return true
		}
		if okJ {
			return false
		}
		return files[i].Name() < files[j].Name()
	})

	var contents []string
	for _, f := range files {
		if !f.IsDir() && strings.HasSuffix(f.Name(), ".md") && f.Name() != "planner.md" {
			path := filepath.Join(pm.Directory, f.Name())
			data, err := os.ReadFile(path)
			if err != nil {
				log.Printf("Warning: Failed to read prompt file %s: %v", path, err)
				continue
			}
			contents = append(contents, string(data))
		}
	}

	if len(contents) == 0 {
		return defaultSubAgentPrompt, nil
	}

	return strings.Join(contents, "\n\n---\n\n"), nil
}

// GetPlannerPrompt returns planner.md if present, otherwise the
// built-in planning prompt.
func (pm *PromptManager) GetPlannerPrompt() (string, error) {
	path := filepath.Join(pm.Directory, "planner.md")
	data, err := os.ReadFile(path)
	if err != nil {
		return defaultPlannerPrompt, nil
	}
	return string(data), nil
}
