package config

import (
	"os"
	"path/filepath"
)

// WorkspaceEnv names the environment variable MCP hosts may set to the project root.
const WorkspaceEnv = "MCP_WORKSPACE"

// workspaceMarkers identify a project root when walking upward.
var workspaceMarkers = []string{".git", "go.mod", "package.json", DirName}

// ResolveWorkspace picks the workspace root.
// Priority: explicit value, $MCP_WORKSPACE, nearest ancestor of cwd holding a
// project marker, cwd itself. Relative explicit values resolve against cwd.
func ResolveWorkspace(explicit, cwd string) (string, error) {
	candidate := explicit
	if candidate == "" {
		candidate = os.Getenv(WorkspaceEnv)
	}
	if candidate != "" {
		if !filepath.IsAbs(candidate) {
			candidate = filepath.Join(cwd, candidate)
		}
		return filepath.Abs(candidate)
	}

	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", err
	}
	if root := FindWorkspaceRoot(abs); root != "" {
		return root, nil
	}
	return abs, nil
}

// FindWorkspaceRoot walks upward from startDir looking for a project marker.
// Returns empty string if none is found.
func FindWorkspaceRoot(startDir string) string {
	dir := startDir
	for {
		for _, marker := range workspaceMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
