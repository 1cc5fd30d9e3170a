package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveWorkspace_Explicit(t *testing.T) {
	t.Setenv(WorkspaceEnv, "/ignored")
	cwd := t.TempDir()

	got, err := ResolveWorkspace("proj", cwd)
	if err != nil {
		t.Fatalf("ResolveWorkspace() error = %v", err)
	}
	if want := filepath.Join(cwd, "proj"); got != want {
		t.Errorf("ResolveWorkspace() = %q, want %q", got, want)
	}
}

func TestResolveWorkspace_Env(t *testing.T) {
	envRoot := t.TempDir()
	t.Setenv(WorkspaceEnv, envRoot)

	got, err := ResolveWorkspace("", t.TempDir())
	if err != nil {
		t.Fatalf("ResolveWorkspace() error = %v", err)
	}
	if got != envRoot {
		t.Errorf("ResolveWorkspace() = %q, want %q", got, envRoot)
	}
}

func TestResolveWorkspace_Marker(t *testing.T) {
	t.Setenv(WorkspaceEnv, "")
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "go.mod"), []byte("module x\n"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	nested := filepath.Join(root, "internal", "pkg")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	got, err := ResolveWorkspace("", nested)
	if err != nil {
		t.Fatalf("ResolveWorkspace() error = %v", err)
	}
	if got != root {
		t.Errorf("ResolveWorkspace() = %q, want %q", got, root)
	}
}

func TestFindWorkspaceRoot_GitDir(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0755); err != nil {
		t.Fatalf("Mkdir() error = %v", err)
	}
	if got := FindWorkspaceRoot(root); got != root {
		t.Errorf("FindWorkspaceRoot() = %q, want %q", got, root)
	}
}
