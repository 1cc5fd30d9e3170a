package ops

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/bickolasliu/intention-mcp/internal/errors"
	"github.com/bickolasliu/intention-mcp/internal/store"
)

// SourcePath is a validated source file location.
type SourcePath struct {
	Rel string // workspace-relative, slash-separated
	Abs string
}

// ValidateSourcePath checks a source path that an operation will read or write.
// It rejects:
// 1. Paths outside the workspace (via the store's path mapping)
// 2. Paths inside the intent storage root, which only the store may write
// 3. Symlinks at the final component or at the parent directory
func ValidateSourcePath(st *store.Store, path string) (*SourcePath, error) {
	rel, err := st.Rel(path)
	if err != nil {
		return nil, err
	}
	abs := filepath.Join(st.Workspace(), filepath.FromSlash(rel))

	if isWithin(abs, st.Root()) {
		return nil, errors.NewInvalidRequest("path must not point into the intent storage directory")
	}

	if info, err := os.Lstat(filepath.Dir(abs)); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInvalidRequest("parent directory must not be a symlink")
	}
	if info, err := os.Lstat(abs); err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			return nil, errors.NewInvalidRequest("path must not be a symlink")
		}
		if info.IsDir() {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("path is a directory: %s", rel))
		}
	}

	return &SourcePath{Rel: rel, Abs: abs}, nil
}

// isWithin reports whether path equals dir or lies beneath it.
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// readSource returns the content of an existing source file.
func readSource(sp *SourcePath) (string, error) {
	f, err := openFileNoFollowRead(sp.Abs)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return "", errors.NewFileNotFound(sp.Rel)
		}
		return "", errors.As(err)
	}
	defer f.Close()

	var b strings.Builder
	if _, err := io.Copy(&b, f); err != nil {
		return "", errors.NewInternal(fmt.Errorf("read %s: %w", sp.Rel, err))
	}
	return b.String(), nil
}

// writeSource replaces a source file's content through a temp file renamed
// into place. The original mode is kept when the file already exists.
func writeSource(sp *SourcePath, content string) (err error) {
	dir := filepath.Dir(sp.Abs)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.NewInternal(fmt.Errorf("create directory for %s: %w", sp.Rel, err))
	}

	perm := os.FileMode(0644)
	if info, statErr := os.Stat(sp.Abs); statErr == nil {
		perm = info.Mode().Perm()
	}

	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(sp.Abs), ulid.Make().String()))
	f, err := openFileNoFollow(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return errors.As(err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = f.WriteString(content); err != nil {
		return errors.NewInternal(fmt.Errorf("write %s: %w", sp.Rel, err))
	}
	if err = f.Sync(); err != nil {
		return errors.NewInternal(fmt.Errorf("sync %s: %w", sp.Rel, err))
	}
	if err = f.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("close %s: %w", sp.Rel, err))
	}
	if err = os.Rename(tmpPath, sp.Abs); err != nil {
		return errors.NewInternal(fmt.Errorf("replace %s: %w", sp.Rel, err))
	}
	return nil
}

// undoWrite puts a source file back after its intent could not be recorded,
// so a change is never left on disk without one. It returns cause, joined
// with the restore failure if there was one.
func undoWrite(sp *SourcePath, before string, existed bool, cause error) error {
	var err error
	if existed {
		err = writeSource(sp, before)
	} else if rmErr := os.Remove(sp.Abs); rmErr != nil && !os.IsNotExist(rmErr) {
		err = rmErr
	}
	if err != nil {
		return errors.NewInternal(stderrors.Join(cause, fmt.Errorf("restore %s: %w", sp.Rel, err)))
	}
	return cause
}
