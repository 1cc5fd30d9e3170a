package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	interrors "github.com/bickolasliu/intention-mcp/internal/errors"
	"github.com/bickolasliu/intention-mcp/internal/intent"
)

// SearchResult is a matching intent tagged with its source path.
type SearchResult struct {
	intent.Intent
	File string `json:"file"`
}

// errStopWalk ends a walk early without reporting an error.
var errStopWalk = errors.New("stop walk")

// walk visits every intent file under the root in lexical order using an
// explicit stack, so directory depth never grows the call stack. visit receives
// the source path (workspace-relative, slash-separated) and the file path.
// Returning errStopWalk ends the walk cleanly.
func (s *Store) walk(ctx context.Context, op string, visit func(source, file string) error) error {
	if !s.Exists() {
		return nil
	}

	stack := []string{s.root}
	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if err := ctx.Err(); err != nil {
			return interrors.NewCancelled(op)
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			if dir == s.root {
				return interrors.NewInternal(fmt.Errorf("read storage root: %w", err))
			}
			s.logger.Warn("skipping unreadable directory", zap.String("dir", dir), zap.Error(err))
			continue
		}

		// Subdirectories are pushed in reverse so they pop in lexical order.
		var subdirs []string
		for _, e := range entries {
			full := filepath.Join(dir, e.Name())
			switch {
			case e.Type()&os.ModeSymlink != 0:
				continue
			case e.IsDir():
				subdirs = append(subdirs, full)
			case e.Type().IsRegular() && strings.HasSuffix(e.Name(), fileExt):
				if err := ctx.Err(); err != nil {
					return interrors.NewCancelled(op)
				}
				rel, err := filepath.Rel(s.root, full)
				if err != nil {
					continue
				}
				source := filepath.ToSlash(strings.TrimSuffix(rel, fileExt))
				if err := visit(source, full); err != nil {
					if errors.Is(err, errStopWalk) {
						return nil
					}
					return err
				}
			}
		}
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}
	return nil
}

// Search returns intents whose prompt contains query (case-insensitive),
// newest first. Collection stops once limit results are found; limit <= 0
// means no limit. Corrupt files are skipped.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	needle := strings.ToLower(query)
	results := []SearchResult{}

	err := s.walk(ctx, "search", func(source, file string) error {
		data, err := os.ReadFile(file)
		if err != nil {
			s.logger.Warn("skipping unreadable intent file", zap.String("file", file), zap.Error(err))
			return nil
		}
		doc, err := decode(data)
		if err != nil {
			s.logger.Warn("skipping corrupt intent file", zap.String("file", file), zap.Error(err))
			return nil
		}
		for _, it := range doc.Intents {
			if !strings.Contains(strings.ToLower(it.Prompt), needle) {
				continue
			}
			results = append(results, SearchResult{Intent: it, File: source})
			if limit > 0 && len(results) >= limit {
				return errStopWalk
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(results, func(a, b SearchResult) int {
		switch {
		case intent.NewestFirst(a.Intent, b.Intent):
			return -1
		case intent.NewestFirst(b.Intent, a.Intent):
			return 1
		}
		return 0
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Files returns the source paths that have an intent file, in lexical order.
func (s *Store) Files(ctx context.Context) ([]string, error) {
	files := []string{}
	err := s.walk(ctx, "list files", func(source, _ string) error {
		files = append(files, source)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}
