// Package store persists intents as one JSON document per tracked source file.
//
// A source path "src/auth.js" maps to "<root>/src/auth.js.json". Files are
// append-only: Save loads the full sequence, appends and rewrites it atomically.
// Writers in this process are serialized per intent file; concurrent writers in
// other processes remain last-writer-wins.
package store

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	interrors "github.com/bickolasliu/intention-mcp/internal/errors"
	"github.com/bickolasliu/intention-mcp/internal/intent"
)

// fileExt is appended to a source path to form its intent file name.
const fileExt = ".json"

// Store reads and appends intents under a storage root.
type Store struct {
	workspace string
	root      string
	logger    *zap.Logger

	// now is overridable in tests.
	now func() time.Time

	idMu    sync.Mutex
	entropy io.Reader

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// SaveInput is the caller-supplied part of a new intent.
type SaveInput struct {
	Prompt    string
	User      string
	Model     string
	Overrides []string
}

// New returns a Store for source files under workspace, keeping intent files
// under root. Both paths are made absolute. A nil logger discards logs.
func New(workspace, root string, logger *zap.Logger) (*Store, error) {
	ws, err := filepath.Abs(workspace)
	if err != nil {
		return nil, interrors.NewInternal(fmt.Errorf("resolve workspace: %w", err))
	}
	r, err := filepath.Abs(root)
	if err != nil {
		return nil, interrors.NewInternal(fmt.Errorf("resolve storage root: %w", err))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		workspace: ws,
		root:      r,
		logger:    logger,
		now:       time.Now,
		entropy:   ulid.Monotonic(rand.Reader, 0),
		locks:     make(map[string]*sync.Mutex),
	}, nil
}

// Root returns the absolute storage root.
func (s *Store) Root() string { return s.root }

// Workspace returns the absolute workspace root.
func (s *Store) Workspace() string { return s.workspace }

// Exists reports whether the storage root directory exists.
func (s *Store) Exists() bool {
	info, err := os.Stat(s.root)
	return err == nil && info.IsDir()
}

// EnsureRoot creates the storage root if missing. Idempotent.
func (s *Store) EnsureRoot() error {
	if err := os.MkdirAll(s.root, 0755); err != nil {
		return interrors.NewInternal(fmt.Errorf("create storage root: %w", err))
	}
	return nil
}

// Rel normalizes a source path to its slash-separated form relative to the
// workspace. Absolute paths must lie inside the workspace; relative paths may
// not climb out of it.
func (s *Store) Rel(path string) (string, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return "", interrors.NewInvalidRequest("path is required")
	}

	var rel string
	if filepath.IsAbs(p) {
		r, err := filepath.Rel(s.workspace, filepath.Clean(p))
		if err != nil {
			return "", interrors.NewPathOutsideWorkspace(path, s.workspace)
		}
		rel = r
	} else {
		rel = filepath.Clean(p)
	}

	if rel == "." {
		return "", interrors.NewInvalidRequest("path must name a file")
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", interrors.NewPathOutsideWorkspace(path, s.workspace)
	}
	return filepath.ToSlash(rel), nil
}

// Abs returns the absolute source path for a workspace-relative path.
func (s *Store) Abs(path string) (string, error) {
	rel, err := s.Rel(path)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.workspace, filepath.FromSlash(rel)), nil
}

// IntentFilePath returns where the intents of a source path are stored.
func (s *Store) IntentFilePath(path string) (string, error) {
	rel, err := s.Rel(path)
	if err != nil {
		return "", err
	}
	return s.intentFile(rel), nil
}

func (s *Store) intentFile(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel)+fileExt)
}

// lockFor returns the mutex guarding one intent file.
func (s *Store) lockFor(file string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	mu, ok := s.locks[file]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[file] = mu
	}
	return mu
}

func (s *Store) newID(t time.Time) (string, error) {
	s.idMu.Lock()
	defer s.idMu.Unlock()
	id, err := ulid.New(ulid.Timestamp(t), s.entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Save appends a new intent for path and persists the file.
// Override ids must already be recorded for the same path.
func (s *Store) Save(path string, in SaveInput) (intent.Intent, error) {
	rel, err := s.Rel(path)
	if err != nil {
		return intent.Intent{}, err
	}
	if strings.TrimSpace(in.Prompt) == "" {
		return intent.Intent{}, interrors.NewInvalidRequest("prompt is required")
	}

	file := s.intentFile(rel)
	mu := s.lockFor(file)
	mu.Lock()
	defer mu.Unlock()

	existing, corrupt, err := s.read(file)
	if err != nil {
		return intent.Intent{}, err
	}

	if unknown := unknownOverrides(existing, in.Overrides); len(unknown) > 0 {
		return intent.Intent{}, interrors.NewUnknownOverride(rel, unknown)
	}

	now := s.now().UTC()
	// Keep timestamps non-decreasing even if the wall clock steps back.
	if n := len(existing); n > 0 {
		if last, ok := existing[n-1].Time(); ok && last.After(now) {
			now = last
		}
	}

	id, err := s.newID(now)
	if err != nil {
		return intent.Intent{}, interrors.NewInternal(fmt.Errorf("generate id: %w", err))
	}

	user := strings.TrimSpace(in.User)
	if user == "" {
		user = intent.UnknownUser
	}
	created := intent.Intent{
		ID:        id,
		Timestamp: intent.FormatTimestamp(now),
		User:      user,
		Prompt:    in.Prompt,
		Model:     strings.TrimSpace(in.Model),
		Overrides: append([]string(nil), in.Overrides...),
	}.Normalized()

	if corrupt {
		s.preserveCorrupt(file, now)
	}

	doc := intent.File{Intents: append(existing, created)}
	if err := writeAtomic(file, doc); err != nil {
		return intent.Intent{}, interrors.NewInternal(fmt.Errorf("write %s: %w", rel, err))
	}

	s.logger.Debug("intent saved",
		zap.String("path", rel),
		zap.String("id", created.ID),
		zap.Int("count", len(doc.Intents)),
	)
	return created, nil
}

// History returns the stored intents for path in recorded order.
// Missing or corrupt files yield an empty sequence.
func (s *Store) History(path string) ([]intent.Intent, error) {
	rel, err := s.Rel(path)
	if err != nil {
		return nil, err
	}
	intents, _, err := s.read(s.intentFile(rel))
	if err != nil {
		return nil, err
	}
	if intents == nil {
		intents = []intent.Intent{}
	}
	return intents, nil
}

func unknownOverrides(existing []intent.Intent, overrides []string) []string {
	if len(overrides) == 0 {
		return nil
	}
	known := make(map[string]bool, len(existing))
	for _, it := range existing {
		known[it.ID] = true
	}
	var unknown []string
	for _, id := range overrides {
		if !known[id] {
			unknown = append(unknown, id)
		}
	}
	return unknown
}

// preserveCorrupt moves an unparseable intent file aside before it is replaced.
func (s *Store) preserveCorrupt(file string, now time.Time) {
	dest := fmt.Sprintf("%s.corrupt-%d", file, now.Unix())
	if err := os.Rename(file, dest); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("could not preserve corrupt intent file", zap.String("file", file), zap.Error(err))
		return
	}
	s.logger.Warn("corrupt intent file moved aside", zap.String("file", file), zap.String("backup", dest))
}
