package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	interrors "github.com/bickolasliu/intention-mcp/internal/errors"
	"github.com/bickolasliu/intention-mcp/internal/intent"
)

// read loads an intent file. A missing file yields nil. An unparseable file
// yields nil with corrupt set; it is logged, never returned as an error.
func (s *Store) read(file string) (intents []intent.Intent, corrupt bool, err error) {
	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, interrors.NewInternal(fmt.Errorf("read %s: %w", file, err))
	}

	doc, err := decode(data)
	if err != nil {
		s.logger.Warn("ignoring corrupt intent file", zap.String("file", file), zap.Error(err))
		return nil, true, nil
	}
	return doc.Intents, false, nil
}

// decode parses an intent document and fills defaults older files omit.
func decode(data []byte) (intent.File, error) {
	var doc intent.File
	if err := json.Unmarshal(data, &doc); err != nil {
		return intent.File{}, err
	}
	for i := range doc.Intents {
		doc.Intents[i] = doc.Intents[i].Normalized()
	}
	return doc, nil
}

// writeAtomic writes doc as indented JSON via a temp file renamed into place,
// so readers never observe a partial document.
func writeAtomic(file string, doc intent.File) (err error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Refuse to follow a symlink at the destination
	if info, statErr := os.Lstat(file); statErr == nil && info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("intent file is a symlink")
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(file)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmpPath, 0644)

	return os.Rename(tmpPath, file)
}
