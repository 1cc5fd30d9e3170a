package ops

import (
	"context"

	"github.com/bickolasliu/intention-mcp/internal/errors"
	"github.com/bickolasliu/intention-mcp/internal/store"
)

// FileSummary describes one tracked source file.
type FileSummary struct {
	Path          string `json:"path"`
	IntentCount   int    `json:"intent_count"`
	LastTimestamp string `json:"last_timestamp,omitempty"`
	LastUser      string `json:"last_user,omitempty"`
	LastPrompt    string `json:"last_prompt,omitempty"`
}

// FilesOutput contains the result of the Files operation.
type FilesOutput struct {
	Files []FileSummary `json:"files"`
	Total int           `json:"total"`
}

// Files lists every tracked source file with its latest intent.
func Files(ctx context.Context, st *store.Store) (*FilesOutput, error) {
	paths, err := st.Files(ctx)
	if err != nil {
		return nil, err
	}

	files := make([]FileSummary, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewCancelled("list files")
		}
		intents, err := st.History(p)
		if err != nil {
			return nil, err
		}
		fs := FileSummary{Path: p, IntentCount: len(intents)}
		if len(intents) > 0 {
			latest := sortNewestFirst(intents)[0]
			fs.LastTimestamp = latest.Timestamp
			fs.LastUser = latest.User
			fs.LastPrompt = latest.Prompt
		}
		files = append(files, fs)
	}

	return &FilesOutput{Files: files, Total: len(files)}, nil
}
