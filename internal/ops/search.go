package ops

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bickolasliu/intention-mcp/internal/errors"
	"github.com/bickolasliu/intention-mcp/internal/store"
)

// SearchInput contains parameters for the Search operation.
type SearchInput struct {
	Query string // required
	Limit int    // default: 20, max: 100
}

// SearchResultItem is a matching intent with the source file it belongs to.
type SearchResultItem struct {
	IntentView
	File string `json:"file"`
}

// SearchOutput contains the result of the Search operation.
type SearchOutput struct {
	Query   string             `json:"query"`
	Results []SearchResultItem `json:"results"`
	Message string             `json:"message"`
}

// Search finds intents across all files whose prompt contains the query.
func Search(ctx context.Context, st *store.Store, input SearchInput) (*SearchOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, errors.NewInvalidRequest("query is required")
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("query exceeds %d characters", MaxQueryLength))
	}
	limit := clampLimit(input.Limit, DefaultSearchLimit, MaxSearchLimit)

	results, err := st.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	at := now()
	items := make([]SearchResultItem, 0, len(results))
	for _, r := range results {
		items = append(items, SearchResultItem{
			IntentView: ViewOf(r.Intent, at),
			File:       r.File,
		})
	}

	msg := "No intents found matching your query"
	if len(items) > 0 {
		msg = fmt.Sprintf("Found %d intent(s) matching %q", len(items), query)
	}
	return &SearchOutput{
		Query:   query,
		Results: items,
		Message: msg,
	}, nil
}
