package web

import (
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/bickolasliu/intention-mcp/internal/errors"
	"github.com/bickolasliu/intention-mcp/internal/ops"
	"github.com/bickolasliu/intention-mcp/internal/store"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	store    *store.Store
	logger   *zap.Logger
	renderer *Renderer
}

// HandleFiles handles GET /files, the list of tracked files.
func (h *Handlers) HandleFiles(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Files(r.Context(), h.store)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, "files", FilesPageData{
		PageData: h.renderer.page("Files", "files"),
		Files:    result.Files,
		Total:    result.Total,
	})
}

// HandleDetail handles GET /files/{path...}, one file's history and analysis.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	path := r.PathValue("path")
	if strings.TrimSpace(path) == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("path is required"))
		return
	}

	history, err := ops.History(h.store, ops.HistoryInput{
		Path:  path,
		Limit: parseIntParam(r, "limit", ops.MaxHistoryLimit),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	explain, err := ops.Explain(h.store, ops.ExplainInput{Path: path})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, map[string]any{
			"history": history,
			"explain": explain,
		})
		return
	}

	intents := make([]RenderedIntent, 0, len(history.Intents))
	for _, v := range history.Intents {
		intents = append(intents, RenderedIntent{IntentView: v, PromptHTML: renderMarkdown(v.Prompt)})
	}

	h.renderer.renderPage(w, "detail", DetailPageData{
		PageData:        h.renderer.page(history.Path, "files"),
		Path:            history.Path,
		Intents:         intents,
		TotalCount:      history.TotalCount,
		Explanation:     explain.Explanation,
		Themes:          explain.Themes,
		Contributors:    explain.Contributors,
		Recommendations: explain.Recommendations,
	})
}

// HandleSearch handles GET /search?q=, prompt search across all files.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	data := SearchPageData{
		PageData: h.renderer.page("Search", "search"),
		Query:    query,
		HasQuery: query != "",
	}

	if query == "" {
		h.renderer.renderPage(w, "search", data)
		return
	}

	result, err := ops.Search(r.Context(), h.store, ops.SearchInput{
		Query: query,
		Limit: parseIntParam(r, "limit", ops.DefaultSearchLimit),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	data.Results = result.Results
	data.Message = result.Message
	h.renderer.renderPage(w, "search", data)
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}
