package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/user/webstat/internal/snippet"
	"github.com/user/webstat/internal/usecase"
)

// SnippetHandler regenerates the embed code for a site from a set of named
// boolean options.
type SnippetHandler struct {
	sites      *usecase.SitesUseCase
	trackerURL string
	logger     *slog.Logger
}

// NewSnippetHandler creates a new SnippetHandler. trackerURL is the public
// URL of the tracker script the embed code injects.
func NewSnippetHandler(sites *usecase.SitesUseCase, trackerURL string, logger *slog.Logger) *SnippetHandler {
	return &SnippetHandler{sites: sites, trackerURL: trackerURL, logger: logger}
}

type snippetResponse struct {
	Snippet   string   `json:"snippet"`
	ScriptURL string   `json:"script_url"`
	Options   []string `json:"options"`
}

// Generate handles GET /api/sites/{siteID}/snippet?options=a,b,c.
// Without an options parameter all eight options are enabled.
func (h *SnippetHandler) Generate(w http.ResponseWriter, r *http.Request) {
	site, ok := resolveOwnedSite(w, r, h.sites, h.logger)
	if !ok {
		return
	}

	var opts snippet.Options
	if raw := r.URL.Query().Get("options"); raw != "" {
		opts = snippet.NewOptions(strings.Split(raw, ","))
	} else {
		opts = snippet.NewOptions(snippet.DefaultOptions())
	}

	writeJSON(w, http.StatusOK, snippetResponse{
		Snippet:   snippet.GenerateEmbed(h.trackerURL, opts),
		ScriptURL: snippet.BuildScriptURL(h.trackerURL, site.Domain, opts),
		Options:   opts.List(),
	})
}
