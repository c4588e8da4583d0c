package handler

import (
	"net/http"
	"strconv"

	"github.com/user/webstat/web"
)

// TrackerHandler serves the embedded browser snippet. The id and options
// query parameters are consumed by the script itself in the browser.
type TrackerHandler struct{}

// NewTrackerHandler creates a new TrackerHandler.
func NewTrackerHandler() *TrackerHandler {
	return &TrackerHandler{}
}

func (h *TrackerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(web.TrackerJS)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(web.TrackerJS)
}
