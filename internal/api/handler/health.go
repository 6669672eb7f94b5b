package handler

import (
	"net/http"

	"github.com/mcoot/wordbattle/internal/api/response"
)

// DictionaryStatus reports whether a word list is available
type DictionaryStatus interface {
	IsLoaded() bool
	WordCount() int
}

// HealthHandler handles the health check endpoint
type HealthHandler struct {
	dictionary DictionaryStatus
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(dictionary DictionaryStatus) *HealthHandler {
	return &HealthHandler{dictionary: dictionary}
}

// Get handles GET /api/v1/health. The server is only "ok" once a word list
// is loaded; rooms cannot start games without one.
func (h *HealthHandler) Get(w http.ResponseWriter, _ *http.Request) {
	resp := response.Health{Status: "ok"}
	if h.dictionary != nil {
		resp.DictionaryLoaded = h.dictionary.IsLoaded()
		resp.DictionaryWords = h.dictionary.WordCount()
	}

	status := http.StatusOK
	if !resp.DictionaryLoaded {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, status, resp)
}
