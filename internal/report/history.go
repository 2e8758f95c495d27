package report

import (
	"sync"

	"github.com/giotroni/DB-VP/internal/importer"
)

// DefaultHistorySize is how many runs the serve command remembers.
const DefaultHistorySize = 20

// History keeps the most recent run reports in memory, newest first.
// Nothing is persisted; the history lives for the process lifetime only.
type History struct {
	mu   sync.RWMutex
	max  int
	runs []*importer.Report
}

// NewHistory creates a History bounded to max entries.
// A non-positive max selects DefaultHistorySize.
func NewHistory(max int) *History {
	if max <= 0 {
		max = DefaultHistorySize
	}
	return &History{max: max}
}

// Add records a finished run, evicting the oldest beyond the bound.
func (h *History) Add(r *importer.Report) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.runs = append([]*importer.Report{r}, h.runs...)
	if len(h.runs) > h.max {
		h.runs = h.runs[:h.max]
	}
}

// Get returns the run with the given ID.
func (h *History) Get(id string) (*importer.Report, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, r := range h.runs {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

// List returns the remembered runs, newest first.
func (h *History) List() []*importer.Report {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*importer.Report, len(h.runs))
	copy(out, h.runs)
	return out
}

// Latest returns the most recent run, or nil when none exist.
func (h *History) Latest() *importer.Report {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.runs) == 0 {
		return nil
	}
	return h.runs[0]
}
