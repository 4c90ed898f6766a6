package importer

import (
	"sync"
	"time"

	"github.com/ougajs-sys/easyflows-backend/pkg/enums"
)

// Stats holds the cumulative import counters.
type Stats struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Skipped  int `json:"skipped"`
	Errors   int `json:"errors"`
}

// Progress is a point-in-time snapshot of a running import. Safe to hand
// out: it is a value copy.
type Progress struct {
	Status        enums.ImportStatus `json:"status"`
	Message       string             `json:"message,omitempty"`
	TotalRows     int                `json:"totalRows"`
	ValidRows     int                `json:"validRows"`
	InvalidRows   int                `json:"invalidRows"`
	DuplicateRows int                `json:"duplicateRows"`
	Imported      int                `json:"imported"`
	CurrentBatch  int                `json:"currentBatch"`
	TotalBatches  int                `json:"totalBatches"`
	Percent       float64            `json:"percent"`
	ETASeconds    float64            `json:"etaSeconds"`
	Stats         Stats              `json:"stats"`
}

// tracker guards mutable progress state shared between the import goroutine
// and progress readers.
type tracker struct {
	mu       sync.Mutex
	progress Progress
	started  time.Time
	now      func() time.Time
}

func newTracker(now func() time.Time) *tracker {
	return &tracker{
		progress: Progress{Status: enums.ImportStatusIdle},
		now:      now,
	}
}

func (t *tracker) snapshot() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.progress
}

// transition moves the status forward when the state machine allows it.
// Illegal transitions are dropped silently so a late update cannot undo a
// terminal state.
func (t *tracker) transition(next enums.ImportStatus) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.progress.Status.CanTransitionTo(next) {
		return false
	}
	t.progress.Status = next
	if next == enums.ImportStatusImporting {
		t.started = t.now()
	}
	return true
}

func (t *tracker) update(fn func(p *Progress)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.progress)
}

// batchDone records one processed batch and recomputes percent and ETA from
// throughput so far.
func (t *tracker) batchDone(imported int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	p := &t.progress
	p.CurrentBatch++
	p.Imported += imported
	if p.TotalBatches > 0 {
		p.Percent = float64(p.CurrentBatch) / float64(p.TotalBatches) * 100
	}
	elapsed := t.now().Sub(t.started).Seconds()
	if p.CurrentBatch > 0 && elapsed > 0 {
		perBatch := elapsed / float64(p.CurrentBatch)
		p.ETASeconds = perBatch * float64(p.TotalBatches-p.CurrentBatch)
	}
}

func (t *tracker) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.progress = Progress{Status: enums.ImportStatusIdle}
	t.started = time.Time{}
}
