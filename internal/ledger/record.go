package ledger

import "time"

// Outcome is the result of a single move attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// Operation names the kind of move a record describes.
type Operation string

const (
	OperationMove Operation = "move"
	OperationUndo Operation = "undo"
)

// MoveRecord is one attempted move. Records are values and are never mutated
// once appended.
type MoveRecord struct {
	Seq         int       `json:"seq"`
	Operation   Operation `json:"operation"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Category    string    `json:"category,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Outcome     Outcome   `json:"outcome"`
	Error       string    `json:"error,omitempty"`
}

// Succeeded reports whether the move completed.
func (r MoveRecord) Succeeded() bool {
	return r.Outcome == OutcomeSuccess
}

// RunStatus tracks the undo lifecycle of a run.
type RunStatus string

const (
	RunActive     RunStatus = "active"
	RunSuperseded RunStatus = "superseded"
	RunConsumed   RunStatus = "consumed"
)

// Run is the ordered record of one organize invocation.
type Run struct {
	ID          string       `json:"id"`
	Target      string       `json:"target"`
	Status      RunStatus    `json:"status"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
	CreatedDirs []string     `json:"created_dirs,omitempty"`
	Records     []MoveRecord `json:"records"`
}

// Successful returns the records whose move completed, in append order.
func (r *Run) Successful() []MoveRecord {
	if r == nil {
		return nil
	}
	out := make([]MoveRecord, 0, len(r.Records))
	for _, rec := range r.Records {
		if rec.Succeeded() {
			out = append(out, rec)
		}
	}
	return out
}

// RunSummary is the history view of a run.
type RunSummary struct {
	ID         string
	Target     string
	Status     RunStatus
	StartedAt  time.Time
	FinishedAt time.Time
	Moved      int
	Failed     int
}
