package cart

import (
	"github.com/chowline/chowline-backend/pkg/db/models"
)

// Snapshot is the read-time projection of one cart session: the session row,
// its active lines, and the computed summary. Session is nil when the owner
// has no live cart, which is a normal state rather than an error.
type Snapshot struct {
	Session *models.CartSession `json:"session"`
	Lines   []models.CartLine   `json:"lines"`
	Summary Summary             `json:"summary"`
}

// MergeResult reports the outcome of folding anonymous carts into a user's
// carts at login. LinesMerged counts distinct lines moved or folded, not units.
type MergeResult struct {
	Merged      bool `json:"merged"`
	LinesMerged int  `json:"lines_merged"`
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		Session: nil,
		Lines:   nil,
		Summary: Summary{},
	}
}
