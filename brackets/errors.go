package brackets

import (
	"fmt"
	"strings"
)

// ConfigurationError reports a participant count with no available topology.
type ConfigurationError struct {
	Size int
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("no bracket topology available for %d participants (supported: 5-10 and powers of two)", e.Size)
}

// SeedCountMismatchError reports a participant list whose length does not
// match the topology size.
type SeedCountMismatchError struct {
	Want int
	Got  int
}

func (e *SeedCountMismatchError) Error() string {
	return fmt.Sprintf("topology expects %d seeded participants, got %d", e.Want, e.Got)
}

// InvalidResultError reports a result submission that violates a precondition
// of the match state machine. Reason names the violated precondition.
type InvalidResultError struct {
	MatchID int
	Reason  string
}

func (e *InvalidResultError) Error() string {
	return fmt.Sprintf("invalid result for match %d: %s", e.MatchID, e.Reason)
}

// UnsafeUndoError reports an undo that would corrupt a downstream match which
// has already been played with the value the undone match supplied.
type UnsafeUndoError struct {
	MatchID   int
	BlockedBy int
}

func (e *UnsafeUndoError) Error() string {
	return fmt.Sprintf("cannot undo match %d: downstream match %d has already finished", e.MatchID, e.BlockedBy)
}

// TopologyInvalidError collects every invariant a topology violates, not just
// the first one found.
type TopologyInvalidError struct {
	Size       int
	Violations []string
}

func (e *TopologyInvalidError) Error() string {
	return fmt.Sprintf("topology for %d participants is invalid: %s", e.Size, strings.Join(e.Violations, "; "))
}
