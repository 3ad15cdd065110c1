package models

import "time"

// BracketSection partitions the bracket topology.
type BracketSection string

const (
	SectionWinners BracketSection = "winners"
	SectionLosers  BracketSection = "losers"
	SectionFinal   BracketSection = "final"
	SectionDecider BracketSection = "decider"
)

type MatchStatus string

const (
	MatchStatusPending  MatchStatus = "pending"
	MatchStatusReady    MatchStatus = "ready"
	MatchStatusFinished MatchStatus = "finished"
)

type MatchSlot string

const (
	SlotA MatchSlot = "a"
	SlotB MatchSlot = "b"
)

// MatchLink addresses the slot of another match that a winner or loser
// advances into.
type MatchLink struct {
	MatchID int       `json:"match_id"`
	Slot    MatchSlot `json:"slot"`
}

// Match is the atomic unit of the bracket. IDs are template match numbers,
// unique within a tournament and stable for its lifetime.
type Match struct {
	ID           int            `json:"id" db:"match_id"`
	TournamentID int            `json:"tournament_id" db:"tournament_id"`
	Section      BracketSection `json:"section" db:"section"`
	Round        int            `json:"round" db:"round"`
	SlotA        *int           `json:"slot_a,omitempty" db:"slot_a_team_id"`
	SlotB        *int           `json:"slot_b,omitempty" db:"slot_b_team_id"`
	IsBye        bool           `json:"is_bye" db:"is_bye"`
	Status       MatchStatus    `json:"status" db:"status"`
	WinnerID     *int           `json:"winner_id,omitempty" db:"winner_team_id"`
	LoserID      *int           `json:"loser_id,omitempty" db:"loser_team_id"`
	ScoreA       *int           `json:"score_a,omitempty" db:"score_a"`
	ScoreB       *int           `json:"score_b,omitempty" db:"score_b"`
	NextOnWin    *MatchLink     `json:"next_on_win,omitempty" db:"-"`
	NextOnLoss   *MatchLink     `json:"next_on_loss,omitempty" db:"-"`
	Label        string         `json:"label,omitempty" db:"label"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}

// Occupies reports whether teamID currently fills one of the match slots.
func (m *Match) Occupies(teamID int) bool {
	if m.SlotA != nil && *m.SlotA == teamID {
		return true
	}
	return m.SlotB != nil && *m.SlotB == teamID
}
