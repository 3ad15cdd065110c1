package models

import "time"

// TournamentPhase mirrors the phase ENUM in the database.
type TournamentPhase string

const (
	PhaseBracketPending  TournamentPhase = "bracket_pending"
	PhaseInProgress      TournamentPhase = "in_progress"
	PhaseAwaitingDecider TournamentPhase = "awaiting_decider"
	PhaseCompleted       TournamentPhase = "completed"
)

type Tournament struct {
	ID         int             `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	Phase      TournamentPhase `json:"phase" db:"phase"`
	ChampionID *int            `json:"champion_id,omitempty" db:"champion_team_id"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}
