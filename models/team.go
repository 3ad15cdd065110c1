package models

import "time"

// Team is a tournament participant. Placement is nil while the team is still
// active; once set it is the team's final standing (1 = champion).
type Team struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	Seed         int       `json:"seed" db:"seed"`
	Placement    *int      `json:"placement,omitempty" db:"placement"`
	Eliminated   bool      `json:"eliminated" db:"eliminated"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
