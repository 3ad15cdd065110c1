package services

import "errors"

var (
	ErrTournamentNotFound      = errors.New("tournament not found")
	ErrMatchNotFound           = errors.New("match not found")
	ErrBracketAlreadyGenerated = errors.New("bracket has already been generated for this tournament")
	ErrBracketNotGenerated     = errors.New("bracket has not been generated for this tournament")

	ErrTournamentNameRequired  = errors.New("tournament name is required")
	ErrParticipantNameRequired = errors.New("every participant needs a name")
)
