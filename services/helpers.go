package services

import "sync"

// TournamentLocker serializes bracket mutations per tournament. Reads do not
// take the lock; they see the last committed state.
type TournamentLocker struct {
	locks sync.Map
}

func NewTournamentLocker() *TournamentLocker {
	return &TournamentLocker{}
}

// Lock blocks until the tournament's mutex is held and returns the unlock
// function.
func (l *TournamentLocker) Lock(tournamentID int) func() {
	value, _ := l.locks.LoadOrStore(tournamentID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
