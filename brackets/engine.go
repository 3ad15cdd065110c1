package brackets

import (
	"fmt"
	"sort"

	"github.com/volleykit/tournament-server/models"
)

// Standing is one row of the final placement table.
type Standing struct {
	TeamID    int `json:"team_id"`
	Placement int `json:"placement"`
}

// Changeset lists everything a single ApplyResult or UndoResult touched, so
// the caller can persist exactly that delta in one transaction.
type Changeset struct {
	Matches  []*models.Match
	Teams    []*models.Team
	Phase    models.TournamentPhase
	Champion *int
}

// Bracket is the in-memory state of one tournament's matches and teams. All
// mutations go through ApplyResult and UndoResult; the caller owns
// serialization (one writer per tournament) and persistence.
type Bracket struct {
	Phase    models.TournamentPhase
	Champion *int

	matches map[int]*models.Match
	order   []int
	teams   map[int]*models.Team

	dirtyMatches map[int]struct{}
	dirtyTeams   map[int]struct{}
}

// NewBracket rebuilds a bracket from persisted rows.
func NewBracket(matches []*models.Match, teams []*models.Team, phase models.TournamentPhase, champion *int) (*Bracket, error) {
	b := &Bracket{
		Phase:    phase,
		Champion: champion,
		matches:  make(map[int]*models.Match, len(matches)),
		order:    make([]int, 0, len(matches)),
		teams:    make(map[int]*models.Team, len(teams)),
	}
	for _, m := range matches {
		if _, dup := b.matches[m.ID]; dup {
			return nil, fmt.Errorf("duplicate match id %d", m.ID)
		}
		b.matches[m.ID] = m
		b.order = append(b.order, m.ID)
	}
	sort.Ints(b.order)
	for _, m := range matches {
		for _, link := range []*models.MatchLink{m.NextOnWin, m.NextOnLoss} {
			if link == nil {
				continue
			}
			if _, ok := b.matches[link.MatchID]; !ok {
				return nil, fmt.Errorf("match %d links to unknown match %d", m.ID, link.MatchID)
			}
		}
	}
	for _, team := range teams {
		b.teams[team.ID] = team
	}
	return b, nil
}

// Matches returns all matches ordered by id. The same input always yields the
// same output; callers must not mutate the returned records.
func (b *Bracket) Matches() []*models.Match {
	out := make([]*models.Match, 0, len(b.order))
	for _, num := range b.order {
		out = append(out, b.matches[num])
	}
	return out
}

// Teams returns all teams ordered by seed.
func (b *Bracket) Teams() []*models.Team {
	out := make([]*models.Team, 0, len(b.teams))
	for _, team := range b.teams {
		out = append(out, team)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seed < out[j].Seed })
	return out
}

// Standings returns placed teams ordered by placement; active teams are
// omitted.
func (b *Bracket) Standings() []Standing {
	out := make([]Standing, 0, len(b.teams))
	for _, team := range b.teams {
		if team.Placement != nil {
			out = append(out, Standing{TeamID: team.ID, Placement: *team.Placement})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Placement < out[j].Placement })
	return out
}

// ApplyResult applies a reported outcome to one ready match and propagates all
// consequences: slot fills downstream, elimination placements, decider
// activation and tournament completion. All preconditions are checked before
// the first mutation, so a returned error means the bracket is untouched.
func (b *Bracket) ApplyResult(matchID, winnerID, loserID int, scoreA, scoreB *int) (*Changeset, error) {
	m, ok := b.matches[matchID]
	if !ok {
		return nil, &InvalidResultError{MatchID: matchID, Reason: "match not found"}
	}
	if m.IsBye {
		return nil, &InvalidResultError{MatchID: matchID, Reason: "bye matches are resolved automatically and cannot be reported"}
	}
	if m.Status != models.MatchStatusReady {
		return nil, &InvalidResultError{MatchID: matchID, Reason: fmt.Sprintf("match status is %q, want %q", m.Status, models.MatchStatusReady)}
	}
	if winnerID == loserID {
		return nil, &InvalidResultError{MatchID: matchID, Reason: "winner and loser must differ"}
	}
	slotA, slotB := *m.SlotA, *m.SlotB
	if !(winnerID == slotA && loserID == slotB) && !(winnerID == slotB && loserID == slotA) {
		return nil, &InvalidResultError{MatchID: matchID, Reason: "winner and loser do not match the occupants of the match"}
	}

	b.beginChange()

	m.Status = models.MatchStatusFinished
	m.WinnerID = intp(winnerID)
	m.LoserID = intp(loserID)
	m.ScoreA = copyInt(scoreA)
	m.ScoreB = copyInt(scoreB)
	b.touchMatch(m)

	switch m.Section {
	case models.SectionFinal:
		if winnerID == slotA {
			// The winners-bracket representative stayed undefeated: the
			// tournament ends here and the decider is never activated.
			b.setPlacement(winnerID, 1, false)
			b.setPlacement(loserID, 2, true)
			b.Champion = intp(winnerID)
			b.Phase = models.PhaseCompleted
			b.deactivateDecider()
		} else if d := b.deciderMatch(); d != nil {
			d.SlotA = intp(loserID)
			d.SlotB = intp(winnerID)
			d.Status = models.MatchStatusReady
			b.touchMatch(d)
			b.Phase = models.PhaseAwaitingDecider
		} else {
			b.setPlacement(winnerID, 1, false)
			b.setPlacement(loserID, 2, true)
			b.Champion = intp(winnerID)
			b.Phase = models.PhaseCompleted
		}
	case models.SectionDecider:
		b.setPlacement(winnerID, 1, false)
		b.setPlacement(loserID, 2, true)
		b.Champion = intp(winnerID)
		b.Phase = models.PhaseCompleted
	default:
		if m.NextOnWin != nil {
			b.place(winnerID, m.NextOnWin)
		}
		if m.NextOnLoss != nil {
			b.place(loserID, m.NextOnLoss)
		} else {
			b.eliminate(loserID)
		}
	}

	return b.changeset(), nil
}

// UndoResult reverses a previously reported outcome, restoring the bracket as
// if it had never been reported. It refuses when a downstream match already
// consumed the propagated value by finishing.
func (b *Bracket) UndoResult(matchID int) (*Changeset, error) {
	m, ok := b.matches[matchID]
	if !ok {
		return nil, &InvalidResultError{MatchID: matchID, Reason: "match not found"}
	}
	if m.IsBye {
		return nil, &InvalidResultError{MatchID: matchID, Reason: "bye matches are resolved automatically and cannot be undone"}
	}
	if m.Status != models.MatchStatusFinished {
		return nil, &InvalidResultError{MatchID: matchID, Reason: fmt.Sprintf("match status is %q, want %q", m.Status, models.MatchStatusFinished)}
	}

	if m.Section == models.SectionFinal {
		if d := b.deciderMatch(); d != nil && d.Status == models.MatchStatusFinished {
			return nil, &UnsafeUndoError{MatchID: matchID, BlockedBy: d.ID}
		}
	}
	for _, link := range []*models.MatchLink{m.NextOnWin, m.NextOnLoss} {
		if link == nil {
			continue
		}
		if blocked := b.effectiveDownstream(link); blocked != nil && blocked.Status == models.MatchStatusFinished {
			return nil, &UnsafeUndoError{MatchID: matchID, BlockedBy: blocked.ID}
		}
	}

	winnerID, loserID := *m.WinnerID, *m.LoserID

	b.beginChange()

	m.WinnerID = nil
	m.LoserID = nil
	m.ScoreA = nil
	m.ScoreB = nil
	m.Status = models.MatchStatusReady
	b.touchMatch(m)

	switch m.Section {
	case models.SectionFinal:
		b.clearPlacement(winnerID)
		b.clearPlacement(loserID)
		b.Champion = nil
		b.Phase = models.PhaseInProgress
		b.deactivateDecider()
	case models.SectionDecider:
		b.clearPlacement(winnerID)
		b.clearPlacement(loserID)
		b.Champion = nil
		b.Phase = models.PhaseAwaitingDecider
	default:
		if m.NextOnWin != nil {
			b.retract(winnerID, m.NextOnWin)
		}
		if m.NextOnLoss != nil {
			b.retract(loserID, m.NextOnLoss)
		} else {
			b.clearPlacement(loserID)
		}
	}

	return b.changeset(), nil
}

// place writes teamID into the linked slot. Byes are transparent: the
// occupant immediately advances along the bye's own win link.
func (b *Bracket) place(teamID int, link *models.MatchLink) {
	m := b.matches[link.MatchID]
	if link.Slot == models.SlotA {
		m.SlotA = intp(teamID)
	} else {
		m.SlotB = intp(teamID)
	}
	b.touchMatch(m)

	if m.IsBye {
		b.resolveBye(m)
		return
	}
	if m.SlotA != nil && m.SlotB != nil && m.Status == models.MatchStatusPending {
		m.Status = models.MatchStatusReady
	}
}

// resolveBye auto-advances the sole occupant of a bye match without a played
// result.
func (b *Bracket) resolveBye(m *models.Match) {
	m.WinnerID = copyInt(m.SlotA)
	m.Status = models.MatchStatusFinished
	b.touchMatch(m)
	if m.NextOnWin != nil && m.WinnerID != nil {
		b.place(*m.WinnerID, m.NextOnWin)
	}
}

// retract removes teamID from the linked slot, reverting a ready match back
// to pending and unwinding any bye the value had been forwarded through.
func (b *Bracket) retract(teamID int, link *models.MatchLink) {
	m := b.matches[link.MatchID]
	if link.Slot == models.SlotA {
		m.SlotA = nil
	} else {
		m.SlotB = nil
	}
	b.touchMatch(m)

	if m.IsBye {
		m.WinnerID = nil
		m.Status = models.MatchStatusPending
		if m.NextOnWin != nil {
			b.retract(teamID, m.NextOnWin)
		}
		return
	}
	if m.Status == models.MatchStatusReady {
		m.Status = models.MatchStatusPending
	}
}

// effectiveDownstream resolves a link to the first non-bye match it reaches.
func (b *Bracket) effectiveDownstream(link *models.MatchLink) *models.Match {
	m := b.matches[link.MatchID]
	for m != nil && m.IsBye {
		if m.NextOnWin == nil {
			return nil
		}
		m = b.matches[m.NextOnWin.MatchID]
	}
	return m
}

// eliminate assigns the next free placement, counting down from last place.
func (b *Bracket) eliminate(teamID int) {
	placed := 0
	for _, team := range b.teams {
		if team.Placement != nil {
			placed++
		}
	}
	b.setPlacement(teamID, len(b.teams)-placed, true)
}

func (b *Bracket) setPlacement(teamID, placement int, eliminated bool) {
	team := b.teams[teamID]
	team.Placement = intp(placement)
	team.Eliminated = eliminated
	b.touchTeam(team)
}

func (b *Bracket) clearPlacement(teamID int) {
	team := b.teams[teamID]
	if team.Placement == nil && !team.Eliminated {
		return
	}
	team.Placement = nil
	team.Eliminated = false
	b.touchTeam(team)
}

func (b *Bracket) deciderMatch() *models.Match {
	for _, num := range b.order {
		if m := b.matches[num]; m.Section == models.SectionDecider {
			return m
		}
	}
	return nil
}

func (b *Bracket) deactivateDecider() {
	d := b.deciderMatch()
	if d == nil {
		return
	}
	if d.SlotA == nil && d.SlotB == nil && d.Status == models.MatchStatusPending {
		return
	}
	d.SlotA = nil
	d.SlotB = nil
	d.Status = models.MatchStatusPending
	b.touchMatch(d)
}

func (b *Bracket) beginChange() {
	b.dirtyMatches = make(map[int]struct{})
	b.dirtyTeams = make(map[int]struct{})
}

func (b *Bracket) touchMatch(m *models.Match) {
	if b.dirtyMatches != nil {
		b.dirtyMatches[m.ID] = struct{}{}
	}
}

func (b *Bracket) touchTeam(t *models.Team) {
	if b.dirtyTeams != nil {
		b.dirtyTeams[t.ID] = struct{}{}
	}
}

func (b *Bracket) changeset() *Changeset {
	cs := &Changeset{Phase: b.Phase, Champion: b.Champion}
	matchIDs := make([]int, 0, len(b.dirtyMatches))
	for id := range b.dirtyMatches {
		matchIDs = append(matchIDs, id)
	}
	sort.Ints(matchIDs)
	for _, id := range matchIDs {
		cs.Matches = append(cs.Matches, b.matches[id])
	}
	teamIDs := make([]int, 0, len(b.dirtyTeams))
	for id := range b.dirtyTeams {
		teamIDs = append(teamIDs, id)
	}
	sort.Ints(teamIDs)
	for _, id := range teamIDs {
		cs.Teams = append(cs.Teams, b.teams[id])
	}
	return cs
}

func intp(v int) *int { return &v }

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
