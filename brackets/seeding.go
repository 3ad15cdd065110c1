package brackets

import (
	"sort"

	"github.com/volleykit/tournament-server/models"
)

// Instantiate substitutes concrete team ids for the seed ranks of a topology
// and returns the live bracket. The input order is the seeding: teams[0] is
// rank 1. Slots fed by future match outcomes stay nil.
//
// Byes resolve the moment their sole slot is occupied, here for seed-fed byes
// and during propagation for byes fed by an upstream loser, so the state
// machine never has to special-case them afterwards.
func Instantiate(topo *Topology, teams []*models.Team) (*Bracket, error) {
	if len(teams) != topo.Size {
		return nil, &SeedCountMismatchError{Want: topo.Size, Got: len(teams)}
	}

	byRank := make(map[int]int, len(teams))
	for i, team := range teams {
		byRank[i+1] = team.ID
	}

	b := &Bracket{
		Phase:   models.PhaseInProgress,
		matches: make(map[int]*models.Match, len(topo.Templates)),
		order:   make([]int, 0, len(topo.Templates)),
		teams:   make(map[int]*models.Team, len(teams)),
	}
	for _, team := range teams {
		b.teams[team.ID] = team
	}

	for _, tpl := range topo.Templates {
		m := &models.Match{
			ID:         tpl.Num,
			Section:    tpl.Section,
			Round:      tpl.Round,
			IsBye:      tpl.IsBye,
			Status:     models.MatchStatusPending,
			NextOnWin:  copyLink(tpl.NextOnWin),
			NextOnLoss: copyLink(tpl.NextOnLoss),
			Label:      tpl.Label,
		}
		if tpl.SeedA > 0 {
			id := byRank[tpl.SeedA]
			m.SlotA = &id
		}
		if tpl.SeedB > 0 {
			id := byRank[tpl.SeedB]
			m.SlotB = &id
		}
		b.matches[tpl.Num] = m
		b.order = append(b.order, tpl.Num)
	}
	sort.Ints(b.order)

	for _, num := range b.order {
		m := b.matches[num]
		switch {
		case m.IsBye && m.SlotA != nil:
			b.resolveBye(m)
		case m.SlotA != nil && m.SlotB != nil:
			m.Status = models.MatchStatusReady
		}
	}

	return b, nil
}

func copyLink(l *models.MatchLink) *models.MatchLink {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}
