package brackets

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/dominikbraun/graph"
	"github.com/volleykit/tournament-server/models"
)

// MatchTemplate describes one match of a topology before any participants are
// known. Seed ranks are 1-based (1 = strongest); a zero seed means the slot is
// filled later by the winner or loser of an upstream match, routed here by
// that match's NextOnWin/NextOnLoss link.
type MatchTemplate struct {
	Num        int
	Section    models.BracketSection
	Round      int
	IsBye      bool
	SeedA      int
	SeedB      int
	NextOnWin  *models.MatchLink
	NextOnLoss *models.MatchLink
	Label      string
}

// Topology is a complete double-elimination match plan for Size participants.
// It carries no participant state and can be shared between tournaments.
type Topology struct {
	Size      int
	Templates []MatchTemplate
}

// ForSize returns the topology for n participants: a hand-authored template
// for 5 through 10, a mechanically built one for powers of two up to 64.
// Every topology is validated before being handed out.
func ForSize(n int) (*Topology, error) {
	var topo *Topology
	switch {
	case n >= 5 && n <= 10:
		topo = &Topology{Size: n, Templates: catalogue[n]}
	case n >= 4 && n <= 64 && n&(n-1) == 0:
		topo = buildPowerOfTwo(n)
	default:
		return nil, &ConfigurationError{Size: n}
	}
	if err := topo.Validate(); err != nil {
		return nil, err
	}
	return topo, nil
}

type slotKey struct {
	match int
	slot  models.MatchSlot
}

// Validate checks the structural invariants of the topology and reports every
// violation found, not just the first: exactly one final, at most one decider,
// no self or dangling references, distinct win/loss destinations, exactly one
// source per fillable slot, a complete seed assignment and an acyclic
// progression graph.
func (t *Topology) Validate() error {
	var violations []string

	byNum := make(map[int]*MatchTemplate, len(t.Templates))
	for i := range t.Templates {
		m := &t.Templates[i]
		if _, dup := byNum[m.Num]; dup {
			violations = append(violations, fmt.Sprintf("duplicate match number %d", m.Num))
			continue
		}
		byNum[m.Num] = m
	}

	finals, deciders := 0, 0
	inflows := make(map[slotKey]int)
	seedCount := make(map[int]int)

	for i := range t.Templates {
		m := &t.Templates[i]

		switch m.Section {
		case models.SectionFinal:
			finals++
		case models.SectionDecider:
			deciders++
		}

		for _, ref := range []struct {
			name string
			link *models.MatchLink
		}{{"nextOnWin", m.NextOnWin}, {"nextOnLoss", m.NextOnLoss}} {
			if ref.link == nil {
				continue
			}
			if m.Section == models.SectionFinal || m.Section == models.SectionDecider {
				violations = append(violations, fmt.Sprintf("match %d: %s section must not route onward via %s", m.Num, m.Section, ref.name))
				continue
			}
			if ref.link.MatchID == m.Num {
				violations = append(violations, fmt.Sprintf("match %d: %s references itself", m.Num, ref.name))
				continue
			}
			if _, ok := byNum[ref.link.MatchID]; !ok {
				violations = append(violations, fmt.Sprintf("match %d: %s references unknown match %d", m.Num, ref.name, ref.link.MatchID))
				continue
			}
			if ref.link.Slot != models.SlotA && ref.link.Slot != models.SlotB {
				violations = append(violations, fmt.Sprintf("match %d: %s has invalid slot %q", m.Num, ref.name, ref.link.Slot))
				continue
			}
			inflows[slotKey{ref.link.MatchID, ref.link.Slot}]++
		}
		if m.NextOnWin != nil && m.NextOnLoss != nil && m.NextOnWin.MatchID == m.NextOnLoss.MatchID {
			violations = append(violations, fmt.Sprintf("match %d: nextOnWin and nextOnLoss both route to match %d", m.Num, m.NextOnWin.MatchID))
		}

		if m.SeedA > 0 {
			seedCount[m.SeedA]++
			inflows[slotKey{m.Num, models.SlotA}]++
		}
		if m.SeedB > 0 {
			seedCount[m.SeedB]++
			inflows[slotKey{m.Num, models.SlotB}]++
		}
		if m.IsBye && (m.SeedB > 0) {
			violations = append(violations, fmt.Sprintf("bye match %d must not have a second occupant", m.Num))
		}
	}

	if finals != 1 {
		violations = append(violations, fmt.Sprintf("topology has %d final matches, want exactly 1", finals))
	}
	if deciders > 1 {
		violations = append(violations, fmt.Sprintf("topology has %d decider matches, want at most 1", deciders))
	}

	for seed, n := range seedCount {
		if seed < 1 || seed > t.Size {
			violations = append(violations, fmt.Sprintf("seed rank %d is out of range 1..%d", seed, t.Size))
		} else if n > 1 {
			violations = append(violations, fmt.Sprintf("seed rank %d is assigned to %d slots", seed, n))
		}
	}
	for seed := 1; seed <= t.Size; seed++ {
		if seedCount[seed] == 0 {
			violations = append(violations, fmt.Sprintf("seed rank %d is not placed in any match", seed))
		}
	}

	// Each fillable slot must have exactly one source, decided at authoring
	// time. The decider is exempt: its slots are populated by the grand-final
	// special case, never by a progression link.
	for i := range t.Templates {
		m := &t.Templates[i]
		if m.Section == models.SectionDecider {
			for _, s := range []models.MatchSlot{models.SlotA, models.SlotB} {
				if inflows[slotKey{m.Num, s}] != 0 {
					violations = append(violations, fmt.Sprintf("decider match %d slot %s must not be fed by a progression link", m.Num, s))
				}
			}
			continue
		}
		wantB := 1
		if m.IsBye {
			wantB = 0
		}
		for _, sc := range []struct {
			slot models.MatchSlot
			want int
		}{{models.SlotA, 1}, {models.SlotB, wantB}} {
			got := inflows[slotKey{m.Num, sc.slot}]
			if got > sc.want {
				violations = append(violations, fmt.Sprintf("match %d slot %s is fed by %d sources, want %d", m.Num, sc.slot, got, sc.want))
			}
			if got < sc.want {
				violations = append(violations, fmt.Sprintf("match %d slot %s has no source", m.Num, sc.slot))
			}
		}
	}

	if cyc := t.checkAcyclic(byNum); cyc != "" {
		violations = append(violations, cyc)
	}

	if len(violations) > 0 {
		return &TopologyInvalidError{Size: t.Size, Violations: violations}
	}
	return nil
}

// checkAcyclic runs a topological sort over the progression graph. Edges that
// were already reported as self or dangling references are skipped so a single
// root cause is not reported twice.
func (t *Topology) checkAcyclic(byNum map[int]*MatchTemplate) string {
	g := graph.New(graph.IntHash, graph.Directed())
	for num := range byNum {
		_ = g.AddVertex(num)
	}
	for _, m := range byNum {
		for _, link := range []*models.MatchLink{m.NextOnWin, m.NextOnLoss} {
			if link == nil || link.MatchID == m.Num {
				continue
			}
			if _, ok := byNum[link.MatchID]; !ok {
				continue
			}
			if err := g.AddEdge(m.Num, link.MatchID); err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
				return fmt.Sprintf("progression graph rejected edge %d -> %d: %v", m.Num, link.MatchID, err)
			}
		}
	}
	if _, err := graph.TopologicalSort(g); err != nil {
		return "progression graph contains a cycle"
	}
	return ""
}

// buildPowerOfTwo mechanically constructs a double-elimination topology for
// n = 2^k participants: k winners rounds, 2(k-1) alternating minor/major
// losers rounds, a grand final and a dormant decider. Drop-downs into major
// losers rounds are reversed on alternate rounds to delay rematches.
func buildPowerOfTwo(n int) *Topology {
	k := bits.Len(uint(n)) - 1
	next := 1

	wNums := make([][]int, k)
	for r := 0; r < k; r++ {
		wNums[r] = make([]int, n>>(r+1))
		for i := range wNums[r] {
			wNums[r][i] = next
			next++
		}
	}

	lNums := make([][]int, 2*(k-1))
	for q := 0; q < k-1; q++ {
		for _, m := range []int{2 * q, 2*q + 1} {
			lNums[m] = make([]int, n>>(q+2))
			for i := range lNums[m] {
				lNums[m][i] = next
				next++
			}
		}
	}

	finalNum := next
	deciderNum := next + 1

	slotOf := func(i int) models.MatchSlot {
		if i%2 == 0 {
			return models.SlotA
		}
		return models.SlotB
	}
	link := func(matchID int, slot models.MatchSlot) *models.MatchLink {
		return &models.MatchLink{MatchID: matchID, Slot: slot}
	}

	templates := make([]MatchTemplate, 0, deciderNum)
	order := seedOrder(n)

	for r := 0; r < k; r++ {
		for i, num := range wNums[r] {
			m := MatchTemplate{Num: num, Section: models.SectionWinners, Round: r + 1}
			if r == 0 {
				m.SeedA = order[2*i]
				m.SeedB = order[2*i+1]
				m.Label = fmt.Sprintf("Seed %d vs Seed %d", m.SeedA, m.SeedB)
			} else {
				m.Label = fmt.Sprintf("Winners round %d", r+1)
			}
			if r < k-1 {
				m.NextOnWin = link(wNums[r+1][i/2], slotOf(i))
			} else {
				m.Label = "Winners final"
				m.NextOnWin = link(finalNum, models.SlotA)
			}
			if r == 0 {
				m.NextOnLoss = link(lNums[0][i/2], slotOf(i))
			} else {
				dst := lNums[2*r-1]
				j := i
				if r%2 == 1 {
					j = len(dst) - 1 - i
				}
				m.NextOnLoss = link(dst[j], models.SlotB)
			}
			templates = append(templates, m)
		}
	}

	for round := 0; round < 2*(k-1); round++ {
		for i, num := range lNums[round] {
			m := MatchTemplate{
				Num:     num,
				Section: models.SectionLosers,
				Round:   round + 1,
				Label:   fmt.Sprintf("Repechage round %d", round+1),
			}
			switch {
			case round%2 == 0:
				m.NextOnWin = link(lNums[round+1][i], models.SlotA)
			case round == 2*(k-1)-1:
				m.Label = "Repechage final"
				m.NextOnWin = link(finalNum, models.SlotB)
			default:
				m.NextOnWin = link(lNums[round+1][i/2], slotOf(i))
			}
			templates = append(templates, m)
		}
	}

	templates = append(templates,
		MatchTemplate{Num: finalNum, Section: models.SectionFinal, Round: k + 1, Label: "Grand final"},
		MatchTemplate{Num: deciderNum, Section: models.SectionDecider, Round: k + 2, Label: "Decider (if needed)"},
	)

	return &Topology{Size: n, Templates: templates}
}

// seedOrder returns the classic bracket position order for n seeds, so the
// first round pairs strongest against weakest and the top two seeds cannot
// meet before the winners final: 1,8,4,5,2,7,3,6 for n=8.
func seedOrder(n int) []int {
	order := []int{1}
	for len(order) < n {
		next := make([]int, 0, len(order)*2)
		mirror := len(order)*2 + 1
		for _, s := range order {
			next = append(next, s, mirror-s)
		}
		order = next
	}
	return order
}
