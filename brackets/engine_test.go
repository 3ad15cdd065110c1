package brackets

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volleykit/tournament-server/models"
)

// report submits a result for a ready match, deriving the loser from the
// occupants.
func report(t *testing.T, b *Bracket, matchID, winnerID int) {
	t.Helper()
	m := matchByID(t, b, matchID)
	require.NotNil(t, m.SlotA, "match %d slot a", matchID)
	require.NotNil(t, m.SlotB, "match %d slot b", matchID)
	loserID := *m.SlotA
	if loserID == winnerID {
		loserID = *m.SlotB
	}
	_, err := b.ApplyResult(matchID, winnerID, loserID, nil, nil)
	require.NoError(t, err, "reporting match %d", matchID)
}

// playFiveToFinal plays a 5-team bracket (teams 101..105 seeded in id order)
// until only the grand final is left: 101 undefeated in slot a, 102 through
// the repechage in slot b.
func playFiveToFinal(t *testing.T) *Bracket {
	t.Helper()
	b := mustInstantiate(t, 5, 100)
	report(t, b, 1, 104)
	report(t, b, 3, 102)
	report(t, b, 2, 101)
	report(t, b, 5, 103)
	report(t, b, 6, 104)
	report(t, b, 4, 101)
	report(t, b, 7, 102)
	return b
}

func snapshotJSON(t *testing.T, b *Bracket) string {
	t.Helper()
	data, err := json.Marshal(map[string]interface{}{
		"phase":    b.Phase,
		"champion": b.Champion,
		"matches":  b.Matches(),
		"teams":    b.Teams(),
	})
	require.NoError(t, err)
	return string(data)
}

func TestFiveTeamUndefeatedChampion(t *testing.T) {
	b := playFiveToFinal(t)

	final := matchByID(t, b, 8)
	require.Equal(t, models.MatchStatusReady, final.Status)
	require.Equal(t, 101, *final.SlotA)
	require.Equal(t, 102, *final.SlotB)

	// Winners-bracket representative wins: no decider.
	report(t, b, 8, 101)

	assert.Equal(t, models.PhaseCompleted, b.Phase)
	require.NotNil(t, b.Champion)
	assert.Equal(t, 101, *b.Champion)

	decider := matchByID(t, b, 9)
	assert.Nil(t, decider.SlotA)
	assert.Nil(t, decider.SlotB)
	assert.Equal(t, models.MatchStatusPending, decider.Status)

	assert.Equal(t, []Standing{
		{TeamID: 101, Placement: 1},
		{TeamID: 102, Placement: 2},
		{TeamID: 104, Placement: 3},
		{TeamID: 103, Placement: 4},
		{TeamID: 105, Placement: 5},
	}, b.Standings())

	assert.False(t, teamByID(t, b, 101).Eliminated)
	assert.True(t, teamByID(t, b, 102).Eliminated)
}

func TestFiveTeamDeciderActivation(t *testing.T) {
	b := playFiveToFinal(t)

	// Repechage representative wins the final: both sides now have one loss
	// and the decider settles it.
	report(t, b, 8, 102)

	assert.Equal(t, models.PhaseAwaitingDecider, b.Phase)
	assert.Nil(t, b.Champion)

	decider := matchByID(t, b, 9)
	require.Equal(t, models.MatchStatusReady, decider.Status)
	require.NotNil(t, decider.SlotA)
	require.NotNil(t, decider.SlotB)
	assert.Equal(t, 101, *decider.SlotA, "final loser takes slot a")
	assert.Equal(t, 102, *decider.SlotB, "final winner takes slot b")

	assert.Nil(t, teamByID(t, b, 101).Placement)
	assert.Nil(t, teamByID(t, b, 102).Placement)

	report(t, b, 9, 102)

	assert.Equal(t, models.PhaseCompleted, b.Phase)
	require.NotNil(t, b.Champion)
	assert.Equal(t, 102, *b.Champion)
	assert.Equal(t, []Standing{
		{TeamID: 102, Placement: 1},
		{TeamID: 101, Placement: 2},
		{TeamID: 104, Placement: 3},
		{TeamID: 103, Placement: 4},
		{TeamID: 105, Placement: 5},
	}, b.Standings())
}

func TestEightTeamUpsetDropsTopSeedToRepechage(t *testing.T) {
	b := mustInstantiate(t, 8, 200)

	// Seed 8 beats seed 1 in round one.
	report(t, b, 1, 208)

	drop := matchByID(t, b, 9)
	require.NotNil(t, drop.SlotA)
	assert.Equal(t, 201, *drop.SlotA)

	top := teamByID(t, b, 201)
	assert.False(t, top.Eliminated, "one loss must not eliminate")
	assert.Nil(t, top.Placement)

	advance := matchByID(t, b, 5)
	require.NotNil(t, advance.SlotA)
	assert.Equal(t, 208, *advance.SlotA)
}

// A team dropped by a round-one upset can still win the whole tournament
// through the repechage and the decider.
func TestEightTeamSeedOneRecoversThroughRepechage(t *testing.T) {
	b := mustInstantiate(t, 8, 200)

	report(t, b, 1, 208)
	report(t, b, 2, 204)
	report(t, b, 9, 201)
	report(t, b, 3, 203)
	report(t, b, 4, 202)
	report(t, b, 10, 206)
	report(t, b, 8, 201)
	report(t, b, 5, 208)
	report(t, b, 11, 201)
	report(t, b, 6, 203)
	report(t, b, 12, 201)
	report(t, b, 7, 208)
	report(t, b, 13, 201)

	final := matchByID(t, b, 14)
	require.Equal(t, models.MatchStatusReady, final.Status)
	require.NotNil(t, final.SlotB)
	assert.Equal(t, 201, *final.SlotB, "seed 1 reaches the final from the repechage")

	report(t, b, 14, 201)
	assert.Equal(t, models.PhaseAwaitingDecider, b.Phase)

	report(t, b, 15, 201)
	assert.Equal(t, models.PhaseCompleted, b.Phase)
	require.NotNil(t, b.Champion)
	assert.Equal(t, 201, *b.Champion)
	require.NotNil(t, teamByID(t, b, 208).Placement)
	assert.Equal(t, 2, *teamByID(t, b, 208).Placement)
}

func TestEightTeamFullRunPlacements(t *testing.T) {
	b := mustInstantiate(t, 8, 200)

	report(t, b, 1, 201)
	report(t, b, 2, 204)
	report(t, b, 3, 203)
	report(t, b, 4, 202)
	report(t, b, 9, 205)
	report(t, b, 10, 206)
	report(t, b, 5, 201)
	report(t, b, 6, 202)
	report(t, b, 8, 205)
	report(t, b, 11, 204)
	report(t, b, 12, 203)
	report(t, b, 7, 201)
	report(t, b, 13, 202)
	report(t, b, 14, 201)

	assert.Equal(t, models.PhaseCompleted, b.Phase)
	assert.Equal(t, []Standing{
		{TeamID: 201, Placement: 1},
		{TeamID: 202, Placement: 2},
		{TeamID: 203, Placement: 3},
		{TeamID: 204, Placement: 4},
		{TeamID: 205, Placement: 5},
		{TeamID: 206, Placement: 6},
		{TeamID: 207, Placement: 7},
		{TeamID: 208, Placement: 8},
	}, b.Standings())
}

func TestSevenTeamFullRunPlacements(t *testing.T) {
	b := mustInstantiate(t, 7, 300)

	report(t, b, 1, 304)
	report(t, b, 2, 303)
	report(t, b, 3, 302)
	report(t, b, 4, 301)
	report(t, b, 5, 303)
	report(t, b, 7, 305)
	report(t, b, 9, 302)
	report(t, b, 10, 304)
	report(t, b, 6, 301)
	report(t, b, 11, 302)
	report(t, b, 12, 302)
	report(t, b, 13, 301)

	assert.Equal(t, models.PhaseCompleted, b.Phase)
	require.NotNil(t, b.Champion)
	assert.Equal(t, 301, *b.Champion)
	assert.Equal(t, []Standing{
		{TeamID: 301, Placement: 1},
		{TeamID: 302, Placement: 2},
		{TeamID: 303, Placement: 3},
		{TeamID: 304, Placement: 4},
		{TeamID: 307, Placement: 5},
		{TeamID: 305, Placement: 6},
		{TeamID: 306, Placement: 7},
	}, b.Standings())
}

// Every supported size must play through to completion: repeatedly resolve
// the lowest-numbered ready match in favor of its slot-a occupant and check
// that the bracket finishes with a full, gap-free placement table.
func TestAllSupportedSizesPlayToCompletion(t *testing.T) {
	for _, n := range supportedSizes {
		t.Run(fmt.Sprintf("size_%d", n), func(t *testing.T) {
			b := mustInstantiate(t, n, 1000)

			for {
				var next *models.Match
				for _, m := range b.Matches() {
					if m.Status == models.MatchStatusReady {
						next = m
						break
					}
				}
				if next == nil {
					break
				}
				report(t, b, next.ID, *next.SlotA)
			}

			require.Equal(t, models.PhaseCompleted, b.Phase)
			require.NotNil(t, b.Champion)

			standings := b.Standings()
			require.Len(t, standings, n)
			for i, s := range standings {
				assert.Equal(t, i+1, s.Placement)
			}
			assert.Equal(t, *b.Champion, standings[0].TeamID)
		})
	}
}

func TestChangesetListsTouchedRecords(t *testing.T) {
	b := mustInstantiate(t, 5, 100)

	cs, err := b.ApplyResult(1, 104, 105, intp(25), intp(19))
	require.NoError(t, err)

	var ids []int
	for _, m := range cs.Matches {
		ids = append(ids, m.ID)
	}
	// The reported match, the winner's destination and the loser's
	// destination.
	assert.Equal(t, []int{1, 2, 5}, ids)
	assert.Empty(t, cs.Teams)
	assert.Equal(t, models.PhaseInProgress, cs.Phase)
	assert.Nil(t, cs.Champion)

	m1 := matchByID(t, b, 1)
	require.NotNil(t, m1.ScoreA)
	require.NotNil(t, m1.ScoreB)
	assert.Equal(t, 25, *m1.ScoreA)
	assert.Equal(t, 19, *m1.ScoreB)
}

func TestReportThenUndoRestoresState(t *testing.T) {
	b := mustInstantiate(t, 5, 100)
	report(t, b, 1, 104)
	report(t, b, 3, 102)

	before := snapshotJSON(t, b)

	report(t, b, 2, 101)
	_, err := b.UndoResult(2)
	require.NoError(t, err)

	assert.JSONEq(t, before, snapshotJSON(t, b))
}

func TestUndoBlockedByDownstreamResult(t *testing.T) {
	b := mustInstantiate(t, 5, 100)
	report(t, b, 1, 104)
	report(t, b, 3, 102)
	report(t, b, 2, 101)

	before := snapshotJSON(t, b)

	_, err := b.UndoResult(1)
	var undoErr *UnsafeUndoError
	require.ErrorAs(t, err, &undoErr)
	assert.Equal(t, 1, undoErr.MatchID)
	assert.Equal(t, 2, undoErr.BlockedBy)

	// A refused undo must leave the bracket untouched.
	assert.JSONEq(t, before, snapshotJSON(t, b))
}

func TestUndoBlockedThroughBye(t *testing.T) {
	b := mustInstantiate(t, 7, 300)
	report(t, b, 3, 302)
	report(t, b, 1, 304)
	report(t, b, 2, 303)
	report(t, b, 5, 303)
	report(t, b, 10, 307)

	// Match 3's loser advanced through the repechage bye into match 10, which
	// has been played.
	_, err := b.UndoResult(3)
	var undoErr *UnsafeUndoError
	require.ErrorAs(t, err, &undoErr)
	assert.Equal(t, 10, undoErr.BlockedBy)

	_, err = b.UndoResult(10)
	require.NoError(t, err)
	_, err = b.UndoResult(3)
	require.NoError(t, err)

	// The bye unwinds along with the undone result.
	bye := matchByID(t, b, 8)
	assert.Nil(t, bye.SlotA)
	assert.Nil(t, bye.WinnerID)
	assert.Equal(t, models.MatchStatusPending, bye.Status)

	next := matchByID(t, b, 10)
	assert.Nil(t, next.SlotA)
	assert.Equal(t, models.MatchStatusPending, next.Status)

	m4 := matchByID(t, b, 4)
	assert.Nil(t, m4.SlotB)
	assert.Equal(t, models.MatchStatusPending, m4.Status)
}

func TestInvalidResultSubmissions(t *testing.T) {
	b := mustInstantiate(t, 5, 100)

	tests := []struct {
		name    string
		matchID int
		winner  int
		loser   int
		reason  string
	}{
		{"unknown match", 99, 104, 105, "match not found"},
		{"match not ready", 4, 104, 105, "match status is"},
		{"winner equals loser", 1, 104, 104, "must differ"},
		{"winner not an occupant", 1, 999, 105, "occupants"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := b.ApplyResult(tc.matchID, tc.winner, tc.loser, nil, nil)
			var resultErr *InvalidResultError
			require.ErrorAs(t, err, &resultErr)
			assert.Equal(t, tc.matchID, resultErr.MatchID)
			assert.Contains(t, resultErr.Reason, tc.reason)
		})
	}
}

func TestByeResultCannotBeReportedOrUndone(t *testing.T) {
	b := mustInstantiate(t, 7, 300)
	report(t, b, 3, 302)

	var resultErr *InvalidResultError
	_, err := b.ApplyResult(8, 307, 302, nil, nil)
	require.ErrorAs(t, err, &resultErr)
	assert.Contains(t, resultErr.Reason, "resolved automatically")

	_, err = b.UndoResult(8)
	require.ErrorAs(t, err, &resultErr)
	assert.Contains(t, resultErr.Reason, "resolved automatically")
}

func TestUndoNotFinishedMatch(t *testing.T) {
	b := mustInstantiate(t, 5, 100)

	_, err := b.UndoResult(1)
	var resultErr *InvalidResultError
	require.ErrorAs(t, err, &resultErr)
	assert.Contains(t, resultErr.Reason, "match status is")
}

func TestUndoFinalRestoresDecider(t *testing.T) {
	b := playFiveToFinal(t)
	report(t, b, 8, 102)
	report(t, b, 9, 102)
	require.Equal(t, models.PhaseCompleted, b.Phase)

	// The decider result guards the final.
	_, err := b.UndoResult(8)
	var undoErr *UnsafeUndoError
	require.ErrorAs(t, err, &undoErr)
	assert.Equal(t, 9, undoErr.BlockedBy)

	_, err = b.UndoResult(9)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseAwaitingDecider, b.Phase)
	assert.Nil(t, b.Champion)
	decider := matchByID(t, b, 9)
	assert.Equal(t, models.MatchStatusReady, decider.Status)
	require.NotNil(t, decider.SlotA)
	assert.Equal(t, 101, *decider.SlotA)
	assert.Nil(t, teamByID(t, b, 101).Placement)
	assert.Nil(t, teamByID(t, b, 102).Placement)

	_, err = b.UndoResult(8)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseInProgress, b.Phase)
	decider = matchByID(t, b, 9)
	assert.Nil(t, decider.SlotA)
	assert.Nil(t, decider.SlotB)
	assert.Equal(t, models.MatchStatusPending, decider.Status)

	final := matchByID(t, b, 8)
	assert.Equal(t, models.MatchStatusReady, final.Status)
	require.NotNil(t, final.SlotA)
	require.NotNil(t, final.SlotB)
	assert.Equal(t, 101, *final.SlotA)
	assert.Equal(t, 102, *final.SlotB)

	// Earlier eliminations are untouched.
	require.NotNil(t, teamByID(t, b, 104).Placement)
	assert.Equal(t, 3, *teamByID(t, b, 104).Placement)
}

func TestNewBracketRejectsBrokenInput(t *testing.T) {
	teams := teamsForSize(2, 100)

	_, err := NewBracket([]*models.Match{
		{ID: 1, Section: models.SectionFinal},
		{ID: 1, Section: models.SectionFinal},
	}, teams, models.PhaseInProgress, nil)
	require.ErrorContains(t, err, "duplicate match id 1")

	_, err = NewBracket([]*models.Match{
		{ID: 1, Section: models.SectionWinners, NextOnWin: &models.MatchLink{MatchID: 7, Slot: models.SlotA}},
	}, teams, models.PhaseInProgress, nil)
	require.ErrorContains(t, err, "unknown match 7")
}
