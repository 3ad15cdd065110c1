package brackets

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/volleykit/tournament-server/models"
)

func teamsForSize(n, base int) []*models.Team {
	teams := make([]*models.Team, n)
	for i := 0; i < n; i++ {
		teams[i] = &models.Team{
			ID:           base + i + 1,
			TournamentID: 1,
			Name:         fmt.Sprintf("Team %d", i+1),
			Seed:         i + 1,
		}
	}
	return teams
}

func mustInstantiate(t *testing.T, n, base int) *Bracket {
	t.Helper()
	topo, err := ForSize(n)
	require.NoError(t, err)
	bracket, err := Instantiate(topo, teamsForSize(n, base))
	require.NoError(t, err)
	return bracket
}

func matchByID(t *testing.T, b *Bracket, id int) *models.Match {
	t.Helper()
	for _, m := range b.Matches() {
		if m.ID == id {
			return m
		}
	}
	t.Fatalf("match %d not found", id)
	return nil
}

func teamByID(t *testing.T, b *Bracket, id int) *models.Team {
	t.Helper()
	for _, team := range b.Teams() {
		if team.ID == id {
			return team
		}
	}
	t.Fatalf("team %d not found", id)
	return nil
}

func TestInstantiateSeedCountMismatch(t *testing.T) {
	topo, err := ForSize(8)
	require.NoError(t, err)

	_, err = Instantiate(topo, teamsForSize(5, 100))
	var mismatchErr *SeedCountMismatchError
	require.ErrorAs(t, err, &mismatchErr)
	assert.Equal(t, 8, mismatchErr.Want)
	assert.Equal(t, 5, mismatchErr.Got)
}

func TestInstantiateFiveTeams(t *testing.T) {
	b := mustInstantiate(t, 5, 100)
	assert.Equal(t, models.PhaseInProgress, b.Phase)
	assert.Nil(t, b.Champion)

	// Seeds 4 and 5 open in round one; seeds 2 and 3 meet directly.
	m1 := matchByID(t, b, 1)
	require.NotNil(t, m1.SlotA)
	require.NotNil(t, m1.SlotB)
	assert.Equal(t, 104, *m1.SlotA)
	assert.Equal(t, 105, *m1.SlotB)
	assert.Equal(t, models.MatchStatusReady, m1.Status)

	m2 := matchByID(t, b, 2)
	require.NotNil(t, m2.SlotA)
	assert.Equal(t, 101, *m2.SlotA)
	assert.Nil(t, m2.SlotB)
	assert.Equal(t, models.MatchStatusPending, m2.Status)

	m3 := matchByID(t, b, 3)
	assert.Equal(t, models.MatchStatusReady, m3.Status)

	for _, id := range []int{4, 5, 6, 7, 8, 9} {
		assert.Equal(t, models.MatchStatusPending, matchByID(t, b, id).Status, "match %d", id)
	}

	decider := matchByID(t, b, 9)
	assert.Equal(t, models.SectionDecider, decider.Section)
	assert.Nil(t, decider.SlotA)
	assert.Nil(t, decider.SlotB)
}

func TestInstantiateNineTeamsSingleOpener(t *testing.T) {
	b := mustInstantiate(t, 9, 200)

	ready := 0
	for _, m := range b.Matches() {
		if m.Status == models.MatchStatusReady {
			ready++
		}
	}
	// Seeds 8 vs 9 open, then the three full round-two pairings.
	assert.Equal(t, 4, ready)

	m1 := matchByID(t, b, 1)
	require.NotNil(t, m1.SlotA)
	require.NotNil(t, m1.SlotB)
	assert.Equal(t, 208, *m1.SlotA)
	assert.Equal(t, 209, *m1.SlotB)
}

// The seven-team plan has a repechage bye fed by a winners-round loser. At
// instantiation it is empty and pending; it resolves only when that loser
// arrives.
func TestInstantiateSevenTeamLoserFedBye(t *testing.T) {
	b := mustInstantiate(t, 7, 300)

	bye := matchByID(t, b, 8)
	assert.True(t, bye.IsBye)
	assert.Nil(t, bye.SlotA)
	assert.Nil(t, bye.WinnerID)
	assert.Equal(t, models.MatchStatusPending, bye.Status)

	report(t, b, 3, 302)

	bye = matchByID(t, b, 8)
	require.NotNil(t, bye.SlotA)
	assert.Equal(t, 307, *bye.SlotA)
	require.NotNil(t, bye.WinnerID)
	assert.Equal(t, 307, *bye.WinnerID)
	assert.Equal(t, models.MatchStatusFinished, bye.Status)

	// The bye is transparent: its occupant lands one hop further down.
	next := matchByID(t, b, 10)
	require.NotNil(t, next.SlotA)
	assert.Equal(t, 307, *next.SlotA)
	assert.Equal(t, models.MatchStatusPending, next.Status)

	// The auto-advanced team is still alive.
	assert.False(t, teamByID(t, b, 307).Eliminated)
	assert.Nil(t, teamByID(t, b, 307).Placement)
}
