package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderParticipantsPositional(t *testing.T) {
	input := []ParticipantInput{
		{Name: "  Alpha "},
		{Name: "Bravo"},
		{Name: " Charlie"},
	}

	ordered, err := orderParticipants(input)
	require.NoError(t, err)
	assert.Equal(t, []ParticipantInput{
		{Name: "Alpha"},
		{Name: "Bravo"},
		{Name: "Charlie"},
	}, ordered)
}

func TestOrderParticipantsExplicitSeeds(t *testing.T) {
	input := []ParticipantInput{
		{Name: "Bravo", Seed: 2},
		{Name: "Charlie", Seed: 3},
		{Name: "Alpha", Seed: 1},
	}

	ordered, err := orderParticipants(input)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", ordered[0].Name)
	assert.Equal(t, "Bravo", ordered[1].Name)
	assert.Equal(t, "Charlie", ordered[2].Name)
}

func TestOrderParticipantsDoesNotMutateInput(t *testing.T) {
	input := []ParticipantInput{
		{Name: "  Bravo ", Seed: 2},
		{Name: " Alpha", Seed: 1},
	}

	_, err := orderParticipants(input)
	require.NoError(t, err)

	// The caller's slice keeps its order and untrimmed names.
	assert.Equal(t, []ParticipantInput{
		{Name: "  Bravo ", Seed: 2},
		{Name: " Alpha", Seed: 1},
	}, input)
}

func TestOrderParticipantsRejectsBadInput(t *testing.T) {
	_, err := orderParticipants([]ParticipantInput{{Name: "Alpha"}, {Name: "   "}})
	assert.ErrorIs(t, err, ErrParticipantNameRequired)

	_, err = orderParticipants([]ParticipantInput{{Name: "Alpha", Seed: 1}, {Name: "Bravo", Seed: 1}})
	assert.ErrorIs(t, err, ErrInvalidSeeds)

	_, err = orderParticipants([]ParticipantInput{{Name: "Alpha", Seed: 1}, {Name: "Bravo", Seed: 5}})
	assert.ErrorIs(t, err, ErrInvalidSeeds)
}
