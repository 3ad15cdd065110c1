package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/volleykit/tournament-server/models"
)

var (
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match references an unknown tournament")
	ErrMatchTeamInvalid       = errors.New("match references an unknown team")
)

// MatchRepository persists bracket matches. Match ids are template match
// numbers, unique per tournament; the primary key is (tournament_id,
// match_id).
type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error)
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(tournament_id, match_id, section, round, slot_a_team_id, slot_b_team_id,
			 is_bye, status, winner_team_id, loser_team_id, score_a, score_b,
			 next_win_match_id, next_win_slot, next_loss_match_id, next_loss_slot, label)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING created_at`

	winMatch, winSlot := splitLink(match.NextOnWin)
	lossMatch, lossSlot := splitLink(match.NextOnLoss)

	err := exec.QueryRowContext(ctx, query,
		match.TournamentID,
		match.ID,
		match.Section,
		match.Round,
		match.SlotA,
		match.SlotB,
		match.IsBye,
		match.Status,
		match.WinnerID,
		match.LoserID,
		match.ScoreA,
		match.ScoreB,
		winMatch,
		winSlot,
		lossMatch,
		lossSlot,
		match.Label,
	).Scan(&match.CreatedAt)

	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	query := `
		SELECT tournament_id, match_id, section, round, slot_a_team_id, slot_b_team_id,
		       is_bye, status, winner_team_id, loser_team_id, score_a, score_b,
		       next_win_match_id, next_win_slot, next_loss_match_id, next_loss_slot,
		       label, created_at
		FROM matches
		WHERE tournament_id = $1
		ORDER BY match_id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := scanMatch(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

// Update writes the mutable fields of a match: slots, status, result and
// scores. Routing links and section are immutable after generation.
func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		UPDATE matches
		SET slot_a_team_id = $1, slot_b_team_id = $2, status = $3,
		    winner_team_id = $4, loser_team_id = $5, score_a = $6, score_b = $7
		WHERE tournament_id = $8 AND match_id = $9`

	result, err := exec.ExecContext(ctx, query,
		match.SlotA,
		match.SlotB,
		match.Status,
		match.WinnerID,
		match.LoserID,
		match.ScoreA,
		match.ScoreB,
		match.TournamentID,
		match.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: failed to execute query for match %d/%d: %w", match.TournamentID, match.ID, r.handleMatchError(err))
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (*models.Match, error) {
	var (
		match     models.Match
		winMatch  *int
		winSlot   *string
		lossMatch *int
		lossSlot  *string
	)
	if err := row.Scan(
		&match.TournamentID,
		&match.ID,
		&match.Section,
		&match.Round,
		&match.SlotA,
		&match.SlotB,
		&match.IsBye,
		&match.Status,
		&match.WinnerID,
		&match.LoserID,
		&match.ScoreA,
		&match.ScoreB,
		&winMatch,
		&winSlot,
		&lossMatch,
		&lossSlot,
		&match.Label,
		&match.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to scan match row: %w", err)
	}
	match.NextOnWin = joinLink(winMatch, winSlot)
	match.NextOnLoss = joinLink(lossMatch, lossSlot)
	return &match, nil
}

func splitLink(link *models.MatchLink) (*int, *string) {
	if link == nil {
		return nil, nil
	}
	slot := string(link.Slot)
	return &link.MatchID, &slot
}

func joinLink(matchID *int, slot *string) *models.MatchLink {
	if matchID == nil || slot == nil {
		return nil
	}
	return &models.MatchLink{MatchID: *matchID, Slot: models.MatchSlot(*slot)}
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Constraint {
		case "matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "matches_slot_a_team_id_fkey", "matches_slot_b_team_id_fkey",
			"matches_winner_team_id_fkey", "matches_loser_team_id_fkey":
			return ErrMatchTeamInvalid
		}
	}
	return err
}
