package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/volleykit/tournament-server/brackets"
	"github.com/volleykit/tournament-server/models"
	"github.com/volleykit/tournament-server/repositories"
)

// ResultInput is a reported match outcome. Scores are informational and
// optional; the winner decides progression. LoserID may be omitted and is then
// derived from the match occupants.
type ResultInput struct {
	WinnerID int  `json:"winner_team_id"`
	LoserID  int  `json:"loser_team_id,omitempty"`
	ScoreA   *int `json:"score_a,omitempty"`
	ScoreB   *int `json:"score_b,omitempty"`
}

type MatchService interface {
	ReportResult(ctx context.Context, tournamentID, matchID int, input ResultInput) (*BracketState, error)
	UndoResult(ctx context.Context, tournamentID, matchID int) (*BracketState, error)
}

type matchService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	locker         *TournamentLocker
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	locker *TournamentLocker,
	hub *brackets.Hub,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:             db,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		locker:         locker,
		hub:            hub,
		logger:         logger,
	}
}

func (s *matchService) ReportResult(ctx context.Context, tournamentID, matchID int, input ResultInput) (*BracketState, error) {
	return s.mutate(ctx, tournamentID, brackets.EventMatchResult, func(bracket *brackets.Bracket) (*brackets.Changeset, error) {
		loserID := input.LoserID
		if loserID == 0 {
			var err error
			loserID, err = opponentOf(bracket, matchID, input.WinnerID)
			if err != nil {
				return nil, err
			}
		} else if !matchExists(bracket, matchID) {
			return nil, ErrMatchNotFound
		}
		return bracket.ApplyResult(matchID, input.WinnerID, loserID, input.ScoreA, input.ScoreB)
	})
}

func (s *matchService) UndoResult(ctx context.Context, tournamentID, matchID int) (*BracketState, error) {
	return s.mutate(ctx, tournamentID, brackets.EventResultUndone, func(bracket *brackets.Bracket) (*brackets.Changeset, error) {
		if !matchExists(bracket, matchID) {
			return nil, ErrMatchNotFound
		}
		return bracket.UndoResult(matchID)
	})
}

// mutate runs one bracket operation under the tournament lock: load state,
// apply, persist the changeset in a single transaction, then broadcast.
func (s *matchService) mutate(ctx context.Context, tournamentID int, eventType string, op func(*brackets.Bracket) (*brackets.Changeset, error)) (*BracketState, error) {
	unlock := s.locker.Lock(tournamentID)
	defer unlock()

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if tournament.Phase == models.PhaseBracketPending {
		return nil, ErrBracketNotGenerated
	}

	var (
		teams   []*models.Team
		matches []*models.Match
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var loadErr error
		teams, loadErr = s.teamRepo.ListByTournament(gCtx, tournamentID)
		return loadErr
	})
	g.Go(func() error {
		var loadErr error
		matches, loadErr = s.matchRepo.ListByTournament(gCtx, tournamentID)
		return loadErr
	})
	if err = g.Wait(); err != nil {
		return nil, err
	}

	bracket, err := brackets.NewBracket(matches, teams, tournament.Phase, tournament.ChampionID)
	if err != nil {
		return nil, err
	}

	changeset, err := op(bracket)
	if err != nil {
		return nil, err
	}

	if err = s.persistChangeset(ctx, tournamentID, changeset); err != nil {
		return nil, err
	}

	s.logger.Info("bracket updated",
		slog.Int("tournament_id", tournamentID),
		slog.String("event", eventType),
		slog.Int("matches_touched", len(changeset.Matches)),
		slog.Int("teams_touched", len(changeset.Teams)),
		slog.String("phase", string(changeset.Phase)),
	)

	state := &BracketState{
		TournamentID: tournamentID,
		Phase:        bracket.Phase,
		ChampionID:   bracket.Champion,
		Teams:        bracket.Teams(),
		Matches:      bracket.Matches(),
	}
	s.hub.BroadcastToRoom(brackets.RoomForTournament(tournamentID), brackets.Event{
		Type:    eventType,
		Payload: state,
	})
	return state, nil
}

func (s *matchService) persistChangeset(ctx context.Context, tournamentID int, changeset *brackets.Changeset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin result transaction: %w", err)
	}
	defer tx.Rollback()

	for _, match := range changeset.Matches {
		if err = s.matchRepo.Update(ctx, tx, match); err != nil {
			return err
		}
	}
	for _, team := range changeset.Teams {
		if err = s.teamRepo.UpdateStanding(ctx, tx, team.ID, team.Placement, team.Eliminated); err != nil {
			return err
		}
	}
	if err = s.tournamentRepo.UpdatePhase(ctx, tx, tournamentID, changeset.Phase, changeset.Champion); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit result transaction: %w", err)
	}
	return nil
}

func matchExists(bracket *brackets.Bracket, matchID int) bool {
	for _, match := range bracket.Matches() {
		if match.ID == matchID {
			return true
		}
	}
	return false
}

// opponentOf resolves the losing side of a reported result. Precondition
// failures are left for ApplyResult so its error reasons stay authoritative.
func opponentOf(bracket *brackets.Bracket, matchID, winnerID int) (int, error) {
	for _, match := range bracket.Matches() {
		if match.ID != matchID {
			continue
		}
		if match.SlotA != nil && match.SlotB != nil {
			switch winnerID {
			case *match.SlotA:
				return *match.SlotB, nil
			case *match.SlotB:
				return *match.SlotA, nil
			}
		}
		return 0, nil
	}
	return 0, ErrMatchNotFound
}
