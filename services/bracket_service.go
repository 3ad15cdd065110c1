package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/volleykit/tournament-server/brackets"
	"github.com/volleykit/tournament-server/models"
	"github.com/volleykit/tournament-server/repositories"
)

var ErrInvalidSeeds = errors.New("participant seeds must be the numbers 1..N, each used once")

// ParticipantInput names one entrant. Seed is optional; when every seed is
// zero the input order is the seeding.
type ParticipantInput struct {
	Name string `json:"name"`
	Seed int    `json:"seed,omitempty"`
}

// BracketState is the full serialized bracket of one tournament.
type BracketState struct {
	TournamentID int                    `json:"tournament_id"`
	Phase        models.TournamentPhase `json:"phase"`
	ChampionID   *int                   `json:"champion_team_id,omitempty"`
	Teams        []*models.Team         `json:"teams"`
	Matches      []*models.Match        `json:"matches"`
}

type BracketService interface {
	GenerateBracket(ctx context.Context, tournamentID int, participants []ParticipantInput, size int) (*BracketState, error)
	GetBracketState(ctx context.Context, tournamentID int) (*BracketState, error)
	GetStandings(ctx context.Context, tournamentID int) ([]brackets.Standing, error)
}

type bracketService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	teamRepo       repositories.TeamRepository
	matchRepo      repositories.MatchRepository
	locker         *TournamentLocker
	hub            *brackets.Hub
	logger         *slog.Logger
}

func NewBracketService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	teamRepo repositories.TeamRepository,
	matchRepo repositories.MatchRepository,
	locker *TournamentLocker,
	hub *brackets.Hub,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		db:             db,
		tournamentRepo: tournamentRepo,
		teamRepo:       teamRepo,
		matchRepo:      matchRepo,
		locker:         locker,
		hub:            hub,
		logger:         logger,
	}
}

// GenerateBracket creates the teams and the full match plan in one
// transaction. size is optional; when non-zero it must match the participant
// count.
func (s *bracketService) GenerateBracket(ctx context.Context, tournamentID int, participants []ParticipantInput, size int) (*BracketState, error) {
	unlock := s.locker.Lock(tournamentID)
	defer unlock()

	if size > 0 && size != len(participants) {
		return nil, &brackets.SeedCountMismatchError{Want: size, Got: len(participants)}
	}

	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	if tournament.Phase != models.PhaseBracketPending {
		return nil, ErrBracketAlreadyGenerated
	}

	ordered, err := orderParticipants(participants)
	if err != nil {
		return nil, err
	}

	topology, err := brackets.ForSize(len(ordered))
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin bracket generation transaction: %w", err)
	}
	defer tx.Rollback()

	teams := make([]*models.Team, len(ordered))
	for i, participant := range ordered {
		team := &models.Team{
			TournamentID: tournamentID,
			Name:         participant.Name,
			Seed:         i + 1,
		}
		if err = s.teamRepo.Create(ctx, tx, team); err != nil {
			return nil, err
		}
		teams[i] = team
	}

	bracket, err := brackets.Instantiate(topology, teams)
	if err != nil {
		return nil, err
	}

	matches := bracket.Matches()
	for _, match := range matches {
		match.TournamentID = tournamentID
		if err = s.matchRepo.Create(ctx, tx, match); err != nil {
			return nil, err
		}
	}

	if err = s.tournamentRepo.UpdatePhase(ctx, tx, tournamentID, bracket.Phase, bracket.Champion); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit bracket generation transaction: %w", err)
	}

	s.logger.Info("bracket generated",
		slog.Int("tournament_id", tournamentID),
		slog.Int("teams", len(teams)),
		slog.Int("matches", len(matches)),
	)

	state := &BracketState{
		TournamentID: tournamentID,
		Phase:        bracket.Phase,
		ChampionID:   bracket.Champion,
		Teams:        teams,
		Matches:      matches,
	}
	s.hub.BroadcastToRoom(brackets.RoomForTournament(tournamentID), brackets.Event{
		Type:    brackets.EventBracketGenerated,
		Payload: state,
	})
	return state, nil
}

func (s *bracketService) GetBracketState(ctx context.Context, tournamentID int) (*BracketState, error) {
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

	return &BracketState{
		TournamentID: tournamentID,
		Phase:        tournament.Phase,
		ChampionID:   tournament.ChampionID,
		Teams:        teams,
		Matches:      matches,
	}, nil
}

func (s *bracketService) GetStandings(ctx context.Context, tournamentID int) ([]brackets.Standing, error) {
	state, err := s.GetBracketState(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	standings := make([]brackets.Standing, 0, len(state.Teams))
	for _, team := range state.Teams {
		if team.Placement != nil {
			standings = append(standings, brackets.Standing{TeamID: team.ID, Placement: *team.Placement})
		}
	}
	sort.Slice(standings, func(i, j int) bool { return standings[i].Placement < standings[j].Placement })
	return standings, nil
}

// orderParticipants validates names and resolves seeding without touching the
// caller's slice. Explicit seeds must form the exact set 1..N; all-zero seeds
// fall back to input order.
func orderParticipants(participants []ParticipantInput) ([]ParticipantInput, error) {
	ordered := make([]ParticipantInput, len(participants))
	copy(ordered, participants)

	explicit := false
	for i := range ordered {
		ordered[i].Name = strings.TrimSpace(ordered[i].Name)
		if ordered[i].Name == "" {
			return nil, ErrParticipantNameRequired
		}
		if ordered[i].Seed != 0 {
			explicit = true
		}
	}
	if !explicit {
		return ordered, nil
	}

	seen := make(map[int]bool, len(ordered))
	for _, p := range ordered {
		if p.Seed < 1 || p.Seed > len(ordered) || seen[p.Seed] {
			return nil, ErrInvalidSeeds
		}
		seen[p.Seed] = true
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Seed < ordered[j].Seed })
	return ordered, nil
}
