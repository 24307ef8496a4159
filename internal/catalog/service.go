package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/danghoang/sportygear-backend/pkg/db/models"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
)

// CategoryInput carries category create/update fields.
type CategoryInput struct {
	Name        string
	Description *string
}

// TournamentInput carries tournament create/update fields.
type TournamentInput struct {
	SportID uint
	Name    string
}

// TeamInput carries team create/update fields.
type TeamInput struct {
	TournamentID uint
	Name         string
	LogoURL      *string
}

// Service exposes CRUD over the catalog hierarchy. Reads are public; writes
// sit behind the admin routes.
type Service interface {
	CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uint, input CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uint) error
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)

	CreateSport(ctx context.Context, name string) (*models.Sport, error)
	UpdateSport(ctx context.Context, id uint, name string) (*models.Sport, error)
	DeleteSport(ctx context.Context, id uint) error
	ListSports(ctx context.Context) ([]models.Sport, error)

	CreateTournament(ctx context.Context, input TournamentInput) (*models.Tournament, error)
	UpdateTournament(ctx context.Context, id uint, input TournamentInput) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, id uint) error
	ListTournaments(ctx context.Context, sportID *uint) ([]models.Tournament, error)

	CreateTeam(ctx context.Context, input TeamInput) (*models.Team, error)
	UpdateTeam(ctx context.Context, id uint, input TeamInput) (*models.Team, error)
	DeleteTeam(ctx context.Context, id uint) error
	ListTeams(ctx context.Context, tournamentID *uint) ([]models.Team, error)
}

type service struct {
	repo Repository
}

// NewService builds the catalog service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateCategory(ctx context.Context, input CategoryInput) (*models.Category, error) {
	name, err := requireName(input.Name, "category")
	if err != nil {
		return nil, err
	}
	category := &models.Category{Name: name, Description: input.Description}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *service) UpdateCategory(ctx context.Context, id uint, input CategoryInput) (*models.Category, error) {
	category, err := s.repo.FindCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	name, err := requireName(input.Name, "category")
	if err != nil {
		return nil, err
	}
	category.Name = name
	if input.Description != nil {
		category.Description = input.Description
	}
	if err := s.repo.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *service) DeleteCategory(ctx context.Context, id uint) error {
	return s.repo.DeleteCategory(ctx, id)
}

func (s *service) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	return s.repo.FindCategory(ctx, id)
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *service) CreateSport(ctx context.Context, name string) (*models.Sport, error) {
	trimmed, err := requireName(name, "sport")
	if err != nil {
		return nil, err
	}
	sport := &models.Sport{Name: trimmed}
	if err := s.repo.CreateSport(ctx, sport); err != nil {
		return nil, err
	}
	return sport, nil
}

func (s *service) UpdateSport(ctx context.Context, id uint, name string) (*models.Sport, error) {
	sport, err := s.repo.FindSport(ctx, id)
	if err != nil {
		return nil, err
	}
	trimmed, err := requireName(name, "sport")
	if err != nil {
		return nil, err
	}
	sport.Name = trimmed
	if err := s.repo.UpdateSport(ctx, sport); err != nil {
		return nil, err
	}
	return sport, nil
}

func (s *service) DeleteSport(ctx context.Context, id uint) error {
	return s.repo.DeleteSport(ctx, id)
}

func (s *service) ListSports(ctx context.Context) ([]models.Sport, error) {
	return s.repo.ListSports(ctx)
}

func (s *service) CreateTournament(ctx context.Context, input TournamentInput) (*models.Tournament, error) {
	name, err := requireName(input.Name, "tournament")
	if err != nil {
		return nil, err
	}
	// the sport must exist before hanging a tournament off it
	if _, err := s.repo.FindSport(ctx, input.SportID); err != nil {
		return nil, err
	}
	tournament := &models.Tournament{SportID: input.SportID, Name: name}
	if err := s.repo.CreateTournament(ctx, tournament); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *service) UpdateTournament(ctx context.Context, id uint, input TournamentInput) (*models.Tournament, error) {
	tournament, err := s.repo.FindTournament(ctx, id)
	if err != nil {
		return nil, err
	}
	name, err := requireName(input.Name, "tournament")
	if err != nil {
		return nil, err
	}
	if input.SportID != 0 && input.SportID != tournament.SportID {
		if _, err := s.repo.FindSport(ctx, input.SportID); err != nil {
			return nil, err
		}
		tournament.SportID = input.SportID
	}
	tournament.Name = name
	tournament.Sport = nil
	if err := s.repo.UpdateTournament(ctx, tournament); err != nil {
		return nil, err
	}
	return tournament, nil
}

func (s *service) DeleteTournament(ctx context.Context, id uint) error {
	return s.repo.DeleteTournament(ctx, id)
}

func (s *service) ListTournaments(ctx context.Context, sportID *uint) ([]models.Tournament, error) {
	return s.repo.ListTournaments(ctx, sportID)
}

func (s *service) CreateTeam(ctx context.Context, input TeamInput) (*models.Team, error) {
	name, err := requireName(input.Name, "team")
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindTournament(ctx, input.TournamentID); err != nil {
		return nil, err
	}
	team := &models.Team{TournamentID: input.TournamentID, Name: name, LogoURL: input.LogoURL}
	if err := s.repo.CreateTeam(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *service) UpdateTeam(ctx context.Context, id uint, input TeamInput) (*models.Team, error) {
	team, err := s.repo.FindTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	name, err := requireName(input.Name, "team")
	if err != nil {
		return nil, err
	}
	if input.TournamentID != 0 && input.TournamentID != team.TournamentID {
		if _, err := s.repo.FindTournament(ctx, input.TournamentID); err != nil {
			return nil, err
		}
		team.TournamentID = input.TournamentID
	}
	team.Name = name
	if input.LogoURL != nil {
		team.LogoURL = input.LogoURL
	}
	team.Tournament = nil
	if err := s.repo.UpdateTeam(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *service) DeleteTeam(ctx context.Context, id uint) error {
	return s.repo.DeleteTeam(ctx, id)
}

func (s *service) ListTeams(ctx context.Context, tournamentID *uint) ([]models.Team, error) {
	return s.repo.ListTeams(ctx, tournamentID)
}

func requireName(name, kind string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s name is required", kind))
	}
	return trimmed, nil
}
