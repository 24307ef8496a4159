package catalog

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/danghoang/sportygear-backend/pkg/db"
	"github.com/danghoang/sportygear-backend/pkg/db/models"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
)

// Repository persists the catalog hierarchy: categories, sports, tournaments
// under sports, and teams under tournaments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id uint) error
	FindCategory(ctx context.Context, id uint) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)

	CreateSport(ctx context.Context, sport *models.Sport) error
	UpdateSport(ctx context.Context, sport *models.Sport) error
	DeleteSport(ctx context.Context, id uint) error
	FindSport(ctx context.Context, id uint) (*models.Sport, error)
	ListSports(ctx context.Context) ([]models.Sport, error)

	CreateTournament(ctx context.Context, tournament *models.Tournament) error
	UpdateTournament(ctx context.Context, tournament *models.Tournament) error
	DeleteTournament(ctx context.Context, id uint) error
	FindTournament(ctx context.Context, id uint) (*models.Tournament, error)
	ListTournaments(ctx context.Context, sportID *uint) ([]models.Tournament, error)

	CreateTeam(ctx context.Context, team *models.Team) error
	UpdateTeam(ctx context.Context, team *models.Team) error
	DeleteTeam(ctx context.Context, id uint) error
	FindTeam(ctx context.Context, id uint) (*models.Team, error)
	ListTeams(ctx context.Context, tournamentID *uint) ([]models.Team, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(gdb *gorm.DB) Repository {
	return &repository{db: gdb}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateCategory(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("category %q already exists", category.Name))
		}
		return err
	}
	return nil
}

func (r *repository) UpdateCategory(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Save(category).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("category %q already exists", category.Name))
		}
		return err
	}
	return nil
}

func (r *repository) DeleteCategory(ctx context.Context, id uint) error {
	return r.deleteByID(ctx, &models.Category{}, id, "category")
}

func (r *repository) FindCategory(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.first(ctx, &category, id, "category"); err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *repository) CreateSport(ctx context.Context, sport *models.Sport) error {
	if err := r.db.WithContext(ctx).Create(sport).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("sport %q already exists", sport.Name))
		}
		return err
	}
	return nil
}

func (r *repository) UpdateSport(ctx context.Context, sport *models.Sport) error {
	if err := r.db.WithContext(ctx).Save(sport).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("sport %q already exists", sport.Name))
		}
		return err
	}
	return nil
}

func (r *repository) DeleteSport(ctx context.Context, id uint) error {
	return r.deleteByID(ctx, &models.Sport{}, id, "sport")
}

func (r *repository) FindSport(ctx context.Context, id uint) (*models.Sport, error) {
	var sport models.Sport
	if err := r.first(ctx, &sport, id, "sport"); err != nil {
		return nil, err
	}
	return &sport, nil
}

func (r *repository) ListSports(ctx context.Context) ([]models.Sport, error) {
	var sports []models.Sport
	err := r.db.WithContext(ctx).Order("name ASC").Find(&sports).Error
	return sports, err
}

func (r *repository) CreateTournament(ctx context.Context, tournament *models.Tournament) error {
	return r.db.WithContext(ctx).Create(tournament).Error
}

func (r *repository) UpdateTournament(ctx context.Context, tournament *models.Tournament) error {
	return r.db.WithContext(ctx).Save(tournament).Error
}

func (r *repository) DeleteTournament(ctx context.Context, id uint) error {
	return r.deleteByID(ctx, &models.Tournament{}, id, "tournament")
}

func (r *repository) FindTournament(ctx context.Context, id uint) (*models.Tournament, error) {
	var tournament models.Tournament
	err := r.db.WithContext(ctx).Preload("Sport").First(&tournament, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("tournament %d not found", id))
		}
		return nil, err
	}
	return &tournament, nil
}

func (r *repository) ListTournaments(ctx context.Context, sportID *uint) ([]models.Tournament, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if sportID != nil {
		query = query.Where("sport_id = ?", *sportID)
	}
	var tournaments []models.Tournament
	err := query.Find(&tournaments).Error
	return tournaments, err
}

func (r *repository) CreateTeam(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).Create(team).Error
}

func (r *repository) UpdateTeam(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).Save(team).Error
}

func (r *repository) DeleteTeam(ctx context.Context, id uint) error {
	return r.deleteByID(ctx, &models.Team{}, id, "team")
}

func (r *repository) FindTeam(ctx context.Context, id uint) (*models.Team, error) {
	var team models.Team
	err := r.db.WithContext(ctx).Preload("Tournament").First(&team, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("team %d not found", id))
		}
		return nil, err
	}
	return &team, nil
}

func (r *repository) ListTeams(ctx context.Context, tournamentID *uint) ([]models.Team, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if tournamentID != nil {
		query = query.Where("tournament_id = ?", *tournamentID)
	}
	var teams []models.Team
	err := query.Find(&teams).Error
	return teams, err
}

func (r *repository) first(ctx context.Context, dest any, id uint, kind string) error {
	err := r.db.WithContext(ctx).First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s %d not found", kind, id))
	}
	return err
}

func (r *repository) deleteByID(ctx context.Context, model any, id uint, kind string) error {
	res := r.db.WithContext(ctx).Delete(model, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s %d not found", kind, id))
	}
	return nil
}
