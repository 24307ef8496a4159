package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/danghoang/sportygear-backend/pkg/db/models"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
)

func newService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	dsn := "file:catalog_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(&models.Category{}, &models.Sport{}, &models.Tournament{}, &models.Team{})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}
	return svc, db
}

func TestCategoryLifecycle(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.CreateCategory(ctx, CategoryInput{Name: "  Jerseys "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Name != "Jerseys" {
		t.Fatalf("name = %q, want trimmed", created.Name)
	}

	_, err = svc.CreateCategory(ctx, CategoryInput{Name: "Jerseys"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("err = %v, want conflict", err)
	}

	desc := "Match and training jerseys"
	updated, err := svc.UpdateCategory(ctx, created.ID, CategoryInput{Name: "Shirts", Description: &desc})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Shirts" || updated.Description == nil {
		t.Fatalf("unexpected category: %+v", updated)
	}

	if err := svc.DeleteCategory(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	err = svc.DeleteCategory(ctx, created.ID)
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestHierarchyRequiresParents(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreateTournament(ctx, TournamentInput{SportID: 999, Name: "Premier League"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("err = %v, want not found for missing sport", err)
	}

	sport, err := svc.CreateSport(ctx, "Football")
	if err != nil {
		t.Fatalf("create sport: %v", err)
	}
	tournament, err := svc.CreateTournament(ctx, TournamentInput{SportID: sport.ID, Name: "Premier League"})
	if err != nil {
		t.Fatalf("create tournament: %v", err)
	}

	_, err = svc.CreateTeam(ctx, TeamInput{TournamentID: 999, Name: "Arsenal"})
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("err = %v, want not found for missing tournament", err)
	}

	if _, err := svc.CreateTeam(ctx, TeamInput{TournamentID: tournament.ID, Name: "Arsenal"}); err != nil {
		t.Fatalf("create team: %v", err)
	}
}

func TestListTournamentsFiltersBySport(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	football, _ := svc.CreateSport(ctx, "Football")
	basketball, _ := svc.CreateSport(ctx, "Basketball")
	if _, err := svc.CreateTournament(ctx, TournamentInput{SportID: football.ID, Name: "La Liga"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreateTournament(ctx, TournamentInput{SportID: basketball.ID, Name: "NBA"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	all, err := svc.ListTournaments(ctx, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len = %d, want 2", len(all))
	}

	filtered, err := svc.ListTournaments(ctx, &football.ID)
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Name != "La Liga" {
		t.Fatalf("unexpected filtered list: %+v", filtered)
	}
}

func TestValidationRejectsBlankNames(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.CreateSport(ctx, "  "); pkgerrors.As(err) == nil {
		t.Fatalf("err = %v, want validation error", err)
	}
	if _, err := svc.CreateCategory(ctx, CategoryInput{}); pkgerrors.As(err) == nil {
		t.Fatalf("err = %v, want validation error", err)
	}
}
