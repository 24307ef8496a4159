package suppliers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/danghoang/sportygear-backend/pkg/db/models"
	pkgerrors "github.com/danghoang/sportygear-backend/pkg/errors"
	"github.com/danghoang/sportygear-backend/pkg/pagination"
)

// Input carries supplier create/update fields.
type Input struct {
	Name    string
	Email   *string
	Phone   *string
	Address *string
}

// Service exposes supplier CRUD for the admin surface.
type Service interface {
	Create(ctx context.Context, input Input) (*models.Supplier, error)
	Update(ctx context.Context, id uint, input Input) (*models.Supplier, error)
	Delete(ctx context.Context, id uint) error
	Get(ctx context.Context, id uint) (*models.Supplier, error)
	List(ctx context.Context, params pagination.Params) ([]models.Supplier, pagination.Meta, error)
}

type service struct {
	db *gorm.DB
}

// NewService builds the suppliers service.
func NewService(gdb *gorm.DB) (Service, error) {
	if gdb == nil {
		return nil, fmt.Errorf("db required")
	}
	return &service{db: gdb}, nil
}

func (s *service) Create(ctx context.Context, input Input) (*models.Supplier, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier name is required")
	}
	supplier := &models.Supplier{Name: name, Email: input.Email, Phone: input.Phone, Address: input.Address}
	if err := s.db.WithContext(ctx).Create(supplier).Error; err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *service) Update(ctx context.Context, id uint, input Input) (*models.Supplier, error) {
	supplier, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		supplier.Name = name
	}
	if input.Email != nil {
		supplier.Email = input.Email
	}
	if input.Phone != nil {
		supplier.Phone = input.Phone
	}
	if input.Address != nil {
		supplier.Address = input.Address
	}
	if err := s.db.WithContext(ctx).Save(supplier).Error; err != nil {
		return nil, err
	}
	return supplier, nil
}

func (s *service) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Supplier{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("supplier %d not found", id))
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uint) (*models.Supplier, error) {
	var supplier models.Supplier
	err := s.db.WithContext(ctx).First(&supplier, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("supplier %d not found", id))
		}
		return nil, err
	}
	return &supplier, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) ([]models.Supplier, pagination.Meta, error) {
	params = pagination.Normalize(params)

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Supplier{}).Count(&total).Error; err != nil {
		return nil, pagination.Meta{}, err
	}

	var suppliers []models.Supplier
	err := s.db.WithContext(ctx).
		Order("name ASC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&suppliers).Error
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return suppliers, pagination.NewMeta(params, total), nil
}
