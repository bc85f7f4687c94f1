package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/parleyhq/parley/internal/department/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("department.service"),
		repo: p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateDepartmentRequest) (domain.Department, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Department{}, domain.ErrInvalidName
	}
	offset := strings.TrimSpace(req.UTCOffset)
	if !domain.ValidOffset(offset) {
		return domain.Department{}, domain.ErrInvalidOffset
	}

	department := domain.Department{
		ID:        uuid.New(),
		Name:      name,
		Address:   strings.TrimSpace(req.Address),
		UTCOffset: offset,
	}
	if err := s.repo.Insert(ctx, s.db, &department); err != nil {
		return domain.Department{}, err
	}
	return department, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateDepartmentRequest) (domain.Department, error) {
	existing, err := s.repo.FindByID(ctx, s.db, req.ID)
	if err != nil {
		return domain.Department{}, err
	}
	if existing == nil {
		return domain.Department{}, domain.ErrNotFound
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Department{}, domain.ErrInvalidName
	}
	offset := strings.TrimSpace(req.UTCOffset)
	if !domain.ValidOffset(offset) {
		return domain.Department{}, domain.ErrInvalidOffset
	}

	existing.Name = name
	existing.Address = strings.TrimSpace(req.Address)
	existing.UTCOffset = offset
	if err := s.repo.Update(ctx, s.db, existing); err != nil {
		return domain.Department{}, err
	}
	return *existing, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == domain.DefaultDepartmentID {
		return domain.ErrDefault
	}
	existing, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}

	var users int64
	if err := s.db.WithContext(ctx).
		Table("users").
		Where("department_uuid = ?", id).
		Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		return domain.ErrHasUsers
	}
	return s.repo.Delete(ctx, s.db, id)
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domain.Department, error) {
	department, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Department{}, err
	}
	if department == nil {
		return domain.Department{}, domain.ErrNotFound
	}
	return *department, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Department, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	departments := make([]domain.Department, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		departments = append(departments, *item)
	}
	return departments, nil
}
