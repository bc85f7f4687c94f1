package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/parleyhq/parley/internal/auth/password"
	departmentdomain "github.com/parleyhq/parley/internal/department/domain"
	"github.com/parleyhq/parley/internal/user/domain"
	"github.com/parleyhq/parley/pkg/db"
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
		log:  p.Log.Named("user.service"),
		repo: p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateUserRequest) (domain.User, error) {
	login := strings.TrimSpace(req.Login)
	if login == "" {
		return domain.User{}, domain.ErrInvalidLogin
	}
	if strings.TrimSpace(req.Password) == "" {
		return domain.User{}, domain.ErrInvalidPassword
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return domain.User{}, err
	}

	departmentID := req.DepartmentID
	if departmentID == uuid.Nil {
		departmentID = departmentdomain.DefaultDepartmentID
	}

	user := domain.User{
		ID:           uuid.New(),
		Login:        login,
		FullName:     strings.TrimSpace(req.FullName),
		Password:     hash,
		IsActive:     true,
		IsSuperuser:  req.IsSuperuser,
		CreateTS:     time.Now().UTC(),
		DepartmentID: departmentID,
	}
	if err := s.repo.Insert(ctx, s.db, &user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.User{}, domain.ErrLoginTaken
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateUserRequest) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, s.db, req.ID)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrNotFound
	}

	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Password != nil {
		if strings.TrimSpace(*req.Password) == "" {
			return domain.User{}, domain.ErrInvalidPassword
		}
		hash, err := password.Hash(*req.Password)
		if err != nil {
			return domain.User{}, err
		}
		user.Password = hash
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.IsSuperuser != nil {
		user.IsSuperuser = *req.IsSuperuser
	}
	if req.DepartmentID != nil && *req.DepartmentID != uuid.Nil {
		user.DepartmentID = *req.DepartmentID
	}

	if err := s.repo.Update(ctx, s.db, user); err != nil {
		return domain.User{}, err
	}
	return *user, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrNotFound
	}

	var conversations int64
	err = s.db.WithContext(ctx).
		Table("conversations").
		Joins("JOIN sessions ON sessions.primary_uuid = conversations.first_session_uuid OR sessions.primary_uuid = conversations.second_session_uuid").
		Where("sessions.user_uuid = ?", id).
		Count(&conversations).Error
	if err != nil {
		return err
	}
	if conversations > 0 {
		return domain.ErrHasConversations
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM sessions WHERE user_uuid = ?`, id).Error; err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, id)
	})
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	user, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.User{}, err
	}
	if user == nil {
		return domain.User{}, domain.ErrNotFound
	}
	return *user, nil
}

func (s *Service) List(ctx context.Context) ([]domain.User, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		users = append(users, *item)
	}
	return users, nil
}
