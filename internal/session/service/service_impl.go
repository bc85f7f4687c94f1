package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/parleyhq/parley/internal/auth/password"
	"github.com/parleyhq/parley/internal/clock"
	conversationdomain "github.com/parleyhq/parley/internal/conversation/domain"
	"github.com/parleyhq/parley/internal/registry"
	"github.com/parleyhq/parley/internal/session/domain"
	userdomain "github.com/parleyhq/parley/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Clock         clock.Clock
	Repo          domain.Repository
	Users         userdomain.Repository
	Conversations conversationdomain.Repository
	Registry      *registry.Registry
}

type Service struct {
	db            *gorm.DB
	log           *zap.Logger
	clock         clock.Clock
	repo          domain.Repository
	users         userdomain.Repository
	conversations conversationdomain.Repository
	registry      *registry.Registry
}

func New(p Params) domain.Service {
	return &Service{
		db:            p.DB,
		log:           p.Log.Named("session.service"),
		clock:         p.Clock,
		repo:          p.Repo,
		users:         p.Users,
		conversations: p.Conversations,
		registry:      p.Registry,
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.Session, error) {
	login := strings.TrimSpace(req.Login)
	if login == "" || req.Password == "" {
		return domain.Session{}, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByLogin(ctx, s.db, login)
	if err != nil {
		return domain.Session{}, err
	}
	if user == nil {
		return domain.Session{}, domain.ErrInvalidCredentials
	}
	if !password.Verify(req.Password, user.Password) {
		return domain.Session{}, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return domain.Session{}, domain.ErrUserNotActive
	}

	session := domain.Session{
		ID:      uuid.New(),
		LoginTS: s.clock.Now(),
		UserID:  user.ID,
		User:    user,
	}
	if err := s.repo.Insert(ctx, s.db, &session); err != nil {
		return domain.Session{}, err
	}
	s.log.Info("session opened",
		zap.String("session_uuid", session.ID.String()),
		zap.String("login", user.Login),
	)
	return session, nil
}

func (s *Service) Validate(ctx context.Context, sessionID uuid.UUID) (domain.Session, error) {
	session, err := s.repo.FindByID(ctx, s.db, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	if session == nil {
		return domain.Session{}, domain.ErrSessionNotFound
	}

	if !session.Open() {
		if err := s.closeConversations(ctx, session.ID); err != nil {
			return domain.Session{}, err
		}
		return domain.Session{}, domain.ErrSessionClosed
	}

	if session.User == nil || !session.User.IsActive {
		if err := s.closeAllForUser(ctx, session); err != nil {
			return domain.Session{}, err
		}
		return domain.Session{}, domain.ErrUserNotActive
	}

	return *session, nil
}

func (s *Service) Logout(ctx context.Context, sessionID uuid.UUID) error {
	session, err := s.repo.FindByID(ctx, s.db, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return domain.ErrSessionNotFound
	}
	if err := s.closeConversations(ctx, session.ID); err != nil {
		return err
	}
	if err := s.repo.Close(ctx, s.db, session.ID, s.clock.Now()); err != nil {
		return err
	}
	s.log.Info("session closed", zap.String("session_uuid", session.ID.String()))
	return nil
}

func (s *Service) OtherOpenSessions(ctx context.Context, sessionID uuid.UUID) ([]domain.Session, error) {
	session, err := s.repo.FindByID(ctx, s.db, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	others, err := s.repo.ListOtherOpen(ctx, s.db, session.UserID, session.ID)
	if err != nil {
		return nil, err
	}
	result := make([]domain.Session, 0, len(others))
	for _, other := range others {
		result = append(result, *other)
	}
	return result, nil
}

func (s *Service) CloseOthers(ctx context.Context, sessionID uuid.UUID) (int, error) {
	session, err := s.repo.FindByID(ctx, s.db, sessionID)
	if err != nil {
		return 0, err
	}
	if session == nil {
		return 0, domain.ErrSessionNotFound
	}
	others, err := s.repo.ListOtherOpen(ctx, s.db, session.UserID, session.ID)
	if err != nil {
		return 0, err
	}
	closed := 0
	for _, other := range others {
		if err := s.closeConversations(ctx, other.ID); err != nil {
			return closed, err
		}
		if err := s.repo.Close(ctx, s.db, other.ID, s.clock.Now()); err != nil {
			return closed, err
		}
		closed++
	}
	return closed, nil
}

// closeConversations ends every open conversation of the session, dropping
// its runtime entry first so pollers stop serving stale state.
func (s *Service) closeConversations(ctx context.Context, sessionID uuid.UUID) error {
	open, err := s.conversations.FindOpenForSession(ctx, s.db, sessionID)
	if err != nil {
		return err
	}
	if open != nil {
		s.registry.Remove(open.ID)
	}
	closed, err := s.conversations.CloseOpenForSession(ctx, s.db, sessionID, s.clock.Now())
	if err != nil {
		return err
	}
	if closed > 0 {
		s.log.Info("closed orphaned conversations",
			zap.String("session_uuid", sessionID.String()),
			zap.Int64("count", closed),
		)
	}
	return nil
}

func (s *Service) closeAllForUser(ctx context.Context, session *domain.Session) error {
	others, err := s.repo.ListOtherOpen(ctx, s.db, session.UserID, session.ID)
	if err != nil {
		return err
	}
	sessions := append(others, session)
	for _, open := range sessions {
		if err := s.closeConversations(ctx, open.ID); err != nil {
			return err
		}
		if err := s.repo.Close(ctx, s.db, open.ID, s.clock.Now()); err != nil {
			return err
		}
	}
	s.log.Warn("closed all sessions of inactive user",
		zap.String("user_uuid", session.UserID.String()),
		zap.Int("count", len(sessions)),
	)
	return nil
}
