package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/parleyhq/parley/internal/clock"
	"github.com/parleyhq/parley/internal/conversation/domain"
	"github.com/parleyhq/parley/internal/observability"
	"github.com/parleyhq/parley/internal/registry"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	Repo     domain.Repository
	Registry *registry.Registry
	Metrics  *observability.Metrics
}

type Resolver struct {
	db       *gorm.DB
	log      *zap.Logger
	clock    clock.Clock
	repo     domain.Repository
	registry *registry.Registry
	metrics  *observability.Metrics
}

func New(p Params) domain.Resolver {
	return &Resolver{
		db:       p.DB,
		log:      p.Log.Named("conversation.resolver"),
		clock:    p.Clock,
		repo:     p.Repo,
		registry: p.Registry,
		metrics:  p.Metrics,
	}
}

func (s *Resolver) JoinOrCreate(ctx context.Context, sessionID, userID uuid.UUID) (domain.Conversation, error) {
	waiting, err := s.repo.FindWaiting(ctx, s.db, sessionID, userID)
	if err != nil {
		return domain.Conversation{}, err
	}

	if waiting != nil {
		claimed, err := s.repo.Claim(ctx, s.db, waiting.ID, sessionID)
		if err != nil {
			return domain.Conversation{}, err
		}
		if claimed {
			waiting.SecondSessionID = &sessionID
			s.attach(waiting)
			s.log.Info("joined waiting conversation",
				zap.String("conversation_uuid", waiting.ID.String()),
				zap.String("session_uuid", sessionID.String()),
			)
			return *waiting, nil
		}
		// Another session filled the slot between lookup and claim. Open a
		// fresh conversation instead of retrying the lookup.
		s.metrics.PairingConflicts.Inc()
		s.log.Info("lost pairing race, opening new conversation",
			zap.String("conversation_uuid", waiting.ID.String()),
			zap.String("session_uuid", sessionID.String()),
			zap.Error(domain.ErrPairingConflict),
		)
	}

	conversation := domain.Conversation{
		ID:             uuid.New(),
		StartTS:        s.clock.Now(),
		FirstSessionID: sessionID,
	}
	if err := s.repo.Insert(ctx, s.db, &conversation); err != nil {
		return domain.Conversation{}, err
	}
	s.attach(&conversation)
	s.log.Info("opened conversation",
		zap.String("conversation_uuid", conversation.ID.String()),
		zap.String("session_uuid", sessionID.String()),
	)
	return conversation, nil
}

func (s *Resolver) Resume(ctx context.Context, sessionID uuid.UUID) (domain.Conversation, error) {
	conversation, err := s.repo.FindOpenForSession(ctx, s.db, sessionID)
	if err != nil {
		return domain.Conversation{}, err
	}
	if conversation == nil {
		return domain.Conversation{}, domain.ErrNoConversation
	}
	s.attach(conversation)
	return *conversation, nil
}

// attach rehydrates the runtime entry from the durable row, so a process
// restart does not strand a conversation that is still open in the database.
func (s *Resolver) attach(conversation *domain.Conversation) {
	entry := s.registry.Ensure(conversation.ID)
	if err := entry.Register(conversation.FirstSessionID); err != nil {
		s.log.Warn("registry register failed",
			zap.String("conversation_uuid", conversation.ID.String()),
			zap.Error(err),
		)
	}
	if conversation.SecondSessionID != nil {
		if err := entry.Register(*conversation.SecondSessionID); err != nil {
			s.log.Warn("registry register failed",
				zap.String("conversation_uuid", conversation.ID.String()),
				zap.Error(err),
			)
		}
	}
}

func (s *Resolver) Close(ctx context.Context, conversationID, sessionID uuid.UUID) error {
	conversation, err := s.repo.FindByID(ctx, s.db, conversationID)
	if err != nil {
		return err
	}
	if conversation == nil {
		return domain.ErrNotFound
	}
	if !conversation.Participant(sessionID) {
		return registry.ErrInconsistency
	}
	if !conversation.Open() {
		s.registry.Remove(conversationID)
		return domain.ErrClosed
	}

	selectedLang := ""
	if entry, ok := s.registry.Get(conversationID); ok {
		selectedLang = entry.FirstLanguage()
	}
	if err := s.repo.Close(ctx, s.db, conversationID, s.clock.Now(), selectedLang); err != nil {
		return err
	}
	s.registry.Remove(conversationID)
	s.log.Info("closed conversation",
		zap.String("conversation_uuid", conversationID.String()),
	)
	return nil
}

func (s *Resolver) SaveQuestionnaire(ctx context.Context, conversationID, sessionID uuid.UUID, questionnaire datatypes.JSONMap) error {
	conversation, err := s.repo.FindByID(ctx, s.db, conversationID)
	if err != nil {
		return err
	}
	if conversation == nil {
		return domain.ErrNotFound
	}
	if !conversation.Participant(sessionID) {
		return registry.ErrInconsistency
	}
	return s.repo.SaveQuestionnaire(ctx, s.db, conversationID, questionnaire)
}
