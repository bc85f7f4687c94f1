package relay

import (
	"context"

	"github.com/google/uuid"
	audiodomain "github.com/parleyhq/parley/internal/audio/domain"
	"github.com/parleyhq/parley/internal/clock"
	conversationdomain "github.com/parleyhq/parley/internal/conversation/domain"
	"github.com/parleyhq/parley/internal/observability"
	"github.com/parleyhq/parley/internal/recognition"
	"github.com/parleyhq/parley/internal/registry"
	textdomain "github.com/parleyhq/parley/internal/text/domain"
	"github.com/parleyhq/parley/internal/translation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Provide(New)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	Clock         clock.Clock
	Registry      *registry.Registry
	Conversations conversationdomain.Repository
	Texts         textdomain.Repository
	Audio         audiodomain.Repository
	Recognizer    recognition.Recognizer
	Translator    translation.Translator
	Metrics       *observability.Metrics
}

type service struct {
	db            *gorm.DB
	log           *zap.Logger
	clock         clock.Clock
	registry      *registry.Registry
	conversations conversationdomain.Repository
	texts         textdomain.Repository
	audio         audiodomain.Repository
	recognizer    recognition.Recognizer
	translator    translation.Translator
	metrics       *observability.Metrics
}

func New(p Params) Service {
	return &service{
		db:            p.DB,
		log:           p.Log.Named("relay"),
		clock:         p.Clock,
		registry:      p.Registry,
		conversations: p.Conversations,
		texts:         p.Texts,
		audio:         p.Audio,
		recognizer:    p.Recognizer,
		translator:    p.Translator,
		metrics:       p.Metrics,
	}
}

// entry re-reads the durable row before trusting the runtime cache: a
// conversation closed by the sweeper or another node must not accept work.
func (s *service) entry(ctx context.Context, conversationID, sessionID uuid.UUID) (*registry.Entry, error) {
	conversation, err := s.conversations.FindByID(ctx, s.db, conversationID)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, conversationdomain.ErrNotFound
	}
	if !conversation.Open() {
		s.registry.Remove(conversationID)
		return nil, conversationdomain.ErrClosed
	}
	if !conversation.Participant(sessionID) {
		return nil, registry.ErrInconsistency
	}

	entry := s.registry.Ensure(conversationID)
	if err := entry.Register(conversation.FirstSessionID); err != nil {
		return nil, err
	}
	if conversation.SecondSessionID != nil {
		if err := entry.Register(*conversation.SecondSessionID); err != nil {
			return nil, err
		}
	}
	return entry, nil
}

func (s *service) SubmitUtterance(ctx context.Context, conversationID, sessionID uuid.UUID, audioData []byte, mimeType string) (*textdomain.Text, error) {
	entry, err := s.entry(ctx, conversationID, sessionID)
	if err != nil {
		return nil, err
	}
	if !entry.ReadyToStart() {
		s.metrics.UtterancesTotal.WithLabelValues("not_ready").Inc()
		return nil, ErrNotReady
	}

	ownLang, err := entry.LanguageOf(sessionID)
	if err != nil {
		return nil, err
	}
	targetLang, err := entry.InterlocutorLanguage(sessionID)
	if err != nil {
		return nil, err
	}
	interlocutor, err := entry.InterlocutorSession(sessionID)
	if err != nil {
		return nil, err
	}

	recognized, err := s.recognizer.Recognize(ctx, audioData, mimeType, ownLang)
	if err != nil {
		s.metrics.UtterancesTotal.WithLabelValues("recognition_failed").Inc()
		return nil, err
	}

	translated, err := s.translator.Translate(ctx, recognized.Text, recognized.Lang, targetLang)
	if err != nil {
		s.metrics.UtterancesTotal.WithLabelValues("translation_failed").Inc()
		return nil, err
	}

	now := s.clock.Now()
	audioRow := audiodomain.Audio{
		ID:       uuid.New(),
		CreateTS: now,
		MimeType: mimeType,
		Data:     audioData,
	}
	text := textdomain.Text{
		ID:             uuid.New(),
		CreateTS:       now,
		Lang:           recognized.Lang,
		Text:           recognized.Text,
		TranslatedLang: targetLang,
		Translated:     translated,
		ConversationID: conversationID,
		SessionID:      &sessionID,
		AudioID:        &audioRow.ID,
	}

	// Audio and text land together or not at all.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.audio.Insert(ctx, tx, &audioRow); err != nil {
			return err
		}
		return s.texts.Insert(ctx, tx, &text)
	})
	if err != nil {
		s.metrics.UtterancesTotal.WithLabelValues("persist_failed").Inc()
		return nil, err
	}

	if err := entry.Enqueue(interlocutor, &text); err != nil {
		return nil, err
	}
	s.metrics.UtterancesTotal.WithLabelValues("ok").Inc()
	s.log.Debug("utterance relayed",
		zap.String("conversation_uuid", conversationID.String()),
		zap.String("text_uuid", text.ID.String()),
		zap.String("lang", recognized.Lang),
		zap.String("translated_lang", targetLang),
	)
	return &text, nil
}

func (s *service) PullMessage(ctx context.Context, conversationID, sessionID uuid.UUID) (*textdomain.Text, error) {
	entry, err := s.entry(ctx, conversationID, sessionID)
	if err != nil {
		return nil, err
	}
	return entry.Dequeue(sessionID)
}

func (s *service) History(ctx context.Context, conversationID, sessionID uuid.UUID) ([]*textdomain.Text, error) {
	conversation, err := s.conversations.FindByID(ctx, s.db, conversationID)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, conversationdomain.ErrNotFound
	}
	if !conversation.Participant(sessionID) {
		return nil, registry.ErrInconsistency
	}
	return s.texts.ListByConversation(ctx, s.db, conversationID)
}

func (s *service) SetLanguage(ctx context.Context, conversationID, sessionID uuid.UUID, lang string) error {
	supported, err := s.translator.Supported(ctx, lang)
	if err != nil {
		return err
	}
	if !supported {
		return ErrUnsupportedLang
	}
	entry, err := s.entry(ctx, conversationID, sessionID)
	if err != nil {
		return err
	}
	return entry.SetLanguage(sessionID, lang)
}

func (s *service) Languages(ctx context.Context) ([]translation.Language, error) {
	return s.translator.Languages(ctx)
}

func (s *service) Status(ctx context.Context, conversationID, sessionID uuid.UUID) (Status, error) {
	conversation, err := s.conversations.FindByID(ctx, s.db, conversationID)
	if err != nil {
		return Status{}, err
	}
	if conversation == nil {
		return Status{}, conversationdomain.ErrNotFound
	}
	if !conversation.Open() {
		s.registry.Remove(conversationID)
		return Status{ConversationClosed: true}, nil
	}
	if !conversation.Participant(sessionID) {
		return Status{}, registry.ErrInconsistency
	}

	entry, err := s.entry(ctx, conversationID, sessionID)
	if err != nil {
		return Status{}, err
	}
	ownLang, err := entry.LanguageOf(sessionID)
	if err != nil {
		return Status{}, err
	}
	interlocutorLang, err := entry.InterlocutorLanguage(sessionID)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Paired:           conversation.Paired(),
		ReadyToStart:     entry.ReadyToStart(),
		OwnLang:          ownLang,
		InterlocutorLang: interlocutorLang,
	}, nil
}

func (s *service) FixText(ctx context.Context, textID, sessionID uuid.UUID, fixedText string) (*textdomain.Text, error) {
	text, err := s.texts.FindByID(ctx, s.db, textID)
	if err != nil {
		return nil, err
	}
	if text == nil {
		return nil, ErrTextNotFound
	}
	conversation, err := s.conversations.FindByID(ctx, s.db, text.ConversationID)
	if err != nil {
		return nil, err
	}
	if conversation == nil || !conversation.Participant(sessionID) {
		return nil, registry.ErrInconsistency
	}

	translated, err := s.translator.Translate(ctx, fixedText, text.Lang, text.TranslatedLang)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	if err := s.texts.Fix(ctx, s.db, textID, fixedText, translated, now); err != nil {
		return nil, err
	}
	text.FixedText = &fixedText
	text.Translated = translated
	text.EditTS = &now
	s.log.Debug("utterance corrected",
		zap.String("text_uuid", textID.String()),
		zap.String("session_uuid", sessionID.String()),
	)
	return text, nil
}

func (s *service) GetAudio(ctx context.Context, audioID uuid.UUID) (*audiodomain.Audio, error) {
	audio, err := s.audio.FindByID(ctx, s.db, audioID)
	if err != nil {
		return nil, err
	}
	if audio == nil {
		return nil, ErrAudioNotFound
	}
	return audio, nil
}
