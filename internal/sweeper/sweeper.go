// Package sweeper closes sessions whose department-local day has rolled
// over. Sessions expire at midnight in the owning department's timezone,
// not a fixed duration after login.
package sweeper

import (
	"context"
	"errors"
	"time"

	"github.com/parleyhq/parley/internal/clock"
	"github.com/parleyhq/parley/internal/config"
	conversationdomain "github.com/parleyhq/parley/internal/conversation/domain"
	"github.com/parleyhq/parley/internal/observability"
	"github.com/parleyhq/parley/internal/registry"
	sessiondomain "github.com/parleyhq/parley/internal/session/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errSessionWithoutUser = errors.New("open_session_without_user")

var Module = fx.Module("sweeper",
	fx.Provide(New),
	fx.Invoke(register),
)

type Params struct {
	fx.In

	Config        config.Config
	DB            *gorm.DB
	Log           *zap.Logger
	Clock         clock.Clock
	Sessions      sessiondomain.Repository
	Conversations conversationdomain.Repository
	Registry      *registry.Registry
	Metrics       *observability.Metrics
}

type Worker struct {
	interval      time.Duration
	db            *gorm.DB
	log           *zap.Logger
	clock         clock.Clock
	sessions      sessiondomain.Repository
	conversations conversationdomain.Repository
	registry      *registry.Registry
	metrics       *observability.Metrics
}

func New(p Params) *Worker {
	return &Worker{
		interval:      p.Config.CheckSessionsInterval,
		db:            p.DB,
		log:           p.Log.Named("sweeper"),
		clock:         p.Clock,
		sessions:      p.Sessions,
		conversations: p.Conversations,
		registry:      p.Registry,
		metrics:       p.Metrics,
	}
}

func register(lc fx.Lifecycle, shutdowner fx.Shutdowner, w *Worker) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				w.RunForever(ctx)
				// RunForever only returns on cancellation or a fatal
				// iteration error; in the latter case take the process down.
				if ctx.Err() == nil {
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

// RunForever sweeps on a fixed interval until the context is cancelled or
// an iteration fails. An iteration error is fatal: a sweeper that silently
// stops closing sessions leaves them open past their day.
func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.log.Info("sweeper started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.log.Info("sweeper stopped")
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.metrics.SweeperFailures.Inc()
				w.log.Error("sweep failed", zap.Error(err))
				return
			}
		}
	}
}

// RunOnce closes every open session whose department-local calendar day is
// behind today and reports how many it closed.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	sessions, err := w.sessions.ListOpen(ctx, w.db)
	if err != nil {
		return 0, err
	}

	now := w.clock.Now()
	closed := 0
	for _, session := range sessions {
		expired, err := w.expired(session, now)
		if err != nil {
			return closed, err
		}
		if !expired {
			continue
		}
		if err := w.closeSession(ctx, session); err != nil {
			return closed, err
		}
		closed++
	}
	if closed > 0 {
		w.log.Info("swept expired sessions", zap.Int("closed", closed))
	}
	return closed, nil
}

// expired reports whether the department-local midnight after login has
// passed. Sessions of users without a department follow the default
// department's offset.
func (w *Worker) expired(session *sessiondomain.Session, now time.Time) (bool, error) {
	offset := time.Duration(0)
	if session.User != nil && session.User.Department != nil {
		parsed, err := session.User.Department.Offset()
		if err != nil {
			return false, err
		}
		offset = parsed
	} else if session.User == nil {
		// An open session without its user row is a data fault the sweep
		// must not paper over.
		return false, errSessionWithoutUser
	}

	localNow := now.UTC().Add(offset)
	localLogin := session.LoginTS.UTC().Add(offset)
	nowY, nowM, nowD := localNow.Date()
	loginY, loginM, loginD := localLogin.Date()
	nowDate := time.Date(nowY, nowM, nowD, 0, 0, 0, 0, time.UTC)
	loginDate := time.Date(loginY, loginM, loginD, 0, 0, 0, 0, time.UTC)
	return nowDate.After(loginDate), nil
}

func (w *Worker) closeSession(ctx context.Context, session *sessiondomain.Session) error {
	open, err := w.conversations.FindOpenForSession(ctx, w.db, session.ID)
	if err != nil {
		return err
	}
	if open != nil {
		w.registry.Remove(open.ID)
	}
	if _, err := w.conversations.CloseOpenForSession(ctx, w.db, session.ID, w.clock.Now()); err != nil {
		return err
	}
	if err := w.sessions.Close(ctx, w.db, session.ID, w.clock.Now()); err != nil {
		return err
	}
	w.metrics.SweeperClosed.Inc()
	w.log.Info("closed expired session",
		zap.String("session_uuid", session.ID.String()),
		zap.Time("login_ts", session.LoginTS),
	)
	return nil
}
