package eventlog

import (
	"context"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/toylink/donations/internal/models"
	"github.com/toylink/donations/pkg/logctx"
	"github.com/toylink/donations/pkg/tool"
)

// Recorder persists webhook deliveries.
type Recorder interface {
	Save(ctx context.Context, log *models.WebhookEventLog)
}

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
	wg  sync.WaitGroup
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service { return &Service{db: db, log: log} }

// Save asynchronously persists a webhook event log. Nil input is ignored.
func (s *Service) Save(ctx context.Context, log *models.WebhookEventLog) {
	if log == nil {
		return
	}
	if log.ID == "" {
		log.ID = tool.GenerateUUIDV7()
	}
	entry := *log
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.db.Save(&entry).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to save webhook event log: %v", err)
		}
	}()
}

// Wait blocks until pending saves are done.
func (s *Service) Wait() { s.wg.Wait() }

func registerFlush(lc fx.Lifecycle, s *Service) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			s.Wait()
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(
		New,
		func(s *Service) Recorder { return s },
	),
	fx.Invoke(registerFlush),
)
