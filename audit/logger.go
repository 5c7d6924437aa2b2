// Package audit records immutable action entries. Writes follow a
// log-but-never-block contract: a failed write is reported to the operational
// log and answered with a best-effort secondary SYSTEM_ERROR entry, but never
// surfaces to, or delays, the request that triggered it.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/shelterhq/shelter-api/domain"
	"github.com/shelterhq/shelter-api/pkg/logger"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/fx"
)

const dispatchTimeout = 10 * time.Second

type Params struct {
	fx.In
	Repo domain.Repository
}

func NewLogger(params Params) *Logger {
	return &Logger{repo: params.Repo}
}

type Logger struct {
	repo domain.Repository
	wg   sync.WaitGroup
}

// Record persists one entry synchronously. It never returns an error: on
// persistence failure it attempts a secondary SYSTEM_ERROR entry describing
// the failure, and if that also fails the failure only reaches the
// operational log.
func (l *Logger) Record(ctx context.Context, entry *domain.AuditLog) {
	if entry == nil {
		return
	}
	if err := l.repo.CreateAuditLog(ctx, entry); err != nil {
		logger.Logger(ctx).Error().Err(err).
			Str("action", string(entry.Action)).
			Msg("audit write failed")

		fallback := &domain.AuditLog{
			Action:      domain.ActionSystemError,
			ActionType:  domain.ActionTypeCreate,
			TargetModel: "AuditLog",
			Details:     bson.M{"error": err.Error(), "action": string(entry.Action)},
		}
		if innerErr := l.repo.CreateAuditLog(ctx, fallback); innerErr != nil {
			logger.Logger(ctx).Error().Err(innerErr).
				Msg("audit fallback write failed")
		}
	}
}

// Dispatch fires an entry from a fresh goroutine so the caller's response is
// never held up by audit latency. The write uses a background context: the
// request may already be answered (and its context canceled) by the time the
// entry lands.
func (l *Logger) Dispatch(entry *domain.AuditLog) {
	if entry == nil {
		return
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		l.Record(ctx, entry)
	}()
}

// Wait blocks until all dispatched writes have settled. Test helper.
func (l *Logger) Wait() {
	l.wg.Wait()
}
