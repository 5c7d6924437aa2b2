package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shelterhq/shelter-api/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRepo captures audit writes and optionally fails the first n of them.
type recordingRepo struct {
	domain.Repository
	mu       sync.Mutex
	failNext int
	entries  []*domain.AuditLog
}

func (r *recordingRepo) CreateAuditLog(ctx context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNext > 0 {
		r.failNext--
		return errors.New("store unavailable")
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *recordingRepo) Entries() []*domain.AuditLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.AuditLog(nil), r.entries...)
}

func TestRecordPersistsEntry(t *testing.T) {
	repo := &recordingRepo{}
	l := NewLogger(Params{Repo: repo})

	l.Record(context.Background(), &domain.AuditLog{
		Action:      domain.ActionAnimalView,
		ActionType:  domain.ActionTypeRead,
		TargetModel: "Animal",
	})

	entries := repo.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionAnimalView, entries[0].Action)
}

func TestRecordFallsBackToSystemError(t *testing.T) {
	repo := &recordingRepo{failNext: 1}
	l := NewLogger(Params{Repo: repo})

	// Primary write fails, the fallback SYSTEM_ERROR entry lands instead.
	l.Record(context.Background(), &domain.AuditLog{
		Action:      domain.ActionAnimalCreate,
		ActionType:  domain.ActionTypeCreate,
		TargetModel: "Animal",
	})

	entries := repo.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionSystemError, entries[0].Action)
	assert.Equal(t, "ANIMAL_CREATE", entries[0].Details["action"])
}

func TestRecordNeverPanicsWhenBothWritesFail(t *testing.T) {
	repo := &recordingRepo{failNext: 2}
	l := NewLogger(Params{Repo: repo})

	assert.NotPanics(t, func() {
		l.Record(context.Background(), &domain.AuditLog{
			Action:      domain.ActionUserCreate,
			ActionType:  domain.ActionTypeCreate,
			TargetModel: "User",
		})
	})
	assert.Empty(t, repo.Entries())
}

func TestDispatchCompletesAsync(t *testing.T) {
	repo := &recordingRepo{}
	l := NewLogger(Params{Repo: repo})

	for i := 0; i < 5; i++ {
		l.Dispatch(&domain.AuditLog{
			Action:      domain.ActionAuditLogView,
			ActionType:  domain.ActionTypeRead,
			TargetModel: "AuditLog",
		})
	}
	l.Wait()

	assert.Len(t, repo.Entries(), 5)
}
