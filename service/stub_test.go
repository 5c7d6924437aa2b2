package service

import (
	"context"
	"sync"

	"github.com/shelterhq/shelter-api/audit"
	"github.com/shelterhq/shelter-api/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// stubRepo implements domain.Repository with overridable function fields.
// Audit writes are always captured; everything else panics unless the test
// provides a behavior, so an unexpected repository call fails loudly.
type stubRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog

	createUser  func(ctx context.Context, user *domain.User) error
	updateUser  func(ctx context.Context, user *domain.User) error
	deleteUser  func(ctx context.Context, id bson.ObjectID) error
	queryUsers  func(ctx context.Context, opt *domain.QueryUserOptions) error
	createAnimal func(ctx context.Context, animal *domain.Animal) error
	updateAnimal func(ctx context.Context, animal *domain.Animal) error
	deleteAnimal func(ctx context.Context, id bson.ObjectID) error
	queryAnimals func(ctx context.Context, opt *domain.QueryAnimalOptions) error
	animalStats  func(ctx context.Context) (*domain.AnimalStats, error)
	queryAudit   func(ctx context.Context, opt *domain.QueryAuditLogOptions) error
	auditStats   func(ctx context.Context) (*domain.AuditStats, error)
}

func (s *stubRepo) CreateUser(ctx context.Context, user *domain.User) error {
	return s.createUser(ctx, user)
}

func (s *stubRepo) UpdateUser(ctx context.Context, user *domain.User) error {
	return s.updateUser(ctx, user)
}

func (s *stubRepo) DeleteUser(ctx context.Context, id bson.ObjectID) error {
	return s.deleteUser(ctx, id)
}

func (s *stubRepo) QueryUsers(ctx context.Context, opt *domain.QueryUserOptions) error {
	return s.queryUsers(ctx, opt)
}

func (s *stubRepo) CreateAnimal(ctx context.Context, animal *domain.Animal) error {
	return s.createAnimal(ctx, animal)
}

func (s *stubRepo) UpdateAnimal(ctx context.Context, animal *domain.Animal) error {
	return s.updateAnimal(ctx, animal)
}

func (s *stubRepo) DeleteAnimal(ctx context.Context, id bson.ObjectID) error {
	return s.deleteAnimal(ctx, id)
}

func (s *stubRepo) QueryAnimals(ctx context.Context, opt *domain.QueryAnimalOptions) error {
	return s.queryAnimals(ctx, opt)
}

func (s *stubRepo) AggregateAnimalStats(ctx context.Context) (*domain.AnimalStats, error) {
	return s.animalStats(ctx)
}

func (s *stubRepo) CreateAuditLog(ctx context.Context, entry *domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *stubRepo) QueryAuditLogs(ctx context.Context, opt *domain.QueryAuditLogOptions) error {
	return s.queryAudit(ctx, opt)
}

func (s *stubRepo) AggregateAuditStats(ctx context.Context) (*domain.AuditStats, error) {
	return s.auditStats(ctx)
}

func (s *stubRepo) auditEntries() []*domain.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.AuditLog, len(s.entries))
	copy(out, s.entries)
	return out
}

// newTestService wires a Service around the stub with a real audit logger so
// tests can assert on the exact entries emitted.
func newTestService(repo *stubRepo) *Service {
	return &Service{
		Repo:     repo,
		Audit:    audit.NewLogger(audit.Params{Repo: repo}),
		tokenTTL: defaultTokenTTL,
	}
}
