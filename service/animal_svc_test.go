package service

import (
	"context"
	"testing"
	"time"

	"github.com/shelterhq/shelter-api/domain"
	"github.com/shelterhq/shelter-api/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var testOrigin = domain.Origin{IP: "203.0.113.7", UserAgent: "test-agent"}

func testClaims(t *testing.T) (*domain.Claims, bson.ObjectID) {
	t.Helper()
	uid := bson.NewObjectID()
	return &domain.Claims{UID: uid.Hex(), Role: domain.RoleStaff}, uid
}

func TestListAnimalsEchoesFiltersInAudit(t *testing.T) {
	repo := &stubRepo{
		queryAnimals: func(_ context.Context, opt *domain.QueryAnimalOptions) error {
			assert.Equal(t, bson.M{"breed": "Newfoundland"}, opt.Filter)
			assert.Equal(t, int64(1), opt.Page)
			assert.Equal(t, int64(25), opt.Limit)
			opt.Result = []*domain.Animal{{AnimalID: "A1"}}
			opt.Total = 51
			return nil
		},
	}
	svc := newTestService(repo)
	claims, uid := testClaims(t)

	page, err := svc.ListAnimals(context.Background(), testOrigin, claims, map[string][]string{
		"breed": {"Newfoundland"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(51), page.Total)
	assert.Equal(t, int64(3), page.Pages)
	svc.Audit.Wait()

	entries := repo.auditEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionAnimalView, entries[0].Action)
	assert.Equal(t, domain.ActionTypeRead, entries[0].ActionType)
	require.NotNil(t, entries[0].ActorID)
	assert.Equal(t, uid, *entries[0].ActorID)
	assert.Equal(t, "Animal", entries[0].TargetModel)
	assert.Equal(t, testOrigin.IP, entries[0].IP)
	assert.Equal(t, bson.M{"breed": "Newfoundland"}, entries[0].Details["filters"])
}

func TestFilterAnimalsUnknownName(t *testing.T) {
	svc := newTestService(&stubRepo{})
	_, err := svc.FilterAnimals(context.Background(), testOrigin, nil, "Desert", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnknownFilter)
}

func TestFilterAnimalsNamedKeysWin(t *testing.T) {
	repo := &stubRepo{
		queryAnimals: func(_ context.Context, opt *domain.QueryAnimalOptions) error {
			// Caller-supplied breed must not override the profile's breed set.
			assert.Equal(t, bson.M{"$in": bson.A{
				"Labrador Retriever Mix", "Chesapeake Bay Retriever", "Newfoundland",
			}}, opt.Filter["breed"])
			assert.Equal(t, "Intact Female", opt.Filter["sex_upon_outcome"])
			assert.Equal(t, bson.M{"$gte": float64(26), "$lte": float64(156)},
				opt.Filter["age_upon_outcome_in_weeks"])
			assert.Equal(t, "Black", opt.Filter["color"])
			return nil
		},
	}
	svc := newTestService(repo)
	claims, _ := testClaims(t)

	_, err := svc.FilterAnimals(context.Background(), testOrigin, claims, "Water", map[string][]string{
		"breed": {"Chihuahua"},
		"color": {"Black"},
	})
	require.NoError(t, err)
	svc.Audit.Wait()

	entries := repo.auditEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionAnimalFilterSearch, entries[0].Action)
	assert.Equal(t, "Water", entries[0].Details["filterType"])
}

func TestGetAnimalInvalidID(t *testing.T) {
	svc := newTestService(&stubRepo{})
	_, err := svc.GetAnimal(context.Background(), testOrigin, nil, "not-a-hex-id")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestGetAnimalNotFound(t *testing.T) {
	repo := &stubRepo{
		queryAnimals: func(_ context.Context, opt *domain.QueryAnimalOptions) error {
			return nil
		},
	}
	svc := newTestService(repo)
	_, err := svc.GetAnimal(context.Background(), testOrigin, nil, bson.NewObjectID().Hex())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	svc.Audit.Wait()
	assert.Empty(t, repo.auditEntries())
}

func TestCreateAnimalRequiredFields(t *testing.T) {
	svc := newTestService(&stubRepo{})
	err := svc.CreateAnimal(context.Background(), testOrigin, nil, &domain.Animal{
		AnimalType: "Dog",
		Breed:      "Newfoundland",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateAnimalDerivesAgeInWeeks(t *testing.T) {
	birth := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	outcome := birth.AddDate(0, 0, 7*30+3) // 30 weeks and change

	var stored *domain.Animal
	repo := &stubRepo{
		createAnimal: func(_ context.Context, animal *domain.Animal) error {
			stored = animal
			return nil
		},
	}
	svc := newTestService(repo)
	claims, _ := testClaims(t)

	err := svc.CreateAnimal(context.Background(), testOrigin, claims, &domain.Animal{
		AnimalID:    "A100",
		AnimalType:  "Dog",
		Breed:       "Newfoundland",
		DateOfBirth: birth,
		DateTime:    outcome,
	})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, float64(30), stored.AgeUponOutcomeInWeeks)
}

func TestCreateAnimalKeepsExplicitAge(t *testing.T) {
	var stored *domain.Animal
	repo := &stubRepo{
		createAnimal: func(_ context.Context, animal *domain.Animal) error {
			stored = animal
			return nil
		},
	}
	svc := newTestService(repo)

	err := svc.CreateAnimal(context.Background(), testOrigin, nil, &domain.Animal{
		AnimalID:              "A101",
		AnimalType:            "Dog",
		Breed:                 "Newfoundland",
		DateOfBirth:           time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC),
		DateTime:              time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		AgeUponOutcomeInWeeks: 99,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(99), stored.AgeUponOutcomeInWeeks)
}

func TestUpdateAnimalAuditsBeforeAfter(t *testing.T) {
	id := bson.NewObjectID()
	repo := &stubRepo{
		queryAnimals: func(_ context.Context, opt *domain.QueryAnimalOptions) error {
			opt.Result = []*domain.Animal{{
				BaseEntity:            domain.BaseEntity{ID: id},
				AnimalID:              "A7",
				AnimalType:            "Dog",
				Breed:                 "Bloodhound",
				Name:                  "Sam",
				OutcomeType:           "Transfer",
				SexUponOutcome:        "Intact Male",
				AgeUponOutcomeInWeeks: 40,
			}}
			return nil
		},
		updateAnimal: func(_ context.Context, animal *domain.Animal) error {
			return nil
		},
	}
	svc := newTestService(repo)
	claims, _ := testClaims(t)

	updated, err := svc.UpdateAnimal(context.Background(), testOrigin, claims, id.Hex(), domain.AnimalUpdate{
		Name:        util.Ptr("Samson"),
		OutcomeType: util.Ptr("Adoption"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Samson", updated.Name)
	svc.Audit.Wait()

	entries := repo.auditEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionAnimalUpdate, entries[0].Action)
	before, ok := entries[0].Details["before"].(bson.M)
	require.True(t, ok)
	after, ok := entries[0].Details["after"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, "Sam", before["name"])
	assert.Equal(t, "Samson", after["name"])
	assert.Equal(t, "Transfer", before["outcome_type"])
	assert.Equal(t, "Adoption", after["outcome_type"])
	assert.Equal(t, "Bloodhound", after["breed"])
}

func TestDeleteAnimalRecordsBeforeRemoval(t *testing.T) {
	id := bson.NewObjectID()
	var auditCountAtDelete int
	repo := &stubRepo{}
	repo.queryAnimals = func(_ context.Context, opt *domain.QueryAnimalOptions) error {
		opt.Result = []*domain.Animal{{
			BaseEntity: domain.BaseEntity{ID: id},
			AnimalID:   "A7",
			Name:       "Sam",
			Breed:      "Bloodhound",
		}}
		return nil
	}
	repo.deleteAnimal = func(_ context.Context, _ bson.ObjectID) error {
		auditCountAtDelete = len(repo.auditEntries())
		return nil
	}
	svc := newTestService(repo)
	claims, _ := testClaims(t)

	err := svc.DeleteAnimal(context.Background(), testOrigin, claims, id.Hex())
	require.NoError(t, err)
	assert.Equal(t, 1, auditCountAtDelete)

	entries := repo.auditEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionAnimalDelete, entries[0].Action)
	assert.Equal(t, "A7", entries[0].Details["animal_id"])
	assert.Equal(t, "Sam", entries[0].Details["name"])
}

func TestPublicListAnimalsForcesFieldSetAndAnonymousAudit(t *testing.T) {
	repo := &stubRepo{
		queryAnimals: func(_ context.Context, opt *domain.QueryAnimalOptions) error {
			assert.Equal(t, domain.PublicAnimalFields, opt.Select)
			return nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.PublicListAnimals(context.Background(), testOrigin, map[string][]string{
		"select": {"location_lat,location_long"},
	})
	require.NoError(t, err)
	svc.Audit.Wait()

	entries := repo.auditEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionPublicAnimalView, entries[0].Action)
	assert.Nil(t, entries[0].ActorID)
}

func TestPublicFilterAnimals(t *testing.T) {
	repo := &stubRepo{
		queryAnimals: func(_ context.Context, opt *domain.QueryAnimalOptions) error {
			assert.Equal(t, "Intact Male", opt.Filter["sex_upon_outcome"])
			assert.Equal(t, bson.M{"$gte": float64(20), "$lte": float64(300)},
				opt.Filter["age_upon_outcome_in_weeks"])
			return nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.PublicFilterAnimals(context.Background(), testOrigin, "Disaster/Tracking", nil)
	require.NoError(t, err)
	svc.Audit.Wait()

	entries := repo.auditEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionPublicAnimalFilterView, entries[0].Action)
	assert.Equal(t, "Disaster/Tracking", entries[0].Details["filterType"])
}
