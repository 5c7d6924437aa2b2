package service

import (
	"context"
	"fmt"
	"math"

	"github.com/shelterhq/shelter-api/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const defaultAnimalPageSize = 25

// namedFilter is a predefined predicate over animals: a breed set, a sex and
// an age-in-weeks range. The closed set below mirrors the rescue-training
// profiles the dashboard exposes.
type namedFilter struct {
	Breeds   []string
	Sex      string
	MinWeeks float64
	MaxWeeks float64
}

var namedFilters = map[string]namedFilter{
	"Water": {
		Breeds:   []string{"Labrador Retriever Mix", "Chesapeake Bay Retriever", "Newfoundland"},
		Sex:      "Intact Female",
		MinWeeks: 26,
		MaxWeeks: 156,
	},
	"Mountain/Wilderness": {
		Breeds:   []string{"German Shepherd", "Alaskan Malamute", "Old English Sheepdog", "Siberian Husky", "Rottweiler"},
		Sex:      "Intact Male",
		MinWeeks: 26,
		MaxWeeks: 156,
	},
	"Disaster/Tracking": {
		Breeds:   []string{"Doberman Pinscher", "German Shepherd", "Golden Retriever", "Bloodhound", "Rottweiler"},
		Sex:      "Intact Male",
		MinWeeks: 20,
		MaxWeeks: 300,
	},
}

func (f namedFilter) toBson() bson.M {
	return bson.M{
		"breed":            bson.M{"$in": f.Breeds},
		"sex_upon_outcome": f.Sex,
		"age_upon_outcome_in_weeks": bson.M{
			"$gte": f.MinWeeks,
			"$lte": f.MaxWeeks,
		},
	}
}

func (svc *Service) ListAnimals(ctx context.Context, origin domain.Origin, actor *domain.Claims, params map[string][]string) (*domain.Page[*domain.Animal], error) {
	return svc.listAnimals(ctx, origin, actor, params, nil, domain.ActionAnimalView, nil)
}

func (svc *Service) FilterAnimals(ctx context.Context, origin domain.Origin, actor *domain.Claims, filterName string, params map[string][]string) (*domain.Page[*domain.Animal], error) {
	named, ok := namedFilters[filterName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFilter, filterName)
	}
	return svc.listAnimals(ctx, origin, actor, params, named.toBson(), domain.ActionAnimalFilterSearch,
		bson.M{"filterType": filterName})
}

func (svc *Service) PublicListAnimals(ctx context.Context, origin domain.Origin, params map[string][]string) (*domain.Page[*domain.Animal], error) {
	return svc.listPublicAnimals(ctx, origin, params, nil, domain.ActionPublicAnimalView, nil)
}

func (svc *Service) PublicFilterAnimals(ctx context.Context, origin domain.Origin, filterName string, params map[string][]string) (*domain.Page[*domain.Animal], error) {
	named, ok := namedFilters[filterName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFilter, filterName)
	}
	return svc.listPublicAnimals(ctx, origin, params, named.toBson(), domain.ActionPublicAnimalFilterView,
		bson.M{"filterType": filterName})
}

// listAnimals runs one paginated, filtered query and always emits a READ
// audit entry echoing the applied filters. Visibility into shelter data is
// itself an auditable event, so the entry is emitted even though the query is
// side-effect free.
func (svc *Service) listAnimals(ctx context.Context, origin domain.Origin, actor *domain.Claims, params map[string][]string, baseFilter bson.M, action domain.Action, extraDetails bson.M) (*domain.Page[*domain.Animal], error) {
	listOpts := parseListOptions(params, defaultAnimalPageSize)
	filter := buildFilter(params)
	// Ad-hoc parameters never override a named filter's own keys.
	for key, value := range baseFilter {
		filter[key] = value
	}

	opt := &domain.QueryAnimalOptions{
		Filter: filter,
		Sort:   listOpts.Sort,
		Select: listOpts.Sel,
		Page:   listOpts.Page,
		Limit:  listOpts.Limit,
	}
	if err := svc.Repo.QueryAnimals(ctx, opt); err != nil {
		return nil, err
	}

	details := bson.M{
		"filters": filterEcho(params),
		"page":    listOpts.Page,
		"limit":   listOpts.Limit,
	}
	for key, value := range extraDetails {
		details[key] = value
	}
	svc.Audit.Dispatch(&domain.AuditLog{
		Action:      action,
		ActionType:  domain.ActionTypeRead,
		ActorID:     actorID(actor),
		TargetModel: "Animal",
		IP:          origin.IP,
		UserAgent:   origin.UserAgent,
		Details:     details,
	})

	return domain.NewPage(opt.Result, opt.Total, listOpts.Page, listOpts.Limit), nil
}

func (svc *Service) listPublicAnimals(ctx context.Context, origin domain.Origin, params map[string][]string, baseFilter bson.M, action domain.Action, extraDetails bson.M) (*domain.Page[*domain.Animal], error) {
	// The public surface ignores caller-supplied projections and serves the
	// reduced field set.
	scoped := make(map[string][]string, len(params))
	for key, values := range params {
		if key == "select" {
			continue
		}
		scoped[key] = values
	}
	scoped["select"] = []string{joinFields(domain.PublicAnimalFields)}
	return svc.listAnimals(ctx, origin, nil, scoped, baseFilter, action, extraDetails)
}

func (svc *Service) GetAnimal(ctx context.Context, origin domain.Origin, actor *domain.Claims, id string) (*domain.Animal, error) {
	animal, err := svc.getAnimalByID(ctx, id, nil)
	if err != nil {
		return nil, err
	}

	svc.Audit.Dispatch(&domain.AuditLog{
		Action:      domain.ActionAnimalView,
		ActionType:  domain.ActionTypeRead,
		ActorID:     actorID(actor),
		TargetModel: "Animal",
		TargetID:    &animal.ID,
		IP:          origin.IP,
		UserAgent:   origin.UserAgent,
	})
	return animal, nil
}

func (svc *Service) PublicGetAnimal(ctx context.Context, origin domain.Origin, id string) (*domain.Animal, error) {
	animal, err := svc.getAnimalByID(ctx, id, domain.PublicAnimalFields)
	if err != nil {
		return nil, err
	}

	svc.Audit.Dispatch(&domain.AuditLog{
		Action:      domain.ActionPublicAnimalDetailView,
		ActionType:  domain.ActionTypeRead,
		TargetModel: "Animal",
		TargetID:    &animal.ID,
		IP:          origin.IP,
		UserAgent:   origin.UserAgent,
	})
	return animal, nil
}

func (svc *Service) PublicAnimalStats(ctx context.Context, origin domain.Origin) (*domain.AnimalStats, error) {
	stats, err := svc.Repo.AggregateAnimalStats(ctx)
	if err != nil {
		return nil, err
	}

	svc.Audit.Dispatch(&domain.AuditLog{
		Action:      domain.ActionPublicAnimalStatsView,
		ActionType:  domain.ActionTypeRead,
		TargetModel: "Animal",
		IP:          origin.IP,
		UserAgent:   origin.UserAgent,
	})
	return stats, nil
}

func (svc *Service) CreateAnimal(ctx context.Context, origin domain.Origin, operator *domain.Claims, animal *domain.Animal) error {
	if animal == nil {
		return fmt.Errorf("%w: empty animal", domain.ErrValidation)
	}
	if err := validateAnimal(animal); err != nil {
		return err
	}
	deriveAgeInWeeks(animal)

	if err := svc.Repo.CreateAnimal(ctx, animal); err != nil {
		return err
	}

	svc.Audit.Dispatch(&domain.AuditLog{
		Action:      domain.ActionAnimalCreate,
		ActionType:  domain.ActionTypeCreate,
		ActorID:     actorID(operator),
		TargetModel: "Animal",
		TargetID:    &animal.ID,
		IP:          origin.IP,
		UserAgent:   origin.UserAgent,
		Details: bson.M{
			"animal_id": animal.AnimalID,
			"name":      animal.Name,
			"breed":     animal.Breed,
		},
	})
	return nil
}

func (svc *Service) UpdateAnimal(ctx context.Context, origin domain.Origin, operator *domain.Claims, id string, update domain.AnimalUpdate) (*domain.Animal, error) {
	animal, err := svc.getAnimalByID(ctx, id, nil)
	if err != nil {
		return nil, err
	}

	before := animalSnapshot(animal)
	applyAnimalUpdate(animal, update)
	if err := validateAnimal(animal); err != nil {
		return nil, err
	}
	if update.AgeUponOutcomeInWeeks == nil && (update.DateOfBirth != nil || update.DateTime != nil) {
		deriveAgeInWeeks(animal)
	}

	if err := svc.Repo.UpdateAnimal(ctx, animal); err != nil {
		return nil, err
	}

	svc.Audit.Dispatch(&domain.AuditLog{
		Action:      domain.ActionAnimalUpdate,
		ActionType:  domain.ActionTypeUpdate,
		ActorID:     actorID(operator),
		TargetModel: "Animal",
		TargetID:    &animal.ID,
		IP:          origin.IP,
		UserAgent:   origin.UserAgent,
		Details: bson.M{
			"before": before,
			"after":  animalSnapshot(animal),
		},
	})
	return animal, nil
}

func (svc *Service) DeleteAnimal(ctx context.Context, origin domain.Origin, operator *domain.Claims, id string) error {
	animal, err := svc.getAnimalByID(ctx, id, nil)
	if err != nil {
		return err
	}

	// Identifying fields are recorded before the document disappears.
	svc.Audit.Record(ctx, &domain.AuditLog{
		Action:      domain.ActionAnimalDelete,
		ActionType:  domain.ActionTypeDelete,
		ActorID:     actorID(operator),
		TargetModel: "Animal",
		TargetID:    &animal.ID,
		IP:          origin.IP,
		UserAgent:   origin.UserAgent,
		Details: bson.M{
			"animal_id": animal.AnimalID,
			"name":      animal.Name,
			"breed":     animal.Breed,
		},
	})

	return svc.Repo.DeleteAnimal(ctx, animal.ID)
}

func (svc *Service) getAnimalByID(ctx context.Context, id string, selectFields []string) (*domain.Animal, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidID, id)
	}
	opt := &domain.QueryAnimalOptions{
		IDs:    []bson.ObjectID{oid},
		Select: selectFields,
	}
	if err := svc.Repo.QueryAnimals(ctx, opt); err != nil {
		return nil, err
	}
	if len(opt.Result) == 0 {
		return nil, domain.ErrNotFound
	}
	return opt.Result[0], nil
}

func validateAnimal(animal *domain.Animal) error {
	if animal.AnimalID == "" {
		return fmt.Errorf("%w: animal_id is required", domain.ErrValidation)
	}
	if animal.AnimalType == "" {
		return fmt.Errorf("%w: animal_type is required", domain.ErrValidation)
	}
	if animal.Breed == "" {
		return fmt.Errorf("%w: breed is required", domain.ErrValidation)
	}
	return nil
}

// deriveAgeInWeeks fills age_upon_outcome_in_weeks as the whole-week
// difference between birth date and outcome date when the field is missing
// and both dates are present.
func deriveAgeInWeeks(animal *domain.Animal) {
	if animal.AgeUponOutcomeInWeeks != 0 {
		return
	}
	if animal.DateOfBirth.IsZero() || animal.DateTime.IsZero() {
		return
	}
	weeks := animal.DateTime.Sub(animal.DateOfBirth).Hours() / (24 * 7)
	if weeks < 0 {
		return
	}
	animal.AgeUponOutcomeInWeeks = math.Floor(weeks)
}

// animalSnapshot is the fixed projection recorded in before/after update
// audits.
func animalSnapshot(animal *domain.Animal) bson.M {
	return bson.M{
		"name":                      animal.Name,
		"breed":                     animal.Breed,
		"outcome_type":              animal.OutcomeType,
		"sex_upon_outcome":          animal.SexUponOutcome,
		"age_upon_outcome_in_weeks": animal.AgeUponOutcomeInWeeks,
	}
}

func applyAnimalUpdate(animal *domain.Animal, update domain.AnimalUpdate) {
	if update.AnimalID != nil {
		animal.AnimalID = *update.AnimalID
	}
	if update.AnimalType != nil {
		animal.AnimalType = *update.AnimalType
	}
	if update.Name != nil {
		animal.Name = *update.Name
	}
	if update.Breed != nil {
		animal.Breed = *update.Breed
	}
	if update.Color != nil {
		animal.Color = *update.Color
	}
	if update.AgeUponOutcome != nil {
		animal.AgeUponOutcome = *update.AgeUponOutcome
	}
	if update.DateOfBirth != nil {
		animal.DateOfBirth = *update.DateOfBirth
	}
	if update.DateTime != nil {
		animal.DateTime = *update.DateTime
	}
	if update.MonthYear != nil {
		animal.MonthYear = *update.MonthYear
	}
	if update.OutcomeType != nil {
		animal.OutcomeType = *update.OutcomeType
	}
	if update.OutcomeSubtype != nil {
		animal.OutcomeSubtype = *update.OutcomeSubtype
	}
	if update.SexUponOutcome != nil {
		animal.SexUponOutcome = *update.SexUponOutcome
	}
	if update.LocationLat != nil {
		animal.LocationLat = *update.LocationLat
	}
	if update.LocationLong != nil {
		animal.LocationLong = *update.LocationLong
	}
	if update.AgeUponOutcomeInWeeks != nil {
		animal.AgeUponOutcomeInWeeks = *update.AgeUponOutcomeInWeeks
	}
}

func actorID(claims *domain.Claims) *bson.ObjectID {
	if claims == nil {
		return nil
	}
	oid, err := claims.GetBsonObjectUID()
	if err != nil {
		return nil
	}
	return &oid
}

func joinFields(fields []string) string {
	out := ""
	for i, field := range fields {
		if i > 0 {
			out += ","
		}
		out += field
	}
	return out
}
