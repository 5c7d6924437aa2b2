package domain

import (
	"context"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Page is one page of query results plus the pagination metadata the REST
// surface echoes back. Pages is always ceil(Total/Limit).
type Page[T any] struct {
	Total int64
	Page  int64
	Limit int64
	Pages int64
	Items []T
}

func NewPage[T any](items []T, total, page, limit int64) *Page[T] {
	return &Page[T]{
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: PageCount(total, limit),
		Items: items,
	}
}

func PageCount(total, limit int64) int64 {
	if limit <= 0 {
		return 0
	}
	return int64(math.Ceil(float64(total) / float64(limit)))
}

type QueryAnimalOptions struct {
	IDs    []bson.ObjectID
	Filter bson.M // ad-hoc field filters, already translated to operators
	Sort   bson.D
	Select []string
	Page   int64
	Limit  int64
	Total  int64     // out
	Result []*Animal // out
}

type QueryUserOptions struct {
	IDs    []bson.ObjectID
	Emails []string
	Roles  []Role
	Search string // matches name or email, case-insensitive
	Page   int64
	Limit  int64
	Total  int64   // out
	Result []*User // out
}

type QueryAuditLogOptions struct {
	IDs          []bson.ObjectID
	Actions      []Action
	ActorIDs     []bson.ObjectID
	TargetModels []string
	TargetIDs    []bson.ObjectID
	TimestampGTE int64
	TimestampLTE int64
	Page         int64
	Limit        int64
	Total        int64       // out
	Result       []*AuditLog // out
}

type Repository interface {
	CreateUser(ctx context.Context, user *User) error
	UpdateUser(ctx context.Context, user *User) error
	DeleteUser(ctx context.Context, id bson.ObjectID) error
	QueryUsers(ctx context.Context, opt *QueryUserOptions) error

	CreateAnimal(ctx context.Context, animal *Animal) error
	UpdateAnimal(ctx context.Context, animal *Animal) error
	DeleteAnimal(ctx context.Context, id bson.ObjectID) error
	QueryAnimals(ctx context.Context, opt *QueryAnimalOptions) error
	AggregateAnimalStats(ctx context.Context) (*AnimalStats, error)

	CreateAuditLog(ctx context.Context, entry *AuditLog) error
	QueryAuditLogs(ctx context.Context, opt *QueryAuditLogOptions) error
	AggregateAuditStats(ctx context.Context) (*AuditStats, error)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

type AnimalUpdate struct {
	AnimalID              *string    `json:"animal_id,omitempty"`
	AnimalType            *string    `json:"animal_type,omitempty"`
	Name                  *string    `json:"name,omitempty"`
	Breed                 *string    `json:"breed,omitempty"`
	Color                 *string    `json:"color,omitempty"`
	AgeUponOutcome        *string    `json:"age_upon_outcome,omitempty"`
	DateOfBirth           *time.Time `json:"date_of_birth,omitempty"`
	DateTime              *time.Time `json:"datetime,omitempty"`
	MonthYear             *string    `json:"monthyear,omitempty"`
	OutcomeType           *string    `json:"outcome_type,omitempty"`
	OutcomeSubtype        *string    `json:"outcome_subtype,omitempty"`
	SexUponOutcome        *string    `json:"sex_upon_outcome,omitempty"`
	LocationLat           *float64   `json:"location_lat,omitempty"`
	LocationLong          *float64   `json:"location_long,omitempty"`
	AgeUponOutcomeInWeeks *float64   `json:"age_upon_outcome_in_weeks,omitempty"`
}

type UserUpdate struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Role  *Role   `json:"role,omitempty"`
}

type Service interface {
	Register(ctx context.Context, origin Origin, input RegisterInput) (*User, string, error)
	Login(ctx context.Context, origin Origin, email, password string) (*User, string, error)
	Logout(ctx context.Context, origin Origin, operator *Claims) error
	VerifyToken(ctx context.Context, tokenString string) (*Claims, error)
	GetUserByClaims(ctx context.Context, claims *Claims) (*User, error)
	CreateAdminUserIfNotExists(ctx context.Context, name, email, password string) error

	ListAnimals(ctx context.Context, origin Origin, actor *Claims, params map[string][]string) (*Page[*Animal], error)
	FilterAnimals(ctx context.Context, origin Origin, actor *Claims, filterName string, params map[string][]string) (*Page[*Animal], error)
	GetAnimal(ctx context.Context, origin Origin, actor *Claims, id string) (*Animal, error)
	CreateAnimal(ctx context.Context, origin Origin, operator *Claims, animal *Animal) error
	UpdateAnimal(ctx context.Context, origin Origin, operator *Claims, id string, update AnimalUpdate) (*Animal, error)
	DeleteAnimal(ctx context.Context, origin Origin, operator *Claims, id string) error

	PublicListAnimals(ctx context.Context, origin Origin, params map[string][]string) (*Page[*Animal], error)
	PublicFilterAnimals(ctx context.Context, origin Origin, filterName string, params map[string][]string) (*Page[*Animal], error)
	PublicGetAnimal(ctx context.Context, origin Origin, id string) (*Animal, error)
	PublicAnimalStats(ctx context.Context, origin Origin) (*AnimalStats, error)

	ListUsers(ctx context.Context, origin Origin, operator *Claims, params map[string][]string) (*Page[*User], error)
	GetUser(ctx context.Context, origin Origin, operator *Claims, id string) (*User, error)
	CreateUser(ctx context.Context, origin Origin, operator *Claims, input RegisterInput) (*User, error)
	UpdateUser(ctx context.Context, origin Origin, operator *Claims, id string, update UserUpdate) (*User, error)
	DeleteUser(ctx context.Context, origin Origin, operator *Claims, id string) error

	ListAuditLogs(ctx context.Context, origin Origin, operator *Claims, params map[string][]string) (*Page[*AuditLog], error)
	GetAuditLog(ctx context.Context, origin Origin, operator *Claims, id string) (*AuditLog, error)
	UserActivity(ctx context.Context, origin Origin, operator *Claims, userID string, params map[string][]string) (*Page[*AuditLog], error)
	AnimalActivity(ctx context.Context, origin Origin, operator *Claims, animalID string) ([]*AuditLog, error)
	AuditStats(ctx context.Context, origin Origin, operator *Claims) (*AuditStats, error)
}
