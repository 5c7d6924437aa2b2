package service

import (
	"context"
	"fmt"

	"github.com/shelterhq/shelter-api/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const defaultUserPageSize = 10

func (svc *Service) ListUsers(ctx context.Context, origin domain.Origin, operator *domain.Claims, params map[string][]string) (*domain.Page[*domain.User], error) {
	listOpts := parseListOptions(params, defaultUserPageSize)

	opt := &domain.QueryUserOptions{
		Search: firstParam(params, "search"),
		Page:   listOpts.Page,
		Limit:  listOpts.Limit,
	}
	if role := firstParam(params, "role"); role != "" {
		opt.Roles = []domain.Role{domain.Role(role)}
	}
	if err := svc.Repo.QueryUsers(ctx, opt); err != nil {
		return nil, err
	}

	svc.Audit.Dispatch(&domain.AuditLog{
		Action:      domain.ActionUserView,
		ActionType:  domain.ActionTypeRead,
		ActorID:     actorID(operator),
		TargetModel: "User",
		IP:          origin.IP,
		UserAgent:   origin.UserAgent,
		Details: bson.M{
			"filters": filterEcho(params),
			"page":    listOpts.Page,
			"limit":   listOpts.Limit,
		},
	})

	return domain.NewPage(opt.Result, opt.Total, listOpts.Page, listOpts.Limit), nil
}

func (svc *Service) GetUser(ctx context.Context, origin domain.Origin, operator *domain.Claims, id string) (*domain.User, error) {
	user, err := svc.userByID(ctx, id)
	if err != nil {
		return nil, err
	}

	svc.Audit.Dispatch(&domain.AuditLog{
		Action:      domain.ActionUserView,
		ActionType:  domain.ActionTypeRead,
		ActorID:     actorID(operator),
		TargetModel: "User",
		TargetID:    &user.ID,
		IP:          origin.IP,
		UserAgent:   origin.UserAgent,
	})
	return user, nil
}

// CreateUser is the admin path for provisioning accounts. Unlike Register it
// honors any valid role and does not sign the new user in.
func (svc *Service) CreateUser(ctx context.Context, origin domain.Origin, operator *domain.Claims, input domain.RegisterInput) (*domain.User, error) {
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", domain.ErrValidation)
	}
	if input.Role == "" {
		input.Role = domain.RoleVolunteer
	}
	if !input.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, input.Role)
	}

	user := &domain.User{
		BaseEntity: domain.NewBaseEntity(),
		Name:       input.Name,
		Email:      input.Email,
		Password:   domain.EncryptedPassword(input.Password),
		Role:       input.Role,
	}
	if err := svc.Repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	svc.Audit.Dispatch(&domain.AuditLog{
		Action:      domain.ActionUserCreate,
		ActionType:  domain.ActionTypeCreate,
		ActorID:     actorID(operator),
		TargetModel: "User",
		TargetID:    &user.ID,
		IP:          origin.IP,
		UserAgent:   origin.UserAgent,
		Details:     bson.M{"email": user.Email, "role": string(user.Role)},
	})
	return user, nil
}

func (svc *Service) UpdateUser(ctx context.Context, origin domain.Origin, operator *domain.Claims, id string, update domain.UserUpdate) (*domain.User, error) {
	user, err := svc.userByID(ctx, id)
	if err != nil {
		return nil, err
	}

	before := userSnapshot(user)
	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Role != nil {
		if !update.Role.Valid() {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrValidation, *update.Role)
		}
		user.Role = *update.Role
	}

	if err := svc.Repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}

	svc.Audit.Dispatch(&domain.AuditLog{
		Action:      domain.ActionUserUpdate,
		ActionType:  domain.ActionTypeUpdate,
		ActorID:     actorID(operator),
		TargetModel: "User",
		TargetID:    &user.ID,
		IP:          origin.IP,
		UserAgent:   origin.UserAgent,
		Details: bson.M{
			"before": before,
			"after":  userSnapshot(user),
		},
	})
	return user, nil
}

func (svc *Service) DeleteUser(ctx context.Context, origin domain.Origin, operator *domain.Claims, id string) error {
	user, err := svc.userByID(ctx, id)
	if err != nil {
		return err
	}

	// Recorded before the removal so the entry can still name the account.
	svc.Audit.Record(ctx, &domain.AuditLog{
		Action:      domain.ActionUserDelete,
		ActionType:  domain.ActionTypeDelete,
		ActorID:     actorID(operator),
		TargetModel: "User",
		TargetID:    &user.ID,
		IP:          origin.IP,
		UserAgent:   origin.UserAgent,
		Details:     bson.M{"email": user.Email, "role": string(user.Role)},
	})

	return svc.Repo.DeleteUser(ctx, user.ID)
}

func (svc *Service) userByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidID, id)
	}
	opt := &domain.QueryUserOptions{IDs: []bson.ObjectID{oid}}
	if err := svc.Repo.QueryUsers(ctx, opt); err != nil {
		return nil, err
	}
	if len(opt.Result) == 0 {
		return nil, domain.ErrNotFound
	}
	return opt.Result[0], nil
}

func userSnapshot(user *domain.User) bson.M {
	return bson.M{
		"name":  user.Name,
		"email": user.Email,
		"role":  string(user.Role),
	}
}
