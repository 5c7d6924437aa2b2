package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shelterhq/shelter-api/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const defaultAuditPageSize = 25

// ListAuditLogs serves the admin audit browser. Accepted filters: action,
// user (actor id), targetModel, targetId, startDate and endDate (RFC3339 or
// YYYY-MM-DD). Reading the audit trail is itself audited.
func (svc *Service) ListAuditLogs(ctx context.Context, origin domain.Origin, operator *domain.Claims, params map[string][]string) (*domain.Page[*domain.AuditLog], error) {
	listOpts := parseListOptions(params, defaultAuditPageSize)

	opt := &domain.QueryAuditLogOptions{
		Page:  listOpts.Page,
		Limit: listOpts.Limit,
	}
	if action := firstParam(params, "action"); action != "" {
		opt.Actions = []domain.Action{domain.Action(action)}
	}
	if actor := firstParam(params, "user"); actor != "" {
		oid, err := bson.ObjectIDFromHex(actor)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidID, actor)
		}
		opt.ActorIDs = []bson.ObjectID{oid}
	}
	if model := firstParam(params, "targetModel"); model != "" {
		opt.TargetModels = []string{model}
	}
	if target := firstParam(params, "targetId"); target != "" {
		oid, err := bson.ObjectIDFromHex(target)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidID, target)
		}
		opt.TargetIDs = []bson.ObjectID{oid}
	}
	var err error
	if opt.TimestampGTE, err = parseDateParam(params, "startDate", false); err != nil {
		return nil, err
	}
	if opt.TimestampLTE, err = parseDateParam(params, "endDate", true); err != nil {
		return nil, err
	}

	if err := svc.Repo.QueryAuditLogs(ctx, opt); err != nil {
		return nil, err
	}

	svc.Audit.Dispatch(&domain.AuditLog{
		Action:      domain.ActionAuditLogView,
		ActionType:  domain.ActionTypeRead,
		ActorID:     actorID(operator),
		TargetModel: "AuditLog",
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

func (svc *Service) GetAuditLog(ctx context.Context, origin domain.Origin, operator *domain.Claims, id string) (*domain.AuditLog, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidID, id)
	}
	opt := &domain.QueryAuditLogOptions{IDs: []bson.ObjectID{oid}}
	if err := svc.Repo.QueryAuditLogs(ctx, opt); err != nil {
		return nil, err
	}
	if len(opt.Result) == 0 {
		return nil, domain.ErrNotFound
	}
	entry := opt.Result[0]

	svc.Audit.Dispatch(&domain.AuditLog{
		Action:      domain.ActionAuditLogView,
		ActionType:  domain.ActionTypeRead,
		ActorID:     actorID(operator),
		TargetModel: "AuditLog",
		TargetID:    &entry.ID,
		IP:          origin.IP,
		UserAgent:   origin.UserAgent,
	})
	return entry, nil
}

// UserActivity pages through everything one account has done.
func (svc *Service) UserActivity(ctx context.Context, origin domain.Origin, operator *domain.Claims, userID string, params map[string][]string) (*domain.Page[*domain.AuditLog], error) {
	oid, err := bson.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidID, userID)
	}
	listOpts := parseListOptions(params, defaultAuditPageSize)

	opt := &domain.QueryAuditLogOptions{
		ActorIDs: []bson.ObjectID{oid},
		Page:     listOpts.Page,
		Limit:    listOpts.Limit,
	}
	if err := svc.Repo.QueryAuditLogs(ctx, opt); err != nil {
		return nil, err
	}

	svc.Audit.Dispatch(&domain.AuditLog{
		Action:      domain.ActionUserActivityView,
		ActionType:  domain.ActionTypeRead,
		ActorID:     actorID(operator),
		TargetModel: "User",
		TargetID:    &oid,
		IP:          origin.IP,
		UserAgent:   origin.UserAgent,
	})

	return domain.NewPage(opt.Result, opt.Total, listOpts.Page, listOpts.Limit), nil
}

// AnimalActivity returns the full unpaginated trail for one animal record.
func (svc *Service) AnimalActivity(ctx context.Context, origin domain.Origin, operator *domain.Claims, animalID string) ([]*domain.AuditLog, error) {
	oid, err := bson.ObjectIDFromHex(animalID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidID, animalID)
	}

	opt := &domain.QueryAuditLogOptions{
		TargetModels: []string{"Animal"},
		TargetIDs:    []bson.ObjectID{oid},
	}
	if err := svc.Repo.QueryAuditLogs(ctx, opt); err != nil {
		return nil, err
	}

	svc.Audit.Dispatch(&domain.AuditLog{
		Action:      domain.ActionAnimalActivityView,
		ActionType:  domain.ActionTypeRead,
		ActorID:     actorID(operator),
		TargetModel: "Animal",
		TargetID:    &oid,
		IP:          origin.IP,
		UserAgent:   origin.UserAgent,
	})

	return opt.Result, nil
}

func (svc *Service) AuditStats(ctx context.Context, origin domain.Origin, operator *domain.Claims) (*domain.AuditStats, error) {
	stats, err := svc.Repo.AggregateAuditStats(ctx)
	if err != nil {
		return nil, err
	}

	svc.Audit.Dispatch(&domain.AuditLog{
		Action:      domain.ActionAuditStatsView,
		ActionType:  domain.ActionTypeRead,
		ActorID:     actorID(operator),
		TargetModel: "AuditLog",
		IP:          origin.IP,
		UserAgent:   origin.UserAgent,
	})
	return stats, nil
}

// parseDateParam reads a date parameter as epoch milliseconds. A bare date on
// the end of a range covers through the end of that day.
func parseDateParam(params map[string][]string, key string, endOfDay bool) (int64, error) {
	raw := firstParam(params, key)
	if raw == "" {
		return 0, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UnixMilli(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be RFC3339 or YYYY-MM-DD", domain.ErrValidation, key)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Millisecond)
	}
	return t.UnixMilli(), nil
}
