package domain

// Role is the closed set of permission levels attached to a user. All
// authorization decisions go through Role.OneOf; routes declare allow-lists
// instead of comparing strings in place.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleStaff     Role = "staff"
	RoleVolunteer Role = "volunteer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleVolunteer:
		return true
	}
	return false
}

// OneOf reports whether r is in the allow-list. An empty allow-list means any
// authenticated identity is acceptable.
func (r Role) OneOf(roles []Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, allowed := range roles {
		if r == allowed {
			return true
		}
	}
	return false
}

// ActionType is the coarse category of an audited action.
type ActionType string

const (
	ActionTypeCreate ActionType = "CREATE"
	ActionTypeRead   ActionType = "READ"
	ActionTypeUpdate ActionType = "UPDATE"
	ActionTypeDelete ActionType = "DELETE"
	ActionTypeInsert ActionType = "INSERT"
)

// Action is the specific event an audit entry records.
type Action string

const (
	ActionUserCreate Action = "USER_CREATE"
	ActionUserUpdate Action = "USER_UPDATE"
	ActionUserDelete Action = "USER_DELETE"
	ActionUserView   Action = "USER_VIEW"

	ActionLoginSuccess         Action = "LOGIN_SUCCESS"
	ActionLoginFailed          Action = "LOGIN_FAILED"
	ActionLogout               Action = "LOGOUT"
	ActionAuthFailure          Action = "AUTH_FAILURE"
	ActionAuthorizationFailure Action = "AUTHORIZATION_FAILURE"

	ActionAnimalCreate       Action = "ANIMAL_CREATE"
	ActionAnimalUpdate       Action = "ANIMAL_UPDATE"
	ActionAnimalDelete       Action = "ANIMAL_DELETE"
	ActionAnimalView         Action = "ANIMAL_VIEW"
	ActionAnimalFilterSearch Action = "ANIMAL_FILTER_SEARCH"

	ActionPublicAnimalView       Action = "PUBLIC_ANIMAL_VIEW"
	ActionPublicAnimalDetailView Action = "PUBLIC_ANIMAL_DETAIL_VIEW"
	ActionPublicAnimalFilterView Action = "PUBLIC_ANIMAL_FILTER_VIEW"
	ActionPublicAnimalStatsView  Action = "PUBLIC_ANIMAL_STATS_VIEW"

	ActionAuditLogView       Action = "AUDIT_LOG_VIEW"
	ActionAuditStatsView     Action = "AUDIT_STATS_VIEW"
	ActionUserActivityView   Action = "USER_ACTIVITY_VIEW"
	ActionAnimalActivityView Action = "ANIMAL_ACTIVITY_VIEW"

	ActionRateLimitExceeded Action = "RATE_LIMIT_EXCEEDED"
	ActionSystemError       Action = "SYSTEM_ERROR"
)
