package domain

import "go.mongodb.org/mongo-driver/v2/bson"

// AuditLog is one immutable record of an action taken against the system.
// Entries are created as a side effect of request handling and are never
// updated or deleted.
//
// ActorID is nil exactly when the action was anonymous (public routes) or a
// pre-authentication failure. Details is an open bag; the expected shape per
// action:
//
//	ANIMAL_VIEW / USER_VIEW (list):  {"filters": .., "page": .., "limit": ..}
//	ANIMAL_FILTER_SEARCH:            {"filterType": .., "filters": .., "page": .., "limit": ..}
//	*_CREATE / *_DELETE:             identifying fields of the record
//	*_UPDATE:                        {"before": {..}, "after": {..}}
//	LOGIN_FAILED:                    {"email": ..}
//	AUTHORIZATION_FAILURE:           {"requiredRoles": .., "userRole": ..}
//	SYSTEM_ERROR:                    {"error": ..}
type AuditLog struct {
	ID          bson.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	Action      Action         `bson:"action" json:"action"`
	ActionType  ActionType     `bson:"action_type" json:"actionType"`
	ActorID     *bson.ObjectID `bson:"actor_id,omitempty" json:"actorId,omitempty"`
	TargetModel string         `bson:"target_model" json:"targetModel"`
	TargetID    *bson.ObjectID `bson:"target_id,omitempty" json:"targetId,omitempty"`
	IP          string         `bson:"ip,omitempty" json:"ip,omitempty"`
	UserAgent   string         `bson:"user_agent,omitempty" json:"userAgent,omitempty"`
	Details     bson.M         `bson:"details,omitempty" json:"details,omitempty"`
	Timestamp   int64          `bson:"timestamp" json:"timestamp"`
}

// AuditStats is the admin-facing aggregation over the audit collection.
type AuditStats struct {
	ActionCounts   []BucketCount   `bson:"actionCounts" json:"actionCounts"`
	DailyActivity  []BucketCount   `bson:"dailyActivity" json:"dailyActivity"`
	TopActors      []ActorActivity `bson:"topActors" json:"topActors"`
	AccessedModels []BucketCount   `bson:"accessedModels" json:"accessedModels"`
}

type ActorActivity struct {
	ActorID bson.ObjectID `bson:"_id" json:"actorId"`
	Count   int64         `bson:"count" json:"count"`
	Name    string        `bson:"name,omitempty" json:"name,omitempty"`
	Email   string        `bson:"email,omitempty" json:"email,omitempty"`
}
