package events

import (
	"time"

	"github.com/google/uuid"
)

// EventTypeAuthzChanged covers every grant/revoke style mutation so the audit
// sink can subscribe once.
const EventTypeAuthzChanged = "authz.changed"

const (
	ActionRoleAssigned     = "role_assigned"
	ActionRoleRevoked      = "role_revoked"
	ActionRoleCreated      = "role_created"
	ActionRoleUpdated      = "role_updated"
	ActionRoleDeleted      = "role_deleted"
	ActionRolePermsSet     = "role_permissions_set"
	ActionGroupCreated     = "group_created"
	ActionGroupUpdated     = "group_updated"
	ActionGroupDeleted     = "group_deleted"
	ActionGroupApplied     = "group_applied"
	ActionPermissionGrant  = "permission_granted"
	ActionPermissionRevoke = "permission_revoked"
	ActionUserCreated      = "user_created"
	ActionUserDeleted      = "user_deleted"
)

// AuthzChangedEvent carries the audit payload required for every
// authorization-relevant mutation: action, entity, actor and timestamp.
type AuthzChangedEvent struct {
	BaseEvent
	Action     string `json:"action"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	ActorID    int64  `json:"actor_id"`
}

func NewAuthzChangedEvent(action, entityType, entityID string, actorID int64) *AuthzChangedEvent {
	return &AuthzChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAuthzChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"action":      action,
				"entity_type": entityType,
				"entity_id":   entityID,
				"actor_id":    actorID,
			},
		},
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
	}
}
