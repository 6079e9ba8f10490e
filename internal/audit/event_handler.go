package audit

import (
	"context"
	"fmt"
	"log/slog"

	auditDatamodel "github.com/appealsdesk/appeals-registry/internal/core/datamodel/audit"
	"github.com/appealsdesk/appeals-registry/internal/core/events"
)

// EventHandler turns authorization-change events into write-once audit rows.
type EventHandler struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewEventHandler(repo RepositoryAPI, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		repo:   repo,
		logger: logger,
	}
}

// RegisterHandlers subscribes the audit sink once; every publisher of
// authz.changed funnels through it.
func (h *EventHandler) RegisterHandlers(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeAuthzChanged, h.handleAuthzChanged)
}

func (h *EventHandler) handleAuthzChanged(ctx context.Context, event events.Event) error {
	authzEvent, ok := event.(*events.AuthzChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload for %s", event.EventType())
	}

	log := &auditDatamodel.AuditLog{
		Action:     authzEvent.Action,
		EntityType: authzEvent.EntityType,
		EntityID:   authzEvent.EntityID,
		ActorID:    authzEvent.ActorID,
		OccurredAt: authzEvent.OccurredAt(),
	}
	if err := h.repo.Insert(log); err != nil {
		h.logger.Error("failed to write audit log",
			"action", authzEvent.Action,
			"entity_type", authzEvent.EntityType,
			"entity_id", authzEvent.EntityID,
			"error", err)
		return err
	}

	h.logger.Debug("audit log written",
		"action", authzEvent.Action,
		"entity_type", authzEvent.EntityType,
		"entity_id", authzEvent.EntityID,
		"actor_id", authzEvent.ActorID)
	return nil
}
