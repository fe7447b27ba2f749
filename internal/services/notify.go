package services

import (
	"time"

	"fleet-backend/internal/events"

	log "github.com/sirupsen/logrus"
)

// publish sends a domain event. Delivery failures are logged and never fail the request.
func publish(pub events.Publisher, topic, eventType, entityID, actorID string, at time.Time, data map[string]string) {
	if pub == nil {
		return
	}
	err := pub.Publish(topic, events.Event{
		Type:       eventType,
		EntityID:   entityID,
		ActorID:    actorID,
		OccurredAt: at,
		Data:       data,
	})
	if err != nil {
		log.Warnf("[Events] %s on %s not delivered: %v", eventType, topic, err)
	}
}
