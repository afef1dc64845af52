package services

import (
	"github.com/rs/zerolog/log"

	"syncnote/syncnote/broker"
	"syncnote/syncnote/models"
)

// publishEvent emits an entity event on the broker. Publishing is best-effort
// and nil-safe; a missing or disconnected producer is silently tolerated.
func publishEvent(p *broker.Producer, subject, eventType, entity, actorID string, data interface{}) {
	event, err := models.NewEvent(eventType, entity, actorID, data)
	if err != nil {
		log.Warn().Err(err).Str("event", eventType).Msg("failed to build event")
		return
	}
	p.Publish(subject, event)
}
