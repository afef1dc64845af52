package broker

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"syncnote/syncnote/models"
)

// Producer publishes entity events to NATS. A nil Producer (or one whose
// connection dropped) is safe to publish on: events are best-effort and must
// never fail the operation that emitted them.
type Producer struct {
	nc *nats.Conn
}

func Connect(url string) (*Producer, error) {
	nc, err := nats.Connect(url,
		nats.Name("syncnote"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}

	log.Info().Str("url", url).Msg("connected to NATS")
	return &Producer{nc: nc}, nil
}

func (p *Producer) Publish(subject string, event *models.Event) {
	if p == nil || p.nc == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Warn().Err(err).Str("event", event.Event).Msg("failed to marshal event")
		return
	}

	if err := p.nc.Publish(subject, data); err != nil {
		log.Warn().Err(err).Str("subject", subject).Msg("failed to publish event")
	}
}

func (p *Producer) Close() {
	if p == nil || p.nc == nil {
		return
	}
	p.nc.Drain()
}
