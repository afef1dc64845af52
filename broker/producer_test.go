package broker

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"syncnote/syncnote/models"
)

func TestPublish_NilProducerIsSafe(t *testing.T) {
	var p *Producer

	event, err := models.NewEvent(string(NoteCreated), "note", "u1", map[string]interface{}{
		"note_id": "n1",
	})
	assert.NoError(t, err)

	assert.NotPanics(t, func() {
		p.Publish(NoteEventsSubject, event)
	})
	assert.NotPanics(t, func() { p.Close() })
}

func TestPublish_DisconnectedProducerIsSafe(t *testing.T) {
	p := &Producer{}

	event, err := models.NewEvent(string(UserCreated), "user", "u1", nil)
	assert.NoError(t, err)
	assert.NotPanics(t, func() {
		p.Publish(UserEventsSubject, event)
	})
}
