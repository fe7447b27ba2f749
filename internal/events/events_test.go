package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConnect_EmptyAddressDiscards(t *testing.T) {
	p := Connect("")

	_, ok := p.(Discard)
	assert.True(t, ok)
	assert.NoError(t, p.Publish(TopicTripStatus, Event{Type: "trip.running"}))
}

func TestRecorder_KeepsEventsPerTopic(t *testing.T) {
	r := NewRecorder()

	assert.NoError(t, r.Publish(TopicSettlement, Event{Type: "settled", EntityID: "t1"}))
	assert.NoError(t, r.Publish(TopicTripStatus, Event{Type: "trip.running", EntityID: "t1"}))

	got := r.Topic(TopicSettlement)
	assert.Len(t, got, 1)
	assert.Equal(t, "t1", got[0].EntityID)
	assert.Empty(t, r.Topic(TopicChatMessage))
}
