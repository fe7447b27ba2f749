// Package events publishes domain events (trip status changes, approvals,
// settlements) for other systems to consume.
package events

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nsqio/go-nsq"
	log "github.com/sirupsen/logrus"
)

// Topics
const (
	TopicTripStatus      = "fleet.trip.status"
	TopicRequestResolved = "fleet.request.resolved"
	TopicSettlement      = "fleet.settlement"
	TopicChatMessage     = "fleet.chat.message"
)

type Event struct {
	Type       string            `json:"type"`
	EntityID   string            `json:"entity_id"`
	ActorID    string            `json:"actor_id"`
	OccurredAt time.Time         `json:"occurred_at"`
	Data       map[string]string `json:"data,omitempty"`
}

type Publisher interface {
	Publish(topic string, event Event) error
	Stop()
}

// Producer handles publishing messages to NSQ topics
type Producer struct {
	producer *nsq.Producer
}

// NewProducer creates a new NSQ producer
func NewProducer(address string) (*Producer, error) {
	config := nsq.NewConfig()
	producer, err := nsq.NewProducer(address, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create NSQ producer: %w", err)
	}

	// Ping the NSQ daemon to ensure connectivity
	if err := producer.Ping(); err != nil {
		producer.Stop()
		return nil, fmt.Errorf("failed to ping NSQ daemon: %w", err)
	}

	return &Producer{producer: producer}, nil
}

// Publish sends an event to the specified topic
func (p *Producer) Publish(topic string, event Event) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.producer.Publish(topic, msgBytes); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Debugf("[Events] Published %s to %s", event.Type, topic)
	return nil
}

// Stop gracefully stops the producer
func (p *Producer) Stop() {
	p.producer.Stop()
}

// Discard drops every event. Used when no NSQ daemon is configured.
type Discard struct{}

func (Discard) Publish(string, Event) error { return nil }
func (Discard) Stop()                       {}

// Connect returns an NSQ producer, or Discard when address is empty or unreachable
func Connect(address string) Publisher {
	if address == "" {
		return Discard{}
	}
	p, err := NewProducer(address)
	if err != nil {
		log.Printf("[Events] NSQ unavailable, events disabled: %v", err)
		return Discard{}
	}
	log.Printf("[Events] Publishing to NSQ at %s", address)
	return p
}

// Recorder keeps published events in memory; tests read them back.
type Recorder struct {
	mu     sync.Mutex
	Events map[string][]Event
}

func NewRecorder() *Recorder {
	return &Recorder{Events: make(map[string][]Event)}
}

func (r *Recorder) Publish(topic string, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events[topic] = append(r.Events[topic], event)
	return nil
}

// Topic returns a copy of the events published to topic
func (r *Recorder) Topic(topic string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.Events[topic]...)
}

func (r *Recorder) Stop() {}
