package busmqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/calderlabs/spectra-core/internal/device"
	"github.com/calderlabs/spectra-core/internal/infrastructure/mqtt"
)

// Publisher is the slice of the MQTT client the bus needs.
type Publisher interface {
	PublishEvent(topic string, payload []byte) error
	PublishRetained(topic string, payload []byte) error
}

// DeviceBus publishes device notifications on the Spectra MQTT topics.
//
// Attribute change events go out non-retained on the event topic. State
// and status go out as retained documents so new subscribers see the
// current value immediately; their change events carry no payload.
//
// Thread Safety:
//   - Safe for concurrent use; the underlying client serialises publishes.
type DeviceBus struct {
	pub    Publisher
	topics mqtt.Topics
}

// New creates a device bus over the given publisher.
func New(pub Publisher) (*DeviceBus, error) {
	if pub == nil {
		return nil, errors.New("busmqtt: publisher is required")
	}
	return &DeviceBus{pub: pub}, nil
}

// eventEnvelope is the wire form of an attribute change event.
type eventEnvelope struct {
	ID        string    `json:"id"`
	Device    string    `json:"device"`
	Attribute string    `json:"attribute"`
	Kind      string    `json:"kind"`
	Value     any       `json:"value,omitempty"`
	Format    string    `json:"format,omitempty"`
	Data      []byte    `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Quality   string    `json:"quality,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// stateDocument is the retained state payload.
type stateDocument struct {
	ID        string    `json:"id"`
	Device    string    `json:"device"`
	State     string    `json:"state"`
	Timestamp time.Time `json:"timestamp"`
}

// statusDocument is the retained status payload.
type statusDocument struct {
	ID        string    `json:"id"`
	Device    string    `json:"device"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func (b *DeviceBus) publishEvent(dev, attr string, env eventEnvelope) error {
	env.ID = uuid.NewString()
	env.Device = dev
	env.Attribute = attr
	if env.Timestamp.IsZero() {
		env.Timestamp = time.Now()
	}

	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("busmqtt: marshal event: %w", err)
	}
	if err := b.pub.PublishEvent(b.topics.AttributeEvent(dev, attr), payload); err != nil {
		return fmt.Errorf("busmqtt: %s/%s: %w", dev, attr, err)
	}
	return nil
}

// PushChangeEvent publishes a bare change notification. Used for state
// and status, whose values live in the retained documents.
func (b *DeviceBus) PushChangeEvent(dev, attr string) error {
	return b.publishEvent(dev, attr, eventEnvelope{Kind: "change"})
}

// PushChangeEventValue publishes a change notification with its value.
func (b *DeviceBus) PushChangeEventValue(dev, attr string, value any, ts time.Time, quality device.Quality) error {
	return b.publishEvent(dev, attr, eventEnvelope{
		Kind:      "change",
		Value:     value,
		Timestamp: ts,
		Quality:   quality.String(),
	})
}

// PushChangeEventEncoded publishes a change notification for an encoded
// attribute. Format and payload travel as separate envelope fields; the
// payload is base64 in the JSON form.
func (b *DeviceBus) PushChangeEventEncoded(dev, attr, format string, data []byte, ts time.Time, quality device.Quality) error {
	return b.publishEvent(dev, attr, eventEnvelope{
		Kind:      "change",
		Format:    format,
		Data:      data,
		Timestamp: ts,
		Quality:   quality.String(),
	})
}

// PushChangeEventError publishes an error notification.
func (b *DeviceBus) PushChangeEventError(dev, attr string, pushErr error) error {
	return b.publishEvent(dev, attr, eventEnvelope{
		Kind:    "error",
		Quality: device.QualityInvalid.String(),
		Error:   pushErr.Error(),
	})
}

// SetState publishes the retained device state document.
func (b *DeviceBus) SetState(dev string, state device.State) error {
	doc := stateDocument{
		ID:        uuid.NewString(),
		Device:    dev,
		State:     state.String(),
		Timestamp: time.Now(),
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("busmqtt: marshal state: %w", err)
	}
	if err := b.pub.PublishRetained(b.topics.DeviceState(dev), payload); err != nil {
		return fmt.Errorf("busmqtt: %s state: %w", dev, err)
	}
	return nil
}

// SetStatus publishes the retained device status document.
func (b *DeviceBus) SetStatus(dev, status string) error {
	doc := statusDocument{
		ID:        uuid.NewString(),
		Device:    dev,
		Status:    status,
		Timestamp: time.Now(),
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("busmqtt: marshal status: %w", err)
	}
	if err := b.pub.PublishRetained(b.topics.DeviceStatus(dev), payload); err != nil {
		return fmt.Errorf("busmqtt: %s status: %w", dev, err)
	}
	return nil
}
