package archive

import (
	"errors"
	"time"

	"github.com/calderlabs/spectra-core/internal/device"
)

// Recorder receives history points. Satisfied by *influxdb.Client.
// Writes must be non-blocking; the bus path cannot absorb archive
// latency.
type Recorder interface {
	WriteAttributeChange(dev, attribute string, value any, quality string, ts time.Time)
	WriteStateChange(dev, state string)
}

// Bus decorates a device bus with history archiving: every value event
// and state transition that reaches the wrapped bus is also recorded.
//
// Archiving never fails a push. Recorder errors are the recorder's
// problem (the InfluxDB client reports them through its async callback).
type Bus struct {
	inner device.Bus
	rec   Recorder
}

// Wrap decorates inner with archiving through rec.
func Wrap(inner device.Bus, rec Recorder) (*Bus, error) {
	if inner == nil {
		return nil, errors.New("archive: inner bus is required")
	}
	if rec == nil {
		return nil, errors.New("archive: recorder is required")
	}
	return &Bus{inner: inner, rec: rec}, nil
}

// PushChangeEvent forwards a bare change notification. Bare events carry
// no value, so nothing is archived.
func (b *Bus) PushChangeEvent(dev, attr string) error {
	return b.inner.PushChangeEvent(dev, attr)
}

// PushChangeEventValue forwards the event and records the value.
func (b *Bus) PushChangeEventValue(dev, attr string, value any, ts time.Time, quality device.Quality) error {
	err := b.inner.PushChangeEventValue(dev, attr, value, ts, quality)
	if err == nil {
		b.rec.WriteAttributeChange(dev, attr, value, quality.String(), ts)
	}
	return err
}

// PushChangeEventEncoded forwards the event. Encoded payloads are not
// archived; they are opaque and typically large.
func (b *Bus) PushChangeEventEncoded(dev, attr, format string, data []byte, ts time.Time, quality device.Quality) error {
	return b.inner.PushChangeEventEncoded(dev, attr, format, data, ts, quality)
}

// PushChangeEventError forwards the error notification.
func (b *Bus) PushChangeEventError(dev, attr string, pushErr error) error {
	return b.inner.PushChangeEventError(dev, attr, pushErr)
}

// SetState forwards the state document and records the transition.
func (b *Bus) SetState(dev string, state device.State) error {
	err := b.inner.SetState(dev, state)
	if err == nil {
		b.rec.WriteStateChange(dev, state.String())
	}
	return err
}

// SetStatus forwards the status document. Status text is not archived.
func (b *Bus) SetStatus(dev, status string) error {
	return b.inner.SetStatus(dev, status)
}
